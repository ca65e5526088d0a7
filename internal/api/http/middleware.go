package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/josoro11/FOXITE-V2/internal/observability"
	"github.com/josoro11/FOXITE-V2/internal/plan"
	"github.com/josoro11/FOXITE-V2/internal/sla"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := classifyError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// classifyError translates entitlement and SLA errors into API error
// envelopes before falling back to the generic mapping.
func classifyError(err error) *apperrors.DomainError {
	var limitErr *plan.PlanLimitError
	if errors.As(err, &limitErr) {
		return &apperrors.DomainError{
			Code:       "PLAN_LIMIT_REACHED",
			Message:    limitErr.Error(),
			HTTPStatus: http.StatusForbidden,
			Details: map[string]any{
				"resource": limitErr.Resource,
				"tier":     limitErr.Tier,
				"limit":    limitErr.Limit,
				"current":  limitErr.Current,
			},
		}
	}
	var featureErr *plan.FeatureError
	if errors.As(err, &featureErr) {
		details := map[string]any{
			"feature": featureErr.Feature,
			"tier":    featureErr.Tier,
		}
		if featureErr.MinimumTier != nil {
			details["minimum_tier"] = *featureErr.MinimumTier
		}
		return &apperrors.DomainError{
			Code:       "FEATURE_NOT_AVAILABLE",
			Message:    featureErr.Error(),
			HTTPStatus: http.StatusForbidden,
			Details:    details,
		}
	}
	var suspendedErr *plan.SuspendedError
	if errors.As(err, &suspendedErr) {
		return &apperrors.DomainError{
			Code:       "ORGANIZATION_SUSPENDED",
			Message:    suspendedErr.Error(),
			HTTPStatus: http.StatusForbidden,
		}
	}
	var seatErr *plan.SeatLimitError
	if errors.As(err, &seatErr) {
		return &apperrors.DomainError{
			Code:       "SEAT_LIMIT_REACHED",
			Message:    seatErr.Error(),
			HTTPStatus: http.StatusForbidden,
			Details: map[string]any{
				"seats":  seatErr.Seats,
				"active": seatErr.Active,
			},
		}
	}
	var confErr *sla.ConfigurationError
	if errors.As(err, &confErr) {
		return &apperrors.DomainError{
			Code:       "SLA_CONFIGURATION_INVALID",
			Message:    confErr.Error(),
			HTTPStatus: http.StatusUnprocessableEntity,
			Details:    map[string]any{"reason": confErr.Reason},
		}
	}
	return apperrors.ToDomainError(err)
}
