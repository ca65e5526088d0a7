package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/josoro11/FOXITE-V2/internal/api/http"
	"github.com/josoro11/FOXITE-V2/internal/api/http/handlers"
	"github.com/josoro11/FOXITE-V2/internal/auth"
	"github.com/josoro11/FOXITE-V2/internal/config"
	"github.com/josoro11/FOXITE-V2/internal/events"
	"github.com/josoro11/FOXITE-V2/internal/observability"
	"github.com/josoro11/FOXITE-V2/internal/persistence"
	"github.com/josoro11/FOXITE-V2/internal/plan"
	"github.com/josoro11/FOXITE-V2/internal/repository"
	"github.com/josoro11/FOXITE-V2/internal/service"
	"github.com/josoro11/FOXITE-V2/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	orgRepo := repository.NewOrganizationRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	endUserRepo := repository.NewEndUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	slaRepo := repository.NewSLARepository(pool)
	deviceRepo := repository.NewDeviceRepository(pool)
	licenseRepo := repository.NewLicenseRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	catalog := plan.Default()
	guard := plan.NewGuard(catalog)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		EndUserRepo:       endUserRepo,
		StaffRepo:         staffRepo,
		OrgRepo:           orgRepo,
		PasswordResetRepo: resetRepo,
	})
	orgService := service.NewOrganizationService(service.OrganizationDependencies{
		OrgRepo:     orgRepo,
		StaffRepo:   staffRepo,
		CompanyRepo: companyRepo,
		EndUserRepo: endUserRepo,
		DeviceRepo:  deviceRepo,
		LicenseRepo: licenseRepo,
		SLARepo:     slaRepo,
		Catalog:     catalog,
	})
	staffService := service.NewStaffService(*cfg, service.StaffDependencies{
		OrgRepo:   orgRepo,
		StaffRepo: staffRepo,
		Guard:     guard,
	})
	companyService := service.NewCompanyService(*cfg, service.CompanyDependencies{
		OrgRepo:     orgRepo,
		CompanyRepo: companyRepo,
		EndUserRepo: endUserRepo,
		Guard:       guard,
	})
	assetService := service.NewAssetService(service.AssetDependencies{
		OrgRepo:     orgRepo,
		DeviceRepo:  deviceRepo,
		LicenseRepo: licenseRepo,
		Guard:       guard,
	})
	sessionService := service.NewSessionService(service.SessionDependencies{
		OrgRepo:     orgRepo,
		SessionRepo: sessionRepo,
		TicketRepo:  ticketRepo,
		Guard:       guard,
	})
	slaService := service.NewSLAService(service.SLAServiceDependencies{
		OrgRepo: orgRepo,
		SLARepo: slaRepo,
		Guard:   guard,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		HistoryRepo: historyRepo,
		SLARepo:     slaRepo,
		OrgRepo:     orgRepo,
		CompanyRepo: companyRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:  ticketRepo,
		StaffRepo:   staffRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
	})
	planService := service.NewPlanService(catalog, orgService)
	dashboardService := service.NewDashboardService(ticketRepo, redis.Client, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	slaWorker, err := worker.NewSLAWorker(cfg.SLA, ticketRepo, ticketService, logger)
	if err != nil {
		logger.Fatal("failed to init sla worker", zap.Error(err))
	}
	slaWorker.Start()
	defer slaWorker.Stop()

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), endUserRepo, staffRepo)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Staff:          handlers.NewStaffHandler(authService, staffService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, assignmentService, sessionService),
		Organizations:  handlers.NewOrganizationsHandler(orgService, staffService, planService),
		Directory:      handlers.NewDirectoryHandler(companyService),
		Assets:         handlers.NewAssetsHandler(assetService),
		Sessions:       handlers.NewSessionsHandler(sessionService),
		SLA:            handlers.NewSLAHandler(slaService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
