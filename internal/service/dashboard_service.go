package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/repository"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

const dashboardCacheTTL = 30 * time.Second

// DashboardStats is the per-tenant operational snapshot.
type DashboardStats struct {
	OpenTickets        int       `json:"open_tickets"`
	UnassignedTickets  int       `json:"unassigned_tickets"`
	BreachedResponse   int       `json:"breached_response"`
	BreachedResolution int       `json:"breached_resolution"`
	TotalTickets       int       `json:"total_tickets"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// DashboardService aggregates ticket counts for the staff dashboard. Stats
// are cached in Redis per organization for a short TTL; cache failures
// degrade to direct queries.
type DashboardService struct {
	tickets repository.TicketRepository
	cache   *redis.Client
	logger  *zap.Logger
}

// NewDashboardService constructs the service. The cache client may be nil.
func NewDashboardService(tickets repository.TicketRepository, cache *redis.Client, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{tickets: tickets, cache: cache, logger: logger}
}

func dashboardCacheKey(orgID string) string {
	return fmt.Sprintf("dashboard:stats:%s", orgID)
}

// Stats returns the dashboard snapshot for an organization.
func (s *DashboardService) Stats(ctx context.Context, orgID string) (*DashboardStats, error) {
	if cached := s.fromCache(ctx, orgID); cached != nil {
		return cached, nil
	}

	stats, err := s.compute(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.toCache(ctx, orgID, stats)
	return stats, nil
}

func (s *DashboardService) compute(ctx context.Context, orgID string) (*DashboardStats, error) {
	total, err := s.tickets.CountByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	// open set is everything not yet terminal
	open, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		OrganizationID: orgID,
		Statuses: []domain.TicketStatus{
			domain.TicketStatusNew,
			domain.TicketStatusOpen,
			domain.TicketStatusInProgress,
			domain.TicketStatusOnHold,
		},
		Limit: 1000,
	})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalTickets: total,
		GeneratedAt:  time.Now().UTC(),
	}
	for _, t := range open {
		stats.OpenTickets++
		if t.AssigneeID == nil {
			stats.UnassignedTickets++
		}
		if t.SLAResponseBreached {
			stats.BreachedResponse++
		}
		if t.SLAResolutionBreached {
			stats.BreachedResolution++
		}
	}
	return stats, nil
}

func (s *DashboardService) fromCache(ctx context.Context, orgID string) *DashboardStats {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, dashboardCacheKey(orgID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("dashboard cache read failed", zap.Error(err))
		}
		return nil
	}
	var stats DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *DashboardService) toCache(ctx context.Context, orgID string, stats *DashboardStats) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey(orgID), raw, dashboardCacheTTL).Err(); err != nil {
		s.logger.Debug("dashboard cache write failed", zap.Error(err))
	}
}
