package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// SLARepository manages SLA policies and business-hours records. It is the
// policy/config store the resolver's inputs are read from.
type SLARepository interface {
	CreatePolicy(ctx context.Context, policy *domain.SLAPolicy) error
	UpdatePolicy(ctx context.Context, policy *domain.SLAPolicy) error
	GetPolicy(ctx context.Context, orgID, id string) (*domain.SLAPolicy, error)
	// ListActivePolicies returns the active policy set for a tenant,
	// at most one per priority.
	ListActivePolicies(ctx context.Context, orgID string) ([]domain.SLAPolicy, error)
	CountPoliciesByOrganization(ctx context.Context, orgID string) (int, error)

	UpsertBusinessHours(ctx context.Context, hours *domain.BusinessHours) error
	// GetBusinessHours returns (nil, nil) when the tenant has no record,
	// which callers treat as "always open".
	GetBusinessHours(ctx context.Context, orgID string) (*domain.BusinessHours, error)
}

type slaRepository struct {
	pool *pgxpool.Pool
}

// NewSLARepository instantiates the repository.
func NewSLARepository(pool *pgxpool.Pool) SLARepository {
	return &slaRepository{pool: pool}
}

func (r *slaRepository) CreatePolicy(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        INSERT INTO sla_policies (organization_id, name, priority, response_minutes, resolution_minutes, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		policy.OrganizationID,
		policy.Name,
		policy.Priority,
		policy.ResponseMinutes,
		policy.ResolutionMinutes,
		policy.IsActive,
	).Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
}

func (r *slaRepository) UpdatePolicy(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        UPDATE sla_policies SET name=$1, priority=$2, response_minutes=$3, resolution_minutes=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6 AND organization_id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		policy.Name,
		policy.Priority,
		policy.ResponseMinutes,
		policy.ResolutionMinutes,
		policy.IsActive,
		policy.ID,
		policy.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const policyColumns = `id, organization_id, name, priority, response_minutes, resolution_minutes, is_active, created_at, updated_at`

func (r *slaRepository) GetPolicy(ctx context.Context, orgID, id string) (*domain.SLAPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies WHERE id=$1 AND organization_id=$2`
	var policy domain.SLAPolicy
	if err := r.pool.QueryRow(ctx, query, id, orgID).Scan(
		&policy.ID,
		&policy.OrganizationID,
		&policy.Name,
		&policy.Priority,
		&policy.ResponseMinutes,
		&policy.ResolutionMinutes,
		&policy.IsActive,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *slaRepository) ListActivePolicies(ctx context.Context, orgID string) ([]domain.SLAPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies WHERE organization_id=$1 AND is_active=TRUE ORDER BY priority`
	rows, err := r.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAPolicy
	for rows.Next() {
		var policy domain.SLAPolicy
		if err := rows.Scan(
			&policy.ID,
			&policy.OrganizationID,
			&policy.Name,
			&policy.Priority,
			&policy.ResponseMinutes,
			&policy.ResolutionMinutes,
			&policy.IsActive,
			&policy.CreatedAt,
			&policy.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}

func (r *slaRepository) CountPoliciesByOrganization(ctx context.Context, orgID string) (int, error) {
	const query = `SELECT COUNT(*) FROM sla_policies WHERE organization_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, orgID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *slaRepository) UpsertBusinessHours(ctx context.Context, hours *domain.BusinessHours) error {
	// One record per organization.
	const query = `
        INSERT INTO business_hours (organization_id, name, timezone, work_days, start_time, end_time, holidays)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (organization_id) DO UPDATE
        SET name=EXCLUDED.name, timezone=EXCLUDED.timezone, work_days=EXCLUDED.work_days,
            start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time, holidays=EXCLUDED.holidays,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		hours.OrganizationID,
		hours.Name,
		hours.Timezone,
		hours.WorkDays,
		hours.StartTime,
		hours.EndTime,
		hours.Holidays,
	).Scan(&hours.ID, &hours.CreatedAt, &hours.UpdatedAt)
}

func (r *slaRepository) GetBusinessHours(ctx context.Context, orgID string) (*domain.BusinessHours, error) {
	const query = `
        SELECT id, organization_id, name, timezone, work_days, start_time, end_time, holidays, created_at, updated_at
        FROM business_hours WHERE organization_id=$1`
	var hours domain.BusinessHours
	if err := r.pool.QueryRow(ctx, query, orgID).Scan(
		&hours.ID,
		&hours.OrganizationID,
		&hours.Name,
		&hours.Timezone,
		&hours.WorkDays,
		&hours.StartTime,
		&hours.EndTime,
		&hours.Holidays,
		&hours.CreatedAt,
		&hours.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &hours, nil
}
