package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// TicketFilter captures ticket search parameters. OrganizationID is always
// required; cross-tenant listing does not exist.
type TicketFilter struct {
	OrganizationID string
	CompanyID      *string
	RequesterID    *string
	AssigneeID     *string
	Statuses       []domain.TicketStatus
	Priorities     []domain.TicketPriority
	SearchTerm     *string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	Limit          int
	Offset         int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, orgID, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountByOrganization(ctx context.Context, orgID string) (int, error)
	// SetFirstResponse stamps first_response_at only when still unset.
	SetFirstResponse(ctx context.Context, orgID, id string, at time.Time) error
	// RecordBreach persists breach flags monotonically: flags are OR-ed in
	// SQL so a concurrent writer can never clear a recorded breach.
	RecordBreach(ctx context.Context, orgID, id string, response, resolution bool) error
	// ListBreachCandidates returns non-terminal tickets with at least one
	// due date passed and the matching flag not yet set.
	ListBreachCandidates(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, organization_id, company_id, requester_id, assignee_id,
		title, description, status, priority, tags,
		sla_policy_id, response_due_at, resolution_due_at, first_response_at,
		sla_breached_response, sla_breached_resolution,
		created_at, updated_at, resolved_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, organization_id, company_id, requester_id, assignee_id,
            title, description, status, priority, tags,
            sla_policy_id, response_due_at, resolution_due_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.OrganizationID,
		ticket.CompanyID,
		ticket.RequesterID,
		ticket.AssigneeID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Tags,
		ticket.SLAPolicyID,
		ticket.ResponseDueAt,
		ticket.ResolutionDueAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET company_id=$1, assignee_id=$2, title=$3, description=$4,
            status=$5, priority=$6, tags=$7, resolved_at=$8, closed_at=$9, updated_at=NOW()
        WHERE id=$10 AND organization_id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.CompanyID,
		ticket.AssigneeID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Tags,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
		ticket.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 AND organization_id=$2`
	return r.fetchSingle(ctx, query, id, orgID)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, args...).Scan(ticketScanTargets(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func ticketScanTargets(t *domain.Ticket) []any {
	return []any{
		&t.ID,
		&t.ExternalKey,
		&t.OrganizationID,
		&t.CompanyID,
		&t.RequesterID,
		&t.AssigneeID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.Tags,
		&t.SLAPolicyID,
		&t.ResponseDueAt,
		&t.ResolutionDueAt,
		&t.FirstResponseAt,
		&t.SLAResponseBreached,
		&t.SLAResolutionBreached,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.ResolvedAt,
		&t.ClosedAt,
	}
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	args := []any{filter.OrganizationID}
	clauses := []string{"organization_id=$1"}

	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("company_id=$%d", len(args)))
	}
	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketScanTargets(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByOrganization(ctx context.Context, orgID string) (int, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE organization_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, orgID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) SetFirstResponse(ctx context.Context, orgID, id string, at time.Time) error {
	const query = `
        UPDATE tickets SET first_response_at=$1, updated_at=NOW()
        WHERE id=$2 AND organization_id=$3 AND first_response_at IS NULL`
	_, err := r.pool.Exec(ctx, query, at, id, orgID)
	return err
}

func (r *ticketRepository) RecordBreach(ctx context.Context, orgID, id string, response, resolution bool) error {
	const query = `
        UPDATE tickets
        SET sla_breached_response = sla_breached_response OR $1,
            sla_breached_resolution = sla_breached_resolution OR $2,
            updated_at=NOW()
        WHERE id=$3 AND organization_id=$4`
	cmd, err := r.pool.Exec(ctx, query, response, resolution, id, orgID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListBreachCandidates(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 500
	}
	query := fmt.Sprintf(`
        SELECT `+ticketColumns+`
        FROM tickets
        WHERE status NOT IN ('RESOLVED','CLOSED')
          AND (
            (response_due_at IS NOT NULL AND response_due_at < $1
               AND first_response_at IS NULL AND NOT sla_breached_response)
            OR
            (resolution_due_at IS NOT NULL AND resolution_due_at < $1
               AND NOT sla_breached_resolution)
          )
        ORDER BY created_at
        LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketScanTargets(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
