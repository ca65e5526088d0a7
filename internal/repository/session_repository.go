package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// SessionRepository manages work session (time tracking) persistence.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.WorkSession) error
	Update(ctx context.Context, session *domain.WorkSession) error
	GetByID(ctx context.Context, orgID, id string) (*domain.WorkSession, error)
	ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]domain.WorkSession, error)
	ListByTicket(ctx context.Context, orgID, ticketID string) ([]domain.WorkSession, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.WorkSession) error {
	const query = `
        INSERT INTO work_sessions (organization_id, staff_id, ticket_id, start_time, end_time, duration_minutes, notes, visible_to_client)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		session.OrganizationID,
		session.StaffID,
		session.TicketID,
		session.StartTime,
		session.EndTime,
		session.DurationMinutes,
		session.Notes,
		session.VisibleToClient,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
}

func (r *sessionRepository) Update(ctx context.Context, session *domain.WorkSession) error {
	const query = `
        UPDATE work_sessions SET end_time=$1, duration_minutes=$2, notes=$3, visible_to_client=$4, updated_at=NOW()
        WHERE id=$5 AND organization_id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		session.EndTime,
		session.DurationMinutes,
		session.Notes,
		session.VisibleToClient,
		session.ID,
		session.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const sessionColumns = `id, organization_id, staff_id, ticket_id, start_time, end_time, duration_minutes, notes, visible_to_client, created_at, updated_at`

func (r *sessionRepository) GetByID(ctx context.Context, orgID, id string) (*domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM work_sessions WHERE id=$1 AND organization_id=$2`
	var session domain.WorkSession
	if err := r.pool.QueryRow(ctx, query, id, orgID).Scan(sessionScanTargets(&session)...); err != nil {
		return nil, err
	}
	return &session, nil
}

func sessionScanTargets(s *domain.WorkSession) []any {
	return []any{
		&s.ID,
		&s.OrganizationID,
		&s.StaffID,
		&s.TicketID,
		&s.StartTime,
		&s.EndTime,
		&s.DurationMinutes,
		&s.Notes,
		&s.VisibleToClient,
		&s.CreatedAt,
		&s.UpdatedAt,
	}
}

func (r *sessionRepository) ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]domain.WorkSession, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + sessionColumns + ` FROM work_sessions WHERE organization_id=$1 ORDER BY start_time DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, orgID, limit, offset)
}

func (r *sessionRepository) ListByTicket(ctx context.Context, orgID, ticketID string) ([]domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM work_sessions WHERE organization_id=$1 AND ticket_id=$2 ORDER BY start_time`
	return r.list(ctx, query, orgID, ticketID)
}

func (r *sessionRepository) list(ctx context.Context, query string, args ...any) ([]domain.WorkSession, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WorkSession
	for rows.Next() {
		var session domain.WorkSession
		if err := rows.Scan(sessionScanTargets(&session)...); err != nil {
			return nil, err
		}
		result = append(result, session)
	}
	return result, rows.Err()
}
