package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// EndUserRepository manages persistence for client end-users.
type EndUserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, orgID, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]domain.User, error)
	CountByOrganization(ctx context.Context, orgID string) (int, error)
}

type endUserRepository struct {
	pool *pgxpool.Pool
}

// NewEndUserRepository instantiates the repository.
func NewEndUserRepository(pool *pgxpool.Pool) EndUserRepository {
	return &endUserRepository{pool: pool}
}

func (r *endUserRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO end_users (organization_id, company_id, name, email, password_hash, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.OrganizationID,
		user.CompanyID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *endUserRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE end_users SET company_id=$1, name=$2, email=$3, password_hash=$4, status=$5, updated_at=NOW()
        WHERE id=$6 AND organization_id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		user.CompanyID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Status,
		user.ID,
		user.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const endUserColumns = `id, organization_id, company_id, name, email, password_hash, status, created_at, updated_at`

func (r *endUserRepository) GetByID(ctx context.Context, orgID, id string) (*domain.User, error) {
	query := `SELECT ` + endUserColumns + ` FROM end_users WHERE id=$1 AND organization_id=$2`
	return r.fetchSingle(ctx, query, id, orgID)
}

func (r *endUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + endUserColumns + ` FROM end_users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *endUserRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.OrganizationID,
		&user.CompanyID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *endUserRepository) ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + endUserColumns + ` FROM end_users WHERE organization_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.OrganizationID,
			&user.CompanyID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Status,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *endUserRepository) CountByOrganization(ctx context.Context, orgID string) (int, error) {
	const query = `SELECT COUNT(*) FROM end_users WHERE organization_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, orgID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
