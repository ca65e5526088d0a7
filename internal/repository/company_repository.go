package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// CompanyRepository manages client company persistence.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.ClientCompany) error
	Update(ctx context.Context, company *domain.ClientCompany) error
	GetByID(ctx context.Context, orgID, id string) (*domain.ClientCompany, error)
	ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]domain.ClientCompany, error)
	CountByOrganization(ctx context.Context, orgID string) (int, error)
}

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository builds the repository.
func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepository{pool: pool}
}

func (r *companyRepository) Create(ctx context.Context, company *domain.ClientCompany) error {
	const query = `
        INSERT INTO client_companies (organization_id, name, contact_email, phone, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		company.OrganizationID,
		company.Name,
		company.ContactEmail,
		company.Phone,
		company.IsActive,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
}

func (r *companyRepository) Update(ctx context.Context, company *domain.ClientCompany) error {
	const query = `
        UPDATE client_companies SET name=$1, contact_email=$2, phone=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5 AND organization_id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		company.Name,
		company.ContactEmail,
		company.Phone,
		company.IsActive,
		company.ID,
		company.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, orgID, id string) (*domain.ClientCompany, error) {
	const query = `
        SELECT id, organization_id, name, contact_email, phone, is_active, created_at, updated_at
        FROM client_companies WHERE id=$1 AND organization_id=$2`
	var company domain.ClientCompany
	if err := r.pool.QueryRow(ctx, query, id, orgID).Scan(
		&company.ID,
		&company.OrganizationID,
		&company.Name,
		&company.ContactEmail,
		&company.Phone,
		&company.IsActive,
		&company.CreatedAt,
		&company.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]domain.ClientCompany, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, organization_id, name, contact_email, phone, is_active, created_at, updated_at
        FROM client_companies WHERE organization_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ClientCompany
	for rows.Next() {
		var company domain.ClientCompany
		if err := rows.Scan(
			&company.ID,
			&company.OrganizationID,
			&company.Name,
			&company.ContactEmail,
			&company.Phone,
			&company.IsActive,
			&company.CreatedAt,
			&company.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, company)
	}
	return result, rows.Err()
}

func (r *companyRepository) CountByOrganization(ctx context.Context, orgID string) (int, error) {
	const query = `SELECT COUNT(*) FROM client_companies WHERE organization_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, orgID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
