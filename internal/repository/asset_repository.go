package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// DeviceRepository manages managed-device persistence.
type DeviceRepository interface {
	Create(ctx context.Context, device *domain.Device) error
	Update(ctx context.Context, device *domain.Device) error
	GetByID(ctx context.Context, orgID, id string) (*domain.Device, error)
	ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]domain.Device, error)
	CountByOrganization(ctx context.Context, orgID string) (int, error)
}

// LicenseRepository manages license inventory persistence.
type LicenseRepository interface {
	Create(ctx context.Context, license *domain.License) error
	Update(ctx context.Context, license *domain.License) error
	GetByID(ctx context.Context, orgID, id string) (*domain.License, error)
	ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]domain.License, error)
	CountByOrganization(ctx context.Context, orgID string) (int, error)
}

type deviceRepository struct {
	pool *pgxpool.Pool
}

// NewDeviceRepository instantiates the repository.
func NewDeviceRepository(pool *pgxpool.Pool) DeviceRepository {
	return &deviceRepository{pool: pool}
}

func (r *deviceRepository) Create(ctx context.Context, device *domain.Device) error {
	const query = `
        INSERT INTO devices (organization_id, company_id, name, device_type, serial_number, status, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		device.OrganizationID,
		device.CompanyID,
		device.Name,
		device.DeviceType,
		device.SerialNumber,
		device.Status,
		device.Notes,
	).Scan(&device.ID, &device.CreatedAt, &device.UpdatedAt)
}

func (r *deviceRepository) Update(ctx context.Context, device *domain.Device) error {
	const query = `
        UPDATE devices SET company_id=$1, name=$2, device_type=$3, serial_number=$4, status=$5, notes=$6, updated_at=NOW()
        WHERE id=$7 AND organization_id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		device.CompanyID,
		device.Name,
		device.DeviceType,
		device.SerialNumber,
		device.Status,
		device.Notes,
		device.ID,
		device.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *deviceRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Device, error) {
	const query = `
        SELECT id, organization_id, company_id, name, device_type, serial_number, status, notes, created_at, updated_at
        FROM devices WHERE id=$1 AND organization_id=$2`
	var device domain.Device
	if err := r.pool.QueryRow(ctx, query, id, orgID).Scan(
		&device.ID,
		&device.OrganizationID,
		&device.CompanyID,
		&device.Name,
		&device.DeviceType,
		&device.SerialNumber,
		&device.Status,
		&device.Notes,
		&device.CreatedAt,
		&device.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *deviceRepository) ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]domain.Device, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, organization_id, company_id, name, device_type, serial_number, status, notes, created_at, updated_at
        FROM devices WHERE organization_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Device
	for rows.Next() {
		var device domain.Device
		if err := rows.Scan(
			&device.ID,
			&device.OrganizationID,
			&device.CompanyID,
			&device.Name,
			&device.DeviceType,
			&device.SerialNumber,
			&device.Status,
			&device.Notes,
			&device.CreatedAt,
			&device.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, device)
	}
	return result, rows.Err()
}

func (r *deviceRepository) CountByOrganization(ctx context.Context, orgID string) (int, error) {
	const query = `SELECT COUNT(*) FROM devices WHERE organization_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, orgID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type licenseRepository struct {
	pool *pgxpool.Pool
}

// NewLicenseRepository instantiates the repository.
func NewLicenseRepository(pool *pgxpool.Pool) LicenseRepository {
	return &licenseRepository{pool: pool}
}

func (r *licenseRepository) Create(ctx context.Context, license *domain.License) error {
	const query = `
        INSERT INTO licenses (organization_id, company_id, name, vendor, license_key, seats, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		license.OrganizationID,
		license.CompanyID,
		license.Name,
		license.Vendor,
		license.LicenseKey,
		license.Seats,
		license.ExpiresAt,
	).Scan(&license.ID, &license.CreatedAt, &license.UpdatedAt)
}

func (r *licenseRepository) Update(ctx context.Context, license *domain.License) error {
	const query = `
        UPDATE licenses SET company_id=$1, name=$2, vendor=$3, license_key=$4, seats=$5, expires_at=$6, updated_at=NOW()
        WHERE id=$7 AND organization_id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		license.CompanyID,
		license.Name,
		license.Vendor,
		license.LicenseKey,
		license.Seats,
		license.ExpiresAt,
		license.ID,
		license.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *licenseRepository) GetByID(ctx context.Context, orgID, id string) (*domain.License, error) {
	const query = `
        SELECT id, organization_id, company_id, name, vendor, license_key, seats, expires_at, created_at, updated_at
        FROM licenses WHERE id=$1 AND organization_id=$2`
	var license domain.License
	if err := r.pool.QueryRow(ctx, query, id, orgID).Scan(
		&license.ID,
		&license.OrganizationID,
		&license.CompanyID,
		&license.Name,
		&license.Vendor,
		&license.LicenseKey,
		&license.Seats,
		&license.ExpiresAt,
		&license.CreatedAt,
		&license.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *licenseRepository) ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]domain.License, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, organization_id, company_id, name, vendor, license_key, seats, expires_at, created_at, updated_at
        FROM licenses WHERE organization_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.License
	for rows.Next() {
		var license domain.License
		if err := rows.Scan(
			&license.ID,
			&license.OrganizationID,
			&license.CompanyID,
			&license.Name,
			&license.Vendor,
			&license.LicenseKey,
			&license.Seats,
			&license.ExpiresAt,
			&license.CreatedAt,
			&license.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, license)
	}
	return result, rows.Err()
}

func (r *licenseRepository) CountByOrganization(ctx context.Context, orgID string) (int, error) {
	const query = `SELECT COUNT(*) FROM licenses WHERE organization_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, orgID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
