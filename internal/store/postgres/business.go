package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/safeplate/internal/domain"
)

const uniqueViolation = "23505"

const businessColumns = `id, owner_id, name, address, phone, email, license_number,
	fssai_license, business_type, owner_name, trade_license, gst_number, fire_safety_cert,
	liquor_license, music_license, logo_url, owner_photo_url, created_at`

type BusinessRepo struct {
	pool *pgxpool.Pool
}

func NewBusinessRepo(pool *pgxpool.Pool) *BusinessRepo {
	return &BusinessRepo{pool: pool}
}

// Create inserts b and fills in the id and created_at assigned by the database.
func (r *BusinessRepo) Create(ctx context.Context, b *domain.Business) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO businesses (owner_id, name, address, phone, email, license_number,
			fssai_license, business_type, owner_name, trade_license, gst_number,
			fire_safety_cert, liquor_license, music_license, logo_url, owner_photo_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at`,
		b.OwnerID, b.Name, b.Address, b.Phone, b.Email, b.LicenseNumber,
		b.FSSAILicense, b.BusinessType, b.OwnerName, b.TradeLicense, b.GSTNumber, b.FireSafetyCert,
		b.LiquorLicense, b.MusicLicense, b.LogoURL, b.OwnerPhotoURL,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("businessRepo.Create: %w", insertError(err))
	}

	return nil
}

func (r *BusinessRepo) GetByID(ctx context.Context, id int64) (*domain.Business, error) {
	b, err := scanBusiness(r.pool.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("businessRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("businessRepo.GetByID: %w", err)
	}

	return b, nil
}

func (r *BusinessRepo) GetByFSSAILicense(ctx context.Context, license string) (*domain.Business, error) {
	b, err := scanBusiness(r.pool.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE fssai_license = $1`,
		license,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("businessRepo.GetByFSSAILicense: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("businessRepo.GetByFSSAILicense: %w", err)
	}

	return b, nil
}

func (r *BusinessRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Business, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE owner_id = $1
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("businessRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	var businesses []*domain.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("businessRepo.ListByOwner: scan: %w", err)
		}
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("businessRepo.ListByOwner: rows: %w", err)
	}

	return businesses, nil
}

func scanBusiness(row pgx.Row) (*domain.Business, error) {
	var b domain.Business
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.Name, &b.Address, &b.Phone, &b.Email, &b.LicenseNumber,
		&b.FSSAILicense, &b.BusinessType, &b.OwnerName, &b.TradeLicense, &b.GSTNumber, &b.FireSafetyCert,
		&b.LiquorLicense, &b.MusicLicense, &b.LogoURL, &b.OwnerPhotoURL, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// insertError maps driver errors from an INSERT ... RETURNING to domain errors.
func insertError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNoRowReturned
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrConflict)
	}
	return err
}
