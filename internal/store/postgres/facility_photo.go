package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/safeplate/internal/domain"
)

type FacilityPhotoRepo struct {
	pool *pgxpool.Pool
}

func NewFacilityPhotoRepo(pool *pgxpool.Pool) *FacilityPhotoRepo {
	return &FacilityPhotoRepo{pool: pool}
}

func (r *FacilityPhotoRepo) Create(ctx context.Context, p *domain.FacilityPhoto) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO facility_photos (business_id, area_name, photo_url, position)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		p.BusinessID, p.AreaName, p.PhotoURL, p.Position,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("facilityPhotoRepo.Create: %w", insertError(err))
	}

	return nil
}

func (r *FacilityPhotoRepo) ListByBusiness(ctx context.Context, businessID int64) ([]*domain.FacilityPhoto, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, business_id, area_name, photo_url, position, created_at
		 FROM facility_photos WHERE business_id = $1
		 ORDER BY position, id`,
		businessID,
	)
	if err != nil {
		return nil, fmt.Errorf("facilityPhotoRepo.ListByBusiness: %w", err)
	}
	defer rows.Close()

	var photos []*domain.FacilityPhoto
	for rows.Next() {
		var p domain.FacilityPhoto
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.AreaName, &p.PhotoURL, &p.Position, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("facilityPhotoRepo.ListByBusiness: scan: %w", err)
		}
		photos = append(photos, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("facilityPhotoRepo.ListByBusiness: rows: %w", err)
	}

	return photos, nil
}
