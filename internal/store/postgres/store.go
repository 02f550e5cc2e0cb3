package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/safeplate/internal/domain"
)

type Store struct {
	pool           *pgxpool.Pool
	businesses     *BusinessRepo
	teamMembers    *TeamMemberRepo
	facilityPhotos *FacilityPhotoRepo
	audit          *AuditRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:           pool,
		businesses:     NewBusinessRepo(pool),
		teamMembers:    NewTeamMemberRepo(pool),
		facilityPhotos: NewFacilityPhotoRepo(pool),
		audit:          NewAuditRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Businesses() domain.BusinessRepository          { return s.businesses }
func (s *Store) TeamMembers() domain.TeamMemberRepository       { return s.teamMembers }
func (s *Store) FacilityPhotos() domain.FacilityPhotoRepository { return s.facilityPhotos }
func (s *Store) Audit() domain.AuditRepository                  { return s.audit }
