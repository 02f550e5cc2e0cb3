package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/safeplate/internal/domain"
)

type TeamMemberRepo struct {
	pool *pgxpool.Pool
}

func NewTeamMemberRepo(pool *pgxpool.Pool) *TeamMemberRepo {
	return &TeamMemberRepo{pool: pool}
}

func (r *TeamMemberRepo) Create(ctx context.Context, m *domain.TeamMember) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO team_members (business_id, name, role, photo_url, position)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		m.BusinessID, m.Name, m.Role, m.PhotoURL, m.Position,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("teamMemberRepo.Create: %w", insertError(err))
	}

	return nil
}

func (r *TeamMemberRepo) ListByBusiness(ctx context.Context, businessID int64) ([]*domain.TeamMember, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, business_id, name, role, photo_url, position, created_at
		 FROM team_members WHERE business_id = $1
		 ORDER BY position, id`,
		businessID,
	)
	if err != nil {
		return nil, fmt.Errorf("teamMemberRepo.ListByBusiness: %w", err)
	}
	defer rows.Close()

	var members []*domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.ID, &m.BusinessID, &m.Name, &m.Role, &m.PhotoURL, &m.Position, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("teamMemberRepo.ListByBusiness: scan: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("teamMemberRepo.ListByBusiness: rows: %w", err)
	}

	return members, nil
}
