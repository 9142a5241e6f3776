package store

import (
	"context"
	"errors"

	"grindbook/internal/staking"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateManualStaker(ctx context.Context, m *staking.ManualStaker) error {
	_, err := s.Pool.Exec(ctx, `INSERT INTO manual_stakers (id, owner_id, display_name, contact, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.OwnerID, m.DisplayName, m.Contact, m.CreatedAt)
	return err
}

func (s *Store) GetManualStaker(ctx context.Context, id string) (*staking.ManualStaker, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, owner_id, display_name, contact, created_at
		FROM manual_stakers WHERE id = $1`, id)
	var m staking.ManualStaker
	if err := row.Scan(&m.ID, &m.OwnerID, &m.DisplayName, &m.Contact, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *Store) ListManualStakers(ctx context.Context, ownerID string) ([]staking.ManualStaker, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, owner_id, display_name, contact, created_at
		FROM manual_stakers WHERE owner_id = $1 ORDER BY display_name, id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []staking.ManualStaker{}
	for rows.Next() {
		var m staking.ManualStaker
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.DisplayName, &m.Contact, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
