package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"grindbook/internal/staking"

	"github.com/jackc/pgx/v5"
)

const stakeColumns = `id, session_id, player_id, staker_kind, staker_user_id,
	manual_staker_id, staker_name, percentage, markup, buy_in_cents,
	cashout_cents, settlement_cents, tournament, status, proposed_at, updated_at`

func (s *Store) CreateStake(ctx context.Context, c *staking.Contract, ev staking.Event) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID, manualID *string
	if c.Staker.UserID != "" {
		userID = &c.Staker.UserID
	}
	if c.Staker.ManualID != "" {
		manualID = &c.Staker.ManualID
	}
	_, err = tx.Exec(ctx, `INSERT INTO stakes (`+stakeColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		c.ID, c.SessionID, c.PlayerID, c.Staker.Kind, userID, manualID, c.Staker.Name,
		c.Percentage, c.Markup, c.BuyInCents, c.CashoutCents, c.SettlementCents,
		c.Tournament, c.Status, c.ProposedAt, c.UpdatedAt)
	if err != nil {
		return err
	}
	if err := insertStakeEventTx(ctx, tx, ev); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetStake(ctx context.Context, id string) (*staking.Contract, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+stakeColumns+` FROM stakes WHERE id = $1`, id)
	return scanStake(row)
}

// UpdateStake persists a contract mutation together with its audit event.
func (s *Store) UpdateStake(ctx context.Context, c *staking.Contract, ev staking.Event) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := updateStakeTx(ctx, tx, c); err != nil {
		return err
	}
	if err := insertStakeEventTx(ctx, tx, ev); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListStakesForSession(ctx context.Context, sessionID string) ([]*staking.Contract, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+stakeColumns+` FROM stakes
		WHERE session_id = $1 ORDER BY proposed_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStakes(rows)
}

// ListStakesForStaker lists contracts where an app user is the backing
// party, newest first.
func (s *Store) ListStakesForStaker(ctx context.Context, stakerUserID string, limit, offset int) ([]*staking.Contract, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+stakeColumns+` FROM stakes
		WHERE staker_user_id = $1 ORDER BY proposed_at DESC, id DESC
		LIMIT $2 OFFSET $3`, stakerUserID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStakes(rows)
}

func (s *Store) ListStakeEvents(ctx context.Context, stakeID string) ([]staking.Event, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, stake_id, event_type, actor_id, detail, created_at
		FROM stake_events WHERE stake_id = $1 ORDER BY created_at, id`, stakeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []staking.Event{}
	for rows.Next() {
		var ev staking.Event
		var detail []byte
		if err := rows.Scan(&ev.ID, &ev.StakeID, &ev.Type, &ev.ActorID, &detail, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if len(detail) > 0 {
			_ = json.Unmarshal(detail, &ev.Detail)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func updateStakeTx(ctx context.Context, tx pgx.Tx, c *staking.Contract) error {
	tag, err := tx.Exec(ctx, `UPDATE stakes SET
		percentage=$2, markup=$3, buy_in_cents=$4, cashout_cents=$5,
		settlement_cents=$6, status=$7, updated_at=$8
		WHERE id = $1`,
		c.ID, c.Percentage, c.Markup, c.BuyInCents, c.CashoutCents,
		c.SettlementCents, c.Status, c.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertStakeEventTx(ctx context.Context, tx pgx.Tx, ev staking.Event) error {
	var detail []byte
	if ev.Detail != nil {
		b, err := json.Marshal(ev.Detail)
		if err != nil {
			return err
		}
		detail = b
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	_, err := tx.Exec(ctx, `INSERT INTO stake_events (id, stake_id, event_type, actor_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		ev.ID, ev.StakeID, ev.Type, ev.ActorID, detail, ev.CreatedAt)
	return err
}

func collectStakes(rows pgx.Rows) ([]*staking.Contract, error) {
	out := []*staking.Contract{}
	for rows.Next() {
		c, err := scanStake(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanStake(row pgx.Row) (*staking.Contract, error) {
	var c staking.Contract
	var userID, manualID *string
	err := row.Scan(&c.ID, &c.SessionID, &c.PlayerID, &c.Staker.Kind, &userID, &manualID,
		&c.Staker.Name, &c.Percentage, &c.Markup, &c.BuyInCents, &c.CashoutCents,
		&c.SettlementCents, &c.Tournament, &c.Status, &c.ProposedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if userID != nil {
		c.Staker.UserID = *userID
	}
	if manualID != nil {
		c.Staker.ManualID = *manualID
	}
	return &c, nil
}
