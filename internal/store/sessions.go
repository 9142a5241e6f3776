package store

import (
	"context"
	"errors"
	"time"

	"grindbook/internal/session"
	"grindbook/internal/staking"

	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, player_id, game_type, game_name, stakes, status,
	buy_in_cents, base_buy_in_cents, rebuy_count, cashout_cents,
	prior_active_seconds, last_active_at, started_at, completed_at,
	created_at, updated_at`

func (s *Store) CreateSession(ctx context.Context, sess *session.Session) error {
	_, err := s.Pool.Exec(ctx, `INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		sess.ID, sess.PlayerID, sess.GameType, sess.GameName, sess.Stakes, sess.Status,
		sess.BuyInCents, sess.BaseBuyInCents, sess.RebuyCount, sess.CashoutCents,
		sess.PriorActiveSeconds, sess.LastActiveAt, sess.StartedAt, sess.CompletedAt,
		sess.CreatedAt, sess.UpdatedAt)
	return err
}

func (s *Store) GetSession(ctx context.Context, id string) (*session.Session, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

func (s *Store) UpdateSession(ctx context.Context, sess *session.Session) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE sessions SET
		game_type=$2, game_name=$3, stakes=$4, status=$5,
		buy_in_cents=$6, base_buy_in_cents=$7, rebuy_count=$8, cashout_cents=$9,
		prior_active_seconds=$10, last_active_at=$11, started_at=$12, completed_at=$13,
		updated_at=$14
		WHERE id = $1`,
		sess.ID, sess.GameType, sess.GameName, sess.Stakes, sess.Status,
		sess.BuyInCents, sess.BaseBuyInCents, sess.RebuyCount, sess.CashoutCents,
		sess.PriorActiveSeconds, sess.LastActiveAt, sess.StartedAt, sess.CompletedAt,
		sess.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListChipUpdates(ctx context.Context, sessionID string) ([]session.ChipUpdate, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, session_id, amount_cents, note, kind, created_at
		FROM chip_updates WHERE session_id = $1 ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []session.ChipUpdate{}
	for rows.Next() {
		var u session.ChipUpdate
		if err := rows.Scan(&u.ID, &u.SessionID, &u.AmountCents, &u.Note, &u.Kind, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SaveFinancials persists a session's financial facts, an optional new chip
// update, and every recomputed contract in one transaction, so no contract
// can be left pointing at facts the session row does not hold.
func (s *Store) SaveFinancials(ctx context.Context, sess *session.Session, upd *session.ChipUpdate, contracts []*staking.Contract) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE sessions SET
		game_type=$2, game_name=$3, stakes=$4, status=$5,
		buy_in_cents=$6, base_buy_in_cents=$7, rebuy_count=$8, cashout_cents=$9,
		prior_active_seconds=$10, last_active_at=$11, started_at=$12, completed_at=$13,
		updated_at=$14
		WHERE id = $1`,
		sess.ID, sess.GameType, sess.GameName, sess.Stakes, sess.Status,
		sess.BuyInCents, sess.BaseBuyInCents, sess.RebuyCount, sess.CashoutCents,
		sess.PriorActiveSeconds, sess.LastActiveAt, sess.StartedAt, sess.CompletedAt,
		sess.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if upd != nil {
		if _, err := tx.Exec(ctx, `INSERT INTO chip_updates (id, session_id, amount_cents, note, kind, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			upd.ID, upd.SessionID, upd.AmountCents, upd.Note, upd.Kind, upd.CreatedAt); err != nil {
			return err
		}
	}
	for _, ct := range contracts {
		if err := updateStakeTx(ctx, tx, ct); err != nil {
			return err
		}
		ev := staking.Event{
			ID:      NewID(),
			StakeID: ct.ID,
			Type:    staking.EventRecomputed,
			Detail: map[string]any{
				"buy_in_cents":     ct.BuyInCents,
				"cashout_cents":    ct.CashoutCents,
				"settlement_cents": ct.SettlementCents,
			},
			CreatedAt: ct.UpdatedAt,
		}
		if err := insertStakeEventTx(ctx, tx, ev); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SessionFilter narrows history listings.
type SessionFilter struct {
	PlayerID string
	GameType string
	Status   string
	From     *time.Time
	To       *time.Time
}

func (s *Store) ListSessions(ctx context.Context, f SessionFilter, limit, offset int) ([]session.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+sessionColumns+` FROM sessions
		WHERE player_id = $1
		  AND ($2 = '' OR game_type = $2)
		  AND ($3 = '' OR status = $3)
		  AND ($4::timestamptz IS NULL OR created_at >= $4)
		  AND ($5::timestamptz IS NULL OR created_at <= $5)
		ORDER BY created_at DESC, id DESC
		LIMIT $6 OFFSET $7`,
		f.PlayerID, f.GameType, f.Status, f.From, f.To, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []session.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sess)
	}
	return out, rows.Err()
}

// PlayerStatsRow is a per-game-type aggregate over a player's sessions.
type PlayerStatsRow struct {
	GameType          string
	Sessions          int
	CompletedSessions int
	ProfitCents       int64
	ActiveSeconds     int64
}

func (s *Store) PlayerStats(ctx context.Context, playerID string) ([]PlayerStatsRow, error) {
	rows, err := s.Pool.Query(ctx, `SELECT game_type,
			COUNT(*) AS sessions,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COALESCE(SUM(cashout_cents - buy_in_cents) FILTER (WHERE status = 'completed'), 0) AS profit_cents,
			COALESCE(SUM(prior_active_seconds), 0) AS active_seconds
		FROM sessions WHERE player_id = $1
		GROUP BY game_type ORDER BY game_type`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []PlayerStatsRow{}
	for rows.Next() {
		var r PlayerStatsRow
		if err := rows.Scan(&r.GameType, &r.Sessions, &r.CompletedSessions, &r.ProfitCents, &r.ActiveSeconds); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListIdleActiveSessions(ctx context.Context, idleBefore time.Time) ([]*session.Session, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+sessionColumns+` FROM sessions
		WHERE status = 'active' AND updated_at <= $1 ORDER BY updated_at`, idleBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*session.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var sess session.Session
	err := row.Scan(&sess.ID, &sess.PlayerID, &sess.GameType, &sess.GameName, &sess.Stakes, &sess.Status,
		&sess.BuyInCents, &sess.BaseBuyInCents, &sess.RebuyCount, &sess.CashoutCents,
		&sess.PriorActiveSeconds, &sess.LastActiveAt, &sess.StartedAt, &sess.CompletedAt,
		&sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}
