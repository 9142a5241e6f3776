package history

import (
	"context"
	"time"

	"grindbook/internal/store"
)

const maxPageSize = 200

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Query narrows a session history listing. Zero values mean "no filter".
type Query struct {
	GameType string
	Status   string
	From     *time.Time
	To       *time.Time
}

func (s *Service) ListSessions(ctx context.Context, playerID string, q Query, limit, offset int) (*SessionsResponse, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	limit = clampPage(limit)
	items, err := s.store.ListSessions(ctx, store.SessionFilter{
		PlayerID: playerID,
		GameType: q.GameType,
		Status:   q.Status,
		From:     q.From,
		To:       q.To,
	}, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]SessionItem, 0, len(items))
	for _, it := range items {
		item := SessionItem{
			ID:            it.ID,
			GameType:      string(it.GameType),
			GameName:      it.GameName,
			Stakes:        it.Stakes,
			Status:        string(it.Status),
			BuyInCents:    it.BuyInCents,
			CashoutCents:  it.CashoutCents,
			ActiveSeconds: it.PriorActiveSeconds,
			RebuyCount:    it.RebuyCount,
			StartedAt:     it.StartedAt,
			CompletedAt:   it.CompletedAt,
			CreatedAt:     it.CreatedAt,
		}
		if it.CashoutCents != nil {
			profit := *it.CashoutCents - it.BuyInCents
			item.ProfitCents = &profit
		}
		out = append(out, item)
	}
	return &SessionsResponse{Items: out, Limit: limit, Offset: offset}, nil
}

// PlayerStats is the bankroll summary: totals across all game types plus a
// per-type split. The hourly rate only counts completed sessions' profit
// against all recorded active seconds.
func (s *Service) PlayerStats(ctx context.Context, playerID string) (*StatsResponse, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	rows, err := s.store.PlayerStats(ctx, playerID)
	if err != nil {
		return nil, err
	}
	resp := &StatsResponse{ByGameType: make([]StatsRow, 0, len(rows))}
	for _, r := range rows {
		resp.Sessions += r.Sessions
		resp.CompletedSessions += r.CompletedSessions
		resp.ProfitCents += r.ProfitCents
		resp.ActiveSeconds += r.ActiveSeconds
		resp.ByGameType = append(resp.ByGameType, StatsRow{
			GameType:          r.GameType,
			Sessions:          r.Sessions,
			CompletedSessions: r.CompletedSessions,
			ProfitCents:       r.ProfitCents,
			ActiveSeconds:     r.ActiveSeconds,
		})
	}
	if resp.ActiveSeconds > 0 {
		resp.HourlyRateCents = resp.ProfitCents * 3600 / resp.ActiveSeconds
	}
	return resp, nil
}

// ListIncomingStakes lists contracts where the caller is the backing party.
func (s *Service) ListIncomingStakes(ctx context.Context, stakerUserID string, limit, offset int) (*IncomingStakesResponse, error) {
	if stakerUserID == "" {
		return nil, ErrInvalidRequest
	}
	limit = clampPage(limit)
	items, err := s.store.ListStakesForStaker(ctx, stakerUserID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]IncomingStakeItem, 0, len(items))
	for _, it := range items {
		out = append(out, IncomingStakeItem{
			ID:              it.ID,
			SessionID:       it.SessionID,
			PlayerID:        it.PlayerID,
			Percentage:      it.Percentage,
			Markup:          it.Markup,
			BuyInCents:      it.BuyInCents,
			CashoutCents:    it.CashoutCents,
			SettlementCents: it.SettlementCents,
			Tournament:      it.Tournament,
			Status:          string(it.Status),
			ProposedAt:      it.ProposedAt,
		})
	}
	return &IncomingStakesResponse{Items: out, Limit: limit, Offset: offset}, nil
}

func clampPage(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
