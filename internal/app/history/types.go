package history

import "time"

type SessionsResponse struct {
	Items  []SessionItem `json:"items"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type SessionItem struct {
	ID           string     `json:"id"`
	GameType     string     `json:"game_type"`
	GameName     string     `json:"game_name"`
	Stakes       string     `json:"stakes,omitempty"`
	Status       string     `json:"status"`
	BuyInCents   int64      `json:"buy_in_cents"`
	CashoutCents *int64     `json:"cashout_cents,omitempty"`
	// ProfitCents is present only once the session is completed; live
	// sessions are read through the tracker, which knows the chip log.
	ProfitCents   *int64     `json:"profit_cents,omitempty"`
	ActiveSeconds int64      `json:"active_seconds"`
	RebuyCount    int        `json:"rebuy_count"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type StatsResponse struct {
	Sessions          int        `json:"sessions"`
	CompletedSessions int        `json:"completed_sessions"`
	ProfitCents       int64      `json:"profit_cents"`
	ActiveSeconds     int64      `json:"active_seconds"`
	HourlyRateCents   int64      `json:"hourly_rate_cents"`
	ByGameType        []StatsRow `json:"by_game_type"`
}

type StatsRow struct {
	GameType          string `json:"game_type"`
	Sessions          int    `json:"sessions"`
	CompletedSessions int    `json:"completed_sessions"`
	ProfitCents       int64  `json:"profit_cents"`
	ActiveSeconds     int64  `json:"active_seconds"`
}

type IncomingStakesResponse struct {
	Items  []IncomingStakeItem `json:"items"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type IncomingStakeItem struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	PlayerID        string    `json:"player_id"`
	Percentage      float64   `json:"percentage"`
	Markup          float64   `json:"markup"`
	BuyInCents      int64     `json:"buy_in_cents"`
	CashoutCents    int64     `json:"cashout_cents"`
	SettlementCents int64     `json:"settlement_cents"`
	Tournament      bool      `json:"tournament"`
	Status          string    `json:"status"`
	ProposedAt      time.Time `json:"proposed_at"`
}
