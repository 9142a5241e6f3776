package session

import "time"

type GameType string

const (
	GameCash       GameType = "cash"
	GameTournament GameType = "tournament"
)

type Status string

const (
	StatusSetup     Status = "setup"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusEnding    Status = "ending"
	StatusCompleted Status = "completed"
)

// Session carries the financial facts of one playing session. Profit is
// always derived from buy-in and cashout, never stored, so buy-in and
// cashout corrections can never drift apart from a stale profit figure.
type Session struct {
	ID       string   `json:"id"`
	PlayerID string   `json:"player_id"`
	GameType GameType `json:"game_type"`
	GameName string   `json:"game_name"`
	Stakes   string   `json:"stakes,omitempty"`
	Status   Status   `json:"status"`

	BuyInCents int64 `json:"buy_in_cents"`
	// BaseBuyInCents and RebuyCount are display conveniences for tournament
	// views. BuyInCents is the authoritative cumulative figure and is the
	// only one that feeds profit and settlement.
	BaseBuyInCents int64  `json:"base_buy_in_cents"`
	RebuyCount     int    `json:"rebuy_count"`
	CashoutCents   *int64 `json:"cashout_cents,omitempty"`

	PriorActiveSeconds int64      `json:"prior_active_seconds"`
	LastActiveAt       *time.Time `json:"last_active_at,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Start moves setup → active. A session cannot start without a selected
// game and a positive buy-in.
func (s *Session) Start(now time.Time) error {
	if s.Status != StatusSetup {
		return ErrInvalidTransition
	}
	if s.GameName == "" {
		return ErrInvalidTransition
	}
	if s.BuyInCents <= 0 {
		return ErrInvalidAmount
	}
	if s.BaseBuyInCents == 0 {
		s.BaseBuyInCents = s.BuyInCents
	}
	s.Status = StatusActive
	s.StartedAt = &now
	s.LastActiveAt = &now
	s.UpdatedAt = now
	return nil
}

func (s *Session) Pause(now time.Time) error {
	if s.Status != StatusActive {
		return ErrInvalidTransition
	}
	s.foldClock(now)
	s.Status = StatusPaused
	s.UpdatedAt = now
	return nil
}

func (s *Session) Resume(now time.Time) error {
	if s.Status != StatusPaused {
		return ErrInvalidTransition
	}
	s.Status = StatusActive
	s.LastActiveAt = &now
	s.UpdatedAt = now
	return nil
}

// BeginEnd parks the session in ending while the player counts their stack.
func (s *Session) BeginEnd(now time.Time) error {
	if s.Status != StatusActive && s.Status != StatusPaused {
		return ErrInvalidTransition
	}
	s.foldClock(now)
	s.Status = StatusEnding
	s.UpdatedAt = now
	return nil
}

// Finalize records the cashout and completes the session. Allowed from
// active, paused, or ending; completed sessions are edited through
// EditBuyIn/EditCashout, never re-finalized.
func (s *Session) Finalize(cashoutCents int64, now time.Time) error {
	switch s.Status {
	case StatusActive, StatusPaused, StatusEnding:
	default:
		return ErrInvalidTransition
	}
	if cashoutCents < 0 {
		return ErrInvalidAmount
	}
	s.foldClock(now)
	s.CashoutCents = &cashoutCents
	s.Status = StatusCompleted
	s.CompletedAt = &now
	s.UpdatedAt = now
	return nil
}

// ApplyRebuy raises the cumulative buy-in and synthesizes a chip update at
// prior stack + amount, so stack and buy-in move together and the displayed
// profit is unchanged by the rebuy itself.
func (s *Session) ApplyRebuy(log *Log, id string, amountCents int64, now time.Time) (*ChipUpdate, error) {
	if s.Status != StatusActive && s.Status != StatusPaused {
		return nil, ErrInvalidTransition
	}
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	stack, err := s.CurrentStack(log)
	if err != nil {
		return nil, err
	}
	upd := ChipUpdate{
		ID:          id,
		SessionID:   s.ID,
		AmountCents: stack + amountCents,
		Kind:        UpdateRebuy,
		CreatedAt:   now,
	}
	if err := log.Append(upd); err != nil {
		return nil, err
	}
	s.BuyInCents += amountCents
	s.RebuyCount++
	s.UpdatedAt = now
	return &upd, nil
}

// CurrentStack is the last chip update's amount. With no updates yet the
// buy-in counts as the first implicit stack value.
func (s *Session) CurrentStack(log *Log) (int64, error) {
	if s.Status == StatusSetup {
		return 0, ErrUninitialized
	}
	if last := log.Last(); last != nil {
		return last.AmountCents, nil
	}
	return s.BuyInCents, nil
}

// CurrentProfit is stack − buy-in while live and cashout − buy-in once
// completed, always against the current cumulative buy-in.
func (s *Session) CurrentProfit(log *Log) (int64, error) {
	if s.Status == StatusCompleted && s.CashoutCents != nil {
		return *s.CashoutCents - s.BuyInCents, nil
	}
	stack, err := s.CurrentStack(log)
	if err != nil {
		return 0, err
	}
	return stack - s.BuyInCents, nil
}

// ElapsedActive sums the active spans. The clock is derived from stored
// timestamps on read; nothing ticks in the background, and paused gaps
// never count.
func (s *Session) ElapsedActive(now time.Time) int64 {
	elapsed := s.PriorActiveSeconds
	if s.Status == StatusActive && s.LastActiveAt != nil {
		if d := int64(now.Sub(*s.LastActiveAt).Seconds()); d > 0 {
			elapsed += d
		}
	}
	return elapsed
}

// EditBuyIn corrects the cumulative buy-in on a started session.
func (s *Session) EditBuyIn(amountCents int64, now time.Time) error {
	if s.Status == StatusSetup {
		return ErrInvalidTransition
	}
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	s.BuyInCents = amountCents
	s.UpdatedAt = now
	return nil
}

// EditCashout amends the recorded cashout of a completed session.
func (s *Session) EditCashout(amountCents int64, now time.Time) error {
	if s.Status != StatusCompleted {
		return ErrInvalidTransition
	}
	if amountCents < 0 {
		return ErrInvalidAmount
	}
	s.CashoutCents = &amountCents
	s.UpdatedAt = now
	return nil
}

func (s *Session) foldClock(now time.Time) {
	if s.Status == StatusActive && s.LastActiveAt != nil {
		if d := int64(now.Sub(*s.LastActiveAt).Seconds()); d > 0 {
			s.PriorActiveSeconds += d
		}
	}
	s.LastActiveAt = nil
}
