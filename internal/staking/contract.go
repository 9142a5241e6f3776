package staking

import "time"

type Status string

const (
	StatusProposed           Status = "proposed"
	StatusAwaitingSettlement Status = "awaiting_settlement"
	StatusSettled            Status = "settled"
)

type EventType string

const (
	EventProposed     EventType = "proposed"
	EventAccepted     EventType = "accepted"
	EventTermsUpdated EventType = "terms_updated"
	EventRecomputed   EventType = "recomputed"
	EventSettled      EventType = "settled"
	EventReopened     EventType = "reopened"
)

// Event is one audit record in a contract's history. Reopening a settled
// contract is only ever done through an event-producing operation, so a
// reconciled record can't silently change.
type Event struct {
	ID        string         `json:"id"`
	StakeID   string         `json:"stake_id"`
	Type      EventType      `json:"type"`
	ActorID   string         `json:"actor_id,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Contract is one staking agreement on one session. BuyInCents and
// CashoutCents are the session's facts as captured at the last recompute;
// SettlementCents is always derived from them, never hand-edited.
type Contract struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	PlayerID  string    `json:"player_id"`
	Staker    StakerRef `json:"staker"`

	Percentage float64 `json:"percentage"`
	Markup     float64 `json:"markup"`

	BuyInCents      int64 `json:"buy_in_cents"`
	CashoutCents    int64 `json:"cashout_cents"`
	SettlementCents int64 `json:"settlement_cents"`

	Tournament bool      `json:"tournament"`
	Status     Status    `json:"status"`
	ProposedAt time.Time `json:"proposed_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewContract validates terms and computes the initial settlement. App-user
// stakers start at proposed; manual stakers have no counterparty account to
// confirm the proposal, so they enter at awaiting_settlement directly.
func NewContract(id, sessionID, playerID string, staker StakerRef, percentage, markup float64, buyInCents, cashoutCents int64, tournament bool, now time.Time) (*Contract, error) {
	if err := validateTerms(percentage, markup); err != nil {
		return nil, err
	}
	if err := staker.Validate(); err != nil {
		return nil, err
	}
	status := StatusProposed
	if staker.Kind == StakerManual {
		status = StatusAwaitingSettlement
	}
	return &Contract{
		ID:              id,
		SessionID:       sessionID,
		PlayerID:        playerID,
		Staker:          staker,
		Percentage:      percentage,
		Markup:          markup,
		BuyInCents:      buyInCents,
		CashoutCents:    cashoutCents,
		SettlementCents: SettlementCents(buyInCents, cashoutCents, percentage, markup),
		Tournament:      tournament,
		Status:          status,
		ProposedAt:      now,
		UpdatedAt:       now,
	}, nil
}

// Recompute refreshes the captured facts and the settlement. Settled
// contracts are frozen; callers must Reopen first.
func (c *Contract) Recompute(buyInCents, cashoutCents int64, now time.Time) error {
	if c.Status == StatusSettled {
		return ErrAlreadySettled
	}
	c.BuyInCents = buyInCents
	c.CashoutCents = cashoutCents
	c.SettlementCents = SettlementCents(buyInCents, cashoutCents, c.Percentage, c.Markup)
	c.UpdatedAt = now
	return nil
}

// UpdateTerms replaces percentage and markup and recomputes the settlement
// against the captured facts.
func (c *Contract) UpdateTerms(percentage, markup float64, now time.Time) error {
	if c.Status == StatusSettled {
		return ErrAlreadySettled
	}
	if err := validateTerms(percentage, markup); err != nil {
		return err
	}
	c.Percentage = percentage
	c.Markup = markup
	c.SettlementCents = SettlementCents(c.BuyInCents, c.CashoutCents, percentage, markup)
	c.UpdatedAt = now
	return nil
}

// Accept is the app-user staker confirming the proposal.
func (c *Contract) Accept(now time.Time) error {
	if c.Staker.Kind != StakerAppUser || c.Status != StatusProposed {
		return ErrInvalidTransition
	}
	c.Status = StatusAwaitingSettlement
	c.UpdatedAt = now
	return nil
}

// MarkSettled closes the contract once money has changed hands. There is no
// automatic settlement path.
func (c *Contract) MarkSettled(now time.Time) error {
	if c.Status != StatusAwaitingSettlement {
		return ErrInvalidTransition
	}
	c.Status = StatusSettled
	c.UpdatedAt = now
	return nil
}

// Reopen is the explicit path back out of settled.
func (c *Contract) Reopen(now time.Time) error {
	if c.Status != StatusSettled {
		return ErrInvalidTransition
	}
	c.Status = StatusAwaitingSettlement
	c.UpdatedAt = now
	return nil
}

// Unresolved reports whether the contract still counts against the
// one-open-contract-per-staker rule.
func (c *Contract) Unresolved() bool {
	return c.Status != StatusSettled
}

func validateTerms(percentage, markup float64) error {
	if percentage <= 0 || percentage > 1 {
		return ErrInvalidPercentage
	}
	if markup < 1.0 {
		return ErrInvalidMarkup
	}
	return nil
}
