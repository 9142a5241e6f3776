package tracker

import (
	"context"
	"strings"
	"time"

	"grindbook/internal/identity"
	"grindbook/internal/session"
	"grindbook/internal/staking"

	"github.com/rs/zerolog/log"
)

// StakeView is a contract plus the resolved staker display name.
type StakeView struct {
	staking.Contract
	StakerDisplayName string `json:"staker_display_name"`
}

type AddStakeParams struct {
	SessionID      string
	StakerUserID   string
	ManualStakerID string
	Percentage     float64
	Markup         float64
}

// AddStake attaches a new contract to the caller's session. The same staker
// cannot hold two unresolved contracts on one session.
func (c *Coordinator) AddStake(ctx context.Context, callerID string, p AddStakeParams) (*StakeView, error) {
	mu := c.sessionLock(p.SessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.loadOwned(ctx, callerID, p.SessionID)
	if err != nil {
		return nil, err
	}

	var ref staking.StakerRef
	switch {
	case p.StakerUserID != "" && p.ManualStakerID != "":
		return nil, staking.ErrMissingStaker
	case p.ManualStakerID != "":
		m, err := c.store.GetManualStaker(ctx, p.ManualStakerID)
		if err != nil {
			return nil, err
		}
		if m.OwnerID != callerID {
			return nil, ErrForbidden
		}
		ref = staking.ManualRef(m.ID, m.DisplayName)
	case p.StakerUserID != "":
		ref = staking.AppUserRef(p.StakerUserID)
	default:
		return nil, staking.ErrMissingStaker
	}

	existing, err := c.store.ListStakesForSession(ctx, p.SessionID)
	if err != nil {
		return nil, err
	}
	for _, ct := range existing {
		if ct.Unresolved() && ct.Staker.Key() == ref.Key() {
			return nil, ErrDuplicateStake
		}
	}

	log_, err := c.loadLog(ctx, p.SessionID)
	if err != nil {
		return nil, err
	}
	buyIn, cashout := provisionalFacts(s, log_)
	now := c.nowFn()
	ct, err := staking.NewContract(c.newID(), s.ID, s.PlayerID, ref, p.Percentage, p.Markup, buyIn, cashout, s.GameType == session.GameTournament, now)
	if err != nil {
		return nil, err
	}
	ev := staking.Event{
		ID:      c.newID(),
		StakeID: ct.ID,
		Type:    staking.EventProposed,
		ActorID: callerID,
		Detail: map[string]any{
			"percentage": ct.Percentage,
			"markup":     ct.Markup,
		},
		CreatedAt: now,
	}
	if err := c.store.CreateStake(ctx, ct, ev); err != nil {
		return nil, err
	}
	return c.stakeView(ctx, ct), nil
}

// AcceptStake is the app-user staker confirming a proposed contract.
func (c *Coordinator) AcceptStake(ctx context.Context, callerID, stakeID string) (*StakeView, error) {
	return c.mutateStake(ctx, stakeID, func(ct *staking.Contract, now time.Time) (*staking.Event, error) {
		if ct.Staker.Kind != staking.StakerAppUser || ct.Staker.UserID != callerID {
			return nil, ErrForbidden
		}
		if err := ct.Accept(now); err != nil {
			return nil, err
		}
		return &staking.Event{Type: staking.EventAccepted, ActorID: callerID}, nil
	})
}

// UpdateStakeTerms changes percentage and markup on a non-settled contract.
func (c *Coordinator) UpdateStakeTerms(ctx context.Context, callerID, stakeID string, percentage, markup float64) (*StakeView, error) {
	return c.mutateStake(ctx, stakeID, func(ct *staking.Contract, now time.Time) (*staking.Event, error) {
		if ct.PlayerID != callerID {
			return nil, ErrForbidden
		}
		if err := ct.UpdateTerms(percentage, markup, now); err != nil {
			return nil, err
		}
		return &staking.Event{
			Type:    staking.EventTermsUpdated,
			ActorID: callerID,
			Detail: map[string]any{
				"percentage": percentage,
				"markup":     markup,
			},
		}, nil
	})
}

// MarkStakeSettled closes a contract once the parties have reconciled.
// Either party may mark it.
func (c *Coordinator) MarkStakeSettled(ctx context.Context, callerID, stakeID string) (*StakeView, error) {
	return c.mutateStake(ctx, stakeID, func(ct *staking.Contract, now time.Time) (*staking.Event, error) {
		if !isParty(ct, callerID) {
			return nil, ErrForbidden
		}
		if err := ct.MarkSettled(now); err != nil {
			return nil, err
		}
		return &staking.Event{
			Type:    staking.EventSettled,
			ActorID: callerID,
			Detail:  map[string]any{"settlement_cents": ct.SettlementCents},
		}, nil
	})
}

// ReopenStake is the explicit, audited path out of settled. The contract is
// immediately recomputed against the session's current facts.
func (c *Coordinator) ReopenStake(ctx context.Context, callerID, stakeID string) (*StakeView, error) {
	view, err := c.mutateStake(ctx, stakeID, func(ct *staking.Contract, now time.Time) (*staking.Event, error) {
		if !isParty(ct, callerID) {
			return nil, ErrForbidden
		}
		before := ct.SettlementCents
		if err := ct.Reopen(now); err != nil {
			return nil, err
		}
		s, err := c.store.GetSession(ctx, ct.SessionID)
		if err != nil {
			return nil, err
		}
		log_, err := c.loadLog(ctx, ct.SessionID)
		if err != nil {
			return nil, err
		}
		buyIn, cashout := provisionalFacts(s, log_)
		if err := ct.Recompute(buyIn, cashout, now); err != nil {
			return nil, err
		}
		log.Info().
			Str("stake_id", ct.ID).
			Str("session_id", ct.SessionID).
			Str("actor_id", callerID).
			Int64("settlement_before", before).
			Int64("settlement_after", ct.SettlementCents).
			Msg("stake reopened")
		return &staking.Event{
			Type:    staking.EventReopened,
			ActorID: callerID,
			Detail: map[string]any{
				"settlement_before_cents": before,
				"settlement_after_cents":  ct.SettlementCents,
			},
		}, nil
	})
	return view, err
}

// ListSessionStakes lists a session's contracts with resolved staker names.
func (c *Coordinator) ListSessionStakes(ctx context.Context, callerID, sessionID string) ([]*StakeView, error) {
	if _, err := c.loadOwned(ctx, callerID, sessionID); err != nil {
		return nil, err
	}
	contracts, err := c.store.ListStakesForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]*StakeView, 0, len(contracts))
	for _, ct := range contracts {
		out = append(out, c.stakeView(ctx, ct))
	}
	return out, nil
}

func (c *Coordinator) GetStake(ctx context.Context, callerID, stakeID string) (*StakeView, error) {
	ct, err := c.store.GetStake(ctx, stakeID)
	if err != nil {
		return nil, err
	}
	if !isParty(ct, callerID) {
		return nil, ErrForbidden
	}
	return c.stakeView(ctx, ct), nil
}

func (c *Coordinator) CreateManualStaker(ctx context.Context, callerID, displayName, contact string) (*staking.ManualStaker, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrInvalidRequest
	}
	m := &staking.ManualStaker{
		ID:          c.newID(),
		OwnerID:     callerID,
		DisplayName: displayName,
		Contact:     contact,
		CreatedAt:   c.nowFn(),
	}
	if err := c.store.CreateManualStaker(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Coordinator) GetManualStaker(ctx context.Context, callerID, id string) (*staking.ManualStaker, error) {
	m, err := c.store.GetManualStaker(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OwnerID != callerID {
		return nil, ErrForbidden
	}
	return m, nil
}

func (c *Coordinator) ListManualStakers(ctx context.Context, callerID string) ([]staking.ManualStaker, error) {
	return c.store.ListManualStakers(ctx, callerID)
}

// mutateStake serializes a stake mutation under its session's lock. The
// contract is re-read after the lock is held so two concurrent settles
// cannot both observe awaiting_settlement.
func (c *Coordinator) mutateStake(ctx context.Context, stakeID string, op func(*staking.Contract, time.Time) (*staking.Event, error)) (*StakeView, error) {
	ct, err := c.store.GetStake(ctx, stakeID)
	if err != nil {
		return nil, err
	}
	mu := c.sessionLock(ct.SessionID)
	mu.Lock()
	defer mu.Unlock()

	ct, err = c.store.GetStake(ctx, stakeID)
	if err != nil {
		return nil, err
	}
	now := c.nowFn()
	ev, err := op(ct, now)
	if err != nil {
		return nil, err
	}
	ev.ID = c.newID()
	ev.StakeID = ct.ID
	ev.CreatedAt = now
	if err := c.store.UpdateStake(ctx, ct, *ev); err != nil {
		return nil, err
	}
	return c.stakeView(ctx, ct), nil
}

func (c *Coordinator) stakeView(ctx context.Context, ct *staking.Contract) *StakeView {
	return &StakeView{Contract: *ct, StakerDisplayName: c.displayNameFor(ctx, ct)}
}

// displayNameFor never fails a stake read: unresolved app users show
// "Loading...", manual stakers fall back from the denormalized name to the
// profile to "Manual Staker".
func (c *Coordinator) displayNameFor(ctx context.Context, ct *staking.Contract) string {
	if ct.Staker.Kind == staking.StakerManual {
		if ct.Staker.Name != "" {
			return ct.Staker.Name
		}
		if m, err := c.store.GetManualStaker(ctx, ct.Staker.ManualID); err == nil && m.DisplayName != "" {
			return m.DisplayName
		}
		return identity.FallbackManual
	}
	if c.resolver != nil {
		if name, err := c.resolver.DisplayName(ctx, ct.Staker.UserID); err == nil {
			return name
		}
	}
	return identity.FallbackLoading
}

func isParty(ct *staking.Contract, callerID string) bool {
	if ct.PlayerID == callerID {
		return true
	}
	return ct.Staker.Kind == staking.StakerAppUser && ct.Staker.UserID == callerID
}
