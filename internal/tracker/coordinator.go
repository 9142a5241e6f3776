package tracker

import (
	"context"
	"sync"
	"time"

	"grindbook/internal/identity"
	"grindbook/internal/session"
	"grindbook/internal/staking"
	"grindbook/internal/store"
)

// Coordinator owns every mutation of sessions and stakes. Operations on the
// same session are serialized through a per-session mutex so a rebuy and a
// finalize can never interleave into an inconsistent profit snapshot.
type Coordinator struct {
	store    Store
	resolver identity.Resolver

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	nowFn func() time.Time
	newID func() string
}

func New(st Store, resolver identity.Resolver) *Coordinator {
	return &Coordinator{
		store:    st,
		resolver: resolver,
		locks:    map[string]*sync.Mutex{},
		nowFn:    time.Now,
		newID:    store.NewID,
	}
}

// SetNowFunc overrides the clock, for tests.
func (c *Coordinator) SetNowFunc(fn func() time.Time) { c.nowFn = fn }

// SetIDFunc overrides ID generation, for tests.
func (c *Coordinator) SetIDFunc(fn func() string) { c.newID = fn }

// SessionView is a session plus its derived figures at read time.
type SessionView struct {
	session.Session
	CurrentStackCents    int64 `json:"current_stack_cents"`
	ProfitCents          int64 `json:"profit_cents"`
	ElapsedActiveSeconds int64 `json:"elapsed_active_seconds"`
}

type CreateSessionParams struct {
	GameType   session.GameType
	GameName   string
	Stakes     string
	BuyInCents int64
}

func (c *Coordinator) CreateSession(ctx context.Context, playerID string, p CreateSessionParams) (*SessionView, error) {
	if p.GameType != session.GameCash && p.GameType != session.GameTournament {
		return nil, ErrInvalidRequest
	}
	if p.GameName == "" {
		return nil, ErrInvalidRequest
	}
	if p.BuyInCents <= 0 {
		return nil, session.ErrInvalidAmount
	}
	now := c.nowFn()
	s := &session.Session{
		ID:             c.newID(),
		PlayerID:       playerID,
		GameType:       p.GameType,
		GameName:       p.GameName,
		Stakes:         p.Stakes,
		Status:         session.StatusSetup,
		BuyInCents:     p.BuyInCents,
		BaseBuyInCents: p.BuyInCents,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := c.store.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	return c.view(s, session.NewLog(nil), now), nil
}

func (c *Coordinator) Start(ctx context.Context, playerID, sessionID string) (*SessionView, error) {
	return c.mutateFinancials(ctx, playerID, sessionID, func(s *session.Session, _ *session.Log, now time.Time) (*session.ChipUpdate, error) {
		return nil, s.Start(now)
	})
}

func (c *Coordinator) Pause(ctx context.Context, playerID, sessionID string) (*SessionView, error) {
	return c.mutatePlain(ctx, playerID, sessionID, func(s *session.Session, now time.Time) error {
		return s.Pause(now)
	})
}

func (c *Coordinator) Resume(ctx context.Context, playerID, sessionID string) (*SessionView, error) {
	return c.mutatePlain(ctx, playerID, sessionID, func(s *session.Session, now time.Time) error {
		return s.Resume(now)
	})
}

func (c *Coordinator) BeginEnd(ctx context.Context, playerID, sessionID string) (*SessionView, error) {
	return c.mutatePlain(ctx, playerID, sessionID, func(s *session.Session, now time.Time) error {
		return s.BeginEnd(now)
	})
}

// AppendChipUpdate records an absolute stack snapshot. The new stack is the
// provisional cashout for live settlement figures, so open contracts are
// recomputed in the same transaction.
func (c *Coordinator) AppendChipUpdate(ctx context.Context, playerID, sessionID string, amountCents int64, note string) (*SessionView, error) {
	return c.mutateFinancials(ctx, playerID, sessionID, func(s *session.Session, log *session.Log, now time.Time) (*session.ChipUpdate, error) {
		switch s.Status {
		case session.StatusActive, session.StatusPaused, session.StatusEnding:
		default:
			return nil, session.ErrInvalidTransition
		}
		upd := session.ChipUpdate{
			ID:          c.newID(),
			SessionID:   s.ID,
			AmountCents: amountCents,
			Note:        note,
			Kind:        session.UpdateManual,
			CreatedAt:   now,
		}
		if err := log.Append(upd); err != nil {
			return nil, err
		}
		s.UpdatedAt = now
		return &upd, nil
	})
}

// AdjustChipStack is the quick +/- convenience: it turns a signed delta
// into an absolute snapshot against the current stack.
func (c *Coordinator) AdjustChipStack(ctx context.Context, playerID, sessionID string, deltaCents int64, note string) (*SessionView, error) {
	return c.mutateFinancials(ctx, playerID, sessionID, func(s *session.Session, log *session.Log, now time.Time) (*session.ChipUpdate, error) {
		switch s.Status {
		case session.StatusActive, session.StatusPaused, session.StatusEnding:
		default:
			return nil, session.ErrInvalidTransition
		}
		stack, err := s.CurrentStack(log)
		if err != nil {
			return nil, err
		}
		abs := stack + deltaCents
		if abs < 0 {
			return nil, session.ErrInvalidAmount
		}
		upd := session.ChipUpdate{
			ID:          c.newID(),
			SessionID:   s.ID,
			AmountCents: abs,
			Note:        note,
			Kind:        session.UpdateAdjust,
			CreatedAt:   now,
		}
		if err := log.Append(upd); err != nil {
			return nil, err
		}
		s.UpdatedAt = now
		return &upd, nil
	})
}

func (c *Coordinator) AppendRebuy(ctx context.Context, playerID, sessionID string, amountCents int64) (*SessionView, error) {
	return c.mutateFinancials(ctx, playerID, sessionID, func(s *session.Session, log *session.Log, now time.Time) (*session.ChipUpdate, error) {
		return s.ApplyRebuy(log, c.newID(), amountCents, now)
	})
}

func (c *Coordinator) Finalize(ctx context.Context, playerID, sessionID string, cashoutCents int64) (*SessionView, error) {
	return c.mutateFinancials(ctx, playerID, sessionID, func(s *session.Session, _ *session.Log, now time.Time) (*session.ChipUpdate, error) {
		return nil, s.Finalize(cashoutCents, now)
	})
}

func (c *Coordinator) EditBuyIn(ctx context.Context, playerID, sessionID string, amountCents int64) (*SessionView, error) {
	return c.mutateFinancials(ctx, playerID, sessionID, func(s *session.Session, _ *session.Log, now time.Time) (*session.ChipUpdate, error) {
		return nil, s.EditBuyIn(amountCents, now)
	})
}

func (c *Coordinator) EditCashout(ctx context.Context, playerID, sessionID string, amountCents int64) (*SessionView, error) {
	return c.mutateFinancials(ctx, playerID, sessionID, func(s *session.Session, _ *session.Log, now time.Time) (*session.ChipUpdate, error) {
		return nil, s.EditCashout(amountCents, now)
	})
}

func (c *Coordinator) Get(ctx context.Context, playerID, sessionID string) (*SessionView, error) {
	s, err := c.loadOwned(ctx, playerID, sessionID)
	if err != nil {
		return nil, err
	}
	log, err := c.loadLog(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c.view(s, log, c.nowFn()), nil
}

func (c *Coordinator) ListChipUpdates(ctx context.Context, playerID, sessionID string) ([]session.ChipUpdate, error) {
	if _, err := c.loadOwned(ctx, playerID, sessionID); err != nil {
		return nil, err
	}
	return c.store.ListChipUpdates(ctx, sessionID)
}

// mutatePlain runs a domain mutation that leaves the financial facts alone.
func (c *Coordinator) mutatePlain(ctx context.Context, playerID, sessionID string, op func(*session.Session, time.Time) error) (*SessionView, error) {
	mu := c.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.loadOwned(ctx, playerID, sessionID)
	if err != nil {
		return nil, err
	}
	now := c.nowFn()
	if err := op(s, now); err != nil {
		return nil, err
	}
	if err := c.store.UpdateSession(ctx, s); err != nil {
		return nil, err
	}
	log, err := c.loadLog(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c.view(s, log, now), nil
}

// mutateFinancials runs a domain mutation that may change buy-in, cashout,
// or the chip log, then recomputes every open contract against the new
// facts and persists everything atomically.
func (c *Coordinator) mutateFinancials(ctx context.Context, playerID, sessionID string, op func(*session.Session, *session.Log, time.Time) (*session.ChipUpdate, error)) (*SessionView, error) {
	mu := c.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.loadOwned(ctx, playerID, sessionID)
	if err != nil {
		return nil, err
	}
	log, err := c.loadLog(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := c.nowFn()
	upd, err := op(s, log, now)
	if err != nil {
		return nil, err
	}
	changed, err := c.recomputeOpen(ctx, s, log, now)
	if err != nil {
		return nil, err
	}
	if err := c.store.SaveFinancials(ctx, s, upd, changed); err != nil {
		return nil, err
	}
	return c.view(s, log, now), nil
}

// recomputeOpen refreshes every non-settled contract against the session's
// current facts. Settled contracts stay frozen until explicitly reopened.
func (c *Coordinator) recomputeOpen(ctx context.Context, s *session.Session, log *session.Log, now time.Time) ([]*staking.Contract, error) {
	contracts, err := c.store.ListStakesForSession(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return nil, nil
	}
	buyIn, cashout := provisionalFacts(s, log)
	changed := make([]*staking.Contract, 0, len(contracts))
	for _, ct := range contracts {
		if !ct.Unresolved() {
			continue
		}
		if err := ct.Recompute(buyIn, cashout, now); err != nil {
			return nil, err
		}
		changed = append(changed, ct)
	}
	return changed, nil
}

// provisionalFacts is the (buyIn, cashout) pair a contract settles against.
// Completed sessions use the recorded cashout; live sessions use the
// current stack, which is the basis for cashout at session end.
func provisionalFacts(s *session.Session, log *session.Log) (int64, int64) {
	if s.Status == session.StatusCompleted && s.CashoutCents != nil {
		return s.BuyInCents, *s.CashoutCents
	}
	stack, err := s.CurrentStack(log)
	if err != nil {
		// setup: no play yet, treat stack as the buy-in
		return s.BuyInCents, s.BuyInCents
	}
	return s.BuyInCents, stack
}

func (c *Coordinator) loadOwned(ctx context.Context, playerID, sessionID string) (*session.Session, error) {
	s, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.PlayerID != playerID {
		return nil, ErrForbidden
	}
	return s, nil
}

func (c *Coordinator) loadLog(ctx context.Context, sessionID string) (*session.Log, error) {
	updates, err := c.store.ListChipUpdates(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.NewLog(updates), nil
}

func (c *Coordinator) view(s *session.Session, log *session.Log, now time.Time) *SessionView {
	v := &SessionView{Session: *s, ElapsedActiveSeconds: s.ElapsedActive(now)}
	if stack, err := s.CurrentStack(log); err == nil {
		v.CurrentStackCents = stack
	}
	if profit, err := s.CurrentProfit(log); err == nil {
		v.ProfitCents = profit
	}
	return v
}

func (c *Coordinator) sessionLock(id string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.locks[id]
	if !ok {
		m = &sync.Mutex{}
		c.locks[id] = m
	}
	return m
}
