package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"grindbook/internal/session"
	"grindbook/internal/staking"
	"grindbook/internal/store"
)

// MemStore is an in-memory tracker.Store for tests that should not need a
// database. Reads hand back copies so callers cannot mutate stored state
// without going through a save.
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]session.Session
	updates  map[string][]session.ChipUpdate
	stakes   map[string]staking.Contract
	stakeIDs map[string][]string // session id -> stake ids, insertion order
	events   map[string][]staking.Event
	manual   map[string]staking.ManualStaker

	// FailSaveFinancials makes the next SaveFinancials fail without
	// applying anything, to exercise the edit+recompute rollback contract.
	FailSaveFinancials error
}

func NewMemStore() *MemStore {
	return &MemStore{
		sessions: map[string]session.Session{},
		updates:  map[string][]session.ChipUpdate{},
		stakes:   map[string]staking.Contract{},
		stakeIDs: map[string][]string{},
		events:   map[string][]staking.Event{},
		manual:   map[string]staking.ManualStaker{},
	}
}

func (m *MemStore) CreateSession(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemStore) GetSession(_ context.Context, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := s
	return &out, nil
}

func (m *MemStore) UpdateSession(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return store.ErrNotFound
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemStore) ListChipUpdates(_ context.Context, sessionID string) ([]session.ChipUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.updates[sessionID]
	out := make([]session.ChipUpdate, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemStore) SaveFinancials(_ context.Context, s *session.Session, upd *session.ChipUpdate, contracts []*staking.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailSaveFinancials; err != nil {
		m.FailSaveFinancials = nil
		return err
	}
	if _, ok := m.sessions[s.ID]; !ok {
		return store.ErrNotFound
	}
	m.sessions[s.ID] = *s
	if upd != nil {
		m.updates[s.ID] = append(m.updates[s.ID], *upd)
	}
	for _, ct := range contracts {
		m.stakes[ct.ID] = *ct
		m.events[ct.ID] = append(m.events[ct.ID], staking.Event{
			ID:        ct.ID + "-recompute",
			StakeID:   ct.ID,
			Type:      staking.EventRecomputed,
			CreatedAt: ct.UpdatedAt,
		})
	}
	return nil
}

func (m *MemStore) CreateStake(_ context.Context, c *staking.Contract, ev staking.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stakes[c.ID] = *c
	m.stakeIDs[c.SessionID] = append(m.stakeIDs[c.SessionID], c.ID)
	m.events[c.ID] = append(m.events[c.ID], ev)
	return nil
}

func (m *MemStore) GetStake(_ context.Context, id string) (*staking.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.stakes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := c
	return &out, nil
}

func (m *MemStore) UpdateStake(_ context.Context, c *staking.Contract, ev staking.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stakes[c.ID]; !ok {
		return store.ErrNotFound
	}
	m.stakes[c.ID] = *c
	m.events[c.ID] = append(m.events[c.ID], ev)
	return nil
}

func (m *MemStore) ListStakesForSession(_ context.Context, sessionID string) ([]*staking.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.stakeIDs[sessionID]
	out := make([]*staking.Contract, 0, len(ids))
	for _, id := range ids {
		c := m.stakes[id]
		cc := c
		out = append(out, &cc)
	}
	return out, nil
}

func (m *MemStore) CreateManualStaker(_ context.Context, ms *staking.ManualStaker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manual[ms.ID] = *ms
	return nil
}

func (m *MemStore) GetManualStaker(_ context.Context, id string) (*staking.ManualStaker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.manual[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := ms
	return &out, nil
}

func (m *MemStore) ListManualStakers(_ context.Context, ownerID string) ([]staking.ManualStaker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []staking.ManualStaker{}
	for _, ms := range m.manual {
		if ms.OwnerID == ownerID {
			out = append(out, ms)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) ListIdleActiveSessions(_ context.Context, idleBefore time.Time) ([]*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*session.Session{}
	for _, s := range m.sessions {
		if s.Status == session.StatusActive && !s.UpdatedAt.After(idleBefore) {
			ss := s
			out = append(out, &ss)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// StakeEvents returns the audit history recorded for a stake.
func (m *MemStore) StakeEvents(stakeID string) []staking.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]staking.Event, len(m.events[stakeID]))
	copy(out, m.events[stakeID])
	return out
}
