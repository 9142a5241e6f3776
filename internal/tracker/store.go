package tracker

import (
	"context"
	"time"

	"grindbook/internal/session"
	"grindbook/internal/staking"
)

// Store is the persistence port the coordinator writes through. The pgx
// implementation lives in internal/store; tests use the in-memory store
// from internal/testutil.
type Store interface {
	CreateSession(ctx context.Context, s *session.Session) error
	GetSession(ctx context.Context, id string) (*session.Session, error)
	UpdateSession(ctx context.Context, s *session.Session) error
	ListChipUpdates(ctx context.Context, sessionID string) ([]session.ChipUpdate, error)

	// SaveFinancials persists a session's financial facts, an optional new
	// chip update, and every recomputed contract in one transaction. Either
	// all of it lands or none of it does; no contract may be left pointing
	// at facts the session row does not hold.
	SaveFinancials(ctx context.Context, s *session.Session, upd *session.ChipUpdate, contracts []*staking.Contract) error

	CreateStake(ctx context.Context, c *staking.Contract, ev staking.Event) error
	GetStake(ctx context.Context, id string) (*staking.Contract, error)
	UpdateStake(ctx context.Context, c *staking.Contract, ev staking.Event) error
	ListStakesForSession(ctx context.Context, sessionID string) ([]*staking.Contract, error)

	CreateManualStaker(ctx context.Context, m *staking.ManualStaker) error
	GetManualStaker(ctx context.Context, id string) (*staking.ManualStaker, error)
	ListManualStakers(ctx context.Context, ownerID string) ([]staking.ManualStaker, error)

	ListIdleActiveSessions(ctx context.Context, idleBefore time.Time) ([]*session.Session, error)
}
