package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"grindbook/internal/identity"
	"grindbook/internal/session"
	"grindbook/internal/testutil"
)

const playerID = "11111111-1111-1111-1111-111111111111"

type fixture struct {
	coord *Coordinator
	store *testutil.MemStore
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: testutil.NewMemStore(),
		now:   time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC),
	}
	f.coord = New(f.store, identity.StaticResolver{"staker-a": "Alice"})
	f.coord.SetNowFunc(func() time.Time { return f.now })
	n := 0
	f.coord.SetIDFunc(func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	})
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) startedSession(t *testing.T, buyIn int64) string {
	t.Helper()
	ctx := context.Background()
	v, err := f.coord.CreateSession(ctx, playerID, CreateSessionParams{
		GameType:   session.GameCash,
		GameName:   "NL Hold'em",
		Stakes:     "2/5",
		BuyInCents: buyIn,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := f.coord.Start(ctx, playerID, v.ID); err != nil {
		t.Fatalf("start session: %v", err)
	}
	return v.ID
}

func TestCreateSessionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.coord.CreateSession(ctx, playerID, CreateSessionParams{GameType: "omaha-ish", GameName: "X", BuyInCents: 100}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("bad game type: err = %v", err)
	}
	if _, err := f.coord.CreateSession(ctx, playerID, CreateSessionParams{GameType: session.GameCash, BuyInCents: 100}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("missing game name: err = %v", err)
	}
	if _, err := f.coord.CreateSession(ctx, playerID, CreateSessionParams{GameType: session.GameCash, GameName: "X"}); !errors.Is(err, session.ErrInvalidAmount) {
		t.Fatalf("zero buy-in: err = %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	f.advance(time.Minute)
	v, err := f.coord.AppendChipUpdate(ctx, playerID, id, 28000, "after two limped pots")
	if err != nil {
		t.Fatalf("chip update: %v", err)
	}
	if v.CurrentStackCents != 28000 || v.ProfitCents != -2000 {
		t.Fatalf("view = stack %d profit %d", v.CurrentStackCents, v.ProfitCents)
	}

	f.advance(time.Minute)
	v, err = f.coord.Finalize(ctx, playerID, id, 45000)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if v.Status != session.StatusCompleted || v.ProfitCents != 15000 {
		t.Fatalf("finalized view = %s profit %d", v.Status, v.ProfitCents)
	}
}

func TestRebuyKeepsProfitFlat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	f.advance(time.Minute)
	if _, err := f.coord.AppendChipUpdate(ctx, playerID, id, 12000, ""); err != nil {
		t.Fatalf("chip update: %v", err)
	}
	before, err := f.coord.Get(ctx, playerID, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	f.advance(time.Minute)
	v, err := f.coord.AppendRebuy(ctx, playerID, id, 10000)
	if err != nil {
		t.Fatalf("rebuy: %v", err)
	}
	if v.CurrentStackCents != 22000 {
		t.Fatalf("stack = %d, want 22000", v.CurrentStackCents)
	}
	if v.BuyInCents != 40000 {
		t.Fatalf("buy-in = %d, want 40000", v.BuyInCents)
	}
	if v.ProfitCents != before.ProfitCents {
		t.Fatalf("profit moved across rebuy: %d -> %d", before.ProfitCents, v.ProfitCents)
	}
}

func TestElapsedAcrossPauseResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	f.advance(100 * time.Second)
	if _, err := f.coord.Pause(ctx, playerID, id); err != nil {
		t.Fatalf("pause: %v", err)
	}
	f.advance(500 * time.Second)
	if _, err := f.coord.Resume(ctx, playerID, id); err != nil {
		t.Fatalf("resume: %v", err)
	}
	f.advance(50 * time.Second)
	v, err := f.coord.Get(ctx, playerID, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v.ElapsedActiveSeconds != 150 {
		t.Fatalf("elapsed = %d, want 150", v.ElapsedActiveSeconds)
	}
}

func TestAdjustChipStack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	f.advance(time.Minute)
	v, err := f.coord.AdjustChipStack(ctx, playerID, id, -4500, "paid for dinner off the stack")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if v.CurrentStackCents != 25500 {
		t.Fatalf("stack = %d, want 25500", v.CurrentStackCents)
	}
	if _, err := f.coord.AdjustChipStack(ctx, playerID, id, -999999, ""); !errors.Is(err, session.ErrInvalidAmount) {
		t.Fatalf("below zero adjust: err = %v", err)
	}
	updates, err := f.coord.ListChipUpdates(ctx, playerID, id)
	if err != nil {
		t.Fatalf("list updates: %v", err)
	}
	if len(updates) != 1 || updates[0].Kind != session.UpdateAdjust {
		t.Fatalf("updates = %+v", updates)
	}
}

func TestChipUpdateRequiresLiveSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.coord.CreateSession(ctx, playerID, CreateSessionParams{GameType: session.GameCash, GameName: "NL Hold'em", BuyInCents: 30000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.coord.AppendChipUpdate(ctx, playerID, v.ID, 100, ""); !errors.Is(err, session.ErrInvalidTransition) {
		t.Fatalf("update in setup: err = %v", err)
	}
}

func TestOwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)
	other := "22222222-2222-2222-2222-222222222222"
	if _, err := f.coord.Get(ctx, other, id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("get by other: err = %v", err)
	}
	if _, err := f.coord.Finalize(ctx, other, id, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("finalize by other: err = %v", err)
	}
}

func TestFailedSaveLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	f.store.FailSaveFinancials = errors.New("pg down")
	if _, err := f.coord.EditBuyIn(ctx, playerID, id, 50000); err == nil {
		t.Fatal("expected save failure")
	}
	v, err := f.coord.Get(ctx, playerID, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v.BuyInCents != 30000 {
		t.Fatalf("buy-in after failed edit = %d, want 30000", v.BuyInCents)
	}
}

func TestJanitorAutoPausesIdleSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	f.advance(45 * time.Minute)
	f.coord.sweepIdle(ctx, f.now, 30*time.Minute)

	v, err := f.coord.Get(ctx, playerID, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v.Status != session.StatusPaused {
		t.Fatalf("status = %s, want paused", v.Status)
	}
	// the idle gap still counted as active time up to the sweep
	if v.ElapsedActiveSeconds != 45*60 {
		t.Fatalf("elapsed = %d, want %d", v.ElapsedActiveSeconds, 45*60)
	}
}

func TestJanitorSkipsRecentlyTouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	f.advance(10 * time.Minute)
	if _, err := f.coord.AppendChipUpdate(ctx, playerID, id, 31000, ""); err != nil {
		t.Fatalf("chip update: %v", err)
	}
	f.advance(5 * time.Minute)
	f.coord.sweepIdle(ctx, f.now, 30*time.Minute)

	v, _ := f.coord.Get(ctx, playerID, id)
	if v.Status != session.StatusActive {
		t.Fatalf("status = %s, want active", v.Status)
	}
}
