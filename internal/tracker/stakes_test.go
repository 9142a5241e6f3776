package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"grindbook/internal/identity"
	"grindbook/internal/staking"
)

const stakerA = "staker-a"

// The §8 walkthrough: $300 buy-in, $100 rebuy, $600 cashout, staker A at
// 50%/1.0 and staker B at 20%/1.2; settle A, then amend the cashout to $500.
func TestStakingScenarioEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	a, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, StakerUserID: stakerA, Percentage: 0.5, Markup: 1.0})
	if err != nil {
		t.Fatalf("add stake A: %v", err)
	}
	dave, err := f.coord.CreateManualStaker(ctx, playerID, "Dave From Work", "dave@example.com")
	if err != nil {
		t.Fatalf("create manual staker: %v", err)
	}
	b, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, ManualStakerID: dave.ID, Percentage: 0.2, Markup: 1.2})
	if err != nil {
		t.Fatalf("add stake B: %v", err)
	}
	if a.Status != staking.StatusProposed {
		t.Fatalf("stake A status = %s, want proposed", a.Status)
	}
	if b.Status != staking.StatusAwaitingSettlement {
		t.Fatalf("stake B status = %s, want awaiting_settlement (off-app skips proposed)", b.Status)
	}

	f.advance(time.Minute)
	if _, err := f.coord.AppendRebuy(ctx, playerID, id, 10000); err != nil {
		t.Fatalf("rebuy: %v", err)
	}
	f.advance(time.Hour)
	if _, err := f.coord.Finalize(ctx, playerID, id, 60000); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	stakes, err := f.coord.ListSessionStakes(ctx, playerID, id)
	if err != nil {
		t.Fatalf("list stakes: %v", err)
	}
	if len(stakes) != 2 {
		t.Fatalf("stakes = %d, want 2", len(stakes))
	}
	byID := map[string]*StakeView{stakes[0].ID: stakes[0], stakes[1].ID: stakes[1]}
	if got := byID[a.ID].SettlementCents; got != -10000 {
		t.Fatalf("stake A settlement = %d, want -10000", got)
	}
	if got := byID[b.ID].SettlementCents; got != -4800 {
		t.Fatalf("stake B settlement = %d, want -4800", got)
	}
	if byID[a.ID].StakerDisplayName != "Alice" {
		t.Fatalf("stake A name = %q", byID[a.ID].StakerDisplayName)
	}
	if byID[b.ID].StakerDisplayName != "Dave From Work" {
		t.Fatalf("stake B name = %q", byID[b.ID].StakerDisplayName)
	}

	if _, err := f.coord.AcceptStake(ctx, stakerA, a.ID); err != nil {
		t.Fatalf("accept A: %v", err)
	}
	if _, err := f.coord.MarkStakeSettled(ctx, playerID, a.ID); err != nil {
		t.Fatalf("settle A: %v", err)
	}

	// amend the cashout: A stays frozen, B recomputes
	f.advance(time.Minute)
	if _, err := f.coord.EditCashout(ctx, playerID, id, 50000); err != nil {
		t.Fatalf("edit cashout: %v", err)
	}
	av, err := f.coord.GetStake(ctx, playerID, a.ID)
	if err != nil {
		t.Fatalf("get A: %v", err)
	}
	if av.SettlementCents != -10000 {
		t.Fatalf("settled stake A drifted to %d", av.SettlementCents)
	}
	bv, err := f.coord.GetStake(ctx, playerID, b.ID)
	if err != nil {
		t.Fatalf("get B: %v", err)
	}
	if bv.SettlementCents != -2400 {
		t.Fatalf("stake B = %d, want -2400", bv.SettlementCents)
	}

	// explicit reopen recomputes A against the amended facts
	if _, err := f.coord.ReopenStake(ctx, playerID, a.ID); err != nil {
		t.Fatalf("reopen A: %v", err)
	}
	av, _ = f.coord.GetStake(ctx, playerID, a.ID)
	if av.SettlementCents != -5000 {
		t.Fatalf("reopened stake A = %d, want -5000", av.SettlementCents)
	}
	types := []staking.EventType{}
	for _, ev := range f.store.StakeEvents(a.ID) {
		if ev.Type == staking.EventRecomputed {
			continue
		}
		types = append(types, ev.Type)
	}
	want := []staking.EventType{staking.EventProposed, staking.EventAccepted, staking.EventSettled, staking.EventReopened}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i, wt := range want {
		if types[i] != wt {
			t.Fatalf("event[%d] = %s, want %s (all: %v)", i, types[i], wt, types)
		}
	}
}

func TestAddStakeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	if _, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, Percentage: 0.5, Markup: 1.0}); !errors.Is(err, staking.ErrMissingStaker) {
		t.Fatalf("no staker: err = %v", err)
	}
	if _, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, StakerUserID: "u", ManualStakerID: "m", Percentage: 0.5, Markup: 1.0}); !errors.Is(err, staking.ErrMissingStaker) {
		t.Fatalf("both stakers: err = %v", err)
	}
	if _, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, StakerUserID: stakerA, Percentage: 1.5, Markup: 1.0}); !errors.Is(err, staking.ErrInvalidPercentage) {
		t.Fatalf("bad percentage: err = %v", err)
	}
	if _, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, StakerUserID: stakerA, Percentage: 0.5, Markup: 0.9}); !errors.Is(err, staking.ErrInvalidMarkup) {
		t.Fatalf("bad markup: err = %v", err)
	}
}

func TestDuplicateStakeRejectedWhileUnresolved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	first, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, StakerUserID: stakerA, Percentage: 0.3, Markup: 1.0})
	if err != nil {
		t.Fatalf("add stake: %v", err)
	}
	if _, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, StakerUserID: stakerA, Percentage: 0.2, Markup: 1.0}); !errors.Is(err, ErrDuplicateStake) {
		t.Fatalf("duplicate: err = %v", err)
	}

	// once the first contract is fully settled, the same staker may back a
	// new split
	if _, err := f.coord.AcceptStake(ctx, stakerA, first.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.coord.MarkStakeSettled(ctx, stakerA, first.ID); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if _, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, StakerUserID: stakerA, Percentage: 0.2, Markup: 1.0}); err != nil {
		t.Fatalf("re-stake after settle: %v", err)
	}
}

func TestStakeAuthz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	a, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, StakerUserID: stakerA, Percentage: 0.5, Markup: 1.0})
	if err != nil {
		t.Fatalf("add stake: %v", err)
	}
	if _, err := f.coord.AcceptStake(ctx, playerID, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("player accepting own proposal: err = %v", err)
	}
	if _, err := f.coord.UpdateStakeTerms(ctx, stakerA, a.ID, 0.4, 1.0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("staker editing terms: err = %v", err)
	}
	outsider := "99999999-9999-9999-9999-999999999999"
	if _, err := f.coord.MarkStakeSettled(ctx, outsider, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider settling: err = %v", err)
	}
	if _, err := f.coord.GetStake(ctx, outsider, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider reading: err = %v", err)
	}
}

func TestUpdateStakeTermsRecomputesAgainstLiveFacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	a, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, StakerUserID: stakerA, Percentage: 0.5, Markup: 1.0})
	if err != nil {
		t.Fatalf("add stake: %v", err)
	}
	f.advance(time.Minute)
	// stack doubles; open stakes recompute on the chip update
	if _, err := f.coord.AppendChipUpdate(ctx, playerID, id, 60000, ""); err != nil {
		t.Fatalf("chip update: %v", err)
	}
	v, err := f.coord.GetStake(ctx, playerID, a.ID)
	if err != nil {
		t.Fatalf("get stake: %v", err)
	}
	if v.SettlementCents != -15000 {
		t.Fatalf("live settlement = %d, want -15000", v.SettlementCents)
	}

	v, err = f.coord.UpdateStakeTerms(ctx, playerID, a.ID, 0.2, 1.2)
	if err != nil {
		t.Fatalf("update terms: %v", err)
	}
	if v.SettlementCents != -7200 {
		t.Fatalf("settlement after new terms = %d, want -7200", v.SettlementCents)
	}
}

func TestStakerNameFallsBackToLoading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.startedSession(t, 30000)

	a, err := f.coord.AddStake(ctx, playerID, AddStakeParams{SessionID: id, StakerUserID: "unknown-user", Percentage: 0.1, Markup: 1.0})
	if err != nil {
		t.Fatalf("add stake: %v", err)
	}
	if a.StakerDisplayName != identity.FallbackLoading {
		t.Fatalf("name = %q, want %q", a.StakerDisplayName, identity.FallbackLoading)
	}
}

func TestCreateManualStakerValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.coord.CreateManualStaker(ctx, playerID, "   ", ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("blank name: err = %v", err)
	}
	m, err := f.coord.CreateManualStaker(ctx, playerID, "Dave", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := f.coord.GetManualStaker(ctx, playerID, m.ID)
	if err != nil || got.DisplayName != "Dave" {
		t.Fatalf("get = %+v, %v", got, err)
	}
	if _, err := f.coord.GetManualStaker(ctx, "someone-else", m.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cross-owner read: err = %v", err)
	}
	list, err := f.coord.ListManualStakers(ctx, playerID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}
}
