package staking

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)

func newAppContract(t *testing.T, pct, markup float64, buyIn, cashout int64) *Contract {
	t.Helper()
	c, err := NewContract("stk1", "sess1", "player1", AppUserRef("staker1"), pct, markup, buyIn, cashout, false, t0)
	if err != nil {
		t.Fatalf("new contract: %v", err)
	}
	return c
}

func TestNewContractValidation(t *testing.T) {
	cases := []struct {
		name   string
		staker StakerRef
		pct    float64
		markup float64
		want   error
	}{
		{"zero percentage", AppUserRef("u1"), 0, 1.0, ErrInvalidPercentage},
		{"negative percentage", AppUserRef("u1"), -0.1, 1.0, ErrInvalidPercentage},
		{"over one", AppUserRef("u1"), 1.01, 1.0, ErrInvalidPercentage},
		{"markup below face", AppUserRef("u1"), 0.5, 0.99, ErrInvalidMarkup},
		{"no staker", StakerRef{}, 0.5, 1.0, ErrMissingStaker},
		{"both sides set", StakerRef{Kind: StakerAppUser, UserID: "u1", ManualID: "m1"}, 0.5, 1.0, ErrMissingStaker},
		{"manual without id", StakerRef{Kind: StakerManual, Name: "Dave"}, 0.5, 1.0, ErrMissingStaker},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewContract("stk1", "sess1", "player1", tc.staker, tc.pct, tc.markup, 10000, 10000, false, t0)
			if err != tc.want {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestFullPercentageAllowed(t *testing.T) {
	c := newAppContract(t, 1.0, 1.0, 10000, 16000)
	if c.SettlementCents != -6000 {
		t.Fatalf("settlement = %d, want -6000", c.SettlementCents)
	}
}

func TestAppUserStakerStartsProposed(t *testing.T) {
	c := newAppContract(t, 0.5, 1.0, 30000, 30000)
	if c.Status != StatusProposed {
		t.Fatalf("status = %s, want proposed", c.Status)
	}
	if err := c.Accept(t0.Add(time.Minute)); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if c.Status != StatusAwaitingSettlement {
		t.Fatalf("status = %s, want awaiting_settlement", c.Status)
	}
	if err := c.Accept(t0.Add(time.Minute)); err != ErrInvalidTransition {
		t.Fatalf("double accept: err = %v", err)
	}
}

func TestManualStakerSkipsProposed(t *testing.T) {
	c, err := NewContract("stk1", "sess1", "player1", ManualRef("m1", "Dave"), 0.2, 1.2, 30000, 30000, false, t0)
	if err != nil {
		t.Fatalf("new contract: %v", err)
	}
	if c.Status != StatusAwaitingSettlement {
		t.Fatalf("status = %s, want awaiting_settlement", c.Status)
	}
	if err := c.Accept(t0); err != ErrInvalidTransition {
		t.Fatalf("manual accept: err = %v", err)
	}
}

func TestRecomputeRefreshesFactsAndSettlement(t *testing.T) {
	c := newAppContract(t, 0.5, 1.0, 10000, 10000)
	if c.SettlementCents != 0 {
		t.Fatalf("initial settlement = %d, want 0", c.SettlementCents)
	}
	if err := c.Recompute(10000, 15000, t0.Add(time.Hour)); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if c.SettlementCents != -2500 {
		t.Fatalf("settlement = %d, want -2500", c.SettlementCents)
	}
	// edit then revert restores the original value exactly
	if err := c.Recompute(12000, 15000, t0.Add(2*time.Hour)); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if err := c.Recompute(10000, 15000, t0.Add(3*time.Hour)); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if c.SettlementCents != -2500 {
		t.Fatalf("settlement after revert = %d, want -2500", c.SettlementCents)
	}
}

func TestSettledContractIsFrozen(t *testing.T) {
	c := newAppContract(t, 0.5, 1.0, 10000, 15000)
	if err := c.Accept(t0); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := c.MarkSettled(t0.Add(time.Minute)); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if err := c.Recompute(10000, 20000, t0.Add(time.Hour)); err != ErrAlreadySettled {
		t.Fatalf("recompute settled: err = %v", err)
	}
	if err := c.UpdateTerms(0.6, 1.0, t0.Add(time.Hour)); err != ErrAlreadySettled {
		t.Fatalf("update settled: err = %v", err)
	}
	if c.SettlementCents != -2500 {
		t.Fatalf("settled amount drifted to %d", c.SettlementCents)
	}

	if err := c.Reopen(t0.Add(2 * time.Hour)); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if c.Status != StatusAwaitingSettlement {
		t.Fatalf("status after reopen = %s", c.Status)
	}
	if err := c.Recompute(10000, 20000, t0.Add(3*time.Hour)); err != nil {
		t.Fatalf("recompute after reopen: %v", err)
	}
	if c.SettlementCents != -5000 {
		t.Fatalf("settlement = %d, want -5000", c.SettlementCents)
	}
}

func TestStatusMachineRejections(t *testing.T) {
	c := newAppContract(t, 0.5, 1.0, 10000, 15000)
	if err := c.MarkSettled(t0); err != ErrInvalidTransition {
		t.Fatalf("settle from proposed: err = %v", err)
	}
	if err := c.Reopen(t0); err != ErrInvalidTransition {
		t.Fatalf("reopen unsettled: err = %v", err)
	}
	if err := c.Accept(t0); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := c.MarkSettled(t0); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if err := c.MarkSettled(t0); err != ErrInvalidTransition {
		t.Fatalf("double settle: err = %v", err)
	}
}

func TestUpdateTermsRecomputes(t *testing.T) {
	c := newAppContract(t, 0.5, 1.0, 10000, 15000)
	if err := c.UpdateTerms(0.2, 1.2, t0.Add(time.Minute)); err != nil {
		t.Fatalf("update terms: %v", err)
	}
	if c.SettlementCents != -1200 {
		t.Fatalf("settlement = %d, want -1200", c.SettlementCents)
	}
	if err := c.UpdateTerms(0.2, 0.8, t0.Add(time.Minute)); err != ErrInvalidMarkup {
		t.Fatalf("bad markup: err = %v", err)
	}
}
