package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSettle_FullRepaymentDeletesDebt(t *testing.T) {
	g := testGroup("alice", "bob", "carol")

	// Alice fronts 90 equally, bob absorbs his share, carol settles hers.
	g, _, err := ApplyTransaction(g, "alice", dec("90"), SplitEqual, nil)
	if err != nil {
		t.Fatalf("ApplyTransaction failed: %v", err)
	}
	g, _, err = ApplyTransaction(g, "bob", dec("30"), SplitSpecific,
		map[string]decimal.Decimal{"alice": dec("30")})
	if err != nil {
		t.Fatalf("ApplyTransaction failed: %v", err)
	}

	next, cs, err := Settle(g, "carol", "alice", dec("30"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	assertNoDebt(t, next, "carol", "alice")
	assertBalance(t, next, "alice", "0")
	assertBalance(t, next, "bob", "0")
	assertBalance(t, next, "carol", "0")
	checkInvariants(t, next)

	if len(cs.DeleteDebts) != 1 {
		t.Errorf("expected 1 debt delete, got %+v", cs.DeleteDebts)
	}
	if len(cs.PutDebts) != 0 {
		t.Errorf("expected no debt puts, got %+v", cs.PutDebts)
	}
}

func TestSettle_PartialRepaymentShrinksDebt(t *testing.T) {
	g := testGroup("alice", "bob")
	g.Debts = []Debt{{DebtorID: "bob", CreditorID: "alice", Amount: dec("30")}}
	g.Member("alice").Balance = dec("30")
	g.Member("bob").Balance = dec("-30")

	next, cs, err := Settle(g, "bob", "alice", dec("12.50"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	assertDebt(t, next, "bob", "alice", "17.50")
	assertBalance(t, next, "alice", "17.50")
	assertBalance(t, next, "bob", "-17.50")
	checkInvariants(t, next)

	if len(cs.PutDebts) != 1 || !cs.PutDebts[0].Amount.Equal(dec("17.50")) {
		t.Errorf("unexpected debt puts: %+v", cs.PutDebts)
	}
}

func TestSettle_AmountExceedsDebt(t *testing.T) {
	g := testGroup("alice", "bob")
	g.Debts = []Debt{{DebtorID: "bob", CreditorID: "alice", Amount: dec("30")}}
	g.Member("alice").Balance = dec("30")
	g.Member("bob").Balance = dec("-30")

	_, _, err := Settle(g, "bob", "alice", dec("30.01"))
	if err == nil {
		t.Fatal("expected error for settlement above exposure")
	}
	if KindOf(err) != KindInvalidSettlement {
		t.Errorf("error kind = %s, want invalid_settlement", KindOf(err))
	}
}

func TestSettle_NoDebtBetweenMembers(t *testing.T) {
	g := testGroup("alice", "bob")

	_, _, err := Settle(g, "bob", "alice", dec("5"))
	if err == nil {
		t.Fatal("expected error when no debt exists")
	}
	if KindOf(err) != KindInvalidSettlement {
		t.Errorf("error kind = %s, want invalid_settlement", KindOf(err))
	}
}

func TestSettle_WrongDirection(t *testing.T) {
	g := testGroup("alice", "bob")
	g.Debts = []Debt{{DebtorID: "bob", CreditorID: "alice", Amount: dec("30")}}
	g.Member("alice").Balance = dec("30")
	g.Member("bob").Balance = dec("-30")

	// Alice does not owe bob; only the directed debt can be settled.
	_, _, err := Settle(g, "alice", "bob", dec("10"))
	if KindOf(err) != KindInvalidSettlement {
		t.Errorf("error kind = %v, want invalid_settlement", err)
	}
}

func TestSettle_NonPositiveAmount(t *testing.T) {
	g := testGroup("alice", "bob")
	g.Debts = []Debt{{DebtorID: "bob", CreditorID: "alice", Amount: dec("30")}}
	g.Member("alice").Balance = dec("30")
	g.Member("bob").Balance = dec("-30")

	_, _, err := Settle(g, "bob", "alice", dec("0"))
	if KindOf(err) != KindInvalidAmount {
		t.Errorf("error kind = %v, want invalid_amount", err)
	}
}

func TestSettle_UnknownCounterpart(t *testing.T) {
	g := testGroup("alice", "bob")

	_, _, err := Settle(g, "mallory", "alice", dec("5"))
	if KindOf(err) != KindNotFound {
		t.Errorf("error kind = %v, want not_found", err)
	}
}

func TestSettle_SymmetricPairIsSweptBeforeCommit(t *testing.T) {
	// A forward/reverse pair is only reachable transiently: the reverse
	// entry is a stale record the balances never absorbed. Once the
	// amounts match, the sweep must remove both and square the books.
	g := testGroup("alice", "bob")
	g.Debts = []Debt{
		{DebtorID: "bob", CreditorID: "alice", Amount: dec("25")},
		{DebtorID: "alice", CreditorID: "bob", Amount: dec("15")},
	}
	g.Member("alice").Balance = dec("25")
	g.Member("bob").Balance = dec("-25")

	// Settling 10 shrinks bob's debt to 15, equal to the reverse debt;
	// the sweep then cancels both.
	next, _, err := Settle(g, "bob", "alice", dec("10"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	assertNoDebt(t, next, "bob", "alice")
	assertNoDebt(t, next, "alice", "bob")
	assertBalance(t, next, "alice", "0")
	assertBalance(t, next, "bob", "0")
	checkInvariants(t, next)
}
