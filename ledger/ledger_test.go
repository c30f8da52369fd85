package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testGroup builds a snapshot with the given usernames as user ids and
// zero balances. The first member is the founder.
func testGroup(usernames ...string) *Group {
	g := &Group{ID: "g1", Title: "Trip"}
	for _, name := range usernames {
		g.Members = append(g.Members, Member{UserID: name, Username: name})
	}
	if len(usernames) > 0 {
		g.FounderID = usernames[0]
	}
	return g
}

func assertBalance(t *testing.T, g *Group, userID, want string) {
	t.Helper()
	m := g.Member(userID)
	if m == nil {
		t.Fatalf("member %s missing from group", userID)
	}
	if !m.Balance.Equal(dec(want)) {
		t.Errorf("%s balance = %s, want %s", userID, m.Balance, want)
	}
}

func assertDebt(t *testing.T, g *Group, debtorID, creditorID, want string) {
	t.Helper()
	d := g.Debt(debtorID, creditorID)
	if d == nil {
		t.Fatalf("expected debt %s -> %s", debtorID, creditorID)
	}
	if !d.Amount.Equal(dec(want)) {
		t.Errorf("debt %s -> %s = %s, want %s", debtorID, creditorID, d.Amount, want)
	}
}

func assertNoDebt(t *testing.T, g *Group, debtorID, creditorID string) {
	t.Helper()
	if d := g.Debt(debtorID, creditorID); d != nil {
		t.Errorf("unexpected debt %s -> %s of %s", debtorID, creditorID, d.Amount)
	}
}

// checkInvariants verifies the three ledger invariants on a snapshot:
// balances sum to zero, at most one debt per unordered pair, and each
// balance equals creditor-side minus debtor-side debt totals.
func checkInvariants(t *testing.T, g *Group) {
	t.Helper()

	sum := decimal.Zero
	for _, m := range g.Members {
		sum = sum.Add(m.Balance)
	}
	if !sum.Abs().LessThanOrEqual(Epsilon) {
		t.Errorf("balances sum to %s, want 0", sum)
	}

	for _, d := range g.Debts {
		if !d.Amount.IsPositive() {
			t.Errorf("debt %s -> %s has non-positive amount %s", d.DebtorID, d.CreditorID, d.Amount)
		}
		if g.Debt(d.CreditorID, d.DebtorID) != nil {
			t.Errorf("both directions outstanding between %s and %s", d.DebtorID, d.CreditorID)
		}
	}

	for _, m := range g.Members {
		net := decimal.Zero
		for _, d := range g.Debts {
			if d.CreditorID == m.UserID {
				net = net.Add(d.Amount)
			}
			if d.DebtorID == m.UserID {
				net = net.Sub(d.Amount)
			}
		}
		if !net.Sub(m.Balance).Abs().LessThanOrEqual(Epsilon) {
			t.Errorf("%s balance %s does not match debt net %s", m.UserID, m.Balance, net)
		}
	}
}
