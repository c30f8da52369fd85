package ledger

import (
	"github.com/shopspring/decimal"
)

// SplitType selects the policy used to divide a transaction amount
// among group members.
type SplitType string

const (
	// SplitEqual divides the amount evenly across all group members.
	SplitEqual SplitType = "Equal"

	// SplitSpecific assigns the full amount to exactly one member.
	SplitSpecific SplitType = "Specific"

	// SplitPercentage divides the amount by per-member percentages
	// that must sum to 100.
	SplitPercentage SplitType = "Percentage"

	// SplitDynamic uses per-member amounts that must sum to the
	// transaction amount.
	SplitDynamic SplitType = "Dynamic"
)

// Epsilon is the tolerance for currency sum comparisons: 0.01 units.
var Epsilon = decimal.New(1, -2)

// Member is one participant in a group with a signed running balance.
// A positive balance means the group owes the member money; negative
// means the member owes the group.
type Member struct {
	UserID   string
	Username string
	Balance  decimal.Decimal

	// JoinedAt is the Unix timestamp when the member was added.
	// Filled by the store.
	JoinedAt int64
}

// Debt is a directed obligation: the debtor owes the creditor Amount.
// Amount is always strictly positive; a debt that reaches zero is
// deleted, never stored as zero.
type Debt struct {
	DebtorID   string
	CreditorID string
	Amount     decimal.Decimal
}

// DebtKey identifies a directed debt within a group.
type DebtKey struct {
	DebtorID   string
	CreditorID string
}

// Key returns the directed identity of the debt.
func (d Debt) Key() DebtKey {
	return DebtKey{DebtorID: d.DebtorID, CreditorID: d.CreditorID}
}

// Split is one member's computed share of a transaction.
type Split struct {
	UserID string
	Amount decimal.Decimal

	// Percentage is set only for SplitPercentage transactions.
	Percentage *decimal.Decimal
}

// Transaction is the immutable audit record of one shared expense.
// It is never mutated after creation; removing members does not alter
// past transactions, only the live debt and balance state.
type Transaction struct {
	ID        string
	GroupID   string
	PayerID   string
	Amount    decimal.Decimal
	SplitType SplitType
	Splits    []Split

	// CreatedAt is the Unix timestamp of creation. Filled by the store.
	CreatedAt int64
}

// Group is a snapshot of one group's live ledger state: its members
// with balances and the outstanding debts between them.
type Group struct {
	ID    string
	Title string

	// FounderID is the founding member, set once at group creation.
	// The founder can never be removed.
	FounderID string

	CreatedAt int64
	Members   []Member
	Debts     []Debt
}

// Member returns a pointer to the member with the given user id, or
// nil if they are not in the group.
func (g *Group) Member(userID string) *Member {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

// HasMember reports whether the user belongs to the group.
func (g *Group) HasMember(userID string) bool {
	return g.Member(userID) != nil
}

// Debt returns a pointer to the directed debt from debtor to creditor,
// or nil if no such debt is outstanding.
func (g *Group) Debt(debtorID, creditorID string) *Debt {
	for i := range g.Debts {
		if g.Debts[i].DebtorID == debtorID && g.Debts[i].CreditorID == creditorID {
			return &g.Debts[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the snapshot. Engine operations work on
// a clone so the caller's snapshot is never aliased.
func (g *Group) Clone() *Group {
	next := &Group{
		ID:        g.ID,
		Title:     g.Title,
		FounderID: g.FounderID,
		CreatedAt: g.CreatedAt,
		Members:   make([]Member, len(g.Members)),
		Debts:     make([]Debt, len(g.Debts)),
	}
	copy(next.Members, g.Members)
	copy(next.Debts, g.Debts)
	return next
}

// removeDebt deletes the directed debt from the snapshot, if present.
func (g *Group) removeDebt(debtorID, creditorID string) {
	for i := range g.Debts {
		if g.Debts[i].DebtorID == debtorID && g.Debts[i].CreditorID == creditorID {
			g.Debts = append(g.Debts[:i], g.Debts[i+1:]...)
			return
		}
	}
}

// removeMember deletes the member from the snapshot, if present.
func (g *Group) removeMember(userID string) {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return
		}
	}
}
