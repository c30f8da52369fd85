package ledger

import "github.com/shopspring/decimal"

// Changeset is the batch of mutations produced by one ledger operation.
// A store must apply the whole batch in a single transaction or not at
// all. PutDebts and DeleteDebts never share a key: putDebt and
// deleteDebt keep the two lists reconciled as the engine revises its
// own intermediate state.
type Changeset struct {
	// PutDebts are debts to insert or replace, keyed by (debtor, creditor).
	PutDebts []Debt

	// DeleteDebts are directed debts to remove.
	DeleteDebts []DebtKey

	// Balances are the new balances of every member the operation
	// touched, keyed by user id.
	Balances map[string]decimal.Decimal

	// AddMembers are members to insert with their initial state.
	AddMembers []Member

	// DeleteMembers are user ids of members to remove.
	DeleteMembers []string

	// Transactions are audit records to insert.
	Transactions []Transaction
}

func newChangeset() *Changeset {
	return &Changeset{Balances: make(map[string]decimal.Decimal)}
}

// putDebt records an insert-or-replace for the debt's key, superseding
// any earlier put or delete of the same key.
func (cs *Changeset) putDebt(d Debt) {
	key := d.Key()
	for i := range cs.DeleteDebts {
		if cs.DeleteDebts[i] == key {
			cs.DeleteDebts = append(cs.DeleteDebts[:i], cs.DeleteDebts[i+1:]...)
			break
		}
	}
	for i := range cs.PutDebts {
		if cs.PutDebts[i].Key() == key {
			cs.PutDebts[i] = d
			return
		}
	}
	cs.PutDebts = append(cs.PutDebts, d)
}

// deleteDebt records a removal for the key, superseding any earlier put.
func (cs *Changeset) deleteDebt(key DebtKey) {
	for i := range cs.PutDebts {
		if cs.PutDebts[i].Key() == key {
			cs.PutDebts = append(cs.PutDebts[:i], cs.PutDebts[i+1:]...)
			break
		}
	}
	for i := range cs.DeleteDebts {
		if cs.DeleteDebts[i] == key {
			return
		}
	}
	cs.DeleteDebts = append(cs.DeleteDebts, key)
}

// setBalance records the member's new balance.
func (cs *Changeset) setBalance(userID string, balance decimal.Decimal) {
	cs.Balances[userID] = balance
}
