package ledger

import (
	"github.com/shopspring/decimal"
)

// Withdraw removes a member from the group and reconciles every debt
// that references them. Debts are forgiven, never reassigned: each
// deleted debt is mirrored by an equal-and-opposite balance correction
// on its single counterpart, so the group's balances still sum to zero.
//
// The founding member can never be removed.
func Withdraw(g *Group, memberID string) (*Group, *Changeset, error) {
	member := g.Member(memberID)
	if member == nil {
		return nil, nil, Errorf(KindNotFound, "member %s not found in group %s", memberID, g.ID)
	}
	if memberID == g.FounderID {
		return nil, nil, Errorf(KindProtectedMember, "cannot remove the founding member of group %s", g.ID)
	}

	next := g.Clone()
	cs := newChangeset()

	// Walk a fixed copy: removeDebt edits next.Debts underneath us.
	debts := make([]Debt, len(next.Debts))
	copy(debts, next.Debts)

	for _, debt := range debts {
		switch {
		case debt.DebtorID == memberID:
			if creditor := next.Member(debt.CreditorID); creditor != nil {
				creditor.Balance = creditor.Balance.Sub(debt.Amount)
				cs.setBalance(creditor.UserID, creditor.Balance)
			}
			next.removeDebt(debt.DebtorID, debt.CreditorID)
			cs.deleteDebt(debt.Key())
		case debt.CreditorID == memberID:
			if debtor := next.Member(debt.DebtorID); debtor != nil {
				debtor.Balance = debtor.Balance.Add(debt.Amount)
				cs.setBalance(debtor.UserID, debtor.Balance)
			}
			next.removeDebt(debt.DebtorID, debt.CreditorID)
			cs.deleteDebt(debt.Key())
		}
	}

	next.Member(memberID).Balance = decimal.Zero
	next.removeMember(memberID)
	cs.DeleteMembers = append(cs.DeleteMembers, memberID)

	return next, cs, nil
}
