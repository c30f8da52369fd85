package ledger

import (
	"github.com/shopspring/decimal"
)

// ApplyTransaction runs the split calculator for the request and nets
// the resulting shares against the group's outstanding debts. It
// returns the next snapshot, the mutation batch for the store, and the
// transaction audit record carried inside the changeset.
//
// For each member owing a positive share, any debt the payer already
// owes that member is consumed first: deleted when equal, shrunk when
// larger, or deleted with the remainder carrying forward when smaller.
// Only the remainder becomes (or grows) a debt from the member to the
// payer, so at most one directed debt survives per member pair.
func ApplyTransaction(g *Group, payerID string, amount decimal.Decimal, splitType SplitType, input map[string]decimal.Decimal) (*Group, *Changeset, error) {
	if !g.HasMember(payerID) {
		return nil, nil, Errorf(KindUnauthorized, "payer %s not found in group %s", payerID, g.ID)
	}

	splits, err := ComputeSplits(g, amount, splitType, input)
	if err != nil {
		return nil, nil, err
	}

	next := g.Clone()
	cs := newChangeset()
	payer := next.Member(payerID)

	for _, split := range splits {
		member := next.Member(split.UserID)
		owed := split.Amount
		if member.UserID == payerID || !owed.IsPositive() {
			continue
		}

		if reverse := next.Debt(payerID, member.UserID); reverse != nil {
			switch reverse.Amount.Cmp(owed) {
			case 0:
				next.removeDebt(payerID, member.UserID)
				cs.deleteDebt(DebtKey{DebtorID: payerID, CreditorID: member.UserID})
				member.Balance = member.Balance.Sub(owed)
				payer.Balance = payer.Balance.Add(owed)
				owed = decimal.Zero
			case 1:
				reverse.Amount = reverse.Amount.Sub(owed)
				cs.putDebt(*reverse)
				member.Balance = member.Balance.Sub(owed)
				payer.Balance = payer.Balance.Add(owed)
				owed = decimal.Zero
			case -1:
				member.Balance = member.Balance.Sub(reverse.Amount)
				payer.Balance = payer.Balance.Add(reverse.Amount)
				owed = owed.Sub(reverse.Amount)
				next.removeDebt(payerID, member.UserID)
				cs.deleteDebt(DebtKey{DebtorID: payerID, CreditorID: member.UserID})
			}
		}

		if owed.IsPositive() {
			if forward := next.Debt(member.UserID, payerID); forward != nil {
				forward.Amount = forward.Amount.Add(owed)
				cs.putDebt(*forward)
			} else {
				debt := Debt{DebtorID: member.UserID, CreditorID: payerID, Amount: owed}
				next.Debts = append(next.Debts, debt)
				cs.putDebt(debt)
			}
			member.Balance = member.Balance.Sub(owed)
			payer.Balance = payer.Balance.Add(owed)
		}

		cs.setBalance(member.UserID, member.Balance)
	}
	cs.setBalance(payerID, payer.Balance)

	tx := Transaction{
		GroupID:   g.ID,
		PayerID:   payerID,
		Amount:    amount,
		SplitType: splitType,
		Splits:    splits,
	}
	cs.Transactions = append(cs.Transactions, tx)

	return next, cs, nil
}
