package ledger

import (
	"github.com/shopspring/decimal"
)

// Settle applies a repayment of amount from the debtor to the creditor
// against their outstanding debt. A full repayment deletes the debt; a
// repayment exceeding the debt fails with KindInvalidSettlement, so
// settlement never creates exposure beyond what the counterpart is
// actually owed.
//
// Should the remaining amount ever go negative, the debt flips: the
// original record is deleted and a reverse debt for the excess is
// created. A final sweep cancels a forward/reverse debt pair of equal
// amounts so at most one directed debt per pair survives the commit.
func Settle(g *Group, debtorID, creditorID string, amount decimal.Decimal) (*Group, *Changeset, error) {
	if !amount.IsPositive() {
		return nil, nil, Errorf(KindInvalidAmount, "settlement amount must be greater than 0, got %s", amount)
	}
	if g.Member(debtorID) == nil || g.Member(creditorID) == nil {
		return nil, nil, Errorf(KindNotFound, "debtor or creditor not found in group %s", g.ID)
	}

	existing := g.Debt(debtorID, creditorID)
	if existing == nil || existing.Amount.LessThan(amount) {
		return nil, nil, Errorf(KindInvalidSettlement, "invalid debt or settlement amount")
	}

	next := g.Clone()
	cs := newChangeset()
	debtor := next.Member(debtorID)
	creditor := next.Member(creditorID)

	debt := next.Debt(debtorID, creditorID)
	debt.Amount = debt.Amount.Sub(amount)
	debtor.Balance = debtor.Balance.Add(amount)
	creditor.Balance = creditor.Balance.Sub(amount)

	switch {
	case debt.Amount.IsZero():
		next.removeDebt(debtorID, creditorID)
		cs.deleteDebt(DebtKey{DebtorID: debtorID, CreditorID: creditorID})
	case debt.Amount.IsNegative():
		reverse := Debt{DebtorID: creditorID, CreditorID: debtorID, Amount: debt.Amount.Neg()}
		next.removeDebt(debtorID, creditorID)
		cs.deleteDebt(DebtKey{DebtorID: debtorID, CreditorID: creditorID})
		next.Debts = append(next.Debts, reverse)
		cs.putDebt(reverse)
	default:
		cs.putDebt(*debt)
	}

	// A forward/reverse pair of equal amounts is a transient state that
	// must not reach the store.
	forward := next.Debt(debtorID, creditorID)
	reverse := next.Debt(creditorID, debtorID)
	if forward != nil && reverse != nil && forward.Amount.Equal(reverse.Amount) {
		debtor.Balance = debtor.Balance.Add(forward.Amount)
		creditor.Balance = creditor.Balance.Sub(forward.Amount)
		next.removeDebt(debtorID, creditorID)
		next.removeDebt(creditorID, debtorID)
		cs.deleteDebt(DebtKey{DebtorID: debtorID, CreditorID: creditorID})
		cs.deleteDebt(DebtKey{DebtorID: creditorID, CreditorID: debtorID})
	}

	cs.setBalance(debtorID, debtor.Balance)
	cs.setBalance(creditorID, creditor.Balance)

	return next, cs, nil
}
