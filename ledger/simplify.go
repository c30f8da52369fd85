package ledger

import (
	"github.com/shopspring/decimal"
)

// SuggestSettlements returns a minimal list of transfers that would
// clear every balance in the group, matched greedily between debtors
// and creditors in member order. It reads the snapshot only; recording
// an actual repayment goes through Settle.
func SuggestSettlements(g *Group) []Debt {
	var debtors, creditors []Member
	for _, m := range g.Members {
		switch {
		case m.Balance.IsNegative():
			debtors = append(debtors, m)
		case m.Balance.IsPositive():
			creditors = append(creditors, m)
		}
	}

	owes := make(map[string]decimal.Decimal, len(debtors))
	owed := make(map[string]decimal.Decimal, len(creditors))
	for _, d := range debtors {
		owes[d.UserID] = d.Balance.Neg()
	}
	for _, c := range creditors {
		owed[c.UserID] = c.Balance
	}

	var transfers []Debt
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].UserID
		creditor := creditors[j].UserID

		amount := owes[debtor]
		if owed[creditor].LessThan(amount) {
			amount = owed[creditor]
		}

		// Skip residue below the currency epsilon.
		if amount.GreaterThan(Epsilon) {
			transfers = append(transfers, Debt{
				DebtorID:   debtor,
				CreditorID: creditor,
				Amount:     amount,
			})
		}

		owes[debtor] = owes[debtor].Sub(amount)
		owed[creditor] = owed[creditor].Sub(amount)

		if owes[debtor].LessThan(Epsilon) {
			i++
		}
		if owed[creditor].LessThan(Epsilon) {
			j++
		}
	}

	return transfers
}
