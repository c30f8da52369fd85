package ledger

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.New(100, 0)
)

// ComputeSplits turns a transaction request into the verified per-member
// shares for the given policy. The payer's own share is computed like any
// other member's; the netting engine skips it when creating debts.
//
// The Equal policy divides amount by the member count without
// redistributing the rounding remainder, so the split sum can drift from
// the amount by far less than Epsilon.
func ComputeSplits(g *Group, amount decimal.Decimal, splitType SplitType, input map[string]decimal.Decimal) ([]Split, error) {
	if !amount.IsPositive() {
		return nil, Errorf(KindInvalidAmount, "transaction amount must be greater than 0, got %s", amount)
	}

	switch splitType {
	case SplitEqual:
		share := amount.Div(decimal.New(int64(len(g.Members)), 0))
		splits := make([]Split, 0, len(g.Members))
		for i := range g.Members {
			splits = append(splits, Split{UserID: g.Members[i].UserID, Amount: share})
		}
		return splits, nil

	case SplitSpecific:
		if len(input) != 1 {
			return nil, Errorf(KindInvalidSplit, "specific split must assign the full amount to one member")
		}
		for userID, value := range input {
			if !value.Equal(amount) {
				return nil, Errorf(KindInvalidSplit, "specific split must assign the full amount to one member")
			}
			if !g.HasMember(userID) {
				return nil, Errorf(KindInvalidSplit, "user %s not in group %s", userID, g.ID)
			}
			return []Split{{UserID: userID, Amount: amount}}, nil
		}
		return nil, Errorf(KindInvalidSplit, "specific split must assign the full amount to one member")

	case SplitPercentage:
		sum := decimal.Zero
		for _, pct := range input {
			sum = sum.Add(pct)
		}
		if sum.Sub(hundred).Abs().GreaterThan(Epsilon) {
			return nil, Errorf(KindInvalidSplit, "percentage splits must sum to 100, got %s", sum)
		}
		splits := make([]Split, 0, len(input))
		for userID, pct := range input {
			if !g.HasMember(userID) {
				return nil, Errorf(KindInvalidSplit, "user %s not in group %s", userID, g.ID)
			}
			p := pct
			splits = append(splits, Split{
				UserID:     userID,
				Amount:     amount.Mul(pct.Div(hundred)),
				Percentage: &p,
			})
		}
		return splits, nil

	case SplitDynamic:
		sum := decimal.Zero
		for _, value := range input {
			sum = sum.Add(value)
		}
		if sum.Sub(amount).Abs().GreaterThan(Epsilon) {
			return nil, Errorf(KindInvalidSplit, "dynamic splits must sum to the transaction amount, got %s", sum)
		}
		splits := make([]Split, 0, len(input))
		for userID, value := range input {
			if !g.HasMember(userID) {
				return nil, Errorf(KindInvalidSplit, "user %s not in group %s", userID, g.ID)
			}
			splits = append(splits, Split{UserID: userID, Amount: value})
		}
		return splits, nil

	default:
		return nil, Errorf(KindInvalidSplitType, "invalid split type %q", splitType)
	}
}
