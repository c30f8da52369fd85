// Package ledger implements the debt-ledger engine for group expenses.
//
// The engine turns a transaction (one payer, N beneficiaries, a split
// policy) into a minimal set of pairwise directed debts and keeps each
// member's running balance consistent with those debts.
//
// # Operations
//
// All operations are pure: they take a *Group snapshot, never mutate it,
// and return the next snapshot together with a *Changeset describing the
// mutations a store must apply atomically.
//
//   - ApplyTransaction: split calculation followed by debt netting
//   - Settle: partial or full repayment of one directed debt
//   - Withdraw: member removal with debt forgiveness on both sides
//   - SuggestSettlements: read-only minimal-transfer suggestion
//
// # Invariants
//
// After every committed operation:
//
//  1. At most one directed debt exists per unordered member pair. Any
//     pre-existing reverse debt is fully consumed before a forward debt
//     of the opposite sign is created.
//  2. The balances of a group's members sum to zero.
//  3. Each member's balance equals the sum of debts where they are the
//     creditor minus the sum of debts where they are the debtor.
//
// Amounts are decimal.Decimal throughout; sum comparisons use Epsilon
// (0.01 currency units), never floating-point equality.
package ledger
