// Package service exposes the ledger operations to the CRUD/API layer.
// Each operation takes validated primitives, executes against one group
// under that group's lock, and commits the resulting changeset
// atomically through the storage.Store.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/ledger"
	"github.com/tallyhq/tally/storage"
)

// LedgerService coordinates the ledger engine and the store.
type LedgerService struct {
	store   storage.Store
	locks   *groupLocks
	metrics *metrics
}

// New creates a LedgerService with the given storage backend. Metrics
// are registered on reg; pass nil to keep them on a private registry.
func New(store storage.Store, reg prometheus.Registerer) *LedgerService {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &LedgerService{
		store:   store,
		locks:   newGroupLocks(),
		metrics: newMetrics(reg),
	}
}

// loadAuthorized fetches the group snapshot and checks that the caller
// is a current member.
func (s *LedgerService) loadAuthorized(ctx context.Context, groupID, callerID string) (*ledger.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, ledger.Errorf(ledger.KindUnauthorized, "user %s not authorized for group %s", callerID, groupID)
	}
	return group, nil
}

// CreateGroup creates a group with its founding member. The founder is
// protected from removal for the group's lifetime.
func (s *LedgerService) CreateGroup(ctx context.Context, title, username string) (group *ledger.Group, err error) {
	defer func() { s.metrics.observe("create_group", err) }()

	if title == "" || username == "" {
		return nil, ledger.Errorf(ledger.KindInvalidArgument, "title and username cannot be empty")
	}

	founder := ledger.Member{
		UserID:   uuid.New().String(),
		Username: username,
		Balance:  decimal.Zero,
	}
	group = &ledger.Group{
		Title:     title,
		FounderID: founder.UserID,
		Members:   []ledger.Member{founder},
	}

	if err = s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "title", title, "error", err)
		return nil, ledger.WrapCommit(err)
	}

	slog.Info("Group created", "group_id", group.ID, "founder_id", group.FounderID)
	return group, nil
}

// GetGroup returns the group snapshot with members and debts. The
// caller must be a member.
func (s *LedgerService) GetGroup(ctx context.Context, groupID, callerID string) (group *ledger.Group, err error) {
	defer func() { s.metrics.observe("get_group", err) }()
	return s.loadAuthorized(ctx, groupID, callerID)
}

// AddMember appends a member with zero balance. Usernames must be
// non-empty and unique within the group.
func (s *LedgerService) AddMember(ctx context.Context, groupID, username, callerID string) (member *ledger.Member, err error) {
	defer func() { s.metrics.observe("add_member", err) }()

	release, err := s.locks.acquire(ctx, groupID)
	if err != nil {
		return nil, err
	}
	defer release()

	group, err := s.loadAuthorized(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}

	if username == "" {
		return nil, ledger.Errorf(ledger.KindInvalidArgument, "username cannot be empty")
	}
	for _, m := range group.Members {
		if m.Username == username {
			return nil, ledger.Errorf(ledger.KindInvalidArgument, "user %s is already a member of group %s", username, groupID)
		}
	}

	added := ledger.Member{
		UserID:   uuid.New().String(),
		Username: username,
		Balance:  decimal.Zero,
	}
	cs := &ledger.Changeset{AddMembers: []ledger.Member{added}}

	if err = s.store.Commit(ctx, groupID, cs); err != nil {
		slog.Error("AddMember commit failed", "group_id", groupID, "error", err)
		return nil, ledger.WrapCommit(err)
	}

	slog.Info("Member added", "group_id", groupID, "user_id", added.UserID, "username", username)
	return &cs.AddMembers[0], nil
}

// CreateTransaction records a shared expense: the split calculator
// computes per-member shares, the netting engine folds them into the
// debt graph, and the whole changeset commits atomically.
func (s *LedgerService) CreateTransaction(ctx context.Context, groupID, payerID string, amount decimal.Decimal, splitType ledger.SplitType, splits map[string]decimal.Decimal, callerID string) (tx *ledger.Transaction, err error) {
	defer func() { s.metrics.observe("create_transaction", err) }()

	release, err := s.locks.acquire(ctx, groupID)
	if err != nil {
		return nil, err
	}
	defer release()

	group, err := s.loadAuthorized(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}

	_, cs, err := ledger.ApplyTransaction(group, payerID, amount, splitType, splits)
	if err != nil {
		slog.Error("CreateTransaction rejected",
			"group_id", groupID,
			"payer_id", payerID,
			"split_type", splitType,
			"error", err,
		)
		return nil, err
	}

	if err = s.store.Commit(ctx, groupID, cs); err != nil {
		slog.Error("CreateTransaction commit failed", "group_id", groupID, "error", err)
		return nil, ledger.WrapCommit(err)
	}

	tx = &cs.Transactions[0]
	slog.Info("Transaction recorded",
		"group_id", groupID,
		"transaction_id", tx.ID,
		"payer_id", payerID,
		"amount", amount.String(),
		"split_type", splitType,
	)
	return tx, nil
}

// SettleBalance applies a repayment from the debtor to the creditor
// against their outstanding debt.
func (s *LedgerService) SettleBalance(ctx context.Context, groupID, debtorID, creditorID string, amount decimal.Decimal, callerID string) (err error) {
	defer func() { s.metrics.observe("settle_balance", err) }()

	release, err := s.locks.acquire(ctx, groupID)
	if err != nil {
		return err
	}
	defer release()

	group, err := s.loadAuthorized(ctx, groupID, callerID)
	if err != nil {
		return err
	}

	_, cs, err := ledger.Settle(group, debtorID, creditorID, amount)
	if err != nil {
		slog.Error("SettleBalance rejected",
			"group_id", groupID,
			"debtor_id", debtorID,
			"creditor_id", creditorID,
			"error", err,
		)
		return err
	}

	if err = s.store.Commit(ctx, groupID, cs); err != nil {
		slog.Error("SettleBalance commit failed", "group_id", groupID, "error", err)
		return ledger.WrapCommit(err)
	}

	slog.Info("Balance settled",
		"group_id", groupID,
		"debtor_id", debtorID,
		"creditor_id", creditorID,
		"amount", amount.String(),
	)
	return nil
}

// RemoveMember withdraws a member from the group, forgiving every debt
// that references them. The founding member cannot be removed.
func (s *LedgerService) RemoveMember(ctx context.Context, groupID, memberID, callerID string) (err error) {
	defer func() { s.metrics.observe("remove_member", err) }()

	release, err := s.locks.acquire(ctx, groupID)
	if err != nil {
		return err
	}
	defer release()

	group, err := s.loadAuthorized(ctx, groupID, callerID)
	if err != nil {
		return err
	}

	_, cs, err := ledger.Withdraw(group, memberID)
	if err != nil {
		slog.Error("RemoveMember rejected", "group_id", groupID, "member_id", memberID, "error", err)
		return err
	}

	if err = s.store.Commit(ctx, groupID, cs); err != nil {
		slog.Error("RemoveMember commit failed", "group_id", groupID, "error", err)
		return ledger.WrapCommit(err)
	}

	slog.Info("Member removed", "group_id", groupID, "member_id", memberID)
	return nil
}

// ListTransactions returns the group's audit trail, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, groupID, callerID string) (transactions []ledger.Transaction, err error) {
	defer func() { s.metrics.observe("list_transactions", err) }()

	if _, err = s.loadAuthorized(ctx, groupID, callerID); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, groupID)
}

// SuggestSettlements returns the minimal transfers that would clear
// the group's balances. Read-only.
func (s *LedgerService) SuggestSettlements(ctx context.Context, groupID, callerID string) (transfers []ledger.Debt, err error) {
	defer func() { s.metrics.observe("suggest_settlements", err) }()

	group, err := s.loadAuthorized(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	return ledger.SuggestSettlements(group), nil
}
