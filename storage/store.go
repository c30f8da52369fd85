// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"

	"github.com/tallyhq/tally/ledger"
)

// Store is the ledger store collaborator. The engine itself never
// touches storage: it produces a ledger.Changeset and the store applies
// the whole batch atomically. This abstraction allows swapping storage
// backends (SQLite, PostgreSQL, etc.) without changing the service
// layer.
type Store interface {
	// CreateGroup persists a new group together with its initial
	// members. The group's ID and timestamps are populated by the
	// store.
	CreateGroup(ctx context.Context, group *ledger.Group) error

	// GetGroup loads a group snapshot with its members and debts.
	// Returns a ledger.KindNotFound error for an unknown group.
	GetGroup(ctx context.Context, groupID string) (*ledger.Group, error)

	// ListTransactions loads the group's transaction audit trail with
	// splits, newest first.
	ListTransactions(ctx context.Context, groupID string) ([]ledger.Transaction, error)

	// Commit applies every mutation in the changeset in a single
	// transaction: all of it commits or none of it does. IDs and
	// timestamps of inserted records are populated in place.
	Commit(ctx context.Context, groupID string, cs *ledger.Changeset) error

	// Close releases any resources held by the store.
	Close() error
}
