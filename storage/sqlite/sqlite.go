// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/tallyhq/tally/ledger"
	"github.com/tallyhq/tally/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateGroup persists a new group and its initial members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *ledger.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, title, founder_id, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Title, group.FounderID, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i := range group.Members {
		member := &group.Members[i]
		if member.JoinedAt == 0 {
			member.JoinedAt = group.CreatedAt
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO members (group_id, user_id, username, balance, joined_at) VALUES (?, ?, ?, ?, ?)",
			group.ID, member.UserID, member.Username, member.Balance.String(), member.JoinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup loads a group snapshot with members and debts.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*ledger.Group, error) {
	group := &ledger.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, founder_id, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Title, &group.FounderID, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.Errorf(ledger.KindNotFound, "group not found: %s", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, username, balance, joined_at FROM members WHERE group_id = ? ORDER BY joined_at, user_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var member ledger.Member
		var balance string
		if err := rows.Scan(&member.UserID, &member.Username, &balance, &member.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("failed to parse member balance %q: %w", balance, err)
		}
		group.Members = append(group.Members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	debtRows, err := s.db.QueryContext(ctx,
		"SELECT debtor_id, creditor_id, amount FROM debts WHERE group_id = ? ORDER BY debtor_id, creditor_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get debts: %w", err)
	}
	defer debtRows.Close()

	for debtRows.Next() {
		var debt ledger.Debt
		var amount string
		if err := debtRows.Scan(&debt.DebtorID, &debt.CreditorID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debt.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse debt amount %q: %w", amount, err)
		}
		group.Debts = append(group.Debts, debt)
	}
	if err := debtRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}

	return group, nil
}

// ListTransactions loads the group's audit trail with splits, newest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, groupID string) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, amount, split_type, created_at
		 FROM transactions WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []ledger.Transaction
	for rows.Next() {
		var tx ledger.Transaction
		var amount, splitType string
		if err := rows.Scan(&tx.ID, &tx.GroupID, &tx.PayerID, &amount, &splitType, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction amount %q: %w", amount, err)
		}
		tx.SplitType = ledger.SplitType(splitType)
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	for i := range transactions {
		splits, err := s.listSplits(ctx, transactions[i].ID)
		if err != nil {
			return nil, err
		}
		transactions[i].Splits = splits
	}

	return transactions, nil
}

func (s *SQLiteStore) listSplits(ctx context.Context, transactionID string) ([]ledger.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, amount, percentage FROM transaction_splits WHERE transaction_id = ? ORDER BY user_id",
		transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []ledger.Split
	for rows.Next() {
		var split ledger.Split
		var amount string
		var percentage sql.NullString
		if err := rows.Scan(&split.UserID, &amount, &percentage); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		split.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse split amount %q: %w", amount, err)
		}
		if percentage.Valid {
			pct, err := decimal.NewFromString(percentage.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse split percentage %q: %w", percentage.String, err)
			}
			split.Percentage = &pct
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return splits, nil
}

// Commit applies the changeset in a single database transaction.
func (s *SQLiteStore) Commit(ctx context.Context, groupID string, cs *ledger.Changeset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range cs.DeleteDebts {
		_, err = tx.ExecContext(ctx,
			"DELETE FROM debts WHERE group_id = ? AND debtor_id = ? AND creditor_id = ?",
			groupID, key.DebtorID, key.CreditorID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete debt: %w", err)
		}
	}

	for _, debt := range cs.PutDebts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO debts (group_id, debtor_id, creditor_id, amount) VALUES (?, ?, ?, ?)
			 ON CONFLICT (group_id, debtor_id, creditor_id) DO UPDATE SET amount = excluded.amount`,
			groupID, debt.DebtorID, debt.CreditorID, debt.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert debt: %w", err)
		}
	}

	for i := range cs.AddMembers {
		member := &cs.AddMembers[i]
		if member.JoinedAt == 0 {
			member.JoinedAt = time.Now().Unix()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO members (group_id, user_id, username, balance, joined_at) VALUES (?, ?, ?, ?, ?)",
			groupID, member.UserID, member.Username, member.Balance.String(), member.JoinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	for _, userID := range cs.DeleteMembers {
		_, err = tx.ExecContext(ctx,
			"DELETE FROM members WHERE group_id = ? AND user_id = ?",
			groupID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete member: %w", err)
		}
	}

	for userID, balance := range cs.Balances {
		_, err = tx.ExecContext(ctx,
			"UPDATE members SET balance = ? WHERE group_id = ? AND user_id = ?",
			balance.String(), groupID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}
	}

	for i := range cs.Transactions {
		record := &cs.Transactions[i]
		if record.ID == "" {
			record.ID = uuid.New().String()
		}
		if record.CreatedAt == 0 {
			record.CreatedAt = time.Now().Unix()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transactions (id, group_id, payer_id, amount, split_type, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			record.ID, groupID, record.PayerID, record.Amount.String(), string(record.SplitType), record.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}

		for _, split := range record.Splits {
			var percentage interface{}
			if split.Percentage != nil {
				percentage = split.Percentage.String()
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO transaction_splits (transaction_id, user_id, amount, percentage) VALUES (?, ?, ?, ?)",
				record.ID, split.UserID, split.Amount.String(), percentage,
			)
			if err != nil {
				return fmt.Errorf("failed to insert split: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
