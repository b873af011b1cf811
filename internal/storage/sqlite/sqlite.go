// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are a per-connection pragma, so set it in the DSN.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps snapshots consistent.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateGroup persists a new group with its members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.CreatedAt == 0 {
		group.CreatedAt = s.now().Unix()
	}
	group.TotalExpenses = decimal.Zero

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO groups (name, total_expenses, created_at) VALUES (?, ?, ?)",
		group.Name, group.TotalExpenses.StringFixed(2), group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read group id: %w", err)
	}

	if err := upsertMembers(ctx, tx, id, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	group.ID = id
	return nil
}

// GetGroup retrieves a group by ID, including its members in display order.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	return getGroup(ctx, s.db, groupID)
}

// ListGroups retrieves every group, oldest first.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.listGroups(ctx, "SELECT id, name, total_expenses, created_at FROM groups ORDER BY id")
}

// UpdateGroup replaces a group's name and member set.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getGroup(ctx, tx, group.ID)
	if err != nil {
		return err
	}

	keep := make(map[models.MemberID]bool, len(group.Members))
	for _, m := range group.Members {
		keep[m] = true
	}
	var removed []models.MemberID
	for _, m := range current.Members {
		if !keep[m] {
			removed = append(removed, m)
		}
	}

	for _, m := range removed {
		inUse, err := memberReferenced(ctx, tx, group.ID, m)
		if err != nil {
			return err
		}
		if inUse {
			return &storage.MemberInUseError{Member: m}
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM group_members WHERE group_id = ? AND member_id = ?", group.ID, m,
		); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
	}

	if err := upsertMembers(ctx, tx, group.ID, group.Members); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE groups SET name = ? WHERE id = ?", group.Name, group.ID); err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	group.CreatedAt = current.CreatedAt
	group.TotalExpenses = current.TotalExpenses
	return nil
}

// DeleteGroup removes a group. Members, expenses, splits and settlements cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %d: %w", groupID, storage.ErrNotFound)
	}
	return nil
}

// Snapshot reads a group, its expenses and its settlements in one transaction.
func (s *SQLiteStore) Snapshot(ctx context.Context, groupID int64) (*storage.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	group, err := getGroup(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := listExpenses(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := listSettlements(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &storage.Snapshot{Group: group, Expenses: expenses, Settlements: settlements}, nil
}

func getGroup(ctx context.Context, q querier, groupID int64) (*models.Group, error) {
	group := &models.Group{}
	err := q.QueryRowContext(ctx,
		"SELECT id, name, total_expenses, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.TotalExpenses, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %d: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := listMembers(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return group, nil
}

func (s *SQLiteStore) listGroups(ctx context.Context, query string, args ...any) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.TotalExpenses, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	rows.Close()

	// Members are loaded after the cursor is closed; the pool has one connection.
	for _, group := range groups {
		members, err := listMembers(ctx, s.db, group.ID)
		if err != nil {
			return nil, err
		}
		group.Members = members
	}

	return groups, nil
}
