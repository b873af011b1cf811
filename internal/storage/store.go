// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when the requested group does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMemberInUse is returned by UpdateGroup when a member that is still
	// referenced by an expense, split or settlement would be removed.
	ErrMemberInUse = errors.New("member is referenced by recorded history")

	// ErrNotMember is returned when a write references a member outside the group.
	ErrNotMember = errors.New("not a group member")
)

// MemberInUseError names the member UpdateGroup refused to remove.
type MemberInUseError struct {
	Member models.MemberID
}

func (e *MemberInUseError) Error() string {
	return fmt.Sprintf("member %d is referenced by recorded history", e.Member)
}

func (e *MemberInUseError) Unwrap() error { return ErrMemberInUse }

// NotMemberError names the member a write referenced outside the group's current member set.
type NotMemberError struct {
	Member models.MemberID
	// Field names the reference ("expense payer", "settlement receiver", ...).
	Field string
}

func (e *NotMemberError) Error() string {
	return fmt.Sprintf("%s %d is not a group member", e.Field, e.Member)
}

func (e *NotMemberError) Unwrap() error { return ErrNotMember }

// Snapshot is one consistent read of everything needed to compute a group's balances.
type Snapshot struct {
	Group       *models.Group
	Expenses    []models.Expense    // recording order
	Settlements []models.Settlement // recording order
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger layer.
type Store interface {
	// CreateGroup persists a new group. group.ID and group.CreatedAt are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by its ID. Returns ErrNotFound if absent.
	GetGroup(ctx context.Context, groupID int64) (*models.Group, error)

	// ListGroups returns every group, oldest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// ListGroupsByMember returns the groups that contain member, oldest first.
	ListGroupsByMember(ctx context.Context, member models.MemberID) ([]*models.Group, error)

	// UpdateGroup replaces the group's name and member set.
	// Returns ErrNotFound if absent and *MemberInUseError if a referenced member would be dropped.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group with all its expenses and settlements.
	DeleteGroup(ctx context.Context, groupID int64) error

	// CreateExpense appends an expense with its splits and bumps the group's total.
	// expense.ID and expense.CreatedAt are populated by the store.
	// Returns *NotMemberError if the payer or a split member left the group.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpenses returns a group's expenses in recording order.
	ListExpenses(ctx context.Context, groupID int64) ([]models.Expense, error)

	// CreateSettlement appends a settlement. settlement.ID and settlement.PaidAt are populated by the store.
	// Returns *NotMemberError if either side left the group.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlements returns a group's settlements in recording order.
	ListSettlements(ctx context.Context, groupID int64) ([]models.Settlement, error)

	// Snapshot reads a group with its expenses and settlements in one transaction.
	Snapshot(ctx context.Context, groupID int64) (*Snapshot, error)

	// Close releases any resources held by the store.
	Close() error
}
