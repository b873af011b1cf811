package models

import "github.com/shopspring/decimal"

// SplitPolicy selects how an expense amount is divided.
type SplitPolicy string

const (
	// SplitEqual divides the amount evenly; the last participant takes the leftover cent(s).
	SplitEqual SplitPolicy = "equal"
	// SplitPercentage divides the amount by caller-supplied percentages.
	SplitPercentage SplitPolicy = "percentage"
)

// Valid reports whether p is a known policy.
func (p SplitPolicy) Valid() bool {
	return p == SplitEqual || p == SplitPercentage
}

// Expense is an amount paid by one member and shared by others.
// Expenses are immutable once recorded.
type Expense struct {
	// ID is the unique identifier for the expense.
	ID int64

	// GroupID is the group that owns this expense.
	GroupID int64

	// Description is free text (e.g., "Dinner", "Cab to airport").
	Description string

	// Amount is the positive total, in currency units with 2 decimals.
	Amount decimal.Decimal

	// PaidBy is the member who paid. Must belong to the owning group.
	PaidBy MemberID

	// Policy is the split policy the shares were computed with.
	Policy SplitPolicy

	// Splits are the per-member shares in currency units, in computation order.
	// They sum exactly to Amount.
	Splits []Split

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Split is one member's share of an expense.
type Split struct {
	Member MemberID
	Share  decimal.Decimal
}
