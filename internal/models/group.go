package models

import "github.com/shopspring/decimal"

// MemberID identifies a member. Always positive.
type MemberID int64

// Group is a set of members who share expenses.
// Deleting a group removes its expenses and settlements.
type Group struct {
	// ID is the unique identifier for the group.
	ID int64

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// Members is the member set in display order. IDs are unique.
	Members []MemberID

	// TotalExpenses is the running total of recorded expense amounts.
	// Derived by the store, never written by callers.
	TotalExpenses decimal.Decimal

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether m belongs to the group.
func (g *Group) HasMember(m MemberID) bool {
	for _, member := range g.Members {
		if member == m {
			return true
		}
	}
	return false
}
