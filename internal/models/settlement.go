package models

import "github.com/shopspring/decimal"

// Settlement represents a payment between group members to clear debts.
// Settlements form an append-only log.
type Settlement struct {
	// ID is the unique identifier for the settlement.
	ID int64

	// GroupID is the group this settlement belongs to.
	GroupID int64

	// From is the member who paid (debtor settling up).
	From MemberID

	// To is the member who received payment (creditor being paid).
	To MemberID

	// Amount is the positive payment amount.
	Amount decimal.Decimal

	// PaidAt is the Unix timestamp when the settlement was recorded.
	PaidAt int64

	// Note is an optional description for the settlement.
	Note string
}
