package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrInvalidSplit matches every *InvalidSplitError.
	ErrInvalidSplit = errors.New("invalid split")
	// ErrUnknownMember matches every *UnknownMemberError.
	ErrUnknownMember = errors.New("unknown member")
	// ErrInvariantViolation matches every *InvariantViolationError.
	ErrInvariantViolation = errors.New("balance invariant violated")
)

// InvalidSplitError reports split input the caller has to correct.
// Reason is safe to show to end users.
type InvalidSplitError struct {
	Reason string
}

func (e *InvalidSplitError) Error() string {
	return "invalid split: " + e.Reason
}

func (e *InvalidSplitError) Unwrap() error { return ErrInvalidSplit }

func invalidSplit(format string, args ...any) error {
	return &InvalidSplitError{Reason: fmt.Sprintf(format, args...)}
}

// UnknownMemberError reports a reference to a member outside the group.
type UnknownMemberError struct {
	Member models.MemberID
	// Context names the field that held the reference ("payer", "split", "settlement.from", ...).
	Context string
}

func (e *UnknownMemberError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("unknown member %d", e.Member)
	}
	return fmt.Sprintf("unknown member %d in %s", e.Member, e.Context)
}

func (e *UnknownMemberError) Unwrap() error { return ErrUnknownMember }

// InvariantViolationError means balances did not sum to zero after aggregation.
// It points at a calculation or data defect, never at user input.
type InvariantViolationError struct {
	Sum decimal.Decimal
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("balances sum to %s, want 0", e.Sum.String())
}

func (e *InvariantViolationError) Unwrap() error { return ErrInvariantViolation }
