package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Reconcile removes what recorded settlements already paid from raw
// suggestions computed over expense-only balances.
//
// Settlements are applied in order; each one consumes amount from the
// suggestion with the same sender and receiver, and a suggestion whose
// remainder drops below Epsilon is removed. ok is false when some settlement
// does not fit the plan (no suggestion for its pair, or it pays more than was
// suggested). The plan then no longer describes the ledger and callers should
// run SuggestTransfers on settlement-inclusive balances instead.
func Reconcile(raw []Transfer, settlements []models.Settlement) (outstanding []Transfer, ok bool) {
	remaining := make([]Transfer, len(raw))
	copy(remaining, raw)

	type pair struct{ from, to models.MemberID }
	byPair := make(map[pair]int, len(remaining))
	for i, t := range remaining {
		byPair[pair{t.From, t.To}] = i
	}

	ok = true
	for _, s := range settlements {
		i, found := byPair[pair{s.From, s.To}]
		if !found {
			ok = false
			continue
		}
		left := remaining[i].Amount.Sub(s.Amount)
		if left.LessThanOrEqual(Epsilon.Neg()) {
			ok = false
		}
		remaining[i].Amount = decimal.Max(left, decimal.Zero)
	}

	outstanding = make([]Transfer, 0, len(remaining))
	for _, t := range remaining {
		if t.Amount.LessThan(Epsilon) {
			continue
		}
		t.Amount = t.Amount.Round(2)
		outstanding = append(outstanding, t)
	}
	return outstanding, ok
}
