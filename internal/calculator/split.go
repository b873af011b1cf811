package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Epsilon is the smallest amount that counts as money (one cent).
var Epsilon = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// Policy describes how to divide an expense.
type Policy struct {
	Kind models.SplitPolicy

	// Members optionally narrows an equal split to a subset of the participants,
	// in the order shares are assigned. Empty means every participant.
	Members []models.MemberID

	// Percentages are required for a percentage split.
	Percentages []PercentShare
}

// PercentShare is one member's percentage of an expense.
type PercentShare struct {
	Member  models.MemberID
	Percent decimal.Decimal
}

// EqualPolicy splits evenly among members, or among all participants when none are given.
func EqualPolicy(members ...models.MemberID) Policy {
	return Policy{Kind: models.SplitEqual, Members: members}
}

// PercentagePolicy splits by the given percentages.
func PercentagePolicy(entries ...PercentShare) Policy {
	return Policy{Kind: models.SplitPercentage, Percentages: entries}
}

// ComputeShares divides amount according to policy.
//
// participants is the group's member list; every member referenced by the
// policy must appear in it, and so must the payer. The returned shares are in
// currency units and sum exactly to the amount (rounded to cents).
//
// Equal split: everybody gets amount/n truncated to cents, the last member in
// order takes the remainder. Percentage split: every entry gets its rounded
// share, the last entry absorbs the rounding dust.
func ComputeShares(amount decimal.Decimal, payer models.MemberID, policy Policy, participants []models.MemberID) ([]models.Split, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, invalidSplit("amount must be at least %s", Epsilon.StringFixed(2))
	}

	allowed := make(map[models.MemberID]bool, len(participants))
	for _, p := range participants {
		allowed[p] = true
	}

	var (
		splits []models.Split
		err    error
	)
	switch policy.Kind {
	case models.SplitEqual:
		members := policy.Members
		if len(members) == 0 {
			members = participants
		}
		if err := checkMembers(members, allowed); err != nil {
			return nil, err
		}
		splits = equalShares(amount, members)
	case models.SplitPercentage:
		splits, err = percentageShares(amount, policy.Percentages, allowed)
		if err != nil {
			return nil, err
		}
	default:
		return nil, invalidSplit("unknown split policy %q", policy.Kind)
	}

	if !allowed[payer] {
		return nil, &UnknownMemberError{Member: payer, Context: "payer"}
	}
	return splits, nil
}

func checkMembers(members []models.MemberID, allowed map[models.MemberID]bool) error {
	if len(members) == 0 {
		return invalidSplit("must have at least one participant")
	}
	seen := make(map[models.MemberID]bool, len(members))
	for _, m := range members {
		if !allowed[m] {
			return invalidSplit("member %d is not in the group", m)
		}
		if seen[m] {
			return invalidSplit("member %d listed more than once", m)
		}
		seen[m] = true
	}
	return nil
}

func equalShares(amount decimal.Decimal, members []models.MemberID) []models.Split {
	n := int64(len(members))
	share := amount.Div(decimal.NewFromInt(n)).Truncate(2)
	last := amount.Sub(share.Mul(decimal.NewFromInt(n - 1)))

	splits := make([]models.Split, len(members))
	for i, m := range members {
		splits[i] = models.Split{Member: m, Share: share}
	}
	splits[len(splits)-1].Share = last
	return splits
}

func percentageShares(amount decimal.Decimal, entries []PercentShare, allowed map[models.MemberID]bool) ([]models.Split, error) {
	if len(entries) == 0 {
		return nil, invalidSplit("percentage split needs at least one entry")
	}

	seen := make(map[models.MemberID]bool, len(entries))
	total := decimal.Zero
	for _, e := range entries {
		if !allowed[e.Member] {
			return nil, invalidSplit("member %d is not in the group", e.Member)
		}
		if seen[e.Member] {
			return nil, invalidSplit("member %d listed more than once", e.Member)
		}
		if e.Percent.IsNegative() {
			return nil, invalidSplit("percentage for member %d is negative", e.Member)
		}
		seen[e.Member] = true
		total = total.Add(e.Percent)
	}
	if total.Sub(hundred).Abs().GreaterThan(Epsilon) {
		return nil, invalidSplit("percentages sum to %s, want 100", total.String())
	}

	splits := make([]models.Split, len(entries))
	assigned := decimal.Zero
	for i, e := range entries[:len(entries)-1] {
		share := amount.Mul(e.Percent).Div(hundred).Round(2)
		splits[i] = models.Split{Member: e.Member, Share: share}
		assigned = assigned.Add(share)
	}

	lastEntry := entries[len(entries)-1]
	last := amount.Sub(assigned)
	if last.IsNegative() {
		return nil, invalidSplit("percentages do not round to the amount %s", amount.StringFixed(2))
	}
	splits[len(splits)-1] = models.Split{Member: lastEntry.Member, Share: last}

	return splits, nil
}
