package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Balances maps each member to a signed net position.
// Positive = is owed money, negative = owes money.
type Balances map[models.MemberID]decimal.Decimal

// Sum adds every balance. Zero for a consistent ledger.
func (b Balances) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range b {
		sum = sum.Add(v)
	}
	return sum
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	Member models.MemberID
	Net    decimal.Decimal // Positive = owed money, Negative = owes money
	Paid   decimal.Decimal // Expenses paid plus settlements sent
	Owed   decimal.Decimal // Shares owed plus settlements received
}

// ComputeNetBalances folds expenses and settlements into one net balance per member.
//
// Algorithm:
//   - every member starts at zero
//   - for each expense: payer is credited the full amount, each split member is debited its share
//   - for each settlement from X to Y: X is credited, Y is debited
//
// Any reference to a member outside members fails with *UnknownMemberError.
// If the result does not sum to zero the balances are still returned together
// with an *InvariantViolationError.
func ComputeNetBalances(members []models.MemberID, expenses []models.Expense, settlements []models.Settlement) (Balances, error) {
	summaries, err := Summarize(members, expenses, settlements)
	if err != nil {
		return nil, err
	}

	balances := make(Balances, len(summaries))
	for _, s := range summaries {
		balances[s.Member] = s.Net
	}

	return balances, CheckZeroSum(balances)
}

// Summarize computes paid, owed and net amounts per member, in member order.
func Summarize(members []models.MemberID, expenses []models.Expense, settlements []models.Settlement) ([]MemberBalance, error) {
	summaries := make([]MemberBalance, len(members))
	index := make(map[models.MemberID]int, len(members))
	for i, m := range members {
		summaries[i] = MemberBalance{Member: m, Net: decimal.Zero, Paid: decimal.Zero, Owed: decimal.Zero}
		index[m] = i
	}

	lookup := func(m models.MemberID, context string) (*MemberBalance, error) {
		i, ok := index[m]
		if !ok {
			return nil, &UnknownMemberError{Member: m, Context: context}
		}
		return &summaries[i], nil
	}

	for _, exp := range expenses {
		payer, err := lookup(exp.PaidBy, "expense payer")
		if err != nil {
			return nil, err
		}
		payer.Paid = payer.Paid.Add(exp.Amount)

		for _, split := range exp.Splits {
			member, err := lookup(split.Member, "expense split")
			if err != nil {
				return nil, err
			}
			member.Owed = member.Owed.Add(split.Share)
		}
	}

	for _, s := range settlements {
		from, err := lookup(s.From, "settlement sender")
		if err != nil {
			return nil, err
		}
		to, err := lookup(s.To, "settlement receiver")
		if err != nil {
			return nil, err
		}
		// Payer's balance improves, receiver's receivable shrinks
		from.Paid = from.Paid.Add(s.Amount)
		to.Owed = to.Owed.Add(s.Amount)
	}

	for i := range summaries {
		summaries[i].Net = summaries[i].Paid.Sub(summaries[i].Owed)
	}

	return summaries, nil
}

// CheckZeroSum returns *InvariantViolationError when balances do not sum to zero within Epsilon.
func CheckZeroSum(balances Balances) error {
	sum := balances.Sum()
	if sum.Abs().GreaterThan(Epsilon) {
		return &InvariantViolationError{Sum: sum}
	}
	return nil
}
