package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Transfer is a suggested payment that moves balances toward zero.
type Transfer struct {
	From   models.MemberID // Person who owes
	To     models.MemberID // Person who is owed
	Amount decimal.Decimal
}

type position struct {
	member    models.MemberID
	remaining decimal.Decimal
}

// SuggestTransfers matches debtors with creditors so that paying every
// returned transfer zeroes all balances.
//
// Greedy two-pointer sweep over debtors and creditors, each ordered by member
// id: transfer the smaller of the two remaining amounts, advance whichever side
// is settled. Magnitudes below Epsilon count as zero. The result is
// deterministic for identical input; it is not guaranteed to be the minimum
// number of transfers.
func SuggestTransfers(balances Balances) []Transfer {
	var debtors, creditors []position
	for member, bal := range balances {
		if bal.Abs().LessThan(Epsilon) {
			continue
		}
		if bal.IsNegative() {
			debtors = append(debtors, position{member: member, remaining: bal.Neg()})
		} else {
			creditors = append(creditors, position{member: member, remaining: bal})
		}
	}
	sortPositions(debtors)
	sortPositions(creditors)

	transfers := make([]Transfer, 0, len(debtors)+len(creditors))
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		amount := decimal.Min(debtor.remaining, creditor.remaining)
		if rounded := amount.Round(2); rounded.GreaterThanOrEqual(Epsilon) {
			transfers = append(transfers, Transfer{From: debtor.member, To: creditor.member, Amount: rounded})
		}

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		if debtor.remaining.LessThan(Epsilon) {
			i++
		}
		if creditor.remaining.LessThan(Epsilon) {
			j++
		}
	}

	return transfers
}

func sortPositions(p []position) {
	sort.Slice(p, func(a, b int) bool { return p[a].member < p[b].member })
}
