package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

// equalExpense builds an expense the way the ledger records it.
func equalExpense(t *testing.T, amount string, payer models.MemberID, members ...models.MemberID) models.Expense {
	t.Helper()
	splits, err := ComputeShares(dec(amount), payer, EqualPolicy(), members)
	require.NoError(t, err)
	return models.Expense{Amount: dec(amount), PaidBy: payer, Policy: models.SplitEqual, Splits: splits}
}

func assertBalances(t *testing.T, got Balances, want map[models.MemberID]string) {
	t.Helper()
	require.Len(t, got, len(want))
	for m, w := range want {
		bal, ok := got[m]
		require.Truef(t, ok, "missing balance for member %d", m)
		assert.Truef(t, bal.Equal(dec(w)), "member %d balance = %s, want %s", m, bal, w)
	}
}

func TestComputeNetBalances(t *testing.T) {
	members := []models.MemberID{1, 2, 3}

	tests := []struct {
		name        string
		expenses    func(t *testing.T) []models.Expense
		settlements []models.Settlement
		want        map[models.MemberID]string
	}{
		{
			name:     "no activity leaves everyone at zero",
			expenses: func(t *testing.T) []models.Expense { return nil },
			want:     map[models.MemberID]string{1: "0", 2: "0", 3: "0"},
		},
		{
			name: "payer is credited amount minus own share",
			expenses: func(t *testing.T) []models.Expense {
				return []models.Expense{equalExpense(t, "90", 1, 1, 2, 3)}
			},
			want: map[models.MemberID]string{1: "60", 2: "-30", 3: "-30"},
		},
		{
			name: "expenses by different payers net out",
			expenses: func(t *testing.T) []models.Expense {
				return []models.Expense{
					equalExpense(t, "90", 1, 1, 2, 3),
					equalExpense(t, "60", 2, 1, 2, 3),
				}
			},
			want: map[models.MemberID]string{1: "40", 2: "10", 3: "-50"},
		},
		{
			name: "settlement credits sender and debits receiver",
			expenses: func(t *testing.T) []models.Expense {
				return []models.Expense{equalExpense(t, "90", 1, 1, 2, 3)}
			},
			settlements: []models.Settlement{{From: 2, To: 1, Amount: dec("30")}},
			want:        map[models.MemberID]string{1: "30", 2: "0", 3: "-30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeNetBalances(members, tt.expenses(t), tt.settlements)
			require.NoError(t, err)
			assertBalances(t, got, tt.want)
			assert.True(t, got.Sum().IsZero())
		})
	}
}

func TestComputeNetBalances_PayerOutsideSplitIsCreditedFully(t *testing.T) {
	members := []models.MemberID{1, 2, 3}
	splits, err := ComputeShares(dec("10"), 3, EqualPolicy(1, 2), members)
	require.NoError(t, err)

	got, err := ComputeNetBalances(members, []models.Expense{{Amount: dec("10"), PaidBy: 3, Splits: splits}}, nil)
	require.NoError(t, err)
	assertBalances(t, got, map[models.MemberID]string{1: "-5", 2: "-5", 3: "10"})
}

func TestComputeNetBalances_ZeroSum(t *testing.T) {
	members := []models.MemberID{1, 2, 3, 4, 5}
	var expenses []models.Expense
	amounts := []string{"10.00", "33.33", "0.01", "99.99", "1000", "7.13", "250.50"}
	for i, a := range amounts {
		payer := members[i%len(members)]
		eq, err := ComputeShares(dec(a), payer, EqualPolicy(members[:2+i%4]...), members)
		require.NoError(t, err)
		expenses = append(expenses, models.Expense{Amount: dec(a), PaidBy: payer, Splits: eq})

		pct, err := ComputeShares(dec(a), payer, PercentagePolicy(
			PercentShare{Member: 1, Percent: dec("12.5")},
			PercentShare{Member: 3, Percent: dec("37.5")},
			PercentShare{Member: 5, Percent: dec("50")},
		), members)
		require.NoError(t, err)
		expenses = append(expenses, models.Expense{Amount: dec(a), PaidBy: payer, Splits: pct})
	}
	settlements := []models.Settlement{
		{From: 2, To: 1, Amount: dec("12.34")},
		{From: 4, To: 5, Amount: dec("0.99")},
		{From: 1, To: 3, Amount: dec("100")},
	}

	got, err := ComputeNetBalances(members, expenses, settlements)
	require.NoError(t, err)
	assert.True(t, got.Sum().Abs().LessThanOrEqual(Epsilon))
}

func TestComputeNetBalances_Idempotent(t *testing.T) {
	members := []models.MemberID{1, 2, 3}
	expenses := []models.Expense{equalExpense(t, "10.00", 1, 1, 2, 3), equalExpense(t, "7.01", 3, 2, 3)}
	settlements := []models.Settlement{{From: 2, To: 1, Amount: dec("1.11")}}

	first, err := ComputeNetBalances(members, expenses, settlements)
	require.NoError(t, err)
	second, err := ComputeNetBalances(members, expenses, settlements)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for m, v := range first {
		assert.Equal(t, v.String(), second[m].String())
	}
}

func TestComputeNetBalances_UnknownMember(t *testing.T) {
	members := []models.MemberID{1, 2}

	tests := []struct {
		name        string
		expenses    []models.Expense
		settlements []models.Settlement
		member      models.MemberID
	}{
		{
			name:     "unknown payer",
			expenses: []models.Expense{{Amount: dec("10"), PaidBy: 9, Splits: []models.Split{{Member: 1, Share: dec("10")}}}},
			member:   9,
		},
		{
			name:     "unknown split member",
			expenses: []models.Expense{{Amount: dec("10"), PaidBy: 1, Splits: []models.Split{{Member: 7, Share: dec("10")}}}},
			member:   7,
		},
		{
			name:        "unknown settlement sender",
			settlements: []models.Settlement{{From: 5, To: 1, Amount: dec("1")}},
			member:      5,
		},
		{
			name:        "unknown settlement receiver",
			settlements: []models.Settlement{{From: 1, To: 6, Amount: dec("1")}},
			member:      6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeNetBalances(members, tt.expenses, tt.settlements)
			require.ErrorIs(t, err, ErrUnknownMember)
			assert.Nil(t, got)

			var memberErr *UnknownMemberError
			require.ErrorAs(t, err, &memberErr)
			assert.Equal(t, tt.member, memberErr.Member)
		})
	}
}

func TestComputeNetBalances_InvariantViolation(t *testing.T) {
	// Shares that do not add up to the amount create money out of nothing.
	corrupt := models.Expense{
		Amount: dec("10"),
		PaidBy: 1,
		Splits: []models.Split{{Member: 1, Share: dec("3")}, {Member: 2, Share: dec("3")}},
	}

	got, err := ComputeNetBalances([]models.MemberID{1, 2}, []models.Expense{corrupt}, nil)
	require.ErrorIs(t, err, ErrInvariantViolation)
	require.NotNil(t, got, "balances are still returned for logging")

	var violation *InvariantViolationError
	require.ErrorAs(t, err, &violation)
	assert.True(t, violation.Sum.Equal(dec("4")))
}

func TestCheckZeroSum(t *testing.T) {
	assert.NoError(t, CheckZeroSum(Balances{}))
	assert.NoError(t, CheckZeroSum(Balances{1: dec("5"), 2: dec("-5")}))
	assert.NoError(t, CheckZeroSum(Balances{1: dec("5.005"), 2: dec("-5")}))
	assert.ErrorIs(t, CheckZeroSum(Balances{1: dec("5.02"), 2: dec("-5")}), ErrInvariantViolation)
}

func TestSummarize(t *testing.T) {
	members := []models.MemberID{3, 1, 2}
	expenses := []models.Expense{equalExpense(t, "90", 1, 1, 2, 3)}
	settlements := []models.Settlement{{From: 2, To: 1, Amount: dec("30")}}

	got, err := Summarize(members, expenses, settlements)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Member order is preserved for display.
	assert.Equal(t, models.MemberID(3), got[0].Member)
	assert.Equal(t, models.MemberID(1), got[1].Member)

	alice := got[1]
	assert.True(t, alice.Paid.Equal(dec("90")))
	assert.True(t, alice.Owed.Equal(dec("60")), "30 own share + 30 received")
	assert.True(t, alice.Net.Equal(dec("30")))

	bob := got[2]
	assert.True(t, bob.Paid.Equal(dec("30")))
	assert.True(t, bob.Owed.Equal(dec("30")))
	assert.True(t, bob.Net.Equal(decimal.Zero))
}
