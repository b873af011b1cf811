package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

func TestReconcile(t *testing.T) {
	raw := []Transfer{
		{From: 2, To: 1, Amount: dec("30")},
		{From: 3, To: 1, Amount: dec("30")},
	}

	tests := []struct {
		name        string
		settlements []models.Settlement
		want        []Transfer
		wantOK      bool
	}{
		{
			name:   "no settlements",
			want:   raw,
			wantOK: true,
		},
		{
			name:        "exact settlement removes the suggestion",
			settlements: []models.Settlement{{From: 2, To: 1, Amount: dec("30")}},
			want:        []Transfer{{From: 3, To: 1, Amount: dec("30")}},
			wantOK:      true,
		},
		{
			name: "partial settlements accumulate",
			settlements: []models.Settlement{
				{From: 3, To: 1, Amount: dec("10")},
				{From: 3, To: 1, Amount: dec("5.50")},
			},
			want: []Transfer{
				{From: 2, To: 1, Amount: dec("30")},
				{From: 3, To: 1, Amount: dec("14.50")},
			},
			wantOK: true,
		},
		{
			name: "everything paid",
			settlements: []models.Settlement{
				{From: 3, To: 1, Amount: dec("30")},
				{From: 2, To: 1, Amount: dec("30")},
			},
			want:   []Transfer{},
			wantOK: true,
		},
		{
			name:        "settlement for a pair outside the plan",
			settlements: []models.Settlement{{From: 2, To: 3, Amount: dec("10")}},
			want:        raw,
			wantOK:      false,
		},
		{
			name:        "overpayment",
			settlements: []models.Settlement{{From: 2, To: 1, Amount: dec("45")}},
			want:        []Transfer{{From: 3, To: 1, Amount: dec("30")}},
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Reconcile(raw, tt.settlements)
			assert.Equal(t, tt.wantOK, ok)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assert.Equal(t, w.From, got[i].From)
				assert.Equal(t, w.To, got[i].To)
				assert.Truef(t, w.Amount.Equal(got[i].Amount), "amount = %s, want %s", got[i].Amount, w.Amount)
			}
		})
	}

	// raw is never modified
	assert.True(t, raw[0].Amount.Equal(dec("30")))
}

func TestReconcile_MatchesSettlementInclusiveBalances(t *testing.T) {
	members := []models.MemberID{1, 2, 3, 4}
	expenses := []models.Expense{
		equalExpense(t, "120", 1, 1, 2, 3, 4),
		equalExpense(t, "40", 4, 2, 4),
	}
	settlements := []models.Settlement{{From: 2, To: 1, Amount: dec("20")}}

	expenseOnly, err := ComputeNetBalances(members, expenses, nil)
	require.NoError(t, err)
	current, err := ComputeNetBalances(members, expenses, settlements)
	require.NoError(t, err)

	outstanding, ok := Reconcile(SuggestTransfers(expenseOnly), settlements)
	require.True(t, ok)

	for m, v := range applyTransfers(current, outstanding) {
		assert.Truef(t, v.Abs().LessThan(Epsilon), "member %d left with %s", m, v)
	}
}
