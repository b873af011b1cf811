package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sumShares(splits []models.Split) decimal.Decimal {
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s.Share)
	}
	return total
}

func TestComputeShares_Equal(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		participants []models.MemberID
		policy       Policy
		want         []string
	}{
		{
			name:         "three-way split gives the extra cent to the last participant",
			amount:       "10.00",
			participants: []models.MemberID{1, 2, 3},
			policy:       EqualPolicy(),
			want:         []string{"3.33", "3.33", "3.34"},
		},
		{
			name:         "even split",
			amount:       "90",
			participants: []models.MemberID{1, 2, 3},
			policy:       EqualPolicy(),
			want:         []string{"30", "30", "30"},
		},
		{
			name:         "single participant takes everything",
			amount:       "42.17",
			participants: []models.MemberID{7},
			policy:       EqualPolicy(),
			want:         []string{"42.17"},
		},
		{
			name:         "explicit subset in caller order",
			amount:       "0.05",
			participants: []models.MemberID{1, 2, 3, 4},
			policy:       EqualPolicy(4, 2),
			want:         []string{"0.02", "0.03"},
		},
		{
			name:         "amount with sub-cent digits is rounded first",
			amount:       "20.004",
			participants: []models.MemberID{1, 2, 3},
			policy:       EqualPolicy(),
			want:         []string{"6.66", "6.66", "6.68"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := ComputeShares(dec(tt.amount), tt.participants[0], tt.policy, tt.participants)
			require.NoError(t, err)
			require.Len(t, splits, len(tt.want))

			for i, w := range tt.want {
				assert.Truef(t, splits[i].Share.Equal(dec(w)), "share %d = %s, want %s", i, splits[i].Share, w)
			}
			assert.True(t, sumShares(splits).Equal(dec(tt.amount).Round(2)))
		})
	}
}

func TestComputeShares_EqualExactness(t *testing.T) {
	members := []models.MemberID{11, 12, 13, 14, 15, 16, 17}
	amounts := []string{"0.01", "0.07", "1.00", "10.00", "99.99", "100.01", "1234.56", "7.77"}

	for n := 1; n <= len(members); n++ {
		for _, a := range amounts {
			splits, err := ComputeShares(dec(a), members[0], EqualPolicy(), members[:n])
			require.NoError(t, err)
			assert.Truef(t, sumShares(splits).Equal(dec(a)), "amount %s over %d members sums to %s", a, n, sumShares(splits))

			// Shares differ by the leftover cents only, and only on the last participant.
			for _, s := range splits[:n-1] {
				assert.True(t, s.Share.Equal(splits[0].Share))
			}
		}
	}
}

func TestComputeShares_Percentage(t *testing.T) {
	participants := []models.MemberID{1, 2, 3}

	t.Run("shares follow percentages", func(t *testing.T) {
		splits, err := ComputeShares(dec("200"), 1, PercentagePolicy(
			PercentShare{Member: 1, Percent: dec("50")},
			PercentShare{Member: 2, Percent: dec("30")},
			PercentShare{Member: 3, Percent: dec("20")},
		), participants)
		require.NoError(t, err)

		assert.True(t, splits[0].Share.Equal(dec("100")))
		assert.True(t, splits[1].Share.Equal(dec("60")))
		assert.True(t, splits[2].Share.Equal(dec("40")))
	})

	t.Run("rounding dust goes to the last entry", func(t *testing.T) {
		splits, err := ComputeShares(dec("10.00"), 2, PercentagePolicy(
			PercentShare{Member: 3, Percent: dec("33.33")},
			PercentShare{Member: 1, Percent: dec("33.33")},
			PercentShare{Member: 2, Percent: dec("33.34")},
		), participants)
		require.NoError(t, err)

		assert.Equal(t, models.MemberID(2), splits[2].Member)
		assert.True(t, splits[0].Share.Equal(dec("3.33")))
		assert.True(t, splits[1].Share.Equal(dec("3.33")))
		assert.True(t, splits[2].Share.Equal(dec("3.34")))
		assert.True(t, sumShares(splits).Equal(dec("10")))
	})

	t.Run("percentages within a hundredth of 100 are accepted", func(t *testing.T) {
		splits, err := ComputeShares(dec("100"), 1, PercentagePolicy(
			PercentShare{Member: 1, Percent: dec("33.333")},
			PercentShare{Member: 2, Percent: dec("33.333")},
			PercentShare{Member: 3, Percent: dec("33.333")},
		), participants)
		require.NoError(t, err)
		assert.True(t, sumShares(splits).Equal(dec("100")))
	})

	t.Run("payer does not need a share", func(t *testing.T) {
		splits, err := ComputeShares(dec("50"), 1, PercentagePolicy(
			PercentShare{Member: 2, Percent: dec("100")},
		), participants)
		require.NoError(t, err)
		require.Len(t, splits, 1)
		assert.True(t, splits[0].Share.Equal(dec("50")))
	})
}

func TestComputeShares_Errors(t *testing.T) {
	participants := []models.MemberID{1, 2, 3}

	tests := []struct {
		name    string
		amount  string
		payer   models.MemberID
		policy  Policy
		members []models.MemberID
		target  error
	}{
		{"percentages below 100", "100", 1, PercentagePolicy(
			PercentShare{Member: 1, Percent: dec("50")},
			PercentShare{Member: 2, Percent: dec("40")},
		), participants, ErrInvalidSplit},
		{"percentages above 100", "100", 1, PercentagePolicy(
			PercentShare{Member: 1, Percent: dec("60")},
			PercentShare{Member: 2, Percent: dec("41")},
		), participants, ErrInvalidSplit},
		{"empty percentage entries", "100", 1, PercentagePolicy(), participants, ErrInvalidSplit},
		{"percentage member outside group", "100", 1, PercentagePolicy(
			PercentShare{Member: 1, Percent: dec("50")},
			PercentShare{Member: 9, Percent: dec("50")},
		), participants, ErrInvalidSplit},
		{"duplicate percentage member", "100", 1, PercentagePolicy(
			PercentShare{Member: 1, Percent: dec("50")},
			PercentShare{Member: 1, Percent: dec("50")},
		), participants, ErrInvalidSplit},
		{"negative percentage", "100", 1, PercentagePolicy(
			PercentShare{Member: 1, Percent: dec("120")},
			PercentShare{Member: 2, Percent: dec("-20")},
		), participants, ErrInvalidSplit},
		{"equal with no participants", "100", 1, EqualPolicy(), []models.MemberID{}, ErrInvalidSplit},
		{"equal subset outside group", "100", 1, EqualPolicy(1, 5), participants, ErrInvalidSplit},
		{"equal subset with duplicates", "100", 1, EqualPolicy(2, 2), participants, ErrInvalidSplit},
		{"zero amount", "0", 1, EqualPolicy(), participants, ErrInvalidSplit},
		{"negative amount", "-5", 1, EqualPolicy(), participants, ErrInvalidSplit},
		{"sub-cent amount", "0.004", 1, EqualPolicy(), participants, ErrInvalidSplit},
		{"unknown policy", "10", 1, Policy{Kind: "shares"}, participants, ErrInvalidSplit},
		{"payer outside group", "10", 8, EqualPolicy(), participants, ErrUnknownMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := ComputeShares(dec(tt.amount), tt.payer, tt.policy, tt.members)
			require.Error(t, err)
			assert.Nil(t, splits)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestComputeShares_ErrorTypes(t *testing.T) {
	_, err := ComputeShares(dec("10"), 1, PercentagePolicy(
		PercentShare{Member: 1, Percent: dec("50")},
		PercentShare{Member: 2, Percent: dec("40")},
	), []models.MemberID{1, 2})

	var splitErr *InvalidSplitError
	require.True(t, errors.As(err, &splitErr))
	assert.Contains(t, splitErr.Reason, "sum to 90")

	_, err = ComputeShares(dec("10"), 4, EqualPolicy(), []models.MemberID{1, 2})

	var memberErr *UnknownMemberError
	require.True(t, errors.As(err, &memberErr))
	assert.Equal(t, models.MemberID(4), memberErr.Member)
	assert.Equal(t, "payer", memberErr.Context)
}
