package service

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Request amounts accept a JSON number or string. Response amounts are
// JSON numbers with exactly two decimals.

type RecordExpenseRequest struct {
	GroupID     int64           `json:"group_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      int64           `json:"paid_by"`
	SplitType   string          `json:"split_type"`

	// Participants narrows an equal split. Empty means the whole group.
	Participants []int64 `json:"participants,omitempty"`

	// Percentages drive a percentage split.
	Percentages []PercentageEntry `json:"percentages,omitempty"`
}

type PercentageEntry struct {
	Member  int64           `json:"member"`
	Percent decimal.Decimal `json:"percent"`
}

type RecordExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type Expense struct {
	ID          int64       `json:"id"`
	GroupID     int64       `json:"group_id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	PaidBy      int64       `json:"paid_by"`
	SplitType   string      `json:"split_type"`
	Splits      []Share     `json:"splits"`
	CreatedAt   int64       `json:"created_at"`
}

type Share struct {
	Member int64       `json:"member"`
	Amount json.Number `json:"amount"`
}

type GetBalancesRequest struct {
	GroupID int64 `json:"group_id"`
}

type GetBalancesResponse struct {
	// Balances is ordered by member id.
	Balances []Balance `json:"balances"`
}

type Balance struct {
	Member int64       `json:"member"`
	Amount json.Number `json:"amount"`
}

type GetSuggestedTransfersRequest struct {
	GroupID int64 `json:"group_id"`
}

type GetSuggestedTransfersResponse struct {
	Transfers []Transfer `json:"transfers"`
}

type Transfer struct {
	From   int64       `json:"from"`
	To     int64       `json:"to"`
	Amount json.Number `json:"amount"`
}

type RecordSettlementRequest struct {
	GroupID int64           `json:"group_id"`
	From    int64           `json:"from"`
	To      int64           `json:"to"`
	Amount  decimal.Decimal `json:"amount"`
	Note    string          `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type Settlement struct {
	ID      int64       `json:"id"`
	GroupID int64       `json:"group_id"`
	From    int64       `json:"from"`
	To      int64       `json:"to"`
	Amount  json.Number `json:"amount"`
	PaidAt  int64       `json:"paid_at"`
	Note    string      `json:"note,omitempty"`
}
