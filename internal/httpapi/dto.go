package httpapi

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

// money renders an amount as a JSON number with exactly two decimals.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type groupRequest struct {
	Name    string            `json:"name"`
	UserIDs []models.MemberID `json:"user_ids"`
}

type groupPatch struct {
	Name    *string           `json:"name"`
	UserIDs []models.MemberID `json:"user_ids"`
}

type groupResponse struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	UserIDs       []models.MemberID `json:"user_ids"`
	TotalExpenses json.Number       `json:"total_expenses"`
	CreatedAt     time.Time         `json:"created_at"`
}

func toGroup(g *models.Group) groupResponse {
	return groupResponse{
		ID:            g.ID,
		Name:          g.Name,
		UserIDs:       g.Members,
		TotalExpenses: money(g.TotalExpenses),
		CreatedAt:     time.Unix(g.CreatedAt, 0).UTC(),
	}
}

// splitEntry is a percentage on input and a currency share on output.
type splitEntry struct {
	UserID models.MemberID `json:"user_id"`
	Share  decimal.Decimal `json:"share"`
}

type expenseRequest struct {
	Description  string             `json:"description"`
	Amount       decimal.Decimal    `json:"amount"`
	PaidBy       models.MemberID    `json:"paid_by"`
	SplitType    models.SplitPolicy `json:"split_type"`
	Splits       []splitEntry       `json:"splits"`
	Participants []models.MemberID  `json:"participants"`
}

func (req expenseRequest) input() ledger.ExpenseInput {
	in := ledger.ExpenseInput{
		Description:  req.Description,
		Amount:       req.Amount,
		PaidBy:       req.PaidBy,
		Policy:       req.SplitType,
		Participants: req.Participants,
	}
	for _, s := range req.Splits {
		in.Percentages = append(in.Percentages, calculator.PercentShare{Member: s.UserID, Percent: s.Share})
	}
	return in
}

type splitResponse struct {
	UserID models.MemberID `json:"user_id"`
	Share  json.Number     `json:"share"`
}

type expenseResponse struct {
	ID          int64              `json:"id"`
	Description string             `json:"description"`
	Amount      json.Number        `json:"amount"`
	PaidBy      models.MemberID    `json:"paid_by"`
	SplitType   models.SplitPolicy `json:"split_type"`
	Splits      []splitResponse    `json:"splits"`
	CreatedAt   time.Time          `json:"created_at"`
}

func toExpense(e *models.Expense) expenseResponse {
	splits := make([]splitResponse, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = splitResponse{UserID: s.Member, Share: money(s.Share)}
	}
	return expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      money(e.Amount),
		PaidBy:      e.PaidBy,
		SplitType:   e.Policy,
		Splits:      splits,
		CreatedAt:   time.Unix(e.CreatedAt, 0).UTC(),
	}
}

type settlementRequest struct {
	FromUser models.MemberID `json:"from_user"`
	ToUser   models.MemberID `json:"to_user"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

type settlementResponse struct {
	ID       int64           `json:"id"`
	FromUser models.MemberID `json:"from_user"`
	ToUser   models.MemberID `json:"to_user"`
	Amount   json.Number     `json:"amount"`
	PaidAt   time.Time       `json:"paid_at"`
	Note     string          `json:"note,omitempty"`
}

func toSettlement(s *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:       s.ID,
		FromUser: s.From,
		ToUser:   s.To,
		Amount:   money(s.Amount),
		PaidAt:   time.Unix(s.PaidAt, 0).UTC(),
		Note:     s.Note,
	}
}

type transferResponse struct {
	FromUser models.MemberID `json:"from_user"`
	ToUser   models.MemberID `json:"to_user"`
	Amount   json.Number     `json:"amount"`
}

func toTransfers(transfers []calculator.Transfer) []transferResponse {
	out := make([]transferResponse, len(transfers))
	for i, t := range transfers {
		out[i] = transferResponse{FromUser: t.From, ToUser: t.To, Amount: money(t.Amount)}
	}
	return out
}

// toBalances keys balances by member id; encoding/json sorts the keys.
func toBalances(b calculator.Balances) map[string]json.Number {
	out := make(map[string]json.Number, len(b))
	for m, v := range b {
		out[strconv.FormatInt(int64(m), 10)] = money(v)
	}
	return out
}

type memberSummary struct {
	UserID models.MemberID `json:"user_id"`
	Paid   json.Number     `json:"paid"`
	Owed   json.Number     `json:"owed"`
	Net    json.Number     `json:"net"`
}

type summaryResponse struct {
	Group     groupResponse          `json:"group"`
	Balances  map[string]json.Number `json:"balances"`
	Members   []memberSummary        `json:"members"`
	Transfers []transferResponse     `json:"transfers"`
}

func toSummary(s *ledger.Summary) summaryResponse {
	members := make([]memberSummary, len(s.Members))
	for i, m := range s.Members {
		members[i] = memberSummary{UserID: m.Member, Paid: money(m.Paid), Owed: money(m.Owed), Net: money(m.Net)}
	}
	return summaryResponse{
		Group:     toGroup(s.Group),
		Balances:  toBalances(s.Balances),
		Members:   members,
		Transfers: toTransfers(s.Transfers),
	}
}

type memberBalancesResponse struct {
	Member models.MemberID        `json:"member"`
	Groups map[string]json.Number `json:"groups"`
	Total  json.Number            `json:"total"`
}

func toMemberBalances(mb *ledger.MemberBalances) memberBalancesResponse {
	groups := make(map[string]json.Number, len(mb.Groups))
	for id, bal := range mb.Groups {
		groups[strconv.FormatInt(id, 10)] = money(bal)
	}
	return memberBalancesResponse{Member: mb.Member, Groups: groups, Total: money(mb.Total)}
}
