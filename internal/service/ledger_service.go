// Package service exposes the ledger over the Connect protocol.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

// Ledger is the part of ledger.Service the RPC layer calls.
type Ledger interface {
	RecordExpense(ctx context.Context, groupID int64, in ledger.ExpenseInput) (*models.Expense, error)
	GetBalances(ctx context.Context, groupID int64) (calculator.Balances, error)
	GetSuggestedTransfers(ctx context.Context, groupID int64) ([]calculator.Transfer, error)
	RecordSettlement(ctx context.Context, groupID int64, in ledger.SettlementInput) (*models.Settlement, error)
}

var _ LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	ledger Ledger
}

// NewLedgerService creates a new LedgerService backed by l.
func NewLedgerService(l Ledger) *LedgerService {
	return &LedgerService{ledger: l}
}

// RecordExpense splits and records an expense.
func (s *LedgerService) RecordExpense(ctx context.Context, req *connect.Request[RecordExpenseRequest]) (*connect.Response[RecordExpenseResponse], error) {
	msg := req.Msg
	slog.Debug("RecordExpense request received",
		"group_id", msg.GroupID,
		"amount", msg.Amount.String(),
		"paid_by", msg.PaidBy,
		"split_type", msg.SplitType,
	)

	in := ledger.ExpenseInput{
		Description: msg.Description,
		Amount:      msg.Amount,
		PaidBy:      models.MemberID(msg.PaidBy),
		Policy:      models.SplitPolicy(msg.SplitType),
	}
	for _, p := range msg.Participants {
		in.Participants = append(in.Participants, models.MemberID(p))
	}
	for _, e := range msg.Percentages {
		in.Percentages = append(in.Percentages, calculator.PercentShare{Member: models.MemberID(e.Member), Percent: e.Percent})
	}

	expense, err := s.ledger.RecordExpense(ctx, msg.GroupID, in)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&RecordExpenseResponse{Expense: expenseToMessage(expense)}), nil
}

// GetBalances returns every member's net balance, ordered by member id.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	balances, err := s.ledger.GetBalances(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]Balance, 0, len(balances))
	for m, v := range balances {
		out = append(out, Balance{Member: int64(m), Amount: money(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Member < out[j].Member })

	return connect.NewResponse(&GetBalancesResponse{Balances: out}), nil
}

// GetSuggestedTransfers returns the outstanding transfers that settle the group.
func (s *LedgerService) GetSuggestedTransfers(ctx context.Context, req *connect.Request[GetSuggestedTransfersRequest]) (*connect.Response[GetSuggestedTransfersResponse], error) {
	transfers, err := s.ledger.GetSuggestedTransfers(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = Transfer{From: int64(t.From), To: int64(t.To), Amount: money(t.Amount)}
	}

	return connect.NewResponse(&GetSuggestedTransfersResponse{Transfers: out}), nil
}

// RecordSettlement records a payment between two members.
func (s *LedgerService) RecordSettlement(ctx context.Context, req *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error) {
	msg := req.Msg
	settlement, err := s.ledger.RecordSettlement(ctx, msg.GroupID, ledger.SettlementInput{
		From:   models.MemberID(msg.From),
		To:     models.MemberID(msg.To),
		Amount: msg.Amount,
		Note:   msg.Note,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&RecordSettlementResponse{Settlement: &Settlement{
		ID:      settlement.ID,
		GroupID: settlement.GroupID,
		From:    int64(settlement.From),
		To:      int64(settlement.To),
		Amount:  money(settlement.Amount),
		PaidAt:  settlement.PaidAt,
		Note:    settlement.Note,
	}}), nil
}

// money renders an amount as a JSON number with exactly two decimals.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func expenseToMessage(e *models.Expense) *Expense {
	splits := make([]Share, len(e.Splits))
	for i, split := range e.Splits {
		splits[i] = Share{Member: int64(split.Member), Amount: money(split.Share)}
	}
	return &Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      money(e.Amount),
		PaidBy:      int64(e.PaidBy),
		SplitType:   string(e.Policy),
		Splits:      splits,
		CreatedAt:   e.CreatedAt,
	}
}

// toConnectError maps ledger errors to Connect codes.
// Internal errors are not echoed to the client.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, calculator.ErrInvalidSplit),
		errors.Is(err, calculator.ErrUnknownMember),
		errors.Is(err, ledger.ErrInvalidSettlement):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ledger.ErrGroupNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	slog.Error("LedgerService internal error", "error", err)
	return connect.NewError(connect.CodeInternal, fmt.Errorf("internal error"))
}
