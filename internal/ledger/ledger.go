// Package ledger is the entry point to the expense-sharing core.
//
// Service validates input, computes expense shares, and derives balances and
// suggested transfers from one store snapshot per call. It keeps no state of
// its own and is safe for concurrent use.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Service implements the ledger operations on top of a storage.Store.
type Service struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics records expense, settlement and invariant counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new ledger service.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExpenseInput is an expense as submitted by a caller.
type ExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	PaidBy      models.MemberID
	Policy      models.SplitPolicy

	// Participants narrows an equal split to a subset of the group. Empty means everyone.
	Participants []models.MemberID

	// Percentages are required for a percentage split.
	Percentages []calculator.PercentShare
}

// SettlementInput is a real-world payment as submitted by a caller.
type SettlementInput struct {
	From   models.MemberID
	To     models.MemberID
	Amount decimal.Decimal
	Note   string
}

// RecordExpense computes the shares of a new expense and stores it.
// Fails with *calculator.InvalidSplitError or *calculator.UnknownMemberError on bad input.
func (s *Service) RecordExpense(ctx context.Context, groupID int64, in ExpenseInput) (*models.Expense, error) {
	if err := checkPolicyFields(in); err != nil {
		return nil, err
	}

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	policy := calculator.Policy{Kind: in.Policy, Members: in.Participants, Percentages: in.Percentages}
	splits, err := calculator.ComputeShares(in.Amount, in.PaidBy, policy, group.Members)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     groupID,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount.Round(2),
		PaidBy:      in.PaidBy,
		Policy:      in.Policy,
		Splits:      splits,
	}
	if expense.Description == "" {
		expense.Description = "Expense"
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, s.storeError(err, "failed to save expense")
	}

	s.metrics.ExpenseRecorded(string(expense.Policy))
	s.logger.Info("Expense recorded",
		"group_id", groupID,
		"expense_id", expense.ID,
		"amount", expense.Amount.StringFixed(2),
		"paid_by", expense.PaidBy,
		"policy", expense.Policy,
		"splits", len(expense.Splits),
	)
	return expense, nil
}

// checkPolicyFields rejects input the chosen policy would silently ignore.
func checkPolicyFields(in ExpenseInput) error {
	switch {
	case !in.Policy.Valid():
		return &calculator.InvalidSplitError{Reason: fmt.Sprintf("unknown split type %q", in.Policy)}
	case in.Policy == models.SplitEqual && len(in.Percentages) > 0:
		return &calculator.InvalidSplitError{Reason: "percentage entries are only allowed with a percentage split"}
	case in.Policy == models.SplitPercentage && len(in.Participants) > 0:
		return &calculator.InvalidSplitError{Reason: "participants are only allowed with an equal split"}
	}
	return nil
}

// RecordSettlement stores a payment from one member to another.
func (s *Service) RecordSettlement(ctx context.Context, groupID int64, in SettlementInput) (*models.Settlement, error) {
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidSettlement)
	}
	if in.From == in.To {
		return nil, fmt.Errorf("%w: cannot settle with yourself", ErrInvalidSettlement)
	}

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(in.From) {
		return nil, &calculator.UnknownMemberError{Member: in.From, Context: "settlement sender"}
	}
	if !group.HasMember(in.To) {
		return nil, &calculator.UnknownMemberError{Member: in.To, Context: "settlement receiver"}
	}

	settlement := &models.Settlement{
		GroupID: groupID,
		From:    in.From,
		To:      in.To,
		Amount:  amount,
		Note:    strings.TrimSpace(in.Note),
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, s.storeError(err, "failed to save settlement")
	}

	s.metrics.SettlementRecorded()
	s.logger.Info("Settlement recorded",
		"group_id", groupID,
		"settlement_id", settlement.ID,
		"from", settlement.From,
		"to", settlement.To,
		"amount", settlement.Amount.StringFixed(2),
	)
	return settlement, nil
}

// GetBalances returns every member's net balance in the group.
func (s *Service) GetBalances(ctx context.Context, groupID int64) (calculator.Balances, error) {
	snap, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.balances(snap, snap.Settlements)
}

// GetSuggestedTransfers returns the transfers that would settle the group,
// excluding what recorded settlements already paid.
func (s *Service) GetSuggestedTransfers(ctx context.Context, groupID int64) ([]calculator.Transfer, error) {
	snap, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.transfers(snap)
}

// ListExpenses returns the group's expenses in recording order.
func (s *Service) ListExpenses(ctx context.Context, groupID int64) ([]models.Expense, error) {
	expenses, err := s.store.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, s.storeError(err, "failed to list expenses")
	}
	return expenses, nil
}

// ListSettlements returns the group's settlements in recording order.
func (s *Service) ListSettlements(ctx context.Context, groupID int64) ([]models.Settlement, error) {
	settlements, err := s.store.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, s.storeError(err, "failed to list settlements")
	}
	return settlements, nil
}

// Summary is everything a group overview shows, read from one snapshot.
type Summary struct {
	Group     *models.Group
	Balances  calculator.Balances
	Members   []calculator.MemberBalance
	Transfers []calculator.Transfer
}

// GetSummary returns balances, per-member totals and suggested transfers.
func (s *Service) GetSummary(ctx context.Context, groupID int64) (*Summary, error) {
	snap, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members, err := calculator.Summarize(snap.Group.Members, snap.Expenses, snap.Settlements)
	if err != nil {
		return nil, err
	}
	balances, err := s.balances(snap, snap.Settlements)
	if err != nil {
		return nil, err
	}
	transfers, err := s.transfers(snap)
	if err != nil {
		return nil, err
	}

	return &Summary{Group: snap.Group, Balances: balances, Members: members, Transfers: transfers}, nil
}

// AuditGroup recomputes the group's balances and returns
// *calculator.InvariantViolationError when they do not sum to zero.
func (s *Service) AuditGroup(ctx context.Context, groupID int64) error {
	snap, err := s.snapshot(ctx, groupID)
	if err != nil {
		return err
	}
	_, err = calculator.ComputeNetBalances(snap.Group.Members, snap.Expenses, snap.Settlements)
	return err
}

func (s *Service) snapshot(ctx context.Context, groupID int64) (*storage.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx, groupID)
	if err != nil {
		return nil, s.storeError(err, "failed to read group")
	}
	return snap, nil
}

func (s *Service) getGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, s.storeError(err, "failed to get group")
	}
	return group, nil
}

// balances aggregates the snapshot. A zero-sum violation is logged and
// counted, and the balances are returned anyway.
func (s *Service) balances(snap *storage.Snapshot, settlements []models.Settlement) (calculator.Balances, error) {
	balances, err := calculator.ComputeNetBalances(snap.Group.Members, snap.Expenses, settlements)
	var violation *calculator.InvariantViolationError
	if errors.As(err, &violation) {
		s.metrics.InvariantViolated()
		s.logger.Error("Balance invariant violated",
			"group_id", snap.Group.ID,
			"sum", violation.Sum.String(),
		)
		return balances, nil
	}
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// transfers optimizes expense-only balances and reconciles the plan with
// recorded settlements. Settlements that do not fit the plan make it
// stale, and the settlement-inclusive balances are optimized instead.
func (s *Service) transfers(snap *storage.Snapshot) ([]calculator.Transfer, error) {
	expenseOnly, err := s.balances(snap, nil)
	if err != nil {
		return nil, err
	}
	outstanding, ok := calculator.Reconcile(calculator.SuggestTransfers(expenseOnly), snap.Settlements)
	if ok {
		return outstanding, nil
	}

	s.logger.Debug("Settlements diverge from suggested plan, re-optimizing",
		"group_id", snap.Group.ID,
		"settlements", len(snap.Settlements),
	)
	current, err := s.balances(snap, snap.Settlements)
	if err != nil {
		return nil, err
	}
	return calculator.SuggestTransfers(current), nil
}

// storeError maps storage sentinels to ledger errors and wraps the rest.
func (s *Service) storeError(err error, msg string) error {
	var (
		inUse     *storage.MemberInUseError
		notMember *storage.NotMemberError
	)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrGroupNotFound
	case errors.As(err, &notMember):
		return &calculator.UnknownMemberError{Member: notMember.Member, Context: notMember.Field}
	case errors.As(err, &inUse):
		return fmt.Errorf("%w: member %d", ErrMemberInUse, inUse.Member)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	s.logger.Error(msg, "error", err)
	return fmt.Errorf("%s: %w", msg, err)
}
