package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateExpense persists an expense with its splits and adds its amount to the group total.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.CreatedAt == 0 {
		expense.CreatedAt = s.now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Fails with ErrNotFound when the group is gone.
	group, err := getGroup(ctx, tx, expense.GroupID)
	if err != nil {
		return err
	}
	// Membership may have changed since the caller computed the shares.
	if !group.HasMember(expense.PaidBy) {
		return &storage.NotMemberError{Member: expense.PaidBy, Field: "expense payer"}
	}
	for _, split := range expense.Splits {
		if !group.HasMember(split.Member) {
			return &storage.NotMemberError{Member: split.Member, Field: "expense split"}
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (group_id, description, amount, paid_by, policy, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		expense.GroupID, expense.Description, expense.Amount.StringFixed(2),
		expense.PaidBy, string(expense.Policy), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read expense id: %w", err)
	}

	for i, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO splits (expense_id, group_id, position, member_id, share) VALUES (?, ?, ?, ?, ?)",
			id, expense.GroupID, i, split.Member, split.Share.StringFixed(2),
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	total := group.TotalExpenses.Add(expense.Amount)
	if _, err := tx.ExecContext(ctx,
		"UPDATE groups SET total_expenses = ? WHERE id = ?", total.StringFixed(2), expense.GroupID,
	); err != nil {
		return fmt.Errorf("failed to update group total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	expense.ID = id
	return nil
}

// ListExpenses retrieves all expenses of a group in recording order.
func (s *SQLiteStore) ListExpenses(ctx context.Context, groupID int64) ([]models.Expense, error) {
	if _, err := getGroup(ctx, s.db, groupID); err != nil {
		return nil, err
	}
	return listExpenses(ctx, s.db, groupID)
}

func listExpenses(ctx context.Context, q querier, groupID int64) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, group_id, description, amount, paid_by, policy, created_at
		 FROM expenses WHERE group_id = ? ORDER BY id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	index := make(map[int64]int)
	for rows.Next() {
		var (
			exp    models.Expense
			policy string
		)
		if err := rows.Scan(&exp.ID, &exp.GroupID, &exp.Description, &exp.Amount,
			&exp.PaidBy, &policy, &exp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		exp.Policy = models.SplitPolicy(policy)
		index[exp.ID] = len(expenses)
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	splitRows, err := q.QueryContext(ctx,
		"SELECT expense_id, member_id, share FROM splits WHERE group_id = ? ORDER BY expense_id, position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var (
			expenseID int64
			member    models.MemberID
			share     decimal.Decimal
		)
		if err := splitRows.Scan(&expenseID, &member, &share); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		i, ok := index[expenseID]
		if !ok {
			continue
		}
		expenses[i].Splits = append(expenses[i].Splits, models.Split{Member: member, Share: share})
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return expenses, nil
}
