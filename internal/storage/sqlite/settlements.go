package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.PaidAt == 0 {
		settlement.PaidAt = s.now().Unix()
	}

	var note any
	if settlement.Note != "" {
		note = settlement.Note
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	group, err := getGroup(ctx, tx, settlement.GroupID)
	if err != nil {
		return err
	}
	if !group.HasMember(settlement.From) {
		return &storage.NotMemberError{Member: settlement.From, Field: "settlement sender"}
	}
	if !group.HasMember(settlement.To) {
		return &storage.NotMemberError{Member: settlement.To, Field: "settlement receiver"}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO settlements (group_id, from_member, to_member, amount, paid_at, note)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		settlement.GroupID, settlement.From, settlement.To,
		settlement.Amount.StringFixed(2), settlement.PaidAt, note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read settlement id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	settlement.ID = id
	return nil
}

// ListSettlements retrieves all settlements for a group in recording order.
func (s *SQLiteStore) ListSettlements(ctx context.Context, groupID int64) ([]models.Settlement, error) {
	if _, err := getGroup(ctx, s.db, groupID); err != nil {
		return nil, err
	}
	return listSettlements(ctx, s.db, groupID)
}

func listSettlements(ctx context.Context, q querier, groupID int64) ([]models.Settlement, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, group_id, from_member, to_member, amount, paid_at, note
		 FROM settlements WHERE group_id = ? ORDER BY id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	settlements := []models.Settlement{}
	for rows.Next() {
		var (
			settlement models.Settlement
			note       sql.NullString
		)
		if err := rows.Scan(&settlement.ID, &settlement.GroupID, &settlement.From, &settlement.To,
			&settlement.Amount, &settlement.PaidAt, &note); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}

		if note.Valid {
			settlement.Note = note.String
		}

		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}
