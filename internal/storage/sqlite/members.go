package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
)

// ListGroupsByMember retrieves the groups that contain member, oldest first.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, member models.MemberID) ([]*models.Group, error) {
	return s.listGroups(ctx, `
		SELECT g.id, g.name, g.total_expenses, g.created_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.member_id = ?
		ORDER BY g.id
	`, member)
}

// upsertMembers inserts members and rewrites their display positions.
func upsertMembers(ctx context.Context, q querier, groupID int64, members []models.MemberID) error {
	for i, m := range members {
		_, err := q.ExecContext(ctx, `
			INSERT INTO group_members (group_id, member_id, position) VALUES (?, ?, ?)
			ON CONFLICT (group_id, member_id) DO UPDATE SET position = excluded.position
		`, groupID, m, i)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}
	return nil
}

func listMembers(ctx context.Context, q querier, groupID int64) ([]models.MemberID, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT member_id FROM group_members WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := []models.MemberID{}
	for rows.Next() {
		var m models.MemberID
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// memberReferenced reports whether any expense, split or settlement of the group mentions member.
func memberReferenced(ctx context.Context, q querier, groupID int64, member models.MemberID) (bool, error) {
	var referenced bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM expenses WHERE group_id = ?1 AND paid_by = ?2)
		    OR EXISTS (SELECT 1 FROM splits WHERE group_id = ?1 AND member_id = ?2)
		    OR EXISTS (SELECT 1 FROM settlements WHERE group_id = ?1 AND (from_member = ?2 OR to_member = ?2))
	`, groupID, member).Scan(&referenced)
	if err != nil {
		return false, fmt.Errorf("failed to check member references: %w", err)
	}
	return referenced, nil
}
