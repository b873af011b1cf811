package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/models"
)

// memberFanOut bounds concurrent snapshot reads in GetMemberBalances.
const memberFanOut = 4

// GroupInput carries the fields of a new group.
type GroupInput struct {
	Name    string
	Members []models.MemberID
}

// GroupUpdate carries the fields to change. Nil fields are left alone.
type GroupUpdate struct {
	Name    *string
	Members []models.MemberID
}

// CreateGroup validates and stores a new group.
func (s *Service) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	group := &models.Group{Name: strings.TrimSpace(in.Name), Members: in.Members}
	if err := validateGroup(group); err != nil {
		return nil, err
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, s.storeError(err, "failed to create group")
	}

	s.logger.Info("Group created", "group_id", group.ID, "name", group.Name, "members", len(group.Members))
	return group, nil
}

// GetGroup returns a group by ID.
func (s *Service) GetGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	return s.getGroup(ctx, groupID)
}

// ListGroups returns every group, oldest first.
func (s *Service) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, s.storeError(err, "failed to list groups")
	}
	if groups == nil {
		groups = []*models.Group{}
	}
	return groups, nil
}

// UpdateGroup renames a group and/or replaces its member set.
// Members referenced by recorded history cannot be removed (ErrMemberInUse).
func (s *Service) UpdateGroup(ctx context.Context, groupID int64, in GroupUpdate) (*models.Group, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		group.Name = strings.TrimSpace(*in.Name)
	}
	if in.Members != nil {
		group.Members = in.Members
	}
	if err := validateGroup(group); err != nil {
		return nil, err
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, s.storeError(err, "failed to update group")
	}

	s.logger.Info("Group updated", "group_id", group.ID, "name", group.Name, "members", len(group.Members))
	return group, nil
}

// DeleteGroup removes a group together with its expenses and settlements.
func (s *Service) DeleteGroup(ctx context.Context, groupID int64) error {
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return s.storeError(err, "failed to delete group")
	}
	s.logger.Info("Group deleted", "group_id", groupID)
	return nil
}

// MemberBalances is one member's position across every group they belong to.
type MemberBalances struct {
	Member models.MemberID
	Groups map[int64]decimal.Decimal
	Total  decimal.Decimal
}

// GetMemberBalances computes member's net balance in each of their groups.
// Groups are read concurrently; a group deleted mid-way is skipped.
func (s *Service) GetMemberBalances(ctx context.Context, member models.MemberID) (*MemberBalances, error) {
	groups, err := s.store.ListGroupsByMember(ctx, member)
	if err != nil {
		return nil, s.storeError(err, "failed to list member groups")
	}

	results := make([]*decimal.Decimal, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(memberFanOut)
	for i, group := range groups {
		g.Go(func() error {
			balances, err := s.GetBalances(gctx, group.ID)
			if errors.Is(err, ErrGroupNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("group %d: %w", group.ID, err)
			}
			bal, ok := balances[member]
			if !ok {
				return nil
			}
			results[i] = &bal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &MemberBalances{Member: member, Groups: make(map[int64]decimal.Decimal, len(groups)), Total: decimal.Zero}
	for i, bal := range results {
		if bal == nil {
			continue
		}
		out.Groups[groups[i].ID] = *bal
		out.Total = out.Total.Add(*bal)
	}
	return out, nil
}

func validateGroup(group *models.Group) error {
	if group.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGroup)
	}
	if len(group.Members) == 0 {
		return fmt.Errorf("%w: at least one member is required", ErrInvalidGroup)
	}
	seen := make(map[models.MemberID]bool, len(group.Members))
	for _, m := range group.Members {
		if m <= 0 {
			return fmt.Errorf("%w: member id %d must be positive", ErrInvalidGroup, m)
		}
		if seen[m] {
			return fmt.Errorf("%w: member %d listed more than once", ErrInvalidGroup, m)
		}
		seen[m] = true
	}
	return nil
}
