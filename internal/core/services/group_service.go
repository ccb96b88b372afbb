package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
)

// GroupService handles groups, memberships and group permissions.
type GroupService struct {
	BaseService
	store portsrepo.LedgerStore
}

// NewGroupService creates a new GroupService.
func NewGroupService(store portsrepo.LedgerStore, options ...ServiceOption) *GroupService {
	return &GroupService{
		BaseService: newBaseService(options),
		store:       store,
	}
}

var _ portssvc.GroupSvcFacade = (*GroupService)(nil)

// CreateGroup creates a new group and makes the creator its owner.
func (s *GroupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest, creatorUserID string) (*domain.Group, error) {
	now := s.now()
	group := domain.Group{
		Name:           req.Name,
		Description:    req.Description,
		CurrencySymbol: req.CurrencySymbol,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		groupID, err := tx.Groups().SaveGroup(ctx, group)
		if err != nil {
			return err
		}
		group.GroupID = groupID
		return tx.Groups().AddMember(ctx, domain.GroupMembership{
			UserID:   creatorUserID,
			GroupID:  groupID,
			Role:     domain.RoleOwner,
			JoinedAt: now,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create group", slog.String("group_name", req.Name))
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.LogInfo(ctx, "Group created successfully", slog.Int64("group_id", group.GroupID), slog.String("creator_user_id", creatorUserID))
	return &group, nil
}

// AddMember adds a user to a group with a specific role. Only owners may do this.
func (s *GroupService) AddMember(ctx context.Context, groupID int64, req dto.AddGroupMemberRequest, addingUserID string) (*domain.GroupMembership, error) {
	if !req.Role.IsValid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown role %q", req.Role))
	}
	if err := s.AuthorizeUserAction(ctx, addingUserID, groupID, domain.RoleOwner); err != nil {
		return nil, err
	}

	membership := domain.GroupMembership{
		UserID:   req.UserID,
		GroupID:  groupID,
		Role:     req.Role,
		JoinedAt: s.now(),
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.Groups().AddMember(ctx, membership)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to add member to group", slog.String("target_user_id", req.UserID), slog.Int64("group_id", groupID))
		return nil, fmt.Errorf("failed to add user %s to group %d: %w", req.UserID, groupID, err)
	}

	s.LogInfo(ctx, "User added to group successfully",
		slog.String("target_user_id", req.UserID),
		slog.Int64("group_id", groupID),
		slog.String("role", string(req.Role)),
		slog.String("added_by_user_id", addingUserID))
	return &membership, nil
}

// GetGroup returns a group the user is a member of.
func (s *GroupService) GetGroup(ctx context.Context, groupID int64, userID string) (*domain.Group, error) {
	if err := s.AuthorizeUserAction(ctx, userID, groupID, domain.RoleViewer); err != nil {
		return nil, err
	}
	var group *domain.Group
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		group, err = tx.Groups().FindGroupByID(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// ListMembers returns the memberships of a group.
func (s *GroupService) ListMembers(ctx context.Context, groupID int64, userID string) ([]domain.GroupMembership, error) {
	if err := s.AuthorizeUserAction(ctx, userID, groupID, domain.RoleViewer); err != nil {
		return nil, err
	}
	var members []domain.GroupMembership
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		members, err = tx.Groups().ListMembers(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListUserGroups retrieves the groups a user belongs to.
func (s *GroupService) ListUserGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	var groups []domain.Group
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		groups, err = tx.Groups().ListGroupsByUserID(ctx, userID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list groups for user", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list groups for user %s: %w", userID, err)
	}
	if groups == nil {
		return []domain.Group{}, nil
	}
	s.LogDebug(ctx, "Groups listed successfully for user", slog.String("user_id", userID), slog.Int("count", len(groups)))
	return groups, nil
}

// AuthorizeUserAction checks if a user has the required role (or higher) within a group.
// Non-members get apperrors.ErrForbidden, so group existence is not revealed.
func (s *GroupService) AuthorizeUserAction(ctx context.Context, userID string, groupID int64, requiredRole domain.GroupRole) error {
	var membership *domain.GroupMembership
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		membership, err = tx.Groups().FindMembership(ctx, userID, groupID)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.GetLogger(ctx).Warn("Authorization failed: user is not a member of the group", slog.String("user_id", userID), slog.Int64("group_id", groupID))
			return fmt.Errorf("%w: user %s is not a member of group %d", apperrors.ErrForbidden, userID, groupID)
		}
		s.LogError(ctx, err, "Failed to check group membership", slog.String("user_id", userID), slog.Int64("group_id", groupID))
		return fmt.Errorf("failed to check authorization: %w", err)
	}

	if membership.Role.Satisfies(requiredRole) {
		return nil
	}

	s.GetLogger(ctx).Warn("Authorization failed: user lacks required role",
		slog.String("user_id", userID),
		slog.Int64("group_id", groupID),
		slog.String("user_role", string(membership.Role)),
		slog.String("required_role", string(requiredRole)))
	return fmt.Errorf("%w: role %s is required in group %d", apperrors.ErrForbidden, requiredRole, groupID)
}
