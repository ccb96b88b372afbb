package services

import (
	"context"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
)

// GroupReaderSvc defines read operations for groups
type GroupReaderSvc interface {
	GetGroup(ctx context.Context, groupID int64, userID string) (*domain.Group, error)
	ListUserGroups(ctx context.Context, userID string) ([]domain.Group, error)
	ListMembers(ctx context.Context, groupID int64, userID string) ([]domain.GroupMembership, error)
}

// GroupWriterSvc defines write operations for groups
type GroupWriterSvc interface {
	CreateGroup(ctx context.Context, req dto.CreateGroupRequest, userID string) (*domain.Group, error)
	AddMember(ctx context.Context, groupID int64, req dto.AddGroupMemberRequest, userID string) (*domain.GroupMembership, error)
}

// GroupAuthorizerSvc checks group permissions.
type GroupAuthorizerSvc interface {
	// AuthorizeUserAction returns apperrors.ErrForbidden unless the user holds
	// at least requiredRole in the group.
	AuthorizeUserAction(ctx context.Context, userID string, groupID int64, requiredRole domain.GroupRole) error
}

// GroupSvcFacade combines all group-related service interfaces
type GroupSvcFacade interface {
	GroupReaderSvc
	GroupWriterSvc
	GroupAuthorizerSvc
}
