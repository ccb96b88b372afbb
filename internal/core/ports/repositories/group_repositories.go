package repositories

import (
	"context"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
)

// GroupReader defines read operations for groups and memberships.
type GroupReader interface {
	FindGroupByID(ctx context.Context, groupID int64) (*domain.Group, error)
	FindMembership(ctx context.Context, userID string, groupID int64) (*domain.GroupMembership, error)
	ListGroupsByUserID(ctx context.Context, userID string) ([]domain.Group, error)
	ListMembers(ctx context.Context, groupID int64) ([]domain.GroupMembership, error)
}

// GroupWriter defines write operations for groups and memberships.
type GroupWriter interface {
	// SaveGroup inserts a group and returns its id.
	SaveGroup(ctx context.Context, group domain.Group) (int64, error)
	// AddMember adds a user to a group or updates their role.
	AddMember(ctx context.Context, membership domain.GroupMembership) error
	// LockGroup locks the group row. Clearing commits take it so that
	// concurrent cycle checks in one group are serialised.
	LockGroup(ctx context.Context, groupID int64) error
}

// GroupRepositoryFacade combines all group repository interfaces
type GroupRepositoryFacade interface {
	GroupReader
	GroupWriter
}
