package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
)

type groupRepository struct {
	tx *memTx
}

var _ portsrepo.GroupRepositoryFacade = (*groupRepository)(nil)

func (r *groupRepository) FindGroupByID(_ context.Context, groupID int64) (*domain.Group, error) {
	group, ok := r.tx.state.groups[groupID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %d", groupID))
	}
	return &group, nil
}

func (r *groupRepository) FindMembership(_ context.Context, userID string, groupID int64) (*domain.GroupMembership, error) {
	membership, ok := r.tx.state.members[memberKey{groupID: groupID, userID: userID}]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("membership of user %s in group %d", userID, groupID))
	}
	return &membership, nil
}

func (r *groupRepository) ListGroupsByUserID(_ context.Context, userID string) ([]domain.Group, error) {
	var out []domain.Group
	for key := range r.tx.state.members {
		if key.userID != userID {
			continue
		}
		if group, ok := r.tx.state.groups[key.groupID]; ok {
			out = append(out, group)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out, nil
}

func (r *groupRepository) ListMembers(_ context.Context, groupID int64) ([]domain.GroupMembership, error) {
	var out []domain.GroupMembership
	for key, membership := range r.tx.state.members {
		if key.groupID == groupID {
			out = append(out, membership)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *groupRepository) SaveGroup(_ context.Context, group domain.Group) (int64, error) {
	r.tx.state.seq.group++
	group.GroupID = r.tx.state.seq.group
	r.tx.state.groups[group.GroupID] = group
	return group.GroupID, nil
}

func (r *groupRepository) AddMember(_ context.Context, membership domain.GroupMembership) error {
	if _, ok := r.tx.state.groups[membership.GroupID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("group %d", membership.GroupID))
	}
	key := memberKey{groupID: membership.GroupID, userID: membership.UserID}
	if existing, ok := r.tx.state.members[key]; ok {
		membership.JoinedAt = existing.JoinedAt
	}
	r.tx.state.members[key] = membership
	return nil
}

// LockGroup only checks that the group exists; units of work are already serialised.
func (r *groupRepository) LockGroup(_ context.Context, groupID int64) error {
	if _, ok := r.tx.state.groups[groupID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("group %d", groupID))
	}
	return nil
}
