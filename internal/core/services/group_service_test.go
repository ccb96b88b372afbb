package services_test

import (
	"testing"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
	"github.com/stretchr/testify/suite"
)

type GroupServiceTestSuite struct {
	ledgerSuite
}

func TestGroupServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GroupServiceTestSuite))
}

func (s *GroupServiceTestSuite) TestCreateGroup_CreatorIsOwner() {
	group, err := s.svc.Group.GetGroup(s.ctx, s.groupID, viewer)
	s.Require().NoError(err)
	s.Equal("Flat 3B", group.Name)
	s.Equal(owner, group.CreatedBy)

	members, err := s.svc.Group.ListMembers(s.ctx, s.groupID, member)
	s.Require().NoError(err)
	s.Require().Len(members, 3)
	roles := map[string]domain.GroupRole{}
	for _, m := range members {
		roles[m.UserID] = m.Role
	}
	s.Equal(map[string]domain.GroupRole{owner: domain.RoleOwner, member: domain.RoleMember, viewer: domain.RoleViewer}, roles)
}

func (s *GroupServiceTestSuite) TestAddMember_OwnerOnly() {
	_, err := s.svc.Group.AddMember(s.ctx, s.groupID, dto.AddGroupMemberRequest{UserID: "carol", Role: domain.RoleMember}, member)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.svc.Group.AddMember(s.ctx, s.groupID, dto.AddGroupMemberRequest{UserID: "carol", Role: "ADMIN"}, owner)
	s.ErrorIs(err, apperrors.ErrValidation)

	membership, err := s.svc.Group.AddMember(s.ctx, s.groupID, dto.AddGroupMemberRequest{UserID: viewer, Role: domain.RoleMember}, owner)
	s.Require().NoError(err)
	s.Equal(domain.RoleMember, membership.Role)
	s.NoError(s.svc.Group.AuthorizeUserAction(s.ctx, viewer, s.groupID, domain.RoleMember))
}

func (s *GroupServiceTestSuite) TestAuthorizeUserAction() {
	s.NoError(s.svc.Group.AuthorizeUserAction(s.ctx, owner, s.groupID, domain.RoleOwner))
	s.NoError(s.svc.Group.AuthorizeUserAction(s.ctx, member, s.groupID, domain.RoleViewer))
	s.ErrorIs(s.svc.Group.AuthorizeUserAction(s.ctx, viewer, s.groupID, domain.RoleMember), apperrors.ErrForbidden)
	s.ErrorIs(s.svc.Group.AuthorizeUserAction(s.ctx, "mallory", s.groupID, domain.RoleViewer), apperrors.ErrForbidden)
	s.ErrorIs(s.svc.Group.AuthorizeUserAction(s.ctx, owner, s.groupID+1, domain.RoleViewer), apperrors.ErrForbidden)
}

func (s *GroupServiceTestSuite) TestListUserGroups() {
	_, err := s.svc.Group.CreateGroup(s.ctx, dto.CreateGroupRequest{Name: "Trip", CurrencySymbol: "USD"}, member)
	s.Require().NoError(err)

	groups, err := s.svc.Group.ListUserGroups(s.ctx, member)
	s.Require().NoError(err)
	s.Len(groups, 2)

	groups, err = s.svc.Group.ListUserGroups(s.ctx, "mallory")
	s.Require().NoError(err)
	s.Empty(groups)
	s.NotNil(groups)
}
