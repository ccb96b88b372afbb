package dto

import (
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
)

// CreateGroupRequest defines data for creating a new group.
type CreateGroupRequest struct {
	Name           string `json:"name" binding:"required,max=255"`
	Description    string `json:"description" binding:"max=2000"`
	CurrencySymbol string `json:"currencySymbol" binding:"required,max=10"`
}

// AddGroupMemberRequest defines data for adding a user to a group.
type AddGroupMemberRequest struct {
	UserID string           `json:"userID" binding:"required"`
	Role   domain.GroupRole `json:"role" binding:"required,oneof=OWNER MEMBER VIEWER"`
}

// GroupResponse defines data returned for a group.
type GroupResponse struct {
	GroupID        int64     `json:"groupID"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CurrencySymbol string    `json:"currencySymbol"`
	CreatedAt      time.Time `json:"createdAt"`
	CreatedBy      string    `json:"createdBy"`
}

// ToGroupResponse converts domain.Group to DTO.
func ToGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{
		GroupID:        g.GroupID,
		Name:           g.Name,
		Description:    g.Description,
		CurrencySymbol: g.CurrencySymbol,
		CreatedAt:      g.CreatedAt,
		CreatedBy:      g.CreatedBy,
	}
}

// ListGroupsResponse wraps a list of groups.
type ListGroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// ToListGroupsResponse converts a slice of domain.Group to DTO.
func ToListGroupsResponse(gs []domain.Group) ListGroupsResponse {
	res := make([]GroupResponse, len(gs))
	for i := range gs {
		res[i] = ToGroupResponse(&gs[i])
	}
	return ListGroupsResponse{Groups: res}
}

// GroupMemberResponse defines data returned for a membership.
type GroupMemberResponse struct {
	UserID   string           `json:"userID"`
	GroupID  int64            `json:"groupID"`
	Role     domain.GroupRole `json:"role"`
	JoinedAt time.Time        `json:"joinedAt"`
}

// ToGroupMemberResponse converts domain.GroupMembership to DTO.
func ToGroupMemberResponse(m *domain.GroupMembership) GroupMemberResponse {
	return GroupMemberResponse{
		UserID:   m.UserID,
		GroupID:  m.GroupID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
}

// ListGroupMembersResponse wraps the memberships of a group.
type ListGroupMembersResponse struct {
	Members []GroupMemberResponse `json:"members"`
}

// ToListGroupMembersResponse converts memberships to DTO.
func ToListGroupMembersResponse(ms []domain.GroupMembership) ListGroupMembersResponse {
	res := make([]GroupMemberResponse, len(ms))
	for i := range ms {
		res[i] = ToGroupMemberResponse(&ms[i])
	}
	return ListGroupMembersResponse{Members: res}
}
