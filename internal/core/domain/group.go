package domain

import "time"

// Group is an isolated ledger shared by its members.
type Group struct {
	GroupID        int64  `json:"groupID"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CurrencySymbol string `json:"currencySymbol"` // default for new transactions
	AuditFields
}

// GroupRole defines the possible roles a user can have within a group.
type GroupRole string

const (
	RoleOwner  GroupRole = "OWNER"
	RoleMember GroupRole = "MEMBER"
	RoleViewer GroupRole = "VIEWER" // read-only access
)

var roleRank = map[GroupRole]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleOwner:  3,
}

// IsValid reports whether r is a known role.
func (r GroupRole) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether r grants at least the permissions of required.
func (r GroupRole) Satisfies(required GroupRole) bool {
	return roleRank[r] >= roleRank[required] && roleRank[r] > 0
}

// GroupMembership represents the membership of a user in a group.
type GroupMembership struct {
	UserID   string    `json:"userID"`
	GroupID  int64     `json:"groupID"`
	Role     GroupRole `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}
