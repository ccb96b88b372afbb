package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// EntityHeader carries the immutable identity of a versioned entity.
type EntityHeader struct {
	ID      int64  `json:"id"`
	GroupID int64  `json:"groupID"`
	Type    string `json:"type"` // fixed at creation
	// LastVersion is the highest version ever handed out for this entity,
	// including pending revisions that were later discarded.
	LastVersion int64     `json:"lastVersion"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NextVersion returns the version the next revision row must use.
func (h EntityHeader) NextVersion() int64 {
	return h.LastVersion + 1
}

// Entity is an account or transaction together with its pending/committed pair.
type Entity[T any] struct {
	EntityHeader
	Revisions RevisionState[T] `json:"-"`
}

// RevisionView selects which revision a read resolves to.
type RevisionView string

const (
	ViewCommitted RevisionView = "committed"
	ViewLatest    RevisionView = "latest"
)
