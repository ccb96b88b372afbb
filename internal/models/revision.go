package models

import "time"

// Entity is a row of the accounts or transactions table. The version columns
// point at the revision rows currently in the pending and committed slots.
type Entity struct {
	ID               int64     `db:"id"`
	GroupID          int64     `db:"group_id"`
	Type             string    `db:"type"`
	LastVersion      int64     `db:"last_version"`
	PendingVersion   *int64    `db:"pending_version"`   // Nullable
	CommittedVersion *int64    `db:"committed_version"` // Nullable
	CreatedBy        string    `db:"created_by"`
	CreatedAt        time.Time `db:"created_at"`
}

// Revision is a row of account_revisions or transaction_revisions.
// Details is stored as jsonb.
type Revision[D any] struct {
	EntityID    int64     `db:"entity_id"`
	Version     int64     `db:"version"`
	IsCommitted bool      `db:"is_committed"`
	UserID      string    `db:"user_id"`
	CreatedAt   time.Time `db:"created_at"`
	Details     D         `db:"details"`
}
