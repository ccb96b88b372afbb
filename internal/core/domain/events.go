package domain

import "time"

// EntityKind names the kind of entity a commit event is about.
type EntityKind string

const (
	EntityKindAccount     EntityKind = "account"
	EntityKindTransaction EntityKind = "transaction"
)

// CommitEvent is emitted after a commit became durable.
type CommitEvent struct {
	Kind        EntityKind `json:"kind"`
	EntityID    int64      `json:"entityID"`
	GroupID     int64      `json:"groupID"`
	Version     int64      `json:"version"`
	UserID      string     `json:"userID"`
	CommittedAt time.Time  `json:"committedAt"`
}
