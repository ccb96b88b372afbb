package models

import "time"

// AccountDetails is the jsonb document of an account revision.
type AccountDetails struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	DateInfo       *time.Time        `json:"date_info"`
	Tags           []string          `json:"tags"`
	ClearingShares map[int64]float64 `json:"clearing_shares"` // null for personal accounts
	Deleted        bool              `json:"deleted"`
}
