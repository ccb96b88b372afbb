package dto

import (
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
)

// AccountDetailsRequest carries the full content of an account revision.
type AccountDetailsRequest struct {
	Name           string          `json:"name" binding:"required,max=255"`
	Description    string          `json:"description" binding:"max=2000"`
	DateInfo       *time.Time      `json:"dateInfo"`       // required for clearing accounts
	Tags           []string        `json:"tags" binding:"dive,required,max=64"`
	ClearingShares domain.ShareMap `json:"clearingShares"` // only for clearing accounts
}

// ToDomain converts the request into revision details.
func (r AccountDetailsRequest) ToDomain() domain.AccountDetails {
	return domain.AccountDetails{
		Name:           r.Name,
		Description:    r.Description,
		DateInfo:       r.DateInfo,
		Tags:           r.Tags,
		ClearingShares: r.ClearingShares,
	}.Clone()
}

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Type domain.AccountType `json:"type" binding:"required,oneof=personal clearing"`
	AccountDetailsRequest
	// Commit commits the initial revision right away.
	Commit bool `json:"commit"`
}

// UpdateAccountRequest stages a new pending revision on top of BaseVersion.
type UpdateAccountRequest struct {
	BaseVersion int64 `json:"baseVersion" binding:"required,gt=0"`
	AccountDetailsRequest
	Commit bool `json:"commit"`
}

// DeleteAccountRequest stages a deletion on top of BaseVersion.
type DeleteAccountRequest struct {
	BaseVersion int64 `json:"baseVersion" form:"baseVersion" binding:"required,gt=0"`
}

// AccountRevisionResponse is one side of an account's pending/committed pair.
type AccountRevisionResponse struct {
	Version        int64           `json:"version"`
	Committed      bool            `json:"committed"`
	ChangedBy      string          `json:"changedBy"`
	ChangedAt      time.Time       `json:"changedAt"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	DateInfo       *time.Time      `json:"dateInfo,omitempty"`
	Tags           []string        `json:"tags"`
	ClearingShares domain.ShareMap `json:"clearingShares,omitempty"`
	Deleted        bool            `json:"deleted"`
}

// AccountResponse shows the pending and committed details side by side.
type AccountResponse struct {
	AccountID        int64                    `json:"accountID"`
	GroupID          int64                    `json:"groupID"`
	Type             domain.AccountType       `json:"type"`
	LatestVersion    int64                    `json:"latestVersion"`
	CreatedAt        time.Time                `json:"createdAt"`
	CreatedBy        string                   `json:"createdBy"`
	PendingDetails   *AccountRevisionResponse `json:"pendingDetails"`
	CommittedDetails *AccountRevisionResponse `json:"committedDetails"`
}

// ListAccountsResponse wraps a list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountRevisionResponse converts a revision to its DTO.
func ToAccountRevisionResponse(rev domain.Revision[domain.AccountDetails]) AccountRevisionResponse {
	tags := rev.Details.Tags
	if tags == nil {
		tags = []string{}
	}
	return AccountRevisionResponse{
		Version:        rev.Version,
		Committed:      rev.Committed,
		ChangedBy:      rev.UserID,
		ChangedAt:      rev.CreatedAt,
		Name:           rev.Details.Name,
		Description:    rev.Details.Description,
		DateInfo:       rev.Details.DateInfo,
		Tags:           tags,
		ClearingShares: rev.Details.ClearingShares,
		Deleted:        rev.Details.Deleted,
	}
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	res := AccountResponse{
		AccountID:     acc.ID,
		GroupID:       acc.GroupID,
		Type:          domain.AccountType(acc.Type),
		LatestVersion: acc.Revisions.LatestVersion(),
		CreatedAt:     acc.CreatedAt,
		CreatedBy:     acc.CreatedBy,
	}
	if pending, ok := acc.Revisions.Pending(); ok {
		r := ToAccountRevisionResponse(pending)
		res.PendingDetails = &r
	}
	if committed, ok := acc.Revisions.Committed(); ok {
		r := ToAccountRevisionResponse(committed)
		res.CommittedDetails = &r
	}
	return res
}

// ToListAccountsResponse converts a slice of domain.Account to DTO.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return ListAccountsResponse{Accounts: res}
}
