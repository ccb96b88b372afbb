package dto

import (
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PositionRequest is one line item of a purchase.
type PositionRequest struct {
	Name            string          `json:"name" binding:"required,max=255"`
	Price           decimal.Decimal `json:"price"`
	CommunistShares float64         `json:"communistShares" binding:"gte=0"`
	Usages          domain.ShareMap `json:"usages"`
	Deleted         bool            `json:"deleted"`
}

// TransactionDetailsRequest carries the full content of a transaction revision.
type TransactionDetailsRequest struct {
	Name           string            `json:"name" binding:"required,max=255"`
	Description    string            `json:"description" binding:"max=2000"`
	Value          decimal.Decimal   `json:"value"`
	CurrencySymbol string            `json:"currencySymbol" binding:"required,max=10"`
	ConversionRate *decimal.Decimal  `json:"currencyConversionRate"` // defaults to 1
	BilledAt       time.Time         `json:"billedAt" binding:"required"`
	Tags           []string          `json:"tags" binding:"dive,required,max=64"`
	DebitorShares  domain.ShareMap   `json:"debitorShares"`
	CreditorShares domain.ShareMap   `json:"creditorShares"`
	Positions      []PositionRequest `json:"positions" binding:"dive"`
}

// ToDomain converts the request into revision details.
func (r TransactionDetailsRequest) ToDomain() domain.TransactionDetails {
	rate := decimal.NewFromInt(1)
	if r.ConversionRate != nil {
		rate = *r.ConversionRate
	}
	details := domain.TransactionDetails{
		Name:           r.Name,
		Description:    r.Description,
		Value:          r.Value,
		CurrencySymbol: r.CurrencySymbol,
		ConversionRate: rate,
		BilledAt:       r.BilledAt,
		Tags:           r.Tags,
		DebitorShares:  r.DebitorShares,
		CreditorShares: r.CreditorShares,
	}
	if details.DebitorShares == nil {
		details.DebitorShares = domain.ShareMap{}
	}
	if details.CreditorShares == nil {
		details.CreditorShares = domain.ShareMap{}
	}
	for _, p := range r.Positions {
		details.Positions = append(details.Positions, domain.Position{
			Name:            p.Name,
			Price:           p.Price,
			CommunistShares: p.CommunistShares,
			Usages:          p.Usages,
			Deleted:         p.Deleted,
		})
	}
	return details.Clone()
}

// CreateTransactionRequest defines the data needed to create a transaction.
type CreateTransactionRequest struct {
	Type domain.TransactionType `json:"type" binding:"required,oneof=purchase transfer"`
	TransactionDetailsRequest
	Commit bool `json:"commit"`
}

// UpdateTransactionRequest stages a new pending revision on top of BaseVersion.
type UpdateTransactionRequest struct {
	BaseVersion int64 `json:"baseVersion" binding:"required,gt=0"`
	TransactionDetailsRequest
	Commit bool `json:"commit"`
}

// DeleteTransactionRequest stages a deletion on top of BaseVersion.
type DeleteTransactionRequest struct {
	BaseVersion int64 `json:"baseVersion" form:"baseVersion" binding:"required,gt=0"`
}

// PositionResponse mirrors domain.Position.
type PositionResponse struct {
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	CommunistShares float64         `json:"communistShares"`
	Usages          domain.ShareMap `json:"usages"`
	Deleted         bool            `json:"deleted"`
}

// TransactionRevisionResponse is one side of a transaction's pending/committed pair.
type TransactionRevisionResponse struct {
	Version        int64              `json:"version"`
	Committed      bool               `json:"committed"`
	ChangedBy      string             `json:"changedBy"`
	ChangedAt      time.Time          `json:"changedAt"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Value          decimal.Decimal    `json:"value"`
	CurrencySymbol string             `json:"currencySymbol"`
	ConversionRate decimal.Decimal    `json:"currencyConversionRate"`
	BilledAt       time.Time          `json:"billedAt"`
	Tags           []string           `json:"tags"`
	DebitorShares  domain.ShareMap    `json:"debitorShares"`
	CreditorShares domain.ShareMap    `json:"creditorShares"`
	Positions      []PositionResponse `json:"positions"`
	Deleted        bool               `json:"deleted"`
}

// TransactionResponse shows the pending and committed details side by side.
type TransactionResponse struct {
	TransactionID    int64                        `json:"transactionID"`
	GroupID          int64                        `json:"groupID"`
	Type             domain.TransactionType       `json:"type"`
	LatestVersion    int64                        `json:"latestVersion"`
	CreatedAt        time.Time                    `json:"createdAt"`
	CreatedBy        string                       `json:"createdBy"`
	PendingDetails   *TransactionRevisionResponse `json:"pendingDetails"`
	CommittedDetails *TransactionRevisionResponse `json:"committedDetails"`
	PendingFiles     []AttachedFileResponse       `json:"pendingFiles,omitempty"`
	CommittedFiles   []AttachedFileResponse       `json:"committedFiles,omitempty"`
}

// ListTransactionsResponse wraps a list of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ToTransactionRevisionResponse converts a revision to its DTO.
func ToTransactionRevisionResponse(rev domain.Revision[domain.TransactionDetails]) TransactionRevisionResponse {
	d := rev.Details
	res := TransactionRevisionResponse{
		Version:        rev.Version,
		Committed:      rev.Committed,
		ChangedBy:      rev.UserID,
		ChangedAt:      rev.CreatedAt,
		Name:           d.Name,
		Description:    d.Description,
		Value:          d.Value,
		CurrencySymbol: d.CurrencySymbol,
		ConversionRate: d.ConversionRate,
		BilledAt:       d.BilledAt,
		Tags:           d.Tags,
		DebitorShares:  d.DebitorShares,
		CreditorShares: d.CreditorShares,
		Positions:      make([]PositionResponse, 0, len(d.Positions)),
		Deleted:        d.Deleted,
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	for _, p := range d.Positions {
		res.Positions = append(res.Positions, PositionResponse(p))
	}
	return res
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	res := TransactionResponse{
		TransactionID: t.ID,
		GroupID:       t.GroupID,
		Type:          domain.TransactionType(t.Type),
		LatestVersion: t.Revisions.LatestVersion(),
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
	}
	if pending, ok := t.Revisions.Pending(); ok {
		r := ToTransactionRevisionResponse(pending)
		res.PendingDetails = &r
	}
	if committed, ok := t.Revisions.Committed(); ok {
		r := ToTransactionRevisionResponse(committed)
		res.CommittedDetails = &r
	}
	return res
}

// ToTransactionWithFilesResponse adds the attachments, split by revision slot.
// A side with no attachments is left out.
func ToTransactionWithFilesResponse(t *domain.Transaction, files []domain.FileAttachment) TransactionResponse {
	res := ToTransactionResponse(t)
	for i := range files {
		f := &files[i]
		if f.Pending != nil {
			res.PendingFiles = append(res.PendingFiles, AttachedFileResponse{FileID: f.FileID, FileDetailsResponse: *toFileDetailsResponse(f.Pending)})
		}
		if f.Committed != nil {
			res.CommittedFiles = append(res.CommittedFiles, AttachedFileResponse{FileID: f.FileID, FileDetailsResponse: *toFileDetailsResponse(f.Committed)})
		}
	}
	return res
}

// ToListTransactionsResponse converts a slice of domain.Transaction to DTO.
func ToListTransactionsResponse(txs []domain.Transaction) ListTransactionsResponse {
	res := make([]TransactionResponse, len(txs))
	for i := range txs {
		res[i] = ToTransactionResponse(&txs[i])
	}
	return ListTransactionsResponse{Transactions: res}
}
