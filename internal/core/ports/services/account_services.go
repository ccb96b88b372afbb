package services

import (
	"context"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccount returns an account with its pending and committed details.
	GetAccount(ctx context.Context, groupID, accountID int64, userID string) (*domain.Account, error)

	// GetAccountRevision resolves the committed or latest revision of an account.
	GetAccountRevision(ctx context.Context, groupID, accountID int64, view domain.RevisionView, userID string) (*domain.Revision[domain.AccountDetails], error)

	// ListAccounts returns all accounts of a group.
	ListAccounts(ctx context.Context, groupID int64, userID string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount creates an account with its initial pending revision.
	CreateAccount(ctx context.Context, groupID int64, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount stages a new pending revision.
	UpdateAccount(ctx context.Context, groupID, accountID int64, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeleteAccount stages a revision flagged as deleted.
	DeleteAccount(ctx context.Context, groupID, accountID, baseVersion int64, userID string) (*domain.Account, error)

	// CommitAccount promotes the pending revision to committed.
	CommitAccount(ctx context.Context, groupID, accountID int64, userID string) (*domain.Account, error)

	// DiscardAccount drops the pending revision.
	DiscardAccount(ctx context.Context, groupID, accountID int64, userID string) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
