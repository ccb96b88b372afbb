package repositories

import (
	"context"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
)

// AccountReader defines account specific read operations.
type AccountReader interface {
	// FindAccountsByIDsForShare retrieves multiple accounts by their IDs and
	// share-locks them, so they cannot be deleted until the unit of work ends.
	FindAccountsByIDsForShare(ctx context.Context, accountIDs []int64) (map[int64]domain.Account, error)

	// ListCommittedClearingShares returns the committed share maps of all
	// non-deleted clearing accounts of a group, keyed by account id.
	ListCommittedClearingShares(ctx context.Context, groupID int64) (map[int64]domain.ShareMap, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	RevisionRepository[domain.AccountDetails]
	AccountReader
}
