package repositories

import "github.com/SscSPs/shared_ledger_app/internal/core/domain"

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	RevisionRepository[domain.TransactionDetails]
}
