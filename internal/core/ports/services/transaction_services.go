package services

import (
	"context"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
)

// TransactionReaderSvc defines read operations for transactions
type TransactionReaderSvc interface {
	GetTransaction(ctx context.Context, groupID, transactionID int64, userID string) (*domain.Transaction, error)
	// GetTransactionWithFiles returns the transaction and its attachments read in one unit of work.
	GetTransactionWithFiles(ctx context.Context, groupID, transactionID int64, userID string) (*domain.Transaction, []domain.FileAttachment, error)
	GetTransactionRevision(ctx context.Context, groupID, transactionID int64, view domain.RevisionView, userID string) (*domain.Revision[domain.TransactionDetails], error)
	ListTransactions(ctx context.Context, groupID int64, userID string) ([]domain.Transaction, error)
}

// TransactionWriterSvc defines write operations for transactions
type TransactionWriterSvc interface {
	CreateTransaction(ctx context.Context, groupID int64, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, groupID, transactionID int64, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, groupID, transactionID, baseVersion int64, userID string) (*domain.Transaction, error)
	// CommitTransaction commits the pending revision and finalises pending attachment changes.
	CommitTransaction(ctx context.Context, groupID, transactionID int64, userID string) (*domain.Transaction, error)
	// DiscardTransaction drops the pending revision and pending attachment changes.
	DiscardTransaction(ctx context.Context, groupID, transactionID int64, userID string) (*domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
