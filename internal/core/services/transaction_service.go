package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
)

// TransactionService manages purchases and transfers. Committing a transaction
// also finalises its pending attachment changes.
type TransactionService struct {
	BaseService
	store     portsrepo.LedgerStore
	revisions revisionStore[domain.TransactionDetails]
	files     *FileService
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store portsrepo.LedgerStore, files *FileService, options ...ServiceOption) *TransactionService {
	base := newBaseService(options)
	return &TransactionService{
		BaseService: base,
		store:       store,
		revisions: revisionStore[domain.TransactionDetails]{
			kind:    domain.EntityKindTransaction,
			repo:    transactionRepo,
			metrics: base.Metrics,
		},
		files: files,
	}
}

var _ portssvc.TransactionSvcFacade = (*TransactionService)(nil)

func transactionRepo(tx portsrepo.LedgerTx) portsrepo.RevisionRepository[domain.TransactionDetails] {
	return tx.Transactions()
}

// CreateTransaction creates a transaction whose initial revision is pending.
func (s *TransactionService) CreateTransaction(ctx context.Context, groupID int64, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}
	if !req.Type.IsValid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown transaction type %q", req.Type))
	}
	details := req.ToDomain()
	if err := checkTransactionDetails(req.Type, details); err != nil {
		return nil, err
	}

	var (
		transaction *domain.Transaction
		events      []domain.CommitEvent
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := s.checkReferences(ctx, tx, groupID, details); err != nil {
			return err
		}
		created, err := s.revisions.create(ctx, tx, domain.EntityHeader{
			GroupID:   groupID,
			Type:      string(req.Type),
			CreatedBy: userID,
			CreatedAt: s.now(),
		}, details)
		if err != nil {
			return err
		}
		transaction = created
		if !req.Commit {
			return nil
		}
		committed, event, err := s.commitLocked(ctx, tx, transaction, userID)
		if err != nil {
			return err
		}
		transaction = committed
		events = append(events, event)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create transaction", slog.Int64("group_id", groupID), slog.String("transaction_name", req.Name))
		return nil, err
	}

	s.notifyCommits(ctx, events...)
	s.LogInfo(ctx, "Transaction created successfully", slog.Int64("transaction_id", transaction.ID), slog.Int64("group_id", groupID))
	return transaction, nil
}

// UpdateTransaction stages a new pending revision of the transaction.
func (s *TransactionService) UpdateTransaction(ctx context.Context, groupID, transactionID int64, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}
	details := req.ToDomain()
	return s.stage(ctx, groupID, transactionID, req.BaseVersion, userID, req.Commit, func(t *domain.Transaction) (domain.TransactionDetails, error) {
		return details, checkTransactionDetails(domain.TransactionType(t.Type), details)
	})
}

// DeleteTransaction stages a revision that marks the transaction as deleted.
func (s *TransactionService) DeleteTransaction(ctx context.Context, groupID, transactionID, baseVersion int64, userID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}
	return s.stage(ctx, groupID, transactionID, baseVersion, userID, false, func(t *domain.Transaction) (domain.TransactionDetails, error) {
		details := t.Revisions.Latest().Details.Clone()
		if details.Deleted {
			return details, apperrors.NewValidationFailedError(fmt.Sprintf("transaction %d is already deleted", transactionID))
		}
		details.Deleted = true
		return details, nil
	})
}

func (s *TransactionService) stage(
	ctx context.Context,
	groupID, transactionID, baseVersion int64,
	userID string,
	commit bool,
	build func(t *domain.Transaction) (domain.TransactionDetails, error),
) (*domain.Transaction, error) {
	var (
		transaction *domain.Transaction
		events      []domain.CommitEvent
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := s.revisions.lock(ctx, tx, groupID, transactionID, userID)
		if err != nil {
			return err
		}
		details, err := build(locked)
		if err != nil {
			return err
		}
		if !details.Deleted {
			if err := s.checkReferences(ctx, tx, groupID, details); err != nil {
				return err
			}
		}
		transaction, err = s.revisions.stage(ctx, tx, locked, baseVersion, details, userID, s.now)
		if err != nil {
			return err
		}
		if !commit {
			return nil
		}
		committed, event, err := s.commitLocked(ctx, tx, transaction, userID)
		if err != nil {
			return err
		}
		transaction = committed
		events = append(events, event)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to stage transaction revision", slog.Int64("transaction_id", transactionID), slog.Int64("base_version", baseVersion))
		return nil, err
	}

	s.notifyCommits(ctx, events...)
	s.LogInfo(ctx, "Transaction revision staged", slog.Int64("transaction_id", transactionID), slog.Int64("version", transaction.LastVersion))
	return transaction, nil
}

// CommitTransaction promotes the pending revision and the pending attachment changes.
func (s *TransactionService) CommitTransaction(ctx context.Context, groupID, transactionID int64, userID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	var (
		transaction *domain.Transaction
		event       domain.CommitEvent
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := s.revisions.lock(ctx, tx, groupID, transactionID, userID)
		if err != nil {
			return err
		}
		transaction, event, err = s.commitLocked(ctx, tx, locked, userID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to commit transaction", slog.Int64("transaction_id", transactionID))
		return nil, err
	}

	s.notifyCommits(ctx, event)
	s.LogInfo(ctx, "Transaction committed", slog.Int64("transaction_id", transactionID), slog.Int64("version", event.Version))
	return transaction, nil
}

// commitLocked commits whatever is pending on the transaction. A transaction
// with only attachment changes keeps its current version.
func (s *TransactionService) commitLocked(ctx context.Context, tx portsrepo.LedgerTx, transaction *domain.Transaction, userID string) (*domain.Transaction, domain.CommitEvent, error) {
	at := s.now()
	if pending, ok := transaction.Revisions.Pending(); ok {
		if !pending.Details.Deleted {
			if err := s.checkReferences(ctx, tx, transaction.GroupID, pending.Details); err != nil {
				return nil, domain.CommitEvent{}, err
			}
		}
		committed, rev, err := s.revisions.commit(ctx, tx, transaction, userID, func() time.Time { return at })
		if err != nil {
			return nil, domain.CommitEvent{}, err
		}
		transaction = committed
		if _, err := s.files.commitPendingFiles(ctx, tx, transaction.ID, userID, at); err != nil {
			return nil, domain.CommitEvent{}, err
		}
		return transaction, s.commitEvent(transaction, rev.Version, userID, at), nil
	}

	changed, err := s.files.commitPendingFiles(ctx, tx, transaction.ID, userID, at)
	if err != nil {
		return nil, domain.CommitEvent{}, err
	}
	if changed == 0 {
		return nil, domain.CommitEvent{}, fmt.Errorf("%w: transaction %d", apperrors.ErrNoPendingChanges, transaction.ID)
	}
	committed, _ := transaction.Revisions.Committed()
	return transaction, s.commitEvent(transaction, committed.Version, userID, at), nil
}

func (s *TransactionService) commitEvent(t *domain.Transaction, version int64, userID string, at time.Time) domain.CommitEvent {
	return domain.CommitEvent{
		Kind:        domain.EntityKindTransaction,
		EntityID:    t.ID,
		GroupID:     t.GroupID,
		Version:     version,
		UserID:      userID,
		CommittedAt: at,
	}
}

// DiscardTransaction drops the pending revision and the pending attachment changes.
func (s *TransactionService) DiscardTransaction(ctx context.Context, groupID, transactionID int64, userID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	var transaction *domain.Transaction
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := s.revisions.lock(ctx, tx, groupID, transactionID, userID)
		if err != nil {
			return err
		}
		transaction = locked
		hadPending := locked.Revisions.HasPending()
		if hadPending {
			transaction, err = s.revisions.discard(ctx, tx, locked)
			if err != nil {
				return err
			}
		}
		changed, err := s.files.discardPendingFiles(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if !hadPending && changed == 0 {
			return fmt.Errorf("%w: transaction %d", apperrors.ErrNoPendingChanges, transactionID)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to discard transaction changes", slog.Int64("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction changes discarded", slog.Int64("transaction_id", transactionID))
	return transaction, nil
}

// GetTransaction returns the transaction with both revision slots.
func (s *TransactionService) GetTransaction(ctx context.Context, groupID, transactionID int64, userID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleViewer); err != nil {
		return nil, err
	}
	var transaction *domain.Transaction
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		transaction, err = s.revisions.find(ctx, tx, groupID, transactionID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetTransactionWithFiles returns the transaction together with its attachments.
func (s *TransactionService) GetTransactionWithFiles(ctx context.Context, groupID, transactionID int64, userID string) (*domain.Transaction, []domain.FileAttachment, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleViewer); err != nil {
		return nil, nil, err
	}
	var (
		transaction *domain.Transaction
		files       []domain.FileAttachment
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		if transaction, err = s.revisions.find(ctx, tx, groupID, transactionID, userID); err != nil {
			return err
		}
		files, err = tx.Files().ListFilesByTransaction(ctx, transactionID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return transaction, files, nil
}

// GetTransactionRevision resolves the committed or latest revision.
func (s *TransactionService) GetTransactionRevision(ctx context.Context, groupID, transactionID int64, view domain.RevisionView, userID string) (*domain.Revision[domain.TransactionDetails], error) {
	transaction, err := s.GetTransaction(ctx, groupID, transactionID, userID)
	if err != nil {
		return nil, err
	}
	rev, err := transaction.Revisions.Resolve(view)
	if err != nil {
		return nil, fmt.Errorf("transaction %d: %w", transactionID, err)
	}
	return &rev, nil
}

// ListTransactions returns all transactions of the group.
func (s *TransactionService) ListTransactions(ctx context.Context, groupID int64, userID string) ([]domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleViewer); err != nil {
		return nil, err
	}
	var transactions []domain.Transaction
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		transactions, err = tx.Transactions().ListEntitiesByGroup(ctx, groupID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.Int64("group_id", groupID))
		return nil, err
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}

func checkTransactionDetails(transactionType domain.TransactionType, details domain.TransactionDetails) error {
	if err := validateDetails(details); err != nil {
		return err
	}
	return details.CheckShape(transactionType)
}

func (s *TransactionService) checkReferences(ctx context.Context, tx portsrepo.LedgerTx, groupID int64, details domain.TransactionDetails) error {
	ids := details.ReferencedAccountIDs()
	if len(ids) == 0 {
		return nil
	}
	accounts, err := tx.Accounts().FindAccountsByIDsForShare(ctx, ids)
	if err != nil {
		return err
	}
	return checkAccountReferences(accounts, groupID, ids)
}
