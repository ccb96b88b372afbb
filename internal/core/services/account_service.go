package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
)

// AccountService applies the personal/clearing account rules on top of the revision store.
type AccountService struct {
	BaseService
	store     portsrepo.LedgerStore
	revisions revisionStore[domain.AccountDetails]
	validator *ClearingValidator
}

// NewAccountService creates a new AccountService.
func NewAccountService(store portsrepo.LedgerStore, options ...ServiceOption) *AccountService {
	base := newBaseService(options)
	return &AccountService{
		BaseService: base,
		store:       store,
		revisions: revisionStore[domain.AccountDetails]{
			kind:    domain.EntityKindAccount,
			repo:    accountRepo,
			metrics: base.Metrics,
		},
		validator: NewClearingValidator(base.Metrics),
	}
}

var _ portssvc.AccountSvcFacade = (*AccountService)(nil)

func accountRepo(tx portsrepo.LedgerTx) portsrepo.RevisionRepository[domain.AccountDetails] {
	return tx.Accounts()
}

// CreateAccount creates an account whose initial revision is pending.
func (s *AccountService) CreateAccount(ctx context.Context, groupID int64, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}
	if !req.Type.IsValid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown account type %q", req.Type))
	}
	details := req.ToDomain()
	if err := s.checkDetails(0, req.Type, details); err != nil {
		return nil, err
	}

	var (
		account *domain.Account
		events  []domain.CommitEvent
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := s.checkReferences(ctx, tx, groupID, details); err != nil {
			return err
		}
		now := s.now()
		created, err := s.revisions.create(ctx, tx, domain.EntityHeader{
			GroupID:   groupID,
			Type:      string(req.Type),
			CreatedBy: userID,
			CreatedAt: now,
		}, details)
		if err != nil {
			return err
		}
		account = created
		if !req.Commit {
			return nil
		}
		committed, event, err := s.commitLocked(ctx, tx, account, userID)
		if err != nil {
			return err
		}
		account = committed
		events = append(events, event)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account", slog.Int64("group_id", groupID), slog.String("account_name", req.Name))
		return nil, err
	}

	s.notifyCommits(ctx, events...)
	s.LogInfo(ctx, "Account created successfully", slog.Int64("account_id", account.ID), slog.Int64("group_id", groupID))
	return account, nil
}

// UpdateAccount stages a new pending revision of the account.
func (s *AccountService) UpdateAccount(ctx context.Context, groupID, accountID int64, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}
	details := req.ToDomain()
	return s.stage(ctx, groupID, accountID, req.BaseVersion, userID, req.Commit, func(account *domain.Account) (domain.AccountDetails, error) {
		if err := s.checkDetails(accountID, domain.AccountType(account.Type), details); err != nil {
			return details, err
		}
		return details, nil
	})
}

// DeleteAccount stages a revision that marks the account as deleted.
func (s *AccountService) DeleteAccount(ctx context.Context, groupID, accountID, baseVersion int64, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}
	return s.stage(ctx, groupID, accountID, baseVersion, userID, false, func(account *domain.Account) (domain.AccountDetails, error) {
		details := account.Revisions.Latest().Details.Clone()
		if details.Deleted {
			return details, apperrors.NewValidationFailedError(fmt.Sprintf("account %d is already deleted", accountID))
		}
		details.Deleted = true
		return details, nil
	})
}

func (s *AccountService) stage(
	ctx context.Context,
	groupID, accountID, baseVersion int64,
	userID string,
	commit bool,
	build func(account *domain.Account) (domain.AccountDetails, error),
) (*domain.Account, error) {
	var (
		account *domain.Account
		events  []domain.CommitEvent
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := s.revisions.lock(ctx, tx, groupID, accountID, userID)
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
		account, err = s.revisions.stage(ctx, tx, locked, baseVersion, details, userID, s.now)
		if err != nil {
			return err
		}
		if !commit {
			return nil
		}
		committed, event, err := s.commitLocked(ctx, tx, account, userID)
		if err != nil {
			return err
		}
		account = committed
		events = append(events, event)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to stage account revision", slog.Int64("account_id", accountID), slog.Int64("base_version", baseVersion))
		return nil, err
	}

	s.notifyCommits(ctx, events...)
	s.LogInfo(ctx, "Account revision staged", slog.Int64("account_id", accountID), slog.Int64("version", account.LastVersion))
	return account, nil
}

// CommitAccount promotes the pending revision. Clearing accounts pass the cycle check first.
func (s *AccountService) CommitAccount(ctx context.Context, groupID, accountID int64, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	var (
		account *domain.Account
		event   domain.CommitEvent
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := s.revisions.lock(ctx, tx, groupID, accountID, userID)
		if err != nil {
			return err
		}
		account, event, err = s.commitLocked(ctx, tx, locked, userID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to commit account", slog.Int64("account_id", accountID))
		return nil, err
	}

	s.notifyCommits(ctx, event)
	s.LogInfo(ctx, "Account committed", slog.Int64("account_id", accountID), slog.Int64("version", event.Version))
	return account, nil
}

func (s *AccountService) commitLocked(ctx context.Context, tx portsrepo.LedgerTx, account *domain.Account, userID string) (*domain.Account, domain.CommitEvent, error) {
	pending, ok := account.Revisions.Pending()
	if !ok {
		return nil, domain.CommitEvent{}, fmt.Errorf("%w: account %d", apperrors.ErrNoPendingChanges, account.ID)
	}

	if pending.Details.Deleted {
		if err := s.checkNotReferenced(ctx, tx, account.GroupID, account.ID); err != nil {
			return nil, domain.CommitEvent{}, err
		}
	} else {
		if err := s.checkReferences(ctx, tx, account.GroupID, pending.Details); err != nil {
			return nil, domain.CommitEvent{}, err
		}
		if domain.AccountType(account.Type) == domain.AccountTypeClearing {
			if err := s.validator.Validate(ctx, tx, account.GroupID, account.ID, pending.Details.ClearingShares); err != nil {
				return nil, domain.CommitEvent{}, err
			}
		}
	}

	committed, rev, err := s.revisions.commit(ctx, tx, account, userID, s.now)
	if err != nil {
		return nil, domain.CommitEvent{}, err
	}
	return committed, domain.CommitEvent{
		Kind:        domain.EntityKindAccount,
		EntityID:    committed.ID,
		GroupID:     committed.GroupID,
		Version:     rev.Version,
		UserID:      userID,
		CommittedAt: rev.CreatedAt,
	}, nil
}

// DiscardAccount drops the pending revision.
func (s *AccountService) DiscardAccount(ctx context.Context, groupID, accountID int64, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	var account *domain.Account
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := s.revisions.lock(ctx, tx, groupID, accountID, userID)
		if err != nil {
			return err
		}
		account, err = s.revisions.discard(ctx, tx, locked)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to discard account changes", slog.Int64("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account changes discarded", slog.Int64("account_id", accountID))
	return account, nil
}

// GetAccount returns the account with both revision slots.
func (s *AccountService) GetAccount(ctx context.Context, groupID, accountID int64, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleViewer); err != nil {
		return nil, err
	}
	var account *domain.Account
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		account, err = s.revisions.find(ctx, tx, groupID, accountID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccountRevision resolves the committed or latest revision.
func (s *AccountService) GetAccountRevision(ctx context.Context, groupID, accountID int64, view domain.RevisionView, userID string) (*domain.Revision[domain.AccountDetails], error) {
	account, err := s.GetAccount(ctx, groupID, accountID, userID)
	if err != nil {
		return nil, err
	}
	rev, err := account.Revisions.Resolve(view)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", accountID, err)
	}
	return &rev, nil
}

// ListAccounts returns all accounts of the group.
func (s *AccountService) ListAccounts(ctx context.Context, groupID int64, userID string) ([]domain.Account, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleViewer); err != nil {
		return nil, err
	}
	var accounts []domain.Account
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		accounts, err = tx.Accounts().ListEntitiesByGroup(ctx, groupID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.Int64("group_id", groupID))
		return nil, err
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *AccountService) checkDetails(accountID int64, accountType domain.AccountType, details domain.AccountDetails) error {
	if err := validateDetails(details); err != nil {
		return err
	}
	return details.CheckShape(accountID, accountType)
}

func (s *AccountService) checkReferences(ctx context.Context, tx portsrepo.LedgerTx, groupID int64, details domain.AccountDetails) error {
	ids := details.ClearingShares.AccountIDs()
	if len(ids) == 0 {
		return nil
	}
	accounts, err := tx.Accounts().FindAccountsByIDsForShare(ctx, ids)
	if err != nil {
		return err
	}
	return checkAccountReferences(accounts, groupID, ids)
}

// checkNotReferenced refuses to delete an account that committed clearing
// accounts or committed transactions of the group still point at. It takes the
// group lock that clearing commits take. Transaction commits share-lock the
// accounts they reference, which the caller's row lock on the account excludes.
func (s *AccountService) checkNotReferenced(ctx context.Context, tx portsrepo.LedgerTx, groupID, accountID int64) error {
	if err := tx.Groups().LockGroup(ctx, groupID); err != nil {
		return err
	}
	clearing, err := tx.Accounts().ListCommittedClearingShares(ctx, groupID)
	if err != nil {
		return err
	}
	for id, shares := range clearing {
		if _, ok := shares[accountID]; ok && id != accountID {
			return apperrors.NewValidationFailedError(fmt.Sprintf("account %d is still used by clearing account %d", accountID, id))
		}
	}

	transactions, err := tx.Transactions().ListEntitiesByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	for _, t := range transactions {
		committed, ok := t.Revisions.Committed()
		if !ok || committed.Details.Deleted {
			continue
		}
		for _, id := range committed.Details.ReferencedAccountIDs() {
			if id == accountID {
				return apperrors.NewValidationFailedError(fmt.Sprintf("account %d is still used by transaction %d", accountID, t.ID))
			}
		}
	}
	return nil
}
