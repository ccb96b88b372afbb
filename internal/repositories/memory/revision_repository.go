package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
)

// revisionRepository stores one kind of versioned entity.
type revisionRepository[T any] struct {
	kind  domain.EntityKind
	rows  map[int64]domain.Entity[T]
	seq   *int64
	clone func(T) T
}

func newAccountRevisions(tx *memTx) *revisionRepository[domain.AccountDetails] {
	return &revisionRepository[domain.AccountDetails]{
		kind:  domain.EntityKindAccount,
		rows:  tx.state.accounts,
		seq:   &tx.state.seq.account,
		clone: domain.AccountDetails.Clone,
	}
}

func newTransactionRevisions(tx *memTx) *revisionRepository[domain.TransactionDetails] {
	return &revisionRepository[domain.TransactionDetails]{
		kind:  domain.EntityKindTransaction,
		rows:  tx.state.transactions,
		seq:   &tx.state.seq.transaction,
		clone: domain.TransactionDetails.Clone,
	}
}

var (
	_ portsrepo.RevisionRepository[domain.AccountDetails] = (*revisionRepository[domain.AccountDetails])(nil)
	_ portsrepo.TransactionRepositoryFacade               = (*revisionRepository[domain.TransactionDetails])(nil)
)

func (r *revisionRepository[T]) copyEntity(e domain.Entity[T]) (domain.Entity[T], error) {
	var pending, committed *domain.Revision[T]
	if p, ok := e.Revisions.Pending(); ok {
		p.Details = r.clone(p.Details)
		pending = &p
	}
	if c, ok := e.Revisions.Committed(); ok {
		c.Details = r.clone(c.Details)
		committed = &c
	}
	state, err := domain.NewRevisionState(pending, committed)
	if err != nil {
		return domain.Entity[T]{}, fmt.Errorf("%s %d: %w", r.kind, e.ID, err)
	}
	e.Revisions = state
	return e, nil
}

func (r *revisionRepository[T]) FindEntityByID(_ context.Context, id int64) (*domain.Entity[T], error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %d", r.kind, id))
	}
	entity, err := r.copyEntity(row)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *revisionRepository[T]) ListEntitiesByGroup(_ context.Context, groupID int64) ([]domain.Entity[T], error) {
	var out []domain.Entity[T]
	for _, row := range r.rows {
		if row.GroupID != groupID {
			continue
		}
		entity, err := r.copyEntity(row)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LockEntity is a plain read: the store already runs one unit of work at a time.
func (r *revisionRepository[T]) LockEntity(ctx context.Context, id int64) (*domain.Entity[T], error) {
	return r.FindEntityByID(ctx, id)
}

func (r *revisionRepository[T]) CreateEntity(_ context.Context, header domain.EntityHeader, initial domain.Revision[T]) (int64, error) {
	*r.seq++
	header.ID = *r.seq
	initial.Details = r.clone(initial.Details)
	r.rows[header.ID] = domain.Entity[T]{EntityHeader: header, Revisions: domain.OnlyPending(initial)}
	return header.ID, nil
}

func (r *revisionRepository[T]) SaveRevisionState(_ context.Context, header domain.EntityHeader, state domain.RevisionState[T]) error {
	if _, ok := r.rows[header.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s %d", r.kind, header.ID))
	}
	entity, err := r.copyEntity(domain.Entity[T]{EntityHeader: header, Revisions: state})
	if err != nil {
		return err
	}
	r.rows[header.ID] = entity
	return nil
}

// accountRepository adds the account specific queries.
type accountRepository struct {
	*revisionRepository[domain.AccountDetails]
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

// FindAccountsByIDsForShare needs no lock; the unit of work holds the store.
func (r *accountRepository) FindAccountsByIDsForShare(ctx context.Context, accountIDs []int64) (map[int64]domain.Account, error) {
	out := make(map[int64]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if _, ok := r.rows[id]; !ok {
			continue
		}
		account, err := r.FindEntityByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = *account
	}
	return out, nil
}

func (r *accountRepository) ListCommittedClearingShares(_ context.Context, groupID int64) (map[int64]domain.ShareMap, error) {
	out := map[int64]domain.ShareMap{}
	for id, row := range r.rows {
		if row.GroupID != groupID || domain.AccountType(row.Type) != domain.AccountTypeClearing {
			continue
		}
		committed, ok := row.Revisions.Committed()
		if !ok || committed.Details.Deleted {
			continue
		}
		out[id] = committed.Details.ClearingShares.Clone()
	}
	return out, nil
}
