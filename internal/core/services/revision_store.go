package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	"github.com/SscSPs/shared_ledger_app/internal/platform/metrics"
)

// revisionStore implements stage/commit/discard for one entity kind on top of
// the repositories of an open unit of work. Callers hold the entity row lock.
type revisionStore[T any] struct {
	kind    domain.EntityKind
	repo    func(tx portsrepo.LedgerTx) portsrepo.RevisionRepository[T]
	metrics *metrics.Metrics
}

// find loads an entity of the group without locking it.
func (r revisionStore[T]) find(ctx context.Context, tx portsrepo.LedgerTx, groupID, id int64, userID string) (*domain.Entity[T], error) {
	entity, err := r.repo(tx).FindEntityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.checkGroup(ctx, tx, entity, groupID, userID); err != nil {
		return nil, err
	}
	return entity, nil
}

// lock loads an entity of the group and locks it for the rest of the unit of work.
func (r revisionStore[T]) lock(ctx context.Context, tx portsrepo.LedgerTx, groupID, id int64, userID string) (*domain.Entity[T], error) {
	entity, err := r.repo(tx).LockEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.checkGroup(ctx, tx, entity, groupID, userID); err != nil {
		return nil, err
	}
	return entity, nil
}

// checkGroup rejects entities addressed through a group they do not belong to.
// Members of the owning group get a NotFoundError, everyone else ErrForbidden.
func (r revisionStore[T]) checkGroup(ctx context.Context, tx portsrepo.LedgerTx, entity *domain.Entity[T], groupID int64, userID string) error {
	if entity.GroupID == groupID {
		return nil
	}
	_, err := tx.Groups().FindMembership(ctx, userID, entity.GroupID)
	switch {
	case err == nil:
		return apperrors.NewNotFoundError(fmt.Sprintf("%s %d in group %d", r.kind, entity.ID, groupID))
	case errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("%w: %s %d belongs to a group user %s is not a member of", apperrors.ErrForbidden, r.kind, entity.ID, userID)
	default:
		return err
	}
}

// create inserts a new entity whose only revision is a pending version 1.
func (r revisionStore[T]) create(ctx context.Context, tx portsrepo.LedgerTx, header domain.EntityHeader, details T) (*domain.Entity[T], error) {
	header.LastVersion = 1
	initial := domain.Revision[T]{
		Version:   1,
		UserID:    header.CreatedBy,
		CreatedAt: header.CreatedAt,
		Details:   details,
	}
	id, err := r.repo(tx).CreateEntity(ctx, header, initial)
	if err != nil {
		return nil, err
	}
	header.ID = id
	return &domain.Entity[T]{EntityHeader: header, Revisions: domain.OnlyPending(initial)}, nil
}

// stage replaces the pending revision, provided baseVersion is the latest version.
func (r revisionStore[T]) stage(ctx context.Context, tx portsrepo.LedgerTx, entity *domain.Entity[T], baseVersion int64, details T, userID string, at timeSource) (*domain.Entity[T], error) {
	next := domain.Revision[T]{
		Version:   entity.NextVersion(),
		UserID:    userID,
		CreatedAt: at(),
		Details:   details,
	}
	state, err := entity.Revisions.Stage(baseVersion, next)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			r.metrics.ConflictRecorded(r.kind)
		}
		return nil, fmt.Errorf("%s %d: %w", r.kind, entity.ID, err)
	}
	header := entity.EntityHeader
	header.LastVersion = next.Version
	if err := r.repo(tx).SaveRevisionState(ctx, header, state); err != nil {
		return nil, err
	}
	return &domain.Entity[T]{EntityHeader: header, Revisions: state}, nil
}

// commit promotes the pending revision under the next version.
func (r revisionStore[T]) commit(ctx context.Context, tx portsrepo.LedgerTx, entity *domain.Entity[T], userID string, at timeSource) (*domain.Entity[T], domain.Revision[T], error) {
	version := entity.NextVersion()
	state, committed, err := entity.Revisions.Commit(version, userID, at())
	if err != nil {
		return nil, committed, fmt.Errorf("%s %d: %w", r.kind, entity.ID, err)
	}
	header := entity.EntityHeader
	header.LastVersion = version
	if err := r.repo(tx).SaveRevisionState(ctx, header, state); err != nil {
		return nil, committed, err
	}
	return &domain.Entity[T]{EntityHeader: header, Revisions: state}, committed, nil
}

// discard drops the pending revision. Version numbers are not reused.
func (r revisionStore[T]) discard(ctx context.Context, tx portsrepo.LedgerTx, entity *domain.Entity[T]) (*domain.Entity[T], error) {
	state, err := entity.Revisions.Discard()
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", r.kind, entity.ID, err)
	}
	if err := r.repo(tx).SaveRevisionState(ctx, entity.EntityHeader, state); err != nil {
		return nil, err
	}
	return &domain.Entity[T]{EntityHeader: entity.EntityHeader, Revisions: state}, nil
}

type timeSource func() time.Time
