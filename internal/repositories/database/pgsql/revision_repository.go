package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	"github.com/SscSPs/shared_ledger_app/internal/models"
	"github.com/jackc/pgx/v5"
)

// revisionRepository stores one kind of versioned entity in an entity table
// plus a revision table whose details column holds M as jsonb.
type revisionRepository[T, M any] struct {
	db        pgx.Tx
	kind      domain.EntityKind
	entities  string
	revisions string
	toModel   func(T) M
	toDomain  func(M) T
}

func newAccountRevisions(db pgx.Tx) *revisionRepository[domain.AccountDetails, models.AccountDetails] {
	return &revisionRepository[domain.AccountDetails, models.AccountDetails]{
		db:        db,
		kind:      domain.EntityKindAccount,
		entities:  "accounts",
		revisions: "account_revisions",
		toModel:   toModelAccountDetails,
		toDomain:  toDomainAccountDetails,
	}
}

func newTransactionRevisions(db pgx.Tx) *revisionRepository[domain.TransactionDetails, models.TransactionDetails] {
	return &revisionRepository[domain.TransactionDetails, models.TransactionDetails]{
		db:        db,
		kind:      domain.EntityKindTransaction,
		entities:  "transactions",
		revisions: "transaction_revisions",
		toModel:   toModelTransactionDetails,
		toDomain:  toDomainTransactionDetails,
	}
}

var _ portsrepo.TransactionRepositoryFacade = (*revisionRepository[domain.TransactionDetails, models.TransactionDetails])(nil)

func (r *revisionRepository[T, M]) selectQuery(where, suffix string) string {
	return fmt.Sprintf(`
		SELECT e.id, e.group_id, e.type, e.last_version, e.created_by, e.created_at,
		       p.version, p.user_id, p.created_at, p.details,
		       c.version, c.user_id, c.created_at, c.details
		FROM %[1]s e
		LEFT JOIN %[2]s p ON p.entity_id = e.id AND p.version = e.pending_version
		LEFT JOIN %[2]s c ON c.entity_id = e.id AND c.version = e.committed_version
		WHERE %[3]s
		ORDER BY e.id
		%[4]s`, r.entities, r.revisions, where, suffix)
}

// revisionColumns receives one nullable side of the joined revision pair.
type revisionColumns[M any] struct {
	Version   *int64
	UserID    *string
	CreatedAt *time.Time
	Details   *M
}

func (r *revisionRepository[T, M]) slot(c revisionColumns[M], committed bool) *domain.Revision[T] {
	if c.Version == nil || c.Details == nil {
		return nil
	}
	rev := domain.Revision[T]{
		Version:   *c.Version,
		Committed: committed,
		Details:   r.toDomain(*c.Details),
	}
	if c.UserID != nil {
		rev.UserID = *c.UserID
	}
	if c.CreatedAt != nil {
		rev.CreatedAt = c.CreatedAt.UTC()
	}
	return &rev
}

func (r *revisionRepository[T, M]) scanEntity(row pgx.CollectableRow) (domain.Entity[T], error) {
	var (
		header    domain.EntityHeader
		pending   revisionColumns[M]
		committed revisionColumns[M]
	)
	err := row.Scan(
		&header.ID, &header.GroupID, &header.Type, &header.LastVersion, &header.CreatedBy, &header.CreatedAt,
		&pending.Version, &pending.UserID, &pending.CreatedAt, &pending.Details,
		&committed.Version, &committed.UserID, &committed.CreatedAt, &committed.Details,
	)
	if err != nil {
		return domain.Entity[T]{}, err
	}
	header.CreatedAt = header.CreatedAt.UTC()
	state, err := domain.NewRevisionState(r.slot(pending, false), r.slot(committed, true))
	if err != nil {
		return domain.Entity[T]{}, fmt.Errorf("%s %d: %w", r.kind, header.ID, err)
	}
	return domain.Entity[T]{EntityHeader: header, Revisions: state}, nil
}

func (r *revisionRepository[T, M]) queryEntities(ctx context.Context, query string, args ...any) ([]domain.Entity[T], error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, string(r.kind))
	}
	entities, err := pgx.CollectRows(rows, r.scanEntity)
	if err != nil {
		return nil, translateError(err, string(r.kind))
	}
	return entities, nil
}

func (r *revisionRepository[T, M]) findOne(ctx context.Context, id int64, suffix string) (*domain.Entity[T], error) {
	subject := fmt.Sprintf("%s %d", r.kind, id)
	rows, err := r.db.Query(ctx, r.selectQuery("e.id = $1", suffix), id)
	if err != nil {
		return nil, translateError(err, subject)
	}
	entity, err := pgx.CollectExactlyOneRow(rows, r.scanEntity)
	if err != nil {
		return nil, translateError(err, subject)
	}
	return &entity, nil
}

func (r *revisionRepository[T, M]) FindEntityByID(ctx context.Context, id int64) (*domain.Entity[T], error) {
	return r.findOne(ctx, id, "")
}

func (r *revisionRepository[T, M]) ListEntitiesByGroup(ctx context.Context, groupID int64) ([]domain.Entity[T], error) {
	return r.queryEntities(ctx, r.selectQuery("e.group_id = $1", ""), groupID)
}

// LockEntity takes a row lock on the entity row only; revision rows are immutable.
func (r *revisionRepository[T, M]) LockEntity(ctx context.Context, id int64) (*domain.Entity[T], error) {
	return r.findOne(ctx, id, "FOR UPDATE OF e")
}

func (r *revisionRepository[T, M]) insertRevision(ctx context.Context, entityID int64, rev domain.Revision[T]) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (entity_id, version, is_committed, user_id, created_at, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (entity_id, version) DO NOTHING`, r.revisions)
	_, err := r.db.Exec(ctx, query, entityID, rev.Version, rev.Committed, rev.UserID, rev.CreatedAt, r.toModel(rev.Details))
	return translateError(err, fmt.Sprintf("%s %d revision %d", r.kind, entityID, rev.Version))
}

func (r *revisionRepository[T, M]) CreateEntity(ctx context.Context, header domain.EntityHeader, initial domain.Revision[T]) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (group_id, type, last_version, pending_version, committed_version, created_by, created_at)
		VALUES ($1, $2, $3, $4, NULL, $5, $6)
		RETURNING id`, r.entities)
	var id int64
	err := r.db.QueryRow(ctx, query, header.GroupID, header.Type, header.LastVersion, initial.Version, header.CreatedBy, header.CreatedAt).Scan(&id)
	if err != nil {
		return 0, translateError(err, string(r.kind))
	}
	initial.Committed = false
	if err := r.insertRevision(ctx, id, initial); err != nil {
		return 0, err
	}
	return id, nil
}

// SaveRevisionState writes any revision rows that do not exist yet and then
// repoints the slot columns. Superseded revisions stay as history.
func (r *revisionRepository[T, M]) SaveRevisionState(ctx context.Context, header domain.EntityHeader, state domain.RevisionState[T]) error {
	if state.IsZero() {
		return apperrors.NewAppError(500, fmt.Sprintf("refusing to store an empty revision state for %s %d", r.kind, header.ID), nil)
	}
	var pendingVersion, committedVersion *int64
	if rev, ok := state.Pending(); ok {
		if err := r.insertRevision(ctx, header.ID, rev); err != nil {
			return err
		}
		pendingVersion = &rev.Version
	}
	if rev, ok := state.Committed(); ok {
		if err := r.insertRevision(ctx, header.ID, rev); err != nil {
			return err
		}
		committedVersion = &rev.Version
	}

	query := fmt.Sprintf(`
		UPDATE %s SET last_version = $2, pending_version = $3, committed_version = $4
		WHERE id = $1`, r.entities)
	tag, err := r.db.Exec(ctx, query, header.ID, header.LastVersion, pendingVersion, committedVersion)
	subject := fmt.Sprintf("%s %d", r.kind, header.ID)
	if err != nil {
		return translateError(err, subject)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(subject)
	}
	return nil
}

// PgxAccountRepository adds the account specific queries.
type PgxAccountRepository struct {
	*revisionRepository[domain.AccountDetails, models.AccountDetails]
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// FindAccountsByIDsForShare blocks while an account deletion is committing and
// keeps later deletions waiting until this unit of work ends.
func (r *PgxAccountRepository) FindAccountsByIDsForShare(ctx context.Context, accountIDs []int64) (map[int64]domain.Account, error) {
	out := make(map[int64]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	accounts, err := r.queryEntities(ctx, r.selectQuery("e.id = ANY($1)", "FOR SHARE OF e"), accountIDs)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		out[account.ID] = account
	}
	return out, nil
}

func (r *PgxAccountRepository) ListCommittedClearingShares(ctx context.Context, groupID int64) (map[int64]domain.ShareMap, error) {
	query := r.selectQuery("e.group_id = $1 AND e.type = 'clearing' AND e.committed_version IS NOT NULL", "")
	accounts, err := r.queryEntities(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]domain.ShareMap, len(accounts))
	for _, account := range accounts {
		committed, ok := account.Revisions.Committed()
		if !ok || committed.Details.Deleted {
			continue
		}
		out[account.ID] = committed.Details.ClearingShares
	}
	return out, nil
}
