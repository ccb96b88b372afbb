package repositories

import (
	"context"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
)

// LedgerStore opens units of work against the storage backend.
type LedgerStore interface {
	// WithTx runs fn inside one database transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// LedgerTx gives access to the repositories bound to one transaction.
type LedgerTx interface {
	Accounts() AccountRepositoryFacade
	Transactions() TransactionRepositoryFacade
	Files() FileRepositoryFacade
	Blobs() BlobRepositoryFacade
	Groups() GroupRepositoryFacade
}

// RevisionReader defines read operations shared by versioned entities.
type RevisionReader[T any] interface {
	// FindEntityByID retrieves an entity with its pending and committed revisions.
	FindEntityByID(ctx context.Context, id int64) (*domain.Entity[T], error)

	// ListEntitiesByGroup retrieves all entities of a group ordered by id.
	ListEntitiesByGroup(ctx context.Context, groupID int64) ([]domain.Entity[T], error)
}

// RevisionWriter defines write operations shared by versioned entities.
type RevisionWriter[T any] interface {
	// LockEntity loads an entity and locks its row until the transaction ends.
	LockEntity(ctx context.Context, id int64) (*domain.Entity[T], error)

	// CreateEntity inserts a new entity with its initial pending revision and returns its id.
	CreateEntity(ctx context.Context, header domain.EntityHeader, initial domain.Revision[T]) (int64, error)

	// SaveRevisionState stores new revisions and repoints the pending/committed slots.
	SaveRevisionState(ctx context.Context, header domain.EntityHeader, state domain.RevisionState[T]) error
}

// RevisionRepository combines read and write operations for one entity kind.
type RevisionRepository[T any] interface {
	RevisionReader[T]
	RevisionWriter[T]
}
