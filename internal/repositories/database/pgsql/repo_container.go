package pgsql

import (
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the PostgreSQL store for the services.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{Store: NewStore(dbPool)}
}

// txRepositories hands out repositories bound to one open transaction.
type txRepositories struct {
	db pgx.Tx
}

func (t *txRepositories) Accounts() portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{revisionRepository: newAccountRevisions(t.db)}
}

func (t *txRepositories) Transactions() portsrepo.TransactionRepositoryFacade {
	return newTransactionRevisions(t.db)
}

func (t *txRepositories) Files() portsrepo.FileRepositoryFacade {
	return &PgxFileRepository{db: t.db}
}

func (t *txRepositories) Blobs() portsrepo.BlobRepositoryFacade {
	return &PgxBlobRepository{db: t.db}
}

func (t *txRepositories) Groups() portsrepo.GroupRepositoryFacade {
	return &PgxGroupRepository{db: t.db}
}
