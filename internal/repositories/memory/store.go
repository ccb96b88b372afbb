// Package memory provides an in-process LedgerStore. Every unit of work runs
// on a copy of the state that replaces the live state only when it succeeds.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
)

type memberKey struct {
	groupID int64
	userID  string
}

type sequences struct {
	group       int64
	account     int64
	transaction int64
	file        int64
	blob        int64
}

type state struct {
	seq          sequences
	groups       map[int64]domain.Group
	members      map[memberKey]domain.GroupMembership
	accounts     map[int64]domain.Account
	transactions map[int64]domain.Transaction
	files        map[int64]domain.FileAttachment
	blobs        map[int64]domain.Blob
	blobsByHash  map[string]int64
}

func newState() state {
	return state{
		groups:       map[int64]domain.Group{},
		members:      map[memberKey]domain.GroupMembership{},
		accounts:     map[int64]domain.Account{},
		transactions: map[int64]domain.Transaction{},
		files:        map[int64]domain.FileAttachment{},
		blobs:        map[int64]domain.Blob{},
		blobsByHash:  map[string]int64{},
	}
}

// clone copies the maps. Values are deep-copied on every read and write, so
// the copies never share mutable data with the live state.
func (s state) clone() state {
	return state{
		seq:          s.seq,
		groups:       maps.Clone(s.groups),
		members:      maps.Clone(s.members),
		accounts:     maps.Clone(s.accounts),
		transactions: maps.Clone(s.transactions),
		files:        maps.Clone(s.files),
		blobs:        maps.Clone(s.blobs),
		blobsByHash:  maps.Clone(s.blobsByHash),
	}
}

// Store is a LedgerStore kept in memory. Units of work are serialised.
type Store struct {
	mu    sync.Mutex
	state state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

var _ portsrepo.LedgerStore = (*Store)(nil)

// WithTx runs fn against a copy of the state and keeps the copy if fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{state: s.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

type memTx struct {
	state state
}

func (tx *memTx) Accounts() portsrepo.AccountRepositoryFacade {
	return &accountRepository{revisionRepository: newAccountRevisions(tx)}
}

func (tx *memTx) Transactions() portsrepo.TransactionRepositoryFacade {
	return newTransactionRevisions(tx)
}

func (tx *memTx) Files() portsrepo.FileRepositoryFacade {
	return &fileRepository{tx: tx}
}

func (tx *memTx) Blobs() portsrepo.BlobRepositoryFacade {
	return &blobRepository{tx: tx}
}

func (tx *memTx) Groups() portsrepo.GroupRepositoryFacade {
	return &groupRepository{tx: tx}
}
