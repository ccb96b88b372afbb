package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createGroup(t *testing.T, store *Store) int64 {
	t.Helper()
	var groupID int64
	err := store.WithTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		groupID, err = tx.Groups().SaveGroup(ctx, domain.Group{Name: "flat", CurrencySymbol: "EUR"})
		return err
	})
	require.NoError(t, err)
	return groupID
}

func TestStore_RollbackOnError(t *testing.T) {
	store := NewStore()
	groupID := createGroup(t, store)
	boom := errors.New("boom")

	err := store.WithTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.Accounts().CreateEntity(ctx, domain.EntityHeader{GroupID: groupID, Type: "personal", LastVersion: 1},
			domain.Revision[domain.AccountDetails]{Version: 1, Details: domain.AccountDetails{Name: "alice"}})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.WithTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		accounts, err := tx.Accounts().ListEntitiesByGroup(ctx, groupID)
		require.NoError(t, err)
		assert.Empty(t, accounts)
		_, err = tx.Accounts().FindEntityByID(ctx, 1)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_ReadsAreCopies(t *testing.T) {
	store := NewStore()
	groupID := createGroup(t, store)
	ctx := context.Background()

	var accountID int64
	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		accountID, err = tx.Accounts().CreateEntity(ctx, domain.EntityHeader{GroupID: groupID, Type: "clearing", LastVersion: 1},
			domain.Revision[domain.AccountDetails]{Version: 1, Details: domain.AccountDetails{Name: "x", ClearingShares: domain.ShareMap{7: 1}}})
		return err
	}))

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		account, err := tx.Accounts().FindEntityByID(ctx, accountID)
		require.NoError(t, err)
		pending, ok := account.Revisions.Pending()
		require.True(t, ok)
		pending.Details.ClearingShares[8] = 2
		return nil
	}))

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		account, err := tx.Accounts().FindEntityByID(ctx, accountID)
		require.NoError(t, err)
		pending, _ := account.Revisions.Pending()
		assert.Equal(t, domain.ShareMap{7: 1}, pending.Details.ClearingShares)
		return nil
	}))
}

func TestStore_CommittedClearingShares(t *testing.T) {
	store := NewStore()
	groupID := createGroup(t, store)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		repo := tx.Accounts()
		pendingOnly, err := repo.CreateEntity(ctx, domain.EntityHeader{GroupID: groupID, Type: "clearing", LastVersion: 1},
			domain.Revision[domain.AccountDetails]{Version: 1, Details: domain.AccountDetails{Name: "draft", ClearingShares: domain.ShareMap{1: 1}}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), pendingOnly)

		committedID, err := repo.CreateEntity(ctx, domain.EntityHeader{GroupID: groupID, Type: "clearing", LastVersion: 1},
			domain.Revision[domain.AccountDetails]{Version: 1, Details: domain.AccountDetails{Name: "live", ClearingShares: domain.ShareMap{1: 2}}})
		require.NoError(t, err)

		entity, err := repo.LockEntity(ctx, committedID)
		require.NoError(t, err)
		state, _, err := entity.Revisions.Commit(2, "u", now)
		require.NoError(t, err)
		header := entity.EntityHeader
		header.LastVersion = 2
		return repo.SaveRevisionState(ctx, header, state)
	}))

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		shares, err := tx.Accounts().ListCommittedClearingShares(ctx, groupID)
		require.NoError(t, err)
		assert.Equal(t, map[int64]domain.ShareMap{2: {1: 2}}, shares)
		return nil
	}))
}

func TestStore_BlobDedupAndReferences(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		first, err := tx.Blobs().SaveBlob(ctx, domain.Blob{Hash: "abc", MimeType: "text/plain", Size: 3, Content: []byte("abc")})
		require.NoError(t, err)
		second, err := tx.Blobs().SaveBlob(ctx, domain.Blob{Hash: "abc", MimeType: "image/png", Size: 3, Content: []byte("abc")})
		require.NoError(t, err)
		assert.Equal(t, first, second)

		blob, err := tx.Blobs().FindBlobByHashForShare(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "text/plain", blob.MimeType)

		for i := 0; i < 2; i++ {
			_, err := tx.Files().CreateFile(ctx, domain.FileAttachment{
				TransactionID: 1,
				Pending:       &domain.FileDetails{Filename: "r.txt", BlobID: &first},
			})
			require.NoError(t, err)
		}
		refs, err := tx.Blobs().CountBlobReferences(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, 2, refs)

		require.NoError(t, tx.Blobs().LockBlob(ctx, first))
		require.NoError(t, tx.Blobs().DeleteBlob(ctx, first))
		_, err = tx.Blobs().FindBlobByHashForShare(ctx, "abc")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.ErrorIs(t, tx.Blobs().LockBlob(ctx, first), apperrors.ErrNotFound)
		return nil
	}))
}

func TestStore_Memberships(t *testing.T) {
	store := NewStore()
	groupID := createGroup(t, store)
	ctx := context.Background()
	joined := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		groups := tx.Groups()
		require.NoError(t, groups.AddMember(ctx, domain.GroupMembership{UserID: "bob", GroupID: groupID, Role: domain.RoleViewer, JoinedAt: joined}))
		require.NoError(t, groups.AddMember(ctx, domain.GroupMembership{UserID: "bob", GroupID: groupID, Role: domain.RoleMember, JoinedAt: joined.Add(time.Hour)}))

		m, err := groups.FindMembership(ctx, "bob", groupID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleMember, m.Role)
		assert.Equal(t, joined, m.JoinedAt)

		list, err := groups.ListGroupsByUserID(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, groupID, list[0].GroupID)

		assert.ErrorIs(t, groups.LockGroup(ctx, groupID+1), apperrors.ErrNotFound)
		assert.ErrorIs(t, groups.AddMember(ctx, domain.GroupMembership{UserID: "eve", GroupID: groupID + 1}), apperrors.ErrNotFound)
		return nil
	}))
}
