package repositories

import (
	"context"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
)

// FileReader defines read operations for attachments.
type FileReader interface {
	FindFileByID(ctx context.Context, fileID int64) (*domain.FileAttachment, error)
	ListFilesByTransaction(ctx context.Context, transactionID int64) ([]domain.FileAttachment, error)
}

// FileWriter defines write operations for attachments.
type FileWriter interface {
	// CreateFile inserts a new attachment and returns its id.
	CreateFile(ctx context.Context, file domain.FileAttachment) (int64, error)
	// SaveFile stores both slots of an existing attachment.
	SaveFile(ctx context.Context, file domain.FileAttachment) error
	DeleteFile(ctx context.Context, fileID int64) error
}

// FileRepositoryFacade combines all attachment repository interfaces
type FileRepositoryFacade interface {
	FileReader
	FileWriter
}

// BlobReader defines read operations for stored content.
type BlobReader interface {
	FindBlobByID(ctx context.Context, blobID int64) (*domain.Blob, error)
	// FindBlobByHashForShare finds a blob by content hash and share-locks it,
	// so it cannot be garbage collected while the caller attaches it.
	FindBlobByHashForShare(ctx context.Context, hash string) (*domain.Blob, error)
	// CountBlobReferences counts attachment slots pointing at the blob.
	CountBlobReferences(ctx context.Context, blobID int64) (int, error)
}

// BlobWriter defines write operations for stored content.
type BlobWriter interface {
	// SaveBlob stores the blob unless one with the same hash exists and
	// returns the id of the stored blob either way.
	SaveBlob(ctx context.Context, blob domain.Blob) (int64, error)
	// LockBlob takes the exclusive blob lock that garbage collection holds
	// while it counts references.
	LockBlob(ctx context.Context, blobID int64) error
	DeleteBlob(ctx context.Context, blobID int64) error
}

// BlobRepositoryFacade combines all blob repository interfaces
type BlobRepositoryFacade interface {
	BlobReader
	BlobWriter
}
