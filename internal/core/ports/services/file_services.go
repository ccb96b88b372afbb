package services

import (
	"context"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
)

// FileSvcFacade defines attachment operations.
type FileSvcFacade interface {
	// UploadFile stores the content (deduplicated by hash) and attaches it as a pending file.
	UploadFile(ctx context.Context, groupID, transactionID int64, req dto.UploadFileRequest, userID string) (*domain.FileAttachment, error)

	// DeleteFile stages the deletion of an attachment until the transaction is committed.
	DeleteFile(ctx context.Context, groupID, fileID int64, userID string) (*domain.FileAttachment, error)

	// ListFiles returns all attachments of a transaction, tombstones included.
	ListFiles(ctx context.Context, groupID, transactionID int64, userID string) ([]domain.FileAttachment, error)

	// ReadFileContent returns the blob referenced by the attachment.
	ReadFileContent(ctx context.Context, groupID, fileID, blobID int64, userID string) (*domain.Blob, error)
}
