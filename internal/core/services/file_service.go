package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
	"github.com/SscSPs/shared_ledger_app/internal/platform/config"
)

// FileService stores transaction attachments as content-addressed blobs.
// Attachment changes stay pending until the owning transaction is committed.
type FileService struct {
	BaseService
	store        portsrepo.LedgerStore
	cfg          config.LedgerConfig
	transactions revisionStore[domain.TransactionDetails]
}

// NewFileService creates a new FileService.
func NewFileService(store portsrepo.LedgerStore, cfg config.LedgerConfig, options ...ServiceOption) *FileService {
	base := newBaseService(options)
	return &FileService{
		BaseService: base,
		store:       store,
		cfg:         cfg,
		transactions: revisionStore[domain.TransactionDetails]{
			kind:    domain.EntityKindTransaction,
			repo:    transactionRepo,
			metrics: base.Metrics,
		},
	}
}

var _ portssvc.FileSvcFacade = (*FileService)(nil)

// ContentHash returns the hex encoded SHA-256 of content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// UploadFile stores the content once per hash and attaches it to the transaction as a pending file.
func (s *FileService) UploadFile(ctx context.Context, groupID, transactionID int64, req dto.UploadFileRequest, userID string) (*domain.FileAttachment, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}
	if err := s.checkUpload(req); err != nil {
		return nil, err
	}
	hash := ContentHash(req.Content)

	var file domain.FileAttachment
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := s.transactions.lock(ctx, tx, groupID, transactionID, userID); err != nil {
			return err
		}

		blobID, err := s.storeBlob(ctx, tx, hash, req)
		if err != nil {
			return err
		}

		now := s.now()
		file = domain.FileAttachment{
			TransactionID: transactionID,
			CreatedBy:     userID,
			CreatedAt:     now,
			Pending: &domain.FileDetails{
				Filename:  req.Filename,
				BlobID:    &blobID,
				UserID:    userID,
				ChangedAt: now,
			},
		}
		file.FileID, err = tx.Files().CreateFile(ctx, file)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to upload file", slog.Int64("transaction_id", transactionID), slog.String("filename", req.Filename))
		return nil, err
	}

	s.LogInfo(ctx, "File uploaded", slog.Int64("file_id", file.FileID), slog.Int64("transaction_id", transactionID), slog.String("hash", hash))
	return &file, nil
}

func (s *FileService) checkUpload(req dto.UploadFileRequest) error {
	if strings.TrimSpace(req.Filename) == "" {
		return apperrors.NewValidationFailedError("filename is required")
	}
	if len(req.Content) == 0 {
		return apperrors.NewValidationFailedError("file is empty")
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(req.Content)) > s.cfg.MaxUploadBytes {
		return apperrors.NewValidationFailedError(fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxUploadBytes))
	}
	if req.MimeType == "" {
		return apperrors.NewValidationFailedError("mime type is required")
	}
	if !s.cfg.MimeTypeAllowed(req.MimeType) {
		return apperrors.NewValidationFailedError(fmt.Sprintf("mime type %s is not allowed", req.MimeType))
	}
	return nil
}

func (s *FileService) storeBlob(ctx context.Context, tx portsrepo.LedgerTx, hash string, req dto.UploadFileRequest) (int64, error) {
	existing, err := tx.Blobs().FindBlobByHashForShare(ctx, hash)
	if err == nil {
		s.Metrics.BlobDedupHit()
		s.LogDebug(ctx, "Reusing stored blob", slog.Int64("blob_id", existing.BlobID), slog.String("hash", hash))
		return existing.BlobID, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return 0, err
	}
	return tx.Blobs().SaveBlob(ctx, domain.Blob{
		Hash:     hash,
		MimeType: req.MimeType,
		Size:     int64(len(req.Content)),
		Content:  req.Content,
	})
}

// DeleteFile stages the deletion of an attachment.
func (s *FileService) DeleteFile(ctx context.Context, groupID, fileID int64, userID string) (*domain.FileAttachment, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	var file *domain.FileAttachment
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		found, err := tx.Files().FindFileByID(ctx, fileID)
		if err != nil {
			return err
		}
		if _, err := s.transactions.lock(ctx, tx, groupID, found.TransactionID, userID); err != nil {
			return err
		}
		// Re-read under the transaction lock.
		file, err = tx.Files().FindFileByID(ctx, fileID)
		if err != nil {
			return err
		}
		if !file.MarkDeleted(userID, s.now()) {
			return apperrors.NewValidationFailedError(fmt.Sprintf("file %d is already deleted", fileID))
		}
		return tx.Files().SaveFile(ctx, *file)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete file", slog.Int64("file_id", fileID))
		return nil, err
	}

	s.LogInfo(ctx, "File marked for deletion", slog.Int64("file_id", fileID))
	return file, nil
}

// ListFiles returns the attachments of a transaction.
func (s *FileService) ListFiles(ctx context.Context, groupID, transactionID int64, userID string) ([]domain.FileAttachment, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleViewer); err != nil {
		return nil, err
	}
	var files []domain.FileAttachment
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := s.transactions.find(ctx, tx, groupID, transactionID, userID); err != nil {
			return err
		}
		var err error
		files, err = tx.Files().ListFilesByTransaction(ctx, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if files == nil {
		return []domain.FileAttachment{}, nil
	}
	return files, nil
}

// ReadFileContent returns the blob if the attachment still references it.
func (s *FileService) ReadFileContent(ctx context.Context, groupID, fileID, blobID int64, userID string) (*domain.Blob, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleViewer); err != nil {
		return nil, err
	}
	var blob *domain.Blob
	err := s.store.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		file, err := tx.Files().FindFileByID(ctx, fileID)
		if err != nil {
			return err
		}
		if _, err := s.transactions.find(ctx, tx, groupID, file.TransactionID, userID); err != nil {
			return err
		}
		if !file.References(blobID) {
			return apperrors.NewNotFoundError(fmt.Sprintf("file %d has no content %d", fileID, blobID))
		}
		blob, err = tx.Blobs().FindBlobByID(ctx, blobID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// commitPendingFiles finalises the pending attachment changes of a transaction
// and returns how many attachments changed.
func (s *FileService) commitPendingFiles(ctx context.Context, tx portsrepo.LedgerTx, transactionID int64, userID string, at time.Time) (int, error) {
	files, err := tx.Files().ListFilesByTransaction(ctx, transactionID)
	if err != nil {
		return 0, err
	}
	var (
		changed  int
		released []int64
	)
	for i := range files {
		if !files[i].HasPending() {
			continue
		}
		released = append(released, files[i].CommitPending(userID, at)...)
		if err := tx.Files().SaveFile(ctx, files[i]); err != nil {
			return 0, err
		}
		changed++
	}
	return changed, s.releaseBlobs(ctx, tx, released)
}

// discardPendingFiles drops the pending attachment changes of a transaction.
// Attachments that were never committed are removed.
func (s *FileService) discardPendingFiles(ctx context.Context, tx portsrepo.LedgerTx, transactionID int64) (int, error) {
	files, err := tx.Files().ListFilesByTransaction(ctx, transactionID)
	if err != nil {
		return 0, err
	}
	var (
		changed  int
		released []int64
	)
	for i := range files {
		if !files[i].HasPending() {
			continue
		}
		remove, blobs := files[i].DiscardPending()
		released = append(released, blobs...)
		if remove {
			err = tx.Files().DeleteFile(ctx, files[i].FileID)
		} else {
			err = tx.Files().SaveFile(ctx, files[i])
		}
		if err != nil {
			return 0, err
		}
		changed++
	}
	return changed, s.releaseBlobs(ctx, tx, released)
}

// releaseBlobs deletes blobs no attachment refers to anymore.
func (s *FileService) releaseBlobs(ctx context.Context, tx portsrepo.LedgerTx, blobIDs []int64) error {
	seen := make(map[int64]bool, len(blobIDs))
	for _, blobID := range blobIDs {
		if seen[blobID] {
			continue
		}
		seen[blobID] = true
		if err := tx.Blobs().LockBlob(ctx, blobID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return err
		}
		refs, err := tx.Blobs().CountBlobReferences(ctx, blobID)
		if err != nil {
			return err
		}
		if refs > 0 {
			continue
		}
		if err := tx.Blobs().DeleteBlob(ctx, blobID); err != nil {
			return err
		}
		s.LogDebug(ctx, "Deleted unreferenced blob", slog.Int64("blob_id", blobID))
	}
	return nil
}
