package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
)

type fileRepository struct {
	tx *memTx
}

var _ portsrepo.FileRepositoryFacade = (*fileRepository)(nil)

func (r *fileRepository) FindFileByID(_ context.Context, fileID int64) (*domain.FileAttachment, error) {
	file, ok := r.tx.state.files[fileID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("file %d", fileID))
	}
	out := file.Clone()
	return &out, nil
}

func (r *fileRepository) ListFilesByTransaction(_ context.Context, transactionID int64) ([]domain.FileAttachment, error) {
	var out []domain.FileAttachment
	for _, file := range r.tx.state.files {
		if file.TransactionID == transactionID {
			out = append(out, file.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileID < out[j].FileID })
	return out, nil
}

func (r *fileRepository) CreateFile(_ context.Context, file domain.FileAttachment) (int64, error) {
	r.tx.state.seq.file++
	file.FileID = r.tx.state.seq.file
	r.tx.state.files[file.FileID] = file.Clone()
	return file.FileID, nil
}

func (r *fileRepository) SaveFile(_ context.Context, file domain.FileAttachment) error {
	if _, ok := r.tx.state.files[file.FileID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("file %d", file.FileID))
	}
	r.tx.state.files[file.FileID] = file.Clone()
	return nil
}

func (r *fileRepository) DeleteFile(_ context.Context, fileID int64) error {
	if _, ok := r.tx.state.files[fileID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("file %d", fileID))
	}
	delete(r.tx.state.files, fileID)
	return nil
}

type blobRepository struct {
	tx *memTx
}

var _ portsrepo.BlobRepositoryFacade = (*blobRepository)(nil)

func copyBlob(b domain.Blob) *domain.Blob {
	b.Content = bytes.Clone(b.Content)
	return &b
}

func (r *blobRepository) FindBlobByID(_ context.Context, blobID int64) (*domain.Blob, error) {
	blob, ok := r.tx.state.blobs[blobID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("blob %d", blobID))
	}
	return copyBlob(blob), nil
}

func (r *blobRepository) FindBlobByHashForShare(ctx context.Context, hash string) (*domain.Blob, error) {
	blobID, ok := r.tx.state.blobsByHash[hash]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("blob with hash %s", hash))
	}
	return r.FindBlobByID(ctx, blobID)
}

func (r *blobRepository) CountBlobReferences(_ context.Context, blobID int64) (int, error) {
	refs := 0
	for _, file := range r.tx.state.files {
		for _, slot := range []*domain.FileDetails{file.Pending, file.Committed} {
			if slot != nil && slot.BlobID != nil && *slot.BlobID == blobID {
				refs++
			}
		}
	}
	return refs, nil
}

func (r *blobRepository) SaveBlob(_ context.Context, blob domain.Blob) (int64, error) {
	if existing, ok := r.tx.state.blobsByHash[blob.Hash]; ok {
		return existing, nil
	}
	r.tx.state.seq.blob++
	blob.BlobID = r.tx.state.seq.blob
	r.tx.state.blobs[blob.BlobID] = *copyBlob(blob)
	r.tx.state.blobsByHash[blob.Hash] = blob.BlobID
	return blob.BlobID, nil
}

func (r *blobRepository) LockBlob(_ context.Context, blobID int64) error {
	if _, ok := r.tx.state.blobs[blobID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("blob %d", blobID))
	}
	return nil
}

func (r *blobRepository) DeleteBlob(_ context.Context, blobID int64) error {
	blob, ok := r.tx.state.blobs[blobID]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("blob %d", blobID))
	}
	delete(r.tx.state.blobs, blobID)
	delete(r.tx.state.blobsByHash, blob.Hash)
	return nil
}
