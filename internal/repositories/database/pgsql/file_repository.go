package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	"github.com/SscSPs/shared_ledger_app/internal/models"
	"github.com/jackc/pgx/v5"
)

// PgxFileRepository stores attachments in files plus one file_details row per slot.
type PgxFileRepository struct {
	db pgx.Tx
}

var _ portsrepo.FileRepositoryFacade = (*PgxFileRepository)(nil)

const fileDetailsColumns = `file_id, slot, filename, blob_id, deleted, user_id, changed_at`

func (r *PgxFileRepository) attachDetails(ctx context.Context, files []models.File, where string, arg any) ([]domain.FileAttachment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+fileDetailsColumns+` FROM file_details WHERE `+where, arg)
	if err != nil {
		return nil, translateError(err, "file details")
	}
	details, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.FileDetails])
	if err != nil {
		return nil, translateError(err, "file details")
	}

	out := make([]domain.FileAttachment, len(files))
	index := make(map[int64]int, len(files))
	for i, f := range files {
		out[i] = domain.FileAttachment{
			FileID:        f.ID,
			TransactionID: f.TransactionID,
			CreatedBy:     f.CreatedBy,
			CreatedAt:     f.CreatedAt.UTC(),
		}
		index[f.ID] = i
	}
	for _, d := range details {
		i, ok := index[d.FileID]
		if !ok {
			continue
		}
		d.ChangedAt = d.ChangedAt.UTC()
		switch d.Slot {
		case models.SlotPending:
			out[i].Pending = toDomainFileDetails(d)
		case models.SlotCommitted:
			out[i].Committed = toDomainFileDetails(d)
		}
	}
	return out, nil
}

func (r *PgxFileRepository) FindFileByID(ctx context.Context, fileID int64) (*domain.FileAttachment, error) {
	subject := fmt.Sprintf("file %d", fileID)
	rows, err := r.db.Query(ctx, `SELECT id, transaction_id, created_by, created_at FROM files WHERE id = $1`, fileID)
	if err != nil {
		return nil, translateError(err, subject)
	}
	file, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.File])
	if err != nil {
		return nil, translateError(err, subject)
	}
	out, err := r.attachDetails(ctx, []models.File{file}, "file_id = $1", fileID)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (r *PgxFileRepository) ListFilesByTransaction(ctx context.Context, transactionID int64) ([]domain.FileAttachment, error) {
	subject := fmt.Sprintf("files of transaction %d", transactionID)
	rows, err := r.db.Query(ctx, `
		SELECT id, transaction_id, created_by, created_at FROM files
		WHERE transaction_id = $1 ORDER BY id`, transactionID)
	if err != nil {
		return nil, translateError(err, subject)
	}
	files, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.File])
	if err != nil {
		return nil, translateError(err, subject)
	}
	if len(files) == 0 {
		return []domain.FileAttachment{}, nil
	}
	return r.attachDetails(ctx, files, "file_id IN (SELECT id FROM files WHERE transaction_id = $1)", transactionID)
}

func (r *PgxFileRepository) insertSlots(ctx context.Context, file domain.FileAttachment) error {
	slots := map[models.FileSlot]*domain.FileDetails{
		models.SlotPending:   file.Pending,
		models.SlotCommitted: file.Committed,
	}
	batch := &pgx.Batch{}
	for slot, details := range slots {
		if details == nil {
			continue
		}
		m := toModelFileDetails(file.FileID, slot, details)
		batch.Queue(`INSERT INTO file_details (`+fileDetailsColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.FileID, m.Slot, m.Filename, m.BlobID, m.Deleted, m.UserID, m.ChangedAt)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return translateError(err, fmt.Sprintf("file %d", file.FileID))
	}
	return nil
}

func (r *PgxFileRepository) CreateFile(ctx context.Context, file domain.FileAttachment) (int64, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO files (transaction_id, created_by, created_at)
		VALUES ($1, $2, $3) RETURNING id`,
		file.TransactionID, file.CreatedBy, file.CreatedAt).Scan(&file.FileID)
	if err != nil {
		return 0, translateError(err, fmt.Sprintf("file of transaction %d", file.TransactionID))
	}
	if err := r.insertSlots(ctx, file); err != nil {
		return 0, err
	}
	return file.FileID, nil
}

func (r *PgxFileRepository) SaveFile(ctx context.Context, file domain.FileAttachment) error {
	subject := fmt.Sprintf("file %d", file.FileID)
	var id int64
	if err := r.db.QueryRow(ctx, `SELECT id FROM files WHERE id = $1 FOR UPDATE`, file.FileID).Scan(&id); err != nil {
		return translateError(err, subject)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM file_details WHERE file_id = $1`, file.FileID); err != nil {
		return translateError(err, subject)
	}
	return r.insertSlots(ctx, file)
}

func (r *PgxFileRepository) DeleteFile(ctx context.Context, fileID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, fileID)
	if err != nil {
		return translateError(err, fmt.Sprintf("file %d", fileID))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("file %d", fileID))
	}
	return nil
}

// PgxBlobRepository stores content addressed by its hash.
type PgxBlobRepository struct {
	db pgx.Tx
}

var _ portsrepo.BlobRepositoryFacade = (*PgxBlobRepository)(nil)

func (r *PgxBlobRepository) findBlob(ctx context.Context, subject, where string, arg any) (*domain.Blob, error) {
	rows, err := r.db.Query(ctx, `SELECT id, content_hash, mime_type, size, content FROM blobs WHERE `+where, arg)
	if err != nil {
		return nil, translateError(err, subject)
	}
	blob, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Blob])
	if err != nil {
		return nil, translateError(err, subject)
	}
	return toDomainBlob(blob), nil
}

func (r *PgxBlobRepository) FindBlobByID(ctx context.Context, blobID int64) (*domain.Blob, error) {
	return r.findBlob(ctx, fmt.Sprintf("blob %d", blobID), "id = $1", blobID)
}

func (r *PgxBlobRepository) FindBlobByHashForShare(ctx context.Context, hash string) (*domain.Blob, error) {
	return r.findBlob(ctx, "blob with hash "+hash, "content_hash = $1 FOR SHARE", hash)
}

func (r *PgxBlobRepository) CountBlobReferences(ctx context.Context, blobID int64) (int, error) {
	var refs int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM file_details WHERE blob_id = $1`, blobID).Scan(&refs)
	if err != nil {
		return 0, translateError(err, fmt.Sprintf("references of blob %d", blobID))
	}
	return int(refs), nil
}

// SaveBlob keeps the first stored row for a hash, including its mime type.
func (r *PgxBlobRepository) SaveBlob(ctx context.Context, blob domain.Blob) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO blobs (content_hash, mime_type, size, content)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (content_hash) DO UPDATE SET content_hash = EXCLUDED.content_hash
		RETURNING id`,
		blob.Hash, blob.MimeType, blob.Size, blob.Content).Scan(&id)
	if err != nil {
		return 0, translateError(err, "blob with hash "+blob.Hash)
	}
	return id, nil
}

// LockBlob blocks until uploads holding a share lock on the blob have
// finished, so their attachment rows are visible to the following count.
func (r *PgxBlobRepository) LockBlob(ctx context.Context, blobID int64) error {
	subject := fmt.Sprintf("blob %d", blobID)
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM blobs WHERE id = $1 FOR UPDATE`, blobID).Scan(&id)
	if err != nil {
		return translateError(err, subject)
	}
	return nil
}

func (r *PgxBlobRepository) DeleteBlob(ctx context.Context, blobID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blobs WHERE id = $1`, blobID)
	if err != nil {
		return translateError(err, fmt.Sprintf("blob %d", blobID))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("blob %d", blobID))
	}
	return nil
}
