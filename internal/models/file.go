package models

import "time"

// FileSlot names a row of file_details.
type FileSlot string

const (
	SlotPending   FileSlot = "pending"
	SlotCommitted FileSlot = "committed"
)

// File is a row of the files table.
type File struct {
	ID            int64     `db:"id"`
	TransactionID int64     `db:"transaction_id"`
	CreatedBy     string    `db:"created_by"`
	CreatedAt     time.Time `db:"created_at"`
}

// FileDetails is one slot of an attachment.
type FileDetails struct {
	FileID    int64     `db:"file_id"`
	Slot      FileSlot  `db:"slot"`
	Filename  string    `db:"filename"`
	BlobID    *int64    `db:"blob_id"` // Nullable, null for committed deletions
	Deleted   bool      `db:"deleted"`
	UserID    string    `db:"user_id"`
	ChangedAt time.Time `db:"changed_at"`
}

// Blob is a row of the blobs table.
type Blob struct {
	ID          int64  `db:"id"`
	ContentHash string `db:"content_hash"`
	MimeType    string `db:"mime_type"`
	Size        int64  `db:"size"`
	Content     []byte `db:"content"`
}
