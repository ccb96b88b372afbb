package dto

import (
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
)

// UploadFileRequest is built by the handler from a multipart upload.
type UploadFileRequest struct {
	Filename string
	MimeType string
	Content  []byte
}

// FileDetailsResponse is one side of an attachment's pending/committed pair.
type FileDetailsResponse struct {
	Filename  string    `json:"filename"`
	BlobID    *int64    `json:"blobID"`
	Deleted   bool      `json:"deleted"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// AttachedFileResponse is one side of an attachment shown inline on its transaction.
type AttachedFileResponse struct {
	FileID int64 `json:"fileID"`
	FileDetailsResponse
}

// FileResponse defines data returned for an attachment.
type FileResponse struct {
	FileID           int64                `json:"fileID"`
	TransactionID    int64                `json:"transactionID"`
	CreatedAt        time.Time            `json:"createdAt"`
	CreatedBy        string               `json:"createdBy"`
	PendingDetails   *FileDetailsResponse `json:"pendingDetails"`
	CommittedDetails *FileDetailsResponse `json:"committedDetails"`
}

// ListFilesResponse wraps a list of attachments.
type ListFilesResponse struct {
	Files []FileResponse `json:"files"`
}

func toFileDetailsResponse(d *domain.FileDetails) *FileDetailsResponse {
	if d == nil {
		return nil
	}
	return &FileDetailsResponse{
		Filename:  d.Filename,
		BlobID:    d.BlobID,
		Deleted:   d.Deleted,
		ChangedBy: d.UserID,
		ChangedAt: d.ChangedAt,
	}
}

// ToFileResponse converts domain.FileAttachment to DTO.
func ToFileResponse(f *domain.FileAttachment) FileResponse {
	return FileResponse{
		FileID:           f.FileID,
		TransactionID:    f.TransactionID,
		CreatedAt:        f.CreatedAt,
		CreatedBy:        f.CreatedBy,
		PendingDetails:   toFileDetailsResponse(f.Pending),
		CommittedDetails: toFileDetailsResponse(f.Committed),
	}
}

// ToListFilesResponse converts a slice of domain.FileAttachment to DTO.
func ToListFilesResponse(files []domain.FileAttachment) ListFilesResponse {
	res := make([]FileResponse, len(files))
	for i := range files {
		res[i] = ToFileResponse(&files[i])
	}
	return ListFilesResponse{Files: res}
}
