package domain

import "time"

// Blob is stored content, deduplicated by its SHA-256 hash.
type Blob struct {
	BlobID   int64  `json:"blobID"`
	Hash     string `json:"hash"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Content  []byte `json:"-"`
}

// FileDetails is one side of an attachment's pending/committed pair.
// BlobID is nil once a deletion has been committed.
type FileDetails struct {
	Filename  string    `json:"filename"`
	BlobID    *int64    `json:"blobID"`
	Deleted   bool      `json:"deleted"`
	UserID    string    `json:"userID"`
	ChangedAt time.Time `json:"changedAt"`
}

func (d *FileDetails) clone() *FileDetails {
	if d == nil {
		return nil
	}
	out := *d
	if d.BlobID != nil {
		id := *d.BlobID
		out.BlobID = &id
	}
	return &out
}

// FileAttachment links a blob to a transaction.
type FileAttachment struct {
	FileID        int64        `json:"fileID"`
	TransactionID int64        `json:"transactionID"`
	CreatedBy     string       `json:"createdBy"`
	CreatedAt     time.Time    `json:"createdAt"`
	Pending       *FileDetails `json:"pending"`
	Committed     *FileDetails `json:"committed"`
}

// Clone returns a deep copy.
func (f FileAttachment) Clone() FileAttachment {
	out := f
	out.Pending = f.Pending.clone()
	out.Committed = f.Committed.clone()
	return out
}

// HasPending reports whether the attachment carries an uncommitted change.
func (f FileAttachment) HasPending() bool {
	return f.Pending != nil
}

// References reports whether blobID is referenced by either slot.
func (f FileAttachment) References(blobID int64) bool {
	for _, d := range []*FileDetails{f.Pending, f.Committed} {
		if d != nil && d.BlobID != nil && *d.BlobID == blobID {
			return true
		}
	}
	return false
}

// MarkDeleted stages a deletion of the attachment.
// It returns false when there is nothing left to delete.
func (f *FileAttachment) MarkDeleted(userID string, at time.Time) bool {
	current := f.Pending
	if current == nil {
		current = f.Committed
	}
	if current == nil || current.Deleted {
		return false
	}
	f.Pending = &FileDetails{
		Filename:  current.Filename,
		BlobID:    current.BlobID,
		Deleted:   true,
		UserID:    userID,
		ChangedAt: at,
	}
	return true
}

// CommitPending moves the pending change into the committed slot. A committed
// deletion keeps the attachment as a tombstone without a blob. The returned ids
// are the blobs the attachment no longer references.
func (f *FileAttachment) CommitPending(userID string, at time.Time) []int64 {
	if f.Pending == nil {
		return nil
	}
	before := f.blobIDs()
	next := *f.Pending.clone()
	next.UserID = userID
	next.ChangedAt = at
	if next.Deleted {
		next.BlobID = nil
	}
	f.Committed = &next
	f.Pending = nil
	return released(before, f.blobIDs())
}

// DiscardPending drops the pending change. It returns whether the attachment
// should be removed entirely (it was never committed) and the released blobs.
func (f *FileAttachment) DiscardPending() (remove bool, releasedBlobs []int64) {
	if f.Pending == nil {
		return false, nil
	}
	before := f.blobIDs()
	f.Pending = nil
	if f.Committed == nil {
		return true, before
	}
	return false, released(before, f.blobIDs())
}

func (f FileAttachment) blobIDs() []int64 {
	var ids []int64
	for _, d := range []*FileDetails{f.Pending, f.Committed} {
		if d == nil || d.BlobID == nil {
			continue
		}
		if len(ids) == 1 && ids[0] == *d.BlobID {
			continue
		}
		ids = append(ids, *d.BlobID)
	}
	return ids
}

func released(before, after []int64) []int64 {
	var out []int64
	for _, id := range before {
		kept := false
		for _, other := range after {
			if other == id {
				kept = true
				break
			}
		}
		if !kept {
			out = append(out, id)
		}
	}
	return out
}
