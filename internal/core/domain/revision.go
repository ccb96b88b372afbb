package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
)

// Revision is one immutable snapshot of an entity's details.
type Revision[T any] struct {
	Version   int64     `json:"version"`
	Committed bool      `json:"committed"`
	UserID    string    `json:"userID"`
	CreatedAt time.Time `json:"createdAt"`
	Details   T         `json:"details"`
}

// RevisionState is the pending/committed pair of an entity.
// Its fields are unexported so a state can only be built through the
// constructors below, none of which yield a state with both slots empty.
// The zero value is invalid and reported by IsZero.
type RevisionState[T any] struct {
	pending   *Revision[T]
	committed *Revision[T]
}

// OnlyPending builds the state of an entity that was never committed.
func OnlyPending[T any](pending Revision[T]) RevisionState[T] {
	pending.Committed = false
	return RevisionState[T]{pending: &pending}
}

// OnlyCommitted builds the state of an entity without a draft.
func OnlyCommitted[T any](committed Revision[T]) RevisionState[T] {
	committed.Committed = true
	return RevisionState[T]{committed: &committed}
}

// PendingOverCommitted builds the state of a committed entity with a draft on top.
func PendingOverCommitted[T any](pending, committed Revision[T]) RevisionState[T] {
	pending.Committed = false
	committed.Committed = true
	return RevisionState[T]{pending: &pending, committed: &committed}
}

// NewRevisionState rehydrates a state from storage, rejecting rows that hold neither slot.
func NewRevisionState[T any](pending, committed *Revision[T]) (RevisionState[T], error) {
	switch {
	case pending != nil && committed != nil:
		return PendingOverCommitted(*pending, *committed), nil
	case pending != nil:
		return OnlyPending(*pending), nil
	case committed != nil:
		return OnlyCommitted(*committed), nil
	}
	return RevisionState[T]{}, apperrors.NewAppError(500, "entity has neither a pending nor a committed revision", nil)
}

// IsZero reports whether the state was never initialised.
func (s RevisionState[T]) IsZero() bool {
	return s.pending == nil && s.committed == nil
}

// Pending returns the draft revision, if any.
func (s RevisionState[T]) Pending() (Revision[T], bool) {
	if s.pending == nil {
		return Revision[T]{}, false
	}
	return *s.pending, true
}

// Committed returns the committed revision, if any.
func (s RevisionState[T]) Committed() (Revision[T], bool) {
	if s.committed == nil {
		return Revision[T]{}, false
	}
	return *s.committed, true
}

// HasPending reports whether a draft exists.
func (s RevisionState[T]) HasPending() bool {
	return s.pending != nil
}

// Latest returns the pending revision if present, otherwise the committed one.
func (s RevisionState[T]) Latest() Revision[T] {
	if s.pending != nil {
		return *s.pending
	}
	if s.committed != nil {
		return *s.committed
	}
	var zero Revision[T]
	return zero
}

// LatestVersion is the version a stage call must name as its base.
func (s RevisionState[T]) LatestVersion() int64 {
	return s.Latest().Version
}

// Resolve returns the revision selected by view.
func (s RevisionState[T]) Resolve(view RevisionView) (Revision[T], error) {
	switch view {
	case ViewCommitted:
		if s.committed == nil {
			return Revision[T]{}, apperrors.NewNotFoundError("no committed revision")
		}
		return *s.committed, nil
	case ViewLatest, "":
		return s.Latest(), nil
	}
	return Revision[T]{}, apperrors.NewValidationFailedError(fmt.Sprintf("unknown view %q", view))
}

// Stage replaces the draft with next after checking that the caller edited the latest version.
func (s RevisionState[T]) Stage(baseVersion int64, next Revision[T]) (RevisionState[T], error) {
	if latest := s.LatestVersion(); baseVersion != latest {
		return s, apperrors.NewConflictError(fmt.Sprintf("base version %d is not the latest version %d", baseVersion, latest))
	}
	if next.Version <= s.LatestVersion() {
		return s, apperrors.NewAppError(500, fmt.Sprintf("version %d does not advance past %d", next.Version, s.LatestVersion()), nil)
	}
	if s.committed == nil {
		return OnlyPending(next), nil
	}
	return PendingOverCommitted(next, *s.committed), nil
}

// Commit promotes the draft to a new committed revision with the given version.
func (s RevisionState[T]) Commit(version int64, userID string, at time.Time) (RevisionState[T], Revision[T], error) {
	if s.pending == nil {
		return s, Revision[T]{}, apperrors.ErrNoPendingChanges
	}
	if version <= s.pending.Version {
		return s, Revision[T]{}, apperrors.NewAppError(500, fmt.Sprintf("commit version %d does not advance past %d", version, s.pending.Version), nil)
	}
	committed := Revision[T]{
		Version:   version,
		Committed: true,
		UserID:    userID,
		CreatedAt: at,
		Details:   s.pending.Details,
	}
	return OnlyCommitted(committed), committed, nil
}

// Discard drops the draft. A never-committed entity cannot be discarded; it has to be deleted.
func (s RevisionState[T]) Discard() (RevisionState[T], error) {
	if s.pending == nil {
		return s, apperrors.ErrNoPendingChanges
	}
	if s.committed == nil {
		return s, apperrors.NewValidationFailedError("cannot discard an entity that was never committed, delete it instead")
	}
	return OnlyCommitted(*s.committed), nil
}
