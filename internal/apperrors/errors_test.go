package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestCyclicDependencyError(t *testing.T) {
	err := error(&apperrors.CyclicDependencyError{AccountIDs: []int64{3, 1, 2, 3}})

	assert.ErrorIs(t, err, apperrors.ErrCyclicDependency)
	assert.Contains(t, err.Error(), "3 -> 1 -> 2 -> 3")

	wrapped := fmt.Errorf("commit account 3: %w", err)
	var cycleErr *apperrors.CyclicDependencyError
	assert.True(t, errors.As(wrapped, &cycleErr))
	assert.Equal(t, []int64{3, 1, 2, 3}, cycleErr.AccountIDs)
}

func TestAppError(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperrors.NewAppError(500, "failed to lock account", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.Equal(t, "failed to lock account: connection reset", err.Error())

	notInternal := apperrors.NewAppError(400, "bad input", nil)
	assert.False(t, errors.Is(notInternal, apperrors.ErrInternal))
}

func TestDetailHelpers(t *testing.T) {
	assert.ErrorIs(t, apperrors.NewNotFoundError("account 7"), apperrors.ErrNotFound)
	assert.ErrorIs(t, apperrors.NewValidationFailedError("value"), apperrors.ErrValidation)
	assert.ErrorIs(t, apperrors.NewConflictError("stale"), apperrors.ErrConflict)
	assert.EqualError(t, apperrors.NewConflictError("stale"), "conflicting change: stale")
}
