package apperrors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the caller edited a stale version of an entity.
var ErrConflict = errors.New("conflicting change")

// ErrNoPendingChanges indicates a commit or discard on an entity without a pending revision.
var ErrNoPendingChanges = errors.New("no pending changes")

// ErrCyclicDependency indicates that clearing accounts would depend on each other in a loop.
var ErrCyclicDependency = errors.New("cyclic dependency between clearing accounts")

// ErrForbidden indicates that the user is not allowed to act on the group.
var ErrForbidden = errors.New("permission denied")

// ErrInternal indicates an unexpected storage or infrastructure failure.
var ErrInternal = errors.New("internal error")

// AppError wraps an infrastructure error with an HTTP-ish status code and a message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets 5xx AppErrors match ErrInternal.
func (e *AppError) Is(target error) bool {
	return target == ErrInternal && e.Code >= 500
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError wraps ErrNotFound with a detail message.
func NewNotFoundError(detail string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, detail)
}

// NewValidationFailedError wraps ErrValidation with a detail message.
func NewValidationFailedError(detail string) error {
	return fmt.Errorf("%w: %s", ErrValidation, detail)
}

// NewConflictError wraps ErrConflict with a detail message.
func NewConflictError(detail string) error {
	return fmt.Errorf("%w: %s", ErrConflict, detail)
}

// CyclicDependencyError names the clearing accounts that form a loop.
// AccountIDs lists the path starting and ending at the same account.
type CyclicDependencyError struct {
	AccountIDs []int64
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.AccountIDs))
	for i, id := range e.AccountIDs {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("this change would result in a cyclic dependency between clearing accounts: %s",
		strings.Join(parts, " -> "))
}

func (e *CyclicDependencyError) Is(target error) bool {
	return target == ErrCyclicDependency
}
