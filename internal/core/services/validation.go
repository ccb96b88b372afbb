package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateDetails runs the struct tag rules of revision details.
func validateDetails(details any) error {
	err := validate.Struct(details)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
		}
		return apperrors.NewValidationFailedError(strings.Join(msgs, "; "))
	}
	return apperrors.NewValidationFailedError(err.Error())
}

// checkAccountReferences verifies that every referenced account belongs to the
// group and has not been deleted by a committed revision.
func checkAccountReferences(accounts map[int64]domain.Account, groupID int64, ids []int64) error {
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok || acc.GroupID != groupID {
			return apperrors.NewValidationFailedError(fmt.Sprintf("account %d does not exist in group %d", id, groupID))
		}
		if committed, ok := acc.Revisions.Committed(); ok && committed.Details.Deleted {
			return apperrors.NewValidationFailedError(fmt.Sprintf("account %d is deleted", id))
		}
	}
	return nil
}
