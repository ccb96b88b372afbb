package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
)

// AccountType distinguishes people from clearing accounts.
type AccountType string

const (
	// AccountTypePersonal is a member of the group that can pay and owe.
	AccountTypePersonal AccountType = "personal"
	// AccountTypeClearing forwards its balance to other accounts by share weight.
	AccountTypeClearing AccountType = "clearing"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	return t == AccountTypePersonal || t == AccountTypeClearing
}

// AccountDetails is the versioned content of an account.
type AccountDetails struct {
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description" validate:"max=2000"`
	DateInfo    *time.Time `json:"dateInfo,omitempty"`
	Tags        []string   `json:"tags" validate:"dive,required,max=64"`
	// ClearingShares is nil for personal accounts and non-nil (possibly empty) for clearing accounts.
	ClearingShares ShareMap `json:"clearingShares,omitempty"`
	Deleted        bool     `json:"deleted"`
}

// Clone returns a deep copy.
func (d AccountDetails) Clone() AccountDetails {
	out := d
	if d.DateInfo != nil {
		date := *d.DateInfo
		out.DateInfo = &date
	}
	if d.Tags != nil {
		out.Tags = append([]string(nil), d.Tags...)
	}
	out.ClearingShares = d.ClearingShares.Clone()
	return out
}

// CheckShape enforces the personal/clearing rules for the given account.
func (d AccountDetails) CheckShape(accountID int64, accountType AccountType) error {
	switch accountType {
	case AccountTypePersonal:
		if d.ClearingShares != nil {
			return apperrors.NewValidationFailedError("personal accounts cannot have clearing shares")
		}
	case AccountTypeClearing:
		if d.ClearingShares == nil {
			return apperrors.NewValidationFailedError("clearing accounts require a clearing share map")
		}
		if d.DateInfo == nil {
			return apperrors.NewValidationFailedError("clearing accounts require a date")
		}
		if _, ok := d.ClearingShares[accountID]; ok && accountID != 0 {
			return &apperrors.CyclicDependencyError{AccountIDs: []int64{accountID, accountID}}
		}
		if err := d.ClearingShares.Validate("clearing_shares"); err != nil {
			return err
		}
	default:
		return apperrors.NewValidationFailedError(fmt.Sprintf("unknown account type %q", accountType))
	}
	return nil
}

// Account is a personal or clearing account with its revisions.
type Account = Entity[AccountDetails]
