package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionType is fixed when a transaction is created.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeTransfer TransactionType = "transfer"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypePurchase || t == TransactionTypeTransfer
}

// Position is a line item of a purchase.
// CommunistShares is the weight split evenly across all debitors; Usages are
// explicit per-account weights on top of that.
type Position struct {
	Name            string          `json:"name" validate:"required,max=255"`
	Price           decimal.Decimal `json:"price"`
	CommunistShares float64         `json:"communistShares" validate:"gte=0"`
	Usages          ShareMap        `json:"usages"`
	Deleted         bool            `json:"deleted"`
}

// TransactionDetails is the versioned content of a transaction.
type TransactionDetails struct {
	Name           string          `json:"name" validate:"required,max=255"`
	Description    string          `json:"description" validate:"max=2000"`
	Value          decimal.Decimal `json:"value"`
	CurrencySymbol string          `json:"currencySymbol" validate:"required,max=10"`
	ConversionRate decimal.Decimal `json:"currencyConversionRate"`
	BilledAt       time.Time       `json:"billedAt" validate:"required"`
	Tags           []string        `json:"tags" validate:"dive,required,max=64"`
	DebitorShares  ShareMap        `json:"debitorShares"`
	CreditorShares ShareMap        `json:"creditorShares"`
	Positions      []Position      `json:"positions" validate:"dive"`
	Deleted        bool            `json:"deleted"`
}

// Clone returns a deep copy.
func (d TransactionDetails) Clone() TransactionDetails {
	out := d
	if d.Tags != nil {
		out.Tags = append([]string(nil), d.Tags...)
	}
	out.DebitorShares = d.DebitorShares.Clone()
	out.CreditorShares = d.CreditorShares.Clone()
	if d.Positions != nil {
		out.Positions = make([]Position, len(d.Positions))
		for i, p := range d.Positions {
			p.Usages = p.Usages.Clone()
			out.Positions[i] = p
		}
	}
	return out
}

// ReferencedAccountIDs lists every account the details point at, ascending and unique.
func (d TransactionDetails) ReferencedAccountIDs() []int64 {
	seen := make(map[int64]struct{})
	add := func(m ShareMap) {
		for id := range m {
			seen[id] = struct{}{}
		}
	}
	add(d.DebitorShares)
	add(d.CreditorShares)
	for _, p := range d.Positions {
		add(p.Usages)
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CheckShape enforces the purchase/transfer rules.
func (d TransactionDetails) CheckShape(txType TransactionType) error {
	if d.Value.IsNegative() {
		return apperrors.NewValidationFailedError("value must not be negative")
	}
	if !d.ConversionRate.IsPositive() {
		return apperrors.NewValidationFailedError("currency conversion rate must be positive")
	}
	if err := d.DebitorShares.Validate("debitor_shares"); err != nil {
		return err
	}
	if err := d.CreditorShares.Validate("creditor_shares"); err != nil {
		return err
	}

	switch txType {
	case TransactionTypeTransfer:
		if len(d.CreditorShares) != 1 || len(d.DebitorShares) != 1 {
			return apperrors.NewValidationFailedError("transfers need exactly one creditor and one debitor")
		}
		for _, weight := range d.CreditorShares {
			if weight != 1 {
				return apperrors.NewValidationFailedError("transfer creditor share must be 1")
			}
		}
		for _, weight := range d.DebitorShares {
			if weight != 1 {
				return apperrors.NewValidationFailedError("transfer debitor share must be 1")
			}
		}
		if len(d.Positions) > 0 {
			return apperrors.NewValidationFailedError("transfers cannot have positions")
		}
	case TransactionTypePurchase:
		if len(d.CreditorShares) != 1 {
			return apperrors.NewValidationFailedError("purchases need exactly one creditor")
		}
		if len(d.DebitorShares) == 0 && !d.hasLivePositions() {
			return apperrors.NewValidationFailedError("purchases need at least one debitor or position")
		}
		for i, p := range d.Positions {
			if err := p.check(i); err != nil {
				return err
			}
		}
	default:
		return apperrors.NewValidationFailedError(fmt.Sprintf("unknown transaction type %q", txType))
	}
	return nil
}

func (d TransactionDetails) hasLivePositions() bool {
	for _, p := range d.Positions {
		if !p.Deleted {
			return true
		}
	}
	return false
}

func (p Position) check(index int) error {
	if p.Price.IsNegative() {
		return apperrors.NewValidationFailedError(fmt.Sprintf("position %d: price must not be negative", index))
	}
	if p.CommunistShares < 0 {
		return apperrors.NewValidationFailedError(fmt.Sprintf("position %d: communist shares must not be negative", index))
	}
	if err := p.Usages.Validate(fmt.Sprintf("position %d usages", index)); err != nil {
		return err
	}
	if !p.Deleted && p.CommunistShares == 0 && len(p.Usages) == 0 {
		return apperrors.NewValidationFailedError(fmt.Sprintf("position %d: needs communist shares or usages", index))
	}
	return nil
}

// Transaction is a purchase or transfer with its revisions.
type Transaction = Entity[TransactionDetails]
