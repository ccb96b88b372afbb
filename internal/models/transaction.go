package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is one line item inside TransactionDetails.
type Position struct {
	Name            string            `json:"name"`
	Price           decimal.Decimal   `json:"price"`
	CommunistShares float64           `json:"communist_shares"`
	Usages          map[int64]float64 `json:"usages"`
	Deleted         bool              `json:"deleted"`
}

// TransactionDetails is the jsonb document of a transaction revision.
type TransactionDetails struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Value          decimal.Decimal   `json:"value"`
	CurrencySymbol string            `json:"currency_symbol"`
	ConversionRate decimal.Decimal   `json:"currency_conversion_rate"`
	BilledAt       time.Time         `json:"billed_at"`
	Tags           []string          `json:"tags"`
	DebitorShares  map[int64]float64 `json:"debitor_shares"`
	CreditorShares map[int64]float64 `json:"creditor_shares"`
	Positions      []Position        `json:"positions"`
	Deleted        bool              `json:"deleted"`
}
