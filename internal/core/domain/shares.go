package domain

import (
	"fmt"
	"math"
	"sort"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
)

// ShareMap maps an account id to its positive share weight.
type ShareMap map[int64]float64

// Validate checks that every weight is a positive finite number.
func (m ShareMap) Validate(field string) error {
	for accountID, weight := range m {
		if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
			return apperrors.NewValidationFailedError(fmt.Sprintf("%s: share of account %d must be positive, got %v", field, accountID, weight))
		}
	}
	return nil
}

// AccountIDs returns the referenced account ids in ascending order.
func (m ShareMap) AccountIDs() []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Total sums all weights.
func (m ShareMap) Total() float64 {
	var total float64
	for _, weight := range m {
		total += weight
	}
	return total
}

// Clone returns an independent copy. A nil map stays nil.
func (m ShareMap) Clone() ShareMap {
	if m == nil {
		return nil
	}
	out := make(ShareMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
