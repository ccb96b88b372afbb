package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	"github.com/SscSPs/shared_ledger_app/internal/middleware"
	"github.com/SscSPs/shared_ledger_app/internal/platform/metrics"
)

// ClearingValidator rejects clearing share maps that would make clearing
// accounts of a group depend on each other in a loop.
type ClearingValidator struct {
	metrics *metrics.Metrics
}

// NewClearingValidator creates a ClearingValidator.
func NewClearingValidator(m *metrics.Metrics) *ClearingValidator {
	return &ClearingValidator{metrics: m}
}

// Validate checks candidate, the share map about to be committed for accountID,
// against the committed share maps of every other clearing account in the group.
// It locks the group row so concurrent clearing commits see each other's result.
func (v *ClearingValidator) Validate(ctx context.Context, tx portsrepo.LedgerTx, groupID, accountID int64, candidate domain.ShareMap) error {
	if _, self := candidate[accountID]; self {
		v.metrics.CycleRejected()
		return &apperrors.CyclicDependencyError{AccountIDs: []int64{accountID, accountID}}
	}

	if err := tx.Groups().LockGroup(ctx, groupID); err != nil {
		return err
	}
	committed, err := tx.Accounts().ListCommittedClearingShares(ctx, groupID)
	if err != nil {
		return err
	}

	graph := domain.NewClearingGraph()
	for id, shares := range committed {
		if id == accountID {
			continue
		}
		graph.SetShares(id, shares)
	}
	graph.SetShares(accountID, candidate)

	if cycle := graph.FindCycle(accountID); cycle != nil {
		v.metrics.CycleRejected()
		middleware.GetLoggerFromCtx(ctx).Warn("Rejected clearing shares that form a cycle",
			slog.Int64("group_id", groupID),
			slog.Int64("account_id", accountID),
			slog.Any("cycle", cycle))
		return &apperrors.CyclicDependencyError{AccountIDs: cycle}
	}
	return nil
}
