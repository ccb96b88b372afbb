package services

import (
	"context"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
)

// CommitNotifier is told about every commit once it is durable.
type CommitNotifier interface {
	NotifyCommit(ctx context.Context, event domain.CommitEvent) error
}
