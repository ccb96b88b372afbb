package notification

import (
	"context"
	"log/slog"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/middleware"
)

// LogNotifier writes commit events to the request logger.
type LogNotifier struct{}

var _ portssvc.CommitNotifier = LogNotifier{}

func (LogNotifier) NotifyCommit(ctx context.Context, event domain.CommitEvent) error {
	middleware.GetLoggerFromCtx(ctx).Info("Commit",
		slog.String("kind", string(event.Kind)),
		slog.Int64("entity_id", event.EntityID),
		slog.Int64("group_id", event.GroupID),
		slog.Int64("version", event.Version),
		slog.String("user_id", event.UserID),
	)
	return nil
}
