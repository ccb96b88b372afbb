package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/middleware"
	"github.com/SscSPs/shared_ledger_app/internal/platform/metrics"
)

// BaseService provides common functionality for all services
type BaseService struct {
	GroupAuthorizer portssvc.GroupAuthorizerSvc
	Notifier        portssvc.CommitNotifier
	Metrics         *metrics.Metrics
	Clock           func() time.Time
}

// ServiceOption is a functional option shared by the ledger services.
type ServiceOption func(*BaseService)

// WithGroupAuthorizer adds the group permission check.
func WithGroupAuthorizer(authorizer portssvc.GroupAuthorizerSvc) ServiceOption {
	return func(s *BaseService) {
		s.GroupAuthorizer = authorizer
	}
}

// WithCommitNotifier adds a receiver for commit events.
func WithCommitNotifier(notifier portssvc.CommitNotifier) ServiceOption {
	return func(s *BaseService) {
		s.Notifier = notifier
	}
}

// WithMetrics adds prometheus collectors.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *BaseService) {
		s.Metrics = m
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.Clock = clock
	}
}

func newBaseService(options []ServiceOption) BaseService {
	base := BaseService{Clock: time.Now}
	for _, option := range options {
		option(&base)
	}
	return base
}

func (s *BaseService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeUser checks if a user has the required role for a group.
func (s *BaseService) AuthorizeUser(ctx context.Context, userID string, groupID int64, requiredRole domain.GroupRole) error {
	if s.GroupAuthorizer != nil {
		return s.GroupAuthorizer.AuthorizeUserAction(ctx, userID, groupID, requiredRole)
	}
	s.LogDebug(ctx, "No group authorizer provided, access granted by default",
		slog.String("user_id", userID),
		slog.Int64("group_id", groupID),
		slog.String("required_role", string(requiredRole)))
	return nil
}

// notifyCommits publishes commit events after the unit of work is durable.
// Delivery failures are logged and never undo the commit.
func (s *BaseService) notifyCommits(ctx context.Context, events ...domain.CommitEvent) {
	for _, event := range events {
		s.Metrics.CommitRecorded(event.Kind)
		if s.Notifier == nil {
			continue
		}
		if err := s.Notifier.NotifyCommit(ctx, event); err != nil {
			s.LogError(ctx, err, "Failed to publish commit event",
				slog.String("kind", string(event.Kind)),
				slog.Int64("entity_id", event.EntityID),
				slog.Int64("version", event.Version))
		}
	}
}
