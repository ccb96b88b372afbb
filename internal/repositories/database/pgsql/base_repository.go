package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	"github.com/SscSPs/shared_ledger_app/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// translateError maps driver errors onto the application error sentinels.
// subject names the row the statement was about, e.g. "account 12".
func translateError(err error, subject string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(subject)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s already exists", apperrors.ErrDuplicate, subject)
		case "23503": // foreign_key_violation
			return apperrors.NewValidationFailedError(fmt.Sprintf("%s references a missing row (%s)", subject, pgErr.ConstraintName))
		case "23514": // check_violation
			return apperrors.NewValidationFailedError(fmt.Sprintf("%s violates %s", subject, pgErr.ConstraintName))
		}
	}
	return apperrors.NewAppError(500, "database error on "+subject, err)
}

// Store is the PostgreSQL LedgerStore. Every unit of work is one pgx transaction.
type Store struct {
	BaseRepository
}

var _ portsrepo.LedgerStore = (*Store)(nil)

// NewStore creates a Store on top of pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{BaseRepository: BaseRepository{Pool: pool}}
}

// WithTx runs fn in a transaction that is committed when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) (err error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		// The request context may already be cancelled.
		if rbErr := s.Rollback(context.WithoutCancel(ctx), tx); rbErr != nil {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to roll back transaction", "error", rbErr.Error())
		}
	}()

	if err = fn(ctx, &txRepositories{db: tx}); err != nil {
		return err
	}
	return s.Commit(ctx, tx)
}
