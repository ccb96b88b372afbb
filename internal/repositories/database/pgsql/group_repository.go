package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	"github.com/SscSPs/shared_ledger_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxGroupRepository implements the group repository using pgx.
type PgxGroupRepository struct {
	db pgx.Tx
}

var _ portsrepo.GroupRepositoryFacade = (*PgxGroupRepository)(nil)

const groupColumns = `g.id, g.name, g.description, g.currency_symbol, g.created_at, g.created_by, g.last_updated_at, g.last_updated_by`

func (r *PgxGroupRepository) FindGroupByID(ctx context.Context, groupID int64) (*domain.Group, error) {
	subject := fmt.Sprintf("group %d", groupID)
	rows, err := r.db.Query(ctx, `SELECT `+groupColumns+` FROM groups g WHERE g.id = $1`, groupID)
	if err != nil {
		return nil, translateError(err, subject)
	}
	group, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Group])
	if err != nil {
		return nil, translateError(err, subject)
	}
	out := toDomainGroup(group)
	return &out, nil
}

func (r *PgxGroupRepository) FindMembership(ctx context.Context, userID string, groupID int64) (*domain.GroupMembership, error) {
	subject := fmt.Sprintf("membership of user %s in group %d", userID, groupID)
	rows, err := r.db.Query(ctx, `
		SELECT group_id, user_id, role, joined_at FROM group_memberships
		WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return nil, translateError(err, subject)
	}
	membership, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.GroupMembership])
	if err != nil {
		return nil, translateError(err, subject)
	}
	out := toDomainMembership(membership)
	return &out, nil
}

func (r *PgxGroupRepository) ListGroupsByUserID(ctx context.Context, userID string) ([]domain.Group, error) {
	subject := "groups of user " + userID
	rows, err := r.db.Query(ctx, `
		SELECT `+groupColumns+` FROM groups g
		JOIN group_memberships m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.id`, userID)
	if err != nil {
		return nil, translateError(err, subject)
	}
	groups, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Group])
	if err != nil {
		return nil, translateError(err, subject)
	}
	out := make([]domain.Group, len(groups))
	for i, g := range groups {
		out[i] = toDomainGroup(g)
	}
	return out, nil
}

func (r *PgxGroupRepository) ListMembers(ctx context.Context, groupID int64) ([]domain.GroupMembership, error) {
	subject := fmt.Sprintf("members of group %d", groupID)
	rows, err := r.db.Query(ctx, `
		SELECT group_id, user_id, role, joined_at FROM group_memberships
		WHERE group_id = $1 ORDER BY user_id`, groupID)
	if err != nil {
		return nil, translateError(err, subject)
	}
	members, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.GroupMembership])
	if err != nil {
		return nil, translateError(err, subject)
	}
	out := make([]domain.GroupMembership, len(members))
	for i, m := range members {
		out[i] = toDomainMembership(m)
	}
	return out, nil
}

func (r *PgxGroupRepository) SaveGroup(ctx context.Context, group domain.Group) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO groups (name, description, currency_symbol, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		group.Name, group.Description, group.CurrencySymbol,
		group.CreatedAt, group.CreatedBy, group.LastUpdatedAt, group.LastUpdatedBy).Scan(&id)
	if err != nil {
		return 0, translateError(err, "group "+group.Name)
	}
	return id, nil
}

// AddMember upserts the membership; the original join date survives a role change.
func (r *PgxGroupRepository) AddMember(ctx context.Context, membership domain.GroupMembership) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO group_memberships (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (group_id, user_id) DO UPDATE SET role = EXCLUDED.role`,
		membership.GroupID, membership.UserID, string(membership.Role), membership.JoinedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return apperrors.NewNotFoundError(fmt.Sprintf("group %d", membership.GroupID))
	}
	return translateError(err, fmt.Sprintf("membership of user %s in group %d", membership.UserID, membership.GroupID))
}

func (r *PgxGroupRepository) LockGroup(ctx context.Context, groupID int64) error {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, groupID).Scan(&id)
	return translateError(err, fmt.Sprintf("group %d", groupID))
}
