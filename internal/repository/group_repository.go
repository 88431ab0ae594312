package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innouni-api/internal/models"
)

// ErrCapacityReached is returned when a group has no free seats.
var ErrCapacityReached = errors.New("group capacity reached")

// GroupRepository manages groups and their memberships.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByID returns a group by identifier.
func (r *GroupRepository) FindByID(ctx context.Context, id int64) (*models.Group, error) {
	const query = `SELECT id, name, description, logo, status, created_by, created_at FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find group: %w", err)
	}
	return &group, nil
}

// CreateWithLeader inserts the group and the creator's leader membership atomically.
func (r *GroupRepository) CreateWithLeader(ctx context.Context, group *models.Group) (err error) {
	if group.Status == "" {
		group.Status = models.GroupStatusActive
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create group: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertGroup = `INSERT INTO groups (name, description, status, created_by) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	if err = tx.QueryRowxContext(ctx, insertGroup, group.Name, group.Description, group.Status, group.CreatedBy).Scan(&group.ID, &group.CreatedAt); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	const insertLeader = `INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctx, insertLeader, group.ID, group.CreatedBy, models.MemberRoleLeader); err != nil {
		return fmt.Errorf("insert group leader: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create group: %w", err)
	}
	return nil
}

// FindMembership returns the membership of a user in a group.
func (r *GroupRepository) FindMembership(ctx context.Context, groupID, userID int64) (*models.GroupMember, error) {
	const query = `SELECT id, group_id, user_id, role, joined_at FROM group_members WHERE group_id = $1 AND user_id = $2`
	var member models.GroupMember
	if err := r.db.GetContext(ctx, &member, query, groupID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return &member, nil
}

// CountMembers returns the number of members, leader included.
func (r *GroupRepository) CountMembers(ctx context.Context, groupID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM group_members WHERE group_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, groupID); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

// CountLeaders returns the number of leaders in a group.
func (r *GroupRepository) CountLeaders(ctx context.Context, groupID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM group_members WHERE group_id = $1 AND role = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, groupID, models.MemberRoleLeader); err != nil {
		return 0, fmt.Errorf("count leaders: %w", err)
	}
	return count, nil
}

// AddMember inserts a member while holding a lock on the group row so concurrent joins cannot exceed capacity.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID int64, capacity int) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin join group: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lockedID int64
	if err = tx.GetContext(ctx, &lockedID, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, groupID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock group: %w", err)
	}

	var count int
	if err = tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM group_members WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("count members: %w", err)
	}
	if count >= capacity {
		return ErrCapacityReached
	}

	const insert = `INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctx, insert, groupID, userID, models.MemberRoleMember); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert member: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit join group: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership row.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	const query = `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return expectAffected(res)
}
