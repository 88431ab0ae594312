package models

import "time"

// GroupStatus enumerates group lifecycle states.
type GroupStatus string

const (
	GroupStatusActive        GroupStatus = "active"
	GroupStatusInDevelopment GroupStatus = "in_development"
	GroupStatusOnHold        GroupStatus = "on_hold"
)

// MemberRole distinguishes the group leader from regular members.
type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleLeader MemberRole = "leader"
)

// MaxGroupMembers caps membership at join time.
const MaxGroupMembers = 10

// Group is a student study group.
type Group struct {
	ID          int64       `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Description *string     `db:"description" json:"description,omitempty"`
	Logo        *string     `db:"logo" json:"logo,omitempty"`
	Status      GroupStatus `db:"status" json:"status"`
	CreatedBy   int64       `db:"created_by" json:"created_by"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// GroupMember links a user to a group.
type GroupMember struct {
	ID       int64      `db:"id" json:"id"`
	GroupID  int64      `db:"group_id" json:"group_id"`
	UserID   int64      `db:"user_id" json:"user_id"`
	Role     MemberRole `db:"role" json:"role"`
	JoinedAt time.Time  `db:"joined_at" json:"joined_at"`
}

// CreateGroupRequest is the payload for starting a group.
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}
