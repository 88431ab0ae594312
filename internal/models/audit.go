package models

import (
	"encoding/json"
	"time"
)

// Audited actions. Auth flows record their own; teacher writes are recorded by route.
const (
	AuditActionRegister       = "REGISTER"
	AuditActionLogin          = "LOGIN"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionProfileUpdate  = "PROFILE_UPDATE"
	AuditActionCourseCreate   = "COURSE_CREATE"
	AuditActionCourseUpdate   = "COURSE_UPDATE"
	AuditActionTaskCreate     = "TASK_CREATE"
	AuditActionMaterialUpload = "MATERIAL_UPLOAD"
)

// AuditLog is one audit_logs row. NewValues holds a JSON object describing the write.
type AuditLog struct {
	ID         int64     `db:"id" json:"id"`
	UserID     *int64    `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// NewAuditLog starts an entry. actorID 0 means anonymous.
func NewAuditLog(actorID int64, action, resource string) *AuditLog {
	entry := &AuditLog{Action: action, Resource: resource}
	if actorID > 0 {
		entry.UserID = &actorID
	}
	return entry
}

// About sets the affected row; an empty id is ignored.
func (a *AuditLog) About(id string) *AuditLog {
	if id != "" {
		a.ResourceID = &id
	}
	return a
}

// From records the client address and agent.
func (a *AuditLog) From(ip, userAgent string) *AuditLog {
	a.IPAddress = ip
	a.UserAgent = userAgent
	return a
}

// Describe stores values as the JSON payload. Nil or empty maps leave it unset.
func (a *AuditLog) Describe(values map[string]interface{}) *AuditLog {
	if len(values) == 0 {
		return a
	}
	if payload, err := json.Marshal(values); err == nil {
		a.NewValues = payload
	}
	return a
}
