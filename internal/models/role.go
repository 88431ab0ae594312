package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// Roles lists every role a user may hold.
var Roles = []UserRole{RoleStudent, RoleTeacher, RoleAdmin}

// Valid reports whether the role belongs to the fixed enumeration.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Capabilities describes what a role may do.
type Capabilities struct {
	Learn      bool
	Teach      bool
	Administer bool
}

var roleCapabilities = map[UserRole]Capabilities{
	RoleStudent: {Learn: true},
	RoleTeacher: {Teach: true},
	RoleAdmin:   {Teach: true, Administer: true},
}

// CapabilitiesOf returns the capability set for the role; unknown roles get none.
func CapabilitiesOf(r UserRole) Capabilities {
	return roleCapabilities[r]
}

// DashboardKind names the dashboard a role lands on after login.
func (r UserRole) DashboardKind() string {
	caps := CapabilitiesOf(r)
	switch {
	case caps.Teach:
		return "teacher"
	case caps.Learn:
		return "student"
	}
	return ""
}
