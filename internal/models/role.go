package models

import "strings"

// Role classifies what an authenticated user may do. It is resolved once,
// when a token is issued or parsed, so downstream code switches on a closed
// set instead of comparing free-form strings.
type Role string

// Known roles.
const (
	RoleAdmin   Role = "admin"
	RoleEditor  Role = "editor"
	RoleViewer  Role = "viewer"
	RoleUnknown Role = ""
)

// ParseRole resolves s case-insensitively. Anything unrecognised becomes
// RoleUnknown, never RoleAdmin.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleEditor:
		return RoleEditor
	case RoleViewer:
		return RoleViewer
	}
	return RoleUnknown
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}

// String returns the canonical lower-case name.
func (r Role) String() string {
	if r == RoleUnknown {
		return "unknown"
	}
	return string(r)
}
