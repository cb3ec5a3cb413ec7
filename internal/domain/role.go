package domain

import "strings"

// Role is the canonical role class used for every authorization decision.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleStaff   Role = "STAFF"
	RoleOfficer Role = "OFFICER"
)

// roleAliases maps the role strings found in stored records and tokens to
// their canonical class. The odd entries ("user", "Citizens", "admin") are
// historical spellings that still exist in production data.
var roleAliases = map[string]Role{
	"user":     RoleCitizen,
	"citizen":  RoleCitizen,
	"Citizens": RoleCitizen,
	"staff":    RoleStaff,
	"Staff":    RoleStaff,
	"officer":  RoleOfficer,
	"admin":    RoleOfficer,
	"Officer":  RoleOfficer,
}

// ParseRole resolves a raw role string to its canonical class. An
// unrecognized value returns false and must be treated as unauthorized by
// callers, never as a default class.
func ParseRole(raw string) (Role, bool) {
	raw = strings.TrimSpace(raw)
	if role, ok := roleAliases[raw]; ok {
		return role, true
	}
	switch strings.ToUpper(raw) {
	case string(RoleCitizen):
		return RoleCitizen, true
	case string(RoleStaff):
		return RoleStaff, true
	case string(RoleOfficer):
		return RoleOfficer, true
	}
	return "", false
}
