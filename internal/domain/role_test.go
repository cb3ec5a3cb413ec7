package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"citizen", RoleCitizen, true},
		{"user", RoleCitizen, true},
		{"Citizens", RoleCitizen, true},
		{"CITIZEN", RoleCitizen, true},
		{"staff", RoleStaff, true},
		{"Staff", RoleStaff, true},
		{"officer", RoleOfficer, true},
		{"Officer", RoleOfficer, true},
		{"admin", RoleOfficer, true},
		{"OFFICER", RoleOfficer, true},
		{" staff ", RoleStaff, true},
		{"", "", false},
		{"superuser", "", false},
		{"citizens", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := ParseRole(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRoleClassUsesStoredRecord(t *testing.T) {
	user := &User{Role: "admin"}
	role, ok := user.RoleClass()
	assert.True(t, ok)
	assert.Equal(t, RoleOfficer, role)

	user.Role = "contractor"
	_, ok = user.RoleClass()
	assert.False(t, ok)
}

func TestApplicationStatusIsTerminal(t *testing.T) {
	assert.False(t, ApplicationStatusPending.IsTerminal())
	assert.False(t, ApplicationStatusInProgress.IsTerminal())
	assert.True(t, ApplicationStatusApproved.IsTerminal())
	assert.True(t, ApplicationStatusRejected.IsTerminal())
}
