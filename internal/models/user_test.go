package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole(RoleAdmin, RoleAdmin))
	assert.False(t, HasRole(RoleAlumni, RoleAdmin))
	assert.True(t, HasRole(RoleAlumni, RoleAdmin, RoleAlumni))
	assert.False(t, HasRole(RoleAdmin))
}

func TestHasRoleSuperadminBypass(t *testing.T) {
	assert.True(t, HasRole(RoleSuperadmin, RoleAdmin))
	assert.True(t, HasRole(RoleSuperadmin, RoleAlumni))
	assert.True(t, HasRole(RoleSuperadmin))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusEmployed))
	assert.True(t, ValidStatus(StatusNotYetWorking))
	assert.False(t, ValidStatus("bekerja"), "statuses are case-sensitive")
	assert.False(t, ValidStatus(""))
}
