package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsGlobal(t *testing.T) {
	assert.True(t, RoleSuperAdmin.IsGlobal())
	assert.True(t, RoleAuditor.IsGlobal())
	assert.False(t, RoleHotelAdmin.IsGlobal())
	assert.False(t, RoleHotelAux.IsGlobal())
	assert.False(t, RoleHotelGuest.IsGlobal())
	assert.False(t, Role("root").Valid())
}

func TestIdentity_CanActScoped(t *testing.T) {
	assert.True(t, (&Identity{Role: RoleAuditor}).CanActScoped())
	assert.False(t, (&Identity{Role: RoleHotelAdmin}).CanActScoped())
	assert.True(t, (&Identity{Role: RoleHotelAdmin, Hotels: []int64{4}}).CanActScoped())
}
