package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("HospitalAdmin")
	require.NoError(t, err)
	assert.Equal(t, RoleHospitalAdmin, r)

	_, err = ParseRole("hospitaladmin")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleSuperAdmin, CapHospitalsManage, true},
		{RoleSuperAdmin, CapStatsAggregate, true},
		{RoleSuperAdmin, CapUsersManage, true},
		{RoleSuperAdmin, CapTenantRead, false},
		{RoleHospitalAdmin, CapUsersManage, true},
		{RoleHospitalAdmin, CapTenantWrite, true},
		{RoleHospitalAdmin, CapHospitalsManage, false},
		{RoleHospitalAdmin, CapStatsAggregate, false},
		{RoleBasicUser, CapUsersManage, false},
		{RoleBasicUser, CapTenantRead, true},
		{RoleBasicUser, CapTenantWrite, true},
		{Role("Nobody"), CapTenantRead, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Can(tt.cap))
		})
	}
}

func TestRoleCanAssign(t *testing.T) {
	assert.True(t, RoleSuperAdmin.CanAssign(RoleSuperAdmin))
	assert.True(t, RoleHospitalAdmin.CanAssign(RoleBasicUser))
	assert.True(t, RoleHospitalAdmin.CanAssign(RoleHospitalAdmin))
	assert.False(t, RoleHospitalAdmin.CanAssign(RoleSuperAdmin))
	assert.False(t, RoleBasicUser.CanAssign(RoleBasicUser))
	assert.False(t, RoleSuperAdmin.CanAssign(Role("Root")))
}

func TestCapabilityTenantScoped(t *testing.T) {
	assert.True(t, CapTenantRead.TenantScoped())
	assert.True(t, CapTenantWrite.TenantScoped())
	assert.False(t, CapUsersManage.TenantScoped())
}
