package models

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleSuperAdmin    Role = "SuperAdmin"
	RoleHospitalAdmin Role = "HospitalAdmin"
	RoleBasicUser     Role = "BasicUser"
)

// Capability names an operation class checked by the RBAC middleware.
type Capability string

const (
	CapTenantRead      Capability = "tenant:read"
	CapTenantWrite     Capability = "tenant:write"
	CapUsersManage     Capability = "users:manage"
	CapHospitalsRead   Capability = "hospitals:read"
	CapHospitalsManage Capability = "hospitals:manage"
	CapStatsRead       Capability = "stats:read"
	CapStatsAggregate  Capability = "stats:aggregate"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleSuperAdmin: {
		CapUsersManage:     true,
		CapHospitalsRead:   true,
		CapHospitalsManage: true,
		CapStatsRead:       true,
		CapStatsAggregate:  true,
	},
	RoleHospitalAdmin: {
		CapTenantRead:    true,
		CapTenantWrite:   true,
		CapUsersManage:   true,
		CapHospitalsRead: true,
		CapStatsRead:     true,
	},
	RoleBasicUser: {
		CapTenantRead:    true,
		CapTenantWrite:   true,
		CapHospitalsRead: true,
		CapStatsRead:     true,
	},
}

// ParseRole converts a stored or submitted role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role is granted c.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// TenantScoped reports whether c only makes sense with a hospital binding.
func (c Capability) TenantScoped() bool {
	return c == CapTenantRead || c == CapTenantWrite
}

// CanAssign reports whether an actor holding r may give another account role target.
func (r Role) CanAssign(target Role) bool {
	switch r {
	case RoleSuperAdmin:
		return target.Valid()
	case RoleHospitalAdmin:
		return target == RoleHospitalAdmin || target == RoleBasicUser
	default:
		return false
	}
}
