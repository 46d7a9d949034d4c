package user

import "errors"

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleCoordinator Role = "COORDINATOR"
	RoleTechnician  Role = "TECHNICIAN"
	RoleSeller      Role = "SELLER"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleTechnician, RoleSeller:
		return true
	default:
		return false
	}
}

// IsGlobalViewer reports whether the role sees and acts on every reservation
// regardless of who created it.
func (r Role) IsGlobalViewer() bool {
	return r == RoleAdmin || r == RoleCoordinator
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

func Roles() []Role {
	return []Role{RoleAdmin, RoleCoordinator, RoleTechnician, RoleSeller}
}
