package auth

import "github.com/Sathursan-S/Ticketer/entity"

// RoleAuthorizer grants an action when the principal holds the required role.
// Admins are allowed everything.
type RoleAuthorizer struct{}

func (RoleAuthorizer) IsAuthorized(p entity.Principal, role entity.Role) bool {
	if p.ID == "" {
		return false
	}
	return p.HasRole(entity.RoleAdmin) || p.HasRole(role)
}
