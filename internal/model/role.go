package model

import "fmt"

// Role is the permission level of a user. Only the declared variants are valid.
type Role int

const (
	RoleRegular Role = 1
	RoleAdmin   Role = 2
)

// RoleInfo is the lookup representation of a role as stored in the roles table.
type RoleInfo struct {
	ID    Role   `json:"id"`
	Title string `json:"title"`
}

// Roles returns the static role lookup in id order.
func Roles() []RoleInfo {
	return []RoleInfo{
		{ID: RoleRegular, Title: RoleRegular.String()},
		{ID: RoleAdmin, Title: RoleAdmin.String()},
	}
}

// ParseRole converts a raw integer into a Role, rejecting unknown values.
func ParseRole(v int) (Role, error) {
	r := Role(v)
	if !r.Valid() {
		return 0, fmt.Errorf("invalid role %d", v)
	}
	return r, nil
}

func (r Role) Valid() bool {
	return r == RoleRegular || r == RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleRegular:
		return "Regular"
	case RoleAdmin:
		return "Admin"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}
