package model

import "fmt"

// Role is the resolved role of a caller.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// ParseRole validates a role name. The empty string maps to RoleGuest.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUser, RoleGuest:
		return r, nil
	case "":
		return RoleGuest, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}
