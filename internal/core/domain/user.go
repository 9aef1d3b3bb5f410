package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAuditor Role = "auditor"
	RoleViewer  Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:   true,
	RoleAuditor: true,
	RoleViewer:  true,
}

// NormalizeRole validates the requested role, defaulting to viewer.
func NormalizeRole(r string) (Role, error) {
	if r == "" {
		return RoleViewer, nil
	}
	role := Role(r)
	if !validRoles[role] {
		return "", ErrInvalidRole
	}
	return role, nil
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
