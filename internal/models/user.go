package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user role in the platform.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleAlumni     Role = "alumni"
)

// User represents a login identity. Alumni users carry a link to their
// Alumni record; the two are distinct entities.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRole reports whether the user's role satisfies any of the required
// roles. Superadmin satisfies every requirement.
func (u *User) HasRole(required ...Role) bool {
	return HasRole(u.Role, required...)
}

// HasRole reports whether role satisfies any of the required roles.
// Superadmin always passes.
func HasRole(role Role, required ...Role) bool {
	if role == RoleSuperadmin {
		return true
	}
	for _, r := range required {
		if role == r {
			return true
		}
	}
	return false
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
