package entity

import "time"

// Role values attached to a user account
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// User is an account that can log in and act on notas.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is the authenticated actor resolved from the request cookie.
type Session struct {
	UserID   int64  `json:"sub"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsStaff reports whether the role may see the review queue and manage
// shared resources.
func (s Session) IsStaff() bool {
	return s.Role == RoleAdmin || s.Role == RoleManager
}

// CreatableRole returns the role this actor is allowed to create accounts
// for: managers create admins, admins create users.
func CreatableRole(actorRole string) (string, bool) {
	switch actorRole {
	case RoleManager:
		return RoleAdmin, true
	case RoleAdmin:
		return RoleUser, true
	default:
		return "", false
	}
}

// CanActOn reports whether actorRole may delete or reset the password of an
// account with targetRole. Managers act on admins and users; admins act on
// users only.
func CanActOn(actorRole, targetRole string) bool {
	switch actorRole {
	case RoleManager:
		return targetRole == RoleAdmin || targetRole == RoleUser
	case RoleAdmin:
		return targetRole == RoleUser
	default:
		return false
	}
}
