package models

import "time"

const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// RoleAssignment binds a role name to a user, optionally carrying a
// permission level for staff roles.
type RoleAssignment struct {
	Role            string
	PermissionLevel *string
}

// User is a local account. A nil PasswordHash means the account has no
// local credential (Google-only sign-in, or an invitation not yet accepted).
type User struct {
	ID            string
	Email         string
	FirstName     string
	LastName      string
	PasswordHash  []byte
	EmailVerified bool
	IsActive      bool
	LastLoginAt   *time.Time
	Roles         []RoleAssignment
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Role)
	}
	return names
}

// LinkedAccount binds exactly one external (provider, providerAccountID)
// identity to exactly one user.
type LinkedAccount struct {
	ID                string
	UserID            string
	Provider          string
	ProviderAccountID string
	CreatedAt         time.Time
}

const (
	ProviderGoogle      = "google"
	ProviderCredentials = "credentials"
)
