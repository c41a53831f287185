package domain

import "time"

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

// RoleAllowed reports whether r is a member of allowed.
func RoleAllowed(r Role, allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// User represents a user in the system. OTP hash and expiry are set and
// cleared together; RefreshToken holds at most one active issuance.
type User struct {
	ID           uint
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	IsActive     bool
	OTPVerified  bool
	OTPHash      *string
	OTPExpiresAt *time.Time
	RefreshToken *string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection returned to clients. No credential or OTP
// material is ever included.
type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
}

// Public returns the client-safe projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  u.Role,
	}
}

// AuthResult represents a successful login outcome.
type AuthResult struct {
	User         PublicUser
	AccessToken  string
	RefreshToken string
}

// TokenClaims represents verified JWT claims. Role is empty for refresh
// tokens, which carry the user id only.
type TokenClaims struct {
	UserID    uint
	Role      Role
	IssuedAt  int64
	ExpiresAt int64
}

// UserUpdate describes a partial update to a user record. Pointer fields are
// applied when non-nil; the Clear flags null out their columns so OTP and
// refresh-token state can be revoked.
type UserUpdate struct {
	PasswordHash      *string
	OTPHash           *string
	OTPExpiresAt      *time.Time
	ClearOTP          bool
	OTPVerified       *bool
	IsActive          *bool
	RefreshToken      *string
	ClearRefreshToken bool
	LastLoginAt       *time.Time
}
