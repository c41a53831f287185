package domain

import (
	"context"
	"time"
)

// UserRepository defines user data access operations. The store is
// authoritative for email/phone uniqueness; duplicate writes surface as
// ErrUserAlreadyExists and missing rows as ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmailOrPhone(ctx context.Context, identifier string) (*User, error)
	FindByRefreshToken(ctx context.Context, token string) (*User, error)
	UpdateByEmail(ctx context.Context, email string, fields UserUpdate) error
	UpdateByID(ctx context.Context, id uint, fields UserUpdate) error
	Delete(ctx context.Context, id uint) error
}

// AuthService defines the authentication lifecycle business logic.
type AuthService interface {
	Signup(ctx context.Context, name, email, phone, password string, role Role) (*User, error)
	ConfirmRegistration(ctx context.Context, email, otp string) error
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyForgotPasswordOTP(ctx context.Context, email, otp string) error
	ResendForgotPasswordOTP(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestInvitation(ctx context.Context, email string) error
}

// OTPService defines one-time code operations. Codes are stored only as
// one-way hashes; Verify fails closed on absent or expired state.
type OTPService interface {
	Generate() (code string, expiresAt time.Time, err error)
	Hash(code string) (string, error)
	Verify(code string, hash *string, expiresAt *time.Time) bool
}

// PasswordService defines password hashing operations.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations. Access and refresh tokens are signed
// with independent secrets and cannot be substituted for one another.
type TokenService interface {
	GenerateAccessToken(userID uint, role Role) (string, error)
	GenerateRefreshToken(userID uint) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}

// EmailTemplate names one of the templated notification kinds.
type EmailTemplate string

const (
	TemplateRegistrationOTP     EmailTemplate = "registration_otp"
	TemplateRegistrationSuccess EmailTemplate = "registration_success"
	TemplateResetOTP            EmailTemplate = "reset_otp"
	TemplateResetSuccess        EmailTemplate = "reset_success"
	TemplateInvitationRequest   EmailTemplate = "invitation_request"
)

// Mailer defines templated email delivery. Failure must propagate to the
// caller; there is no retry at this layer.
type Mailer interface {
	Send(ctx context.Context, to string, template EmailTemplate, data map[string]string) error
}
