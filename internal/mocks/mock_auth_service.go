package mocks

import (
	"context"

	"github.com/you/authsvc/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	SignupFunc                  func(ctx context.Context, name, email, phone, password string, role domain.Role) (*domain.User, error)
	ConfirmRegistrationFunc     func(ctx context.Context, email, otp string) error
	LoginFunc                   func(ctx context.Context, identifier, password string) (*domain.AuthResult, error)
	ForgotPasswordFunc          func(ctx context.Context, email string) error
	VerifyForgotPasswordOTPFunc func(ctx context.Context, email, otp string) error
	ResendForgotPasswordOTPFunc func(ctx context.Context, email string) error
	ResetPasswordFunc           func(ctx context.Context, email, otp, newPassword string) error
	RefreshAccessTokenFunc      func(ctx context.Context, refreshToken string) (string, error)
	LogoutFunc                  func(ctx context.Context, refreshToken string) error
	RequestInvitationFunc       func(ctx context.Context, email string) error
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// Signup registers a new user
func (m *MockAuthService) Signup(ctx context.Context, name, email, phone, password string, role domain.Role) (*domain.User, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, name, email, phone, password, role)
	}
	return &domain.User{ID: 1, Name: name, Email: email, Phone: phone, Role: role}, nil
}

// ConfirmRegistration activates a pending user
func (m *MockAuthService) ConfirmRegistration(ctx context.Context, email, otp string) error {
	if m.ConfirmRegistrationFunc != nil {
		return m.ConfirmRegistrationFunc(ctx, email, otp)
	}
	return nil
}

// Login authenticates a user by email or phone
func (m *MockAuthService) Login(ctx context.Context, identifier, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, password)
	}
	return nil, domain.ErrInvalidCredentials
}

// ForgotPassword issues a password-reset OTP
func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return nil
}

// VerifyForgotPasswordOTP checks a reset OTP without consuming it
func (m *MockAuthService) VerifyForgotPasswordOTP(ctx context.Context, email, otp string) error {
	if m.VerifyForgotPasswordOTPFunc != nil {
		return m.VerifyForgotPasswordOTPFunc(ctx, email, otp)
	}
	return nil
}

// ResendForgotPasswordOTP reissues a password-reset OTP
func (m *MockAuthService) ResendForgotPasswordOTP(ctx context.Context, email string) error {
	if m.ResendForgotPasswordOTPFunc != nil {
		return m.ResendForgotPasswordOTPFunc(ctx, email)
	}
	return nil
}

// ResetPassword sets a new password after OTP verification
func (m *MockAuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, email, otp, newPassword)
	}
	return nil
}

// RefreshAccessToken issues a new access token for a valid refresh token
func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if m.RefreshAccessTokenFunc != nil {
		return m.RefreshAccessTokenFunc(ctx, refreshToken)
	}
	return "", domain.ErrUnauthorized
}

// Logout revokes the stored refresh token
func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, refreshToken)
	}
	return nil
}

// RequestInvitation sends an invitation acknowledgement email
func (m *MockAuthService) RequestInvitation(ctx context.Context, email string) error {
	if m.RequestInvitationFunc != nil {
		return m.RequestInvitationFunc(ctx, email)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
