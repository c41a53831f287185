package services

import (
	"context"
	"fmt"
	"time"

	"github.com/you/authsvc/domain"
)

// AuthServiceImpl implements domain.AuthService. It orchestrates the user
// lifecycle PendingConfirmation -> Active and the password-reset sub-flow
// against the credential store, the OTP engine, the token engine and the
// mailer. It recovers none of the domain errors; each maps to a client
// status at the handler layer.
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	otpSvc      domain.OTPService
	mailer      domain.Mailer
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	otpSvc domain.OTPService,
	mailer domain.Mailer,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		otpSvc:      otpSvc,
		mailer:      mailer,
	}
}

// Signup implements domain.AuthService. A duplicate email or phone
// short-circuits before any write; the store's unique indexes are the
// authority if two signups race past the pre-check.
func (s *AuthServiceImpl) Signup(ctx context.Context, name, email, phone, password string, role domain.Role) (*domain.User, error) {
	if role == "" {
		role = domain.RoleEmployee
	}
	if !role.Valid() {
		return nil, domain.ErrRoleUnknown
	}

	for _, identifier := range []string{email, phone} {
		if existing, err := s.userRepo.FindByEmailOrPhone(ctx, identifier); err == nil && existing != nil {
			return nil, domain.ErrUserAlreadyExists
		}
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, expiresAt, err := s.otpSvc.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}
	otpHash, err := s.otpSvc.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hashedPassword,
		Role:         role,
		IsActive:     false,
		OTPVerified:  false,
		OTPHash:      &otpHash,
		OTPExpiresAt: &expiresAt,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mailer.Send(ctx, email, domain.TemplateRegistrationOTP, map[string]string{
		"name": name,
		"otp":  code,
	}); err != nil {
		// Roll back so a retried signup does not hit the conflict path with
		// an account that can never receive its code.
		_ = s.userRepo.Delete(ctx, user.ID)
		return nil, fmt.Errorf("%w: %v", domain.ErrNotification, err)
	}

	return user, nil
}

// ConfirmRegistration implements domain.AuthService. Transition:
// PendingConfirmation -> Active. The OTP is single-use; its hash and expiry
// are cleared on success.
func (s *AuthServiceImpl) ConfirmRegistration(ctx context.Context, email, otp string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return domain.ErrUserNotFound
	}

	if user.OTPVerified {
		return domain.ErrAlreadyVerified
	}

	if !s.otpSvc.Verify(otp, user.OTPHash, user.OTPExpiresAt) {
		return domain.ErrOTPInvalid
	}

	// Sent before the state change; a delivery failure leaves the OTP
	// consumable so confirmation stays retryable.
	if err := s.mailer.Send(ctx, user.Email, domain.TemplateRegistrationSuccess, map[string]string{
		"name": user.Name,
	}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotification, err)
	}

	verified := true
	active := true
	return s.userRepo.UpdateByEmail(ctx, email, domain.UserUpdate{
		ClearOTP:    true,
		OTPVerified: &verified,
		IsActive:    &active,
	})
}

// Login implements domain.AuthService. Missing user, missing password hash
// and password mismatch are indistinguishable to the caller; only an
// inactive account gets a distinct error.
func (s *AuthServiceImpl) Login(ctx context.Context, identifier, password string) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindByEmailOrPhone(ctx, identifier)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.tokenSvc.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// A new login overwrites the previous refresh token: one concurrent
	// session per user at the token level.
	now := time.Now()
	if err := s.userRepo.UpdateByID(ctx, user.ID, domain.UserUpdate{
		RefreshToken: &refreshToken,
		LastLoginAt:  &now,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &domain.AuthResult{
		User:         user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ForgotPassword implements domain.AuthService. Repeated calls simply
// reissue; a fresh OTP overwrites any previous one.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return domain.ErrUserNotFound
	}

	code, expiresAt, err := s.otpSvc.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}
	otpHash, err := s.otpSvc.Hash(code)
	if err != nil {
		return fmt.Errorf("failed to hash OTP: %w", err)
	}

	if err := s.userRepo.UpdateByEmail(ctx, email, domain.UserUpdate{
		OTPHash:      &otpHash,
		OTPExpiresAt: &expiresAt,
	}); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	// The stored OTP is kept on delivery failure; the operation is
	// idempotent and the client can request a resend.
	if err := s.mailer.Send(ctx, email, domain.TemplateResetOTP, map[string]string{
		"name": user.Name,
		"otp":  code,
	}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotification, err)
	}

	return nil
}

// VerifyForgotPasswordOTP implements domain.AuthService. Read-only: it
// confirms validity without consuming the code, which stays usable until
// ResetPassword or expiry.
func (s *AuthServiceImpl) VerifyForgotPasswordOTP(ctx context.Context, email, otp string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return domain.ErrUserNotFound
	}

	if !s.otpSvc.Verify(otp, user.OTPHash, user.OTPExpiresAt) {
		return domain.ErrOTPInvalid
	}
	return nil
}

// ResendForgotPasswordOTP implements domain.AuthService. Identical effect to
// ForgotPassword; a separate operation for client-flow clarity.
func (s *AuthServiceImpl) ResendForgotPasswordOTP(ctx context.Context, email string) error {
	return s.ForgotPassword(ctx, email)
}

// ResetPassword implements domain.AuthService. Consumes the OTP: hash and
// expiry are cleared together with the password change.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return domain.ErrUserNotFound
	}

	if !s.otpSvc.Verify(otp, user.OTPHash, user.OTPExpiresAt) {
		return domain.ErrOTPInvalid
	}

	hashedPassword, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdateByEmail(ctx, email, domain.UserUpdate{
		PasswordHash: &hashedPassword,
		ClearOTP:     true,
	}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// The password change is durable at this point; a failed success notice
	// surfaces without undoing it.
	if err := s.mailer.Send(ctx, email, domain.TemplateResetSuccess, map[string]string{
		"name": user.Name,
	}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotification, err)
	}

	return nil
}

// RefreshAccessToken implements domain.AuthService. The token must match a
// stored value AND carry the owning user's id; the refresh token is not
// rotated.
func (s *AuthServiceImpl) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	user, err := s.userRepo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	claims, err := s.tokenSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	// Defense against token/record desync.
	if claims.UserID != user.ID {
		return "", domain.ErrUnauthorized
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout implements domain.AuthService. Revocation is clearing the stored
// refresh token; outstanding access tokens stay valid until expiry.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	user, err := s.userRepo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return domain.ErrUnauthorized
	}

	return s.userRepo.UpdateByID(ctx, user.ID, domain.UserUpdate{
		ClearRefreshToken: true,
	})
}

// RequestInvitation implements domain.AuthService. Sends an invitation
// acknowledgement to the given address; no account is created.
func (s *AuthServiceImpl) RequestInvitation(ctx context.Context, email string) error {
	if err := s.mailer.Send(ctx, email, domain.TemplateInvitationRequest, map[string]string{
		"email": email,
	}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotification, err)
	}
	return nil
}
