package domain

import "errors"

// Identity errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists with provided email or phone")
	ErrRoleUnknown       = errors.New("unknown role")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUnauthorized       = errors.New("unauthorized access")
)

// OTP errors. Expired, absent and mismatched codes are deliberately a single
// undifferentiated kind so callers cannot learn which condition failed.
var (
	ErrOTPInvalid      = errors.New("otp expired or invalid")
	ErrAlreadyVerified = errors.New("account already verified")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Dependency errors
var (
	ErrNotification = errors.New("notification delivery failed")
)
