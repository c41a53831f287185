package mocks

import (
	"time"

	"github.com/you/authsvc/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	GenerateFunc func() (string, time.Time, error)
	HashFunc     func(code string) (string, error)
	VerifyFunc   func(code string, hash *string, expiresAt *time.Time) bool
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Generate produces an OTP code and its expiry
func (m *MockOTPService) Generate() (string, time.Time, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	// Default behavior: fixed code valid for 10 minutes
	return "123456", time.Now().Add(10 * time.Minute), nil
}

// Hash hashes an OTP code
func (m *MockOTPService) Hash(code string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(code)
	}
	// Default behavior: deterministic fake hash
	return "hashed_" + code, nil
}

// Verify checks a code against the stored hash and expiry
func (m *MockOTPService) Verify(code string, hash *string, expiresAt *time.Time) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(code, hash, expiresAt)
	}
	// Default behavior: fail closed like the real engine
	if hash == nil || expiresAt == nil {
		return false
	}
	if time.Now().After(*expiresAt) {
		return false
	}
	return *hash == "hashed_"+code
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
