package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/you/authsvc/domain"
)

// OTPServiceImpl implements domain.OTPService. Codes are uniform random
// decimal strings with a non-zero leading digit, stored only as bcrypt hashes.
type OTPServiceImpl struct {
	length int
	ttl    time.Duration
	cost   int
}

type OTPConfig struct {
	Length int
	TTL    time.Duration
}

// NewOTPService creates a new OTP service
func NewOTPService(config OTPConfig) domain.OTPService {
	length := config.Length
	if length == 0 {
		length = 6
	}
	return &OTPServiceImpl{
		length: length,
		ttl:    config.TTL,
		cost:   bcrypt.DefaultCost,
	}
}

// Generate implements domain.OTPService. For the default length of 6 the
// code is uniform over 100000-999999.
func (s *OTPServiceImpl) Generate() (string, time.Time, error) {
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(s.length-1)), nil)
	span := new(big.Int).Mul(low, big.NewInt(9))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	code := new(big.Int).Add(low, n).String()
	return code, time.Now().Add(s.ttl), nil
}

// Hash implements domain.OTPService. Plaintext codes are never stored.
func (s *OTPServiceImpl) Hash(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash OTP code: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify implements domain.OTPService. It fails closed: absent hash or
// expiry, an elapsed expiry and a mismatched code are all just "invalid",
// with no distinction surfaced to the caller.
func (s *OTPServiceImpl) Verify(code string, hash *string, expiresAt *time.Time) bool {
	if hash == nil || expiresAt == nil {
		return false
	}
	if time.Now().After(*expiresAt) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(code)) == nil
}
