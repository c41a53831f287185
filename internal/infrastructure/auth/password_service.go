package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/you/authsvc/domain"
)

// PasswordServiceImpl implements domain.PasswordService. The hashing cost is
// tunable so deployments can trade latency for work factor.
type PasswordServiceImpl struct {
	cost int
}

// NewPasswordService creates a new password service. A cost outside the
// bcrypt range selects the default.
func NewPasswordService(cost int) domain.PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordServiceImpl{
		cost: cost,
	}
}

// Hash implements domain.PasswordService
func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify implements domain.PasswordService
func (p *PasswordServiceImpl) Verify(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// Compile-time interface compliance verification
var _ domain.PasswordService = (*PasswordServiceImpl)(nil)

