package mocks

import (
	"context"

	"github.com/you/authsvc/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc             func(ctx context.Context, user *domain.User) error
	FindByEmailFunc        func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc           func(ctx context.Context, id uint) (*domain.User, error)
	FindByEmailOrPhoneFunc func(ctx context.Context, identifier string) (*domain.User, error)
	FindByRefreshTokenFunc func(ctx context.Context, token string) (*domain.User, error)
	UpdateByEmailFunc      func(ctx context.Context, email string, fields domain.UserUpdate) error
	UpdateByIDFunc         func(ctx context.Context, id uint, fields domain.UserUpdate) error
	DeleteFunc             func(ctx context.Context, id uint) error
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	// Default behavior: success
	return nil
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByEmailOrPhone finds a user whose email or phone matches identifier
func (m *MockUserRepository) FindByEmailOrPhone(ctx context.Context, identifier string) (*domain.User, error) {
	if m.FindByEmailOrPhoneFunc != nil {
		return m.FindByEmailOrPhoneFunc(ctx, identifier)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByRefreshToken finds the user currently holding token
func (m *MockUserRepository) FindByRefreshToken(ctx context.Context, token string) (*domain.User, error) {
	if m.FindByRefreshTokenFunc != nil {
		return m.FindByRefreshTokenFunc(ctx, token)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// UpdateByEmail applies a partial update to the user with email
func (m *MockUserRepository) UpdateByEmail(ctx context.Context, email string, fields domain.UserUpdate) error {
	if m.UpdateByEmailFunc != nil {
		return m.UpdateByEmailFunc(ctx, email, fields)
	}
	// Default behavior: success
	return nil
}

// UpdateByID applies a partial update to the user with id
func (m *MockUserRepository) UpdateByID(ctx context.Context, id uint, fields domain.UserUpdate) error {
	if m.UpdateByIDFunc != nil {
		return m.UpdateByIDFunc(ctx, id, fields)
	}
	// Default behavior: success
	return nil
}

// Delete removes the user with id
func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
