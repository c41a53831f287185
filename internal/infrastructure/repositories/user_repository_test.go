package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/you/authsvc/domain"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&DBUser{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, mutate func(*DBUser)) *DBUser {
	t.Helper()

	otpHash := "hashed_123456"
	expiry := time.Now().Add(10 * time.Minute)
	user := &DBUser{
		Name:         "Amy",
		Email:        "a@x.com",
		Phone:        "9876543210",
		PasswordHash: "hashed_secret1",
		Role:         "EMPLOYEE",
		IsActive:     false,
		OTPVerified:  false,
		OTPHash:      &otpHash,
		OTPExpiresAt: &expiry,
	}
	if mutate != nil {
		mutate(user)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestUserRepositoryImpl_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		Name:         "Amy",
		Email:        "a@x.com",
		Phone:        "9876543210",
		PasswordHash: "hashed_secret1",
		Role:         domain.RoleEmployee,
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == 0 {
		t.Error("Create() did not backfill the user id")
	}
}

func TestUserRepositoryImpl_Create_DuplicateIdentity(t *testing.T) {
	tests := []struct {
		name  string
		email string
		phone string
	}{
		{name: "duplicate email", email: "a@x.com", phone: "1111111111"},
		{name: "duplicate phone", email: "other@x.com", phone: "9876543210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewUserRepository(db)
			ctx := context.Background()
			seedUser(t, db, nil)

			err := repo.Create(ctx, &domain.User{
				Name:  "Bob",
				Email: tt.email,
				Phone: tt.phone,
				Role:  domain.RoleEmployee,
			})
			if !errors.Is(err, domain.ErrUserAlreadyExists) {
				t.Fatalf("Create() error = %v, want %v", err, domain.ErrUserAlreadyExists)
			}

			var count int64
			db.Model(&DBUser{}).Count(&count)
			if count != 1 {
				t.Errorf("user count = %d, want 1 (no new record on conflict)", count)
			}
		})
	}
}

func TestUserRepositoryImpl_FindByEmailOrPhone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seedUser(t, db, nil)

	tests := []struct {
		name       string
		identifier string
		wantErr    error
	}{
		{name: "by email", identifier: "a@x.com"},
		{name: "by phone", identifier: "9876543210"},
		{name: "unknown identifier", identifier: "nobody@x.com", wantErr: domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.FindByEmailOrPhone(ctx, tt.identifier)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FindByEmailOrPhone() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindByEmailOrPhone() error = %v", err)
			}
			if user.Email != "a@x.com" {
				t.Errorf("Email = %q, want %q", user.Email, "a@x.com")
			}
			if user.OTPHash == nil || user.OTPExpiresAt == nil {
				t.Error("expected OTP hash and expiry loaded together")
			}
		})
	}
}

func TestUserRepositoryImpl_FindByRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	token := "stored-refresh-token"
	seedUser(t, db, func(u *DBUser) {
		u.IsActive = true
		u.RefreshToken = &token
	})

	user, err := repo.FindByRefreshToken(ctx, token)
	if err != nil {
		t.Fatalf("FindByRefreshToken() error = %v", err)
	}
	if user.RefreshToken == nil || *user.RefreshToken != token {
		t.Error("expected stored refresh token on the loaded user")
	}

	if _, err := repo.FindByRefreshToken(ctx, "unknown-token"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("FindByRefreshToken() with unknown token error = %v, want %v", err, domain.ErrUserNotFound)
	}
}

func TestUserRepositoryImpl_UpdateByEmail_ActivatesAndClearsOTP(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seedUser(t, db, nil)

	verified := true
	active := true
	err := repo.UpdateByEmail(ctx, "a@x.com", domain.UserUpdate{
		ClearOTP:    true,
		OTPVerified: &verified,
		IsActive:    &active,
	})
	if err != nil {
		t.Fatalf("UpdateByEmail() error = %v", err)
	}

	user, err := repo.FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if !user.IsActive || !user.OTPVerified {
		t.Error("expected user activated and verified")
	}
	if user.OTPHash != nil || user.OTPExpiresAt != nil {
		t.Error("expected OTP hash and expiry cleared together")
	}
}

func TestUserRepositoryImpl_UpdateByID_RefreshTokenLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seeded := seedUser(t, db, func(u *DBUser) { u.IsActive = true })

	token := "issued-refresh-token"
	now := time.Now()
	err := repo.UpdateByID(ctx, seeded.ID, domain.UserUpdate{
		RefreshToken: &token,
		LastLoginAt:  &now,
	})
	if err != nil {
		t.Fatalf("UpdateByID() error = %v", err)
	}

	user, err := repo.FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if user.RefreshToken == nil || *user.RefreshToken != token {
		t.Error("expected refresh token persisted")
	}
	if user.LastLoginAt == nil {
		t.Error("expected last login persisted")
	}

	// Logout clears the token.
	if err := repo.UpdateByID(ctx, seeded.ID, domain.UserUpdate{ClearRefreshToken: true}); err != nil {
		t.Fatalf("UpdateByID() clear error = %v", err)
	}
	user, _ = repo.FindByID(ctx, seeded.ID)
	if user.RefreshToken != nil {
		t.Error("expected refresh token cleared")
	}
}

func TestUserRepositoryImpl_Update_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	active := true
	err := repo.UpdateByEmail(ctx, "nobody@x.com", domain.UserUpdate{IsActive: &active})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("UpdateByEmail() error = %v, want %v", err, domain.ErrUserNotFound)
	}
}

func TestUserRepositoryImpl_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seeded := seedUser(t, db, nil)

	if err := repo.Delete(ctx, seeded.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "a@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("FindByEmail() after delete error = %v, want %v", err, domain.ErrUserNotFound)
	}
}

func TestUserRepositoryImpl_Delete_FreesIdentifiers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		Name:         "Amy",
		Email:        "a@x.com",
		Phone:        "9876543210",
		PasswordHash: "hashed_secret1",
		Role:         domain.RoleEmployee,
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// A signup retried after a rollback delete must not hit the unique
	// indexes; a tombstone row would make the identifiers unregistrable.
	retried := &domain.User{
		Name:         "Amy",
		Email:        "a@x.com",
		Phone:        "9876543210",
		PasswordHash: "hashed_secret1",
		Role:         domain.RoleEmployee,
	}
	if err := repo.Create(ctx, retried); err != nil {
		t.Fatalf("Create() after delete error = %v, want success", err)
	}
	if retried.ID == 0 {
		t.Error("Create() after delete did not backfill the user id")
	}
}
