package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/authsvc/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User. The unique indexes on email
// and phone enforce the identity uniqueness invariant at the storage layer;
// the OTP and refresh-token columns are nullable by design.
type DBUser struct {
	ID           uint       `gorm:"primaryKey"`
	Name         string     `gorm:"size:255"`
	Email        string     `gorm:"uniqueIndex;size:255"`
	Phone        string     `gorm:"uniqueIndex;size:32"`
	PasswordHash string     `gorm:"column:password"`
	Role         string     `gorm:"index;size:64"`
	IsActive     bool       `gorm:"index"`
	OTPVerified  bool       `gorm:"column:otp_verified"`
	OTPHash      *string    `gorm:"column:otp"`
	OTPExpiresAt *time.Time `gorm:"column:otp_expires_at"`
	RefreshToken *string    `gorm:"index;size:512"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository. A duplicate email or phone is
// rejected by the unique indexes and surfaces as ErrUserAlreadyExists.
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	user.ID = dbUser.ID
	return nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmailOrPhone implements domain.UserRepository. The identifier is
// matched against either column, so clients can log in with email or phone.
func (r *UserRepositoryImpl) FindByEmailOrPhone(ctx context.Context, identifier string) (*domain.User, error) {
	return r.findOne(ctx, "email = ? OR phone = ?", identifier, identifier)
}

// FindByRefreshToken implements domain.UserRepository
func (r *UserRepositoryImpl) FindByRefreshToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, "refresh_token = ?", token)
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where(query, args...).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// UpdateByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) UpdateByEmail(ctx context.Context, email string, fields domain.UserUpdate) error {
	return r.update(ctx, "email = ?", email, fields)
}

// UpdateByID implements domain.UserRepository
func (r *UserRepositoryImpl) UpdateByID(ctx context.Context, id uint, fields domain.UserUpdate) error {
	return r.update(ctx, "id = ?", id, fields)
}

func (r *UserRepositoryImpl) update(ctx context.Context, query string, arg interface{}, fields domain.UserUpdate) error {
	values := map[string]interface{}{}
	if fields.PasswordHash != nil {
		values["password"] = *fields.PasswordHash
	}
	if fields.OTPHash != nil {
		values["otp"] = *fields.OTPHash
	}
	if fields.OTPExpiresAt != nil {
		values["otp_expires_at"] = *fields.OTPExpiresAt
	}
	if fields.ClearOTP {
		// Hash and expiry are always cleared together.
		values["otp"] = nil
		values["otp_expires_at"] = nil
	}
	if fields.OTPVerified != nil {
		values["otp_verified"] = *fields.OTPVerified
	}
	if fields.IsActive != nil {
		values["is_active"] = *fields.IsActive
	}
	if fields.RefreshToken != nil {
		values["refresh_token"] = *fields.RefreshToken
	}
	if fields.ClearRefreshToken {
		values["refresh_token"] = nil
	}
	if fields.LastLoginAt != nil {
		values["last_login_at"] = *fields.LastLoginAt
	}
	if len(values) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&DBUser{}).Where(query, arg).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete implements domain.UserRepository. Removal is unscoped: the unique
// indexes cover soft-deleted rows, so a tombstone would keep the email and
// phone occupied and a retried signup would conflict forever.
func (r *UserRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&DBUser{}, id).Error
}

// domainToDB converts domain user to database user
func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Phone:        user.Phone,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		IsActive:     user.IsActive,
		OTPVerified:  user.OTPVerified,
		OTPHash:      user.OTPHash,
		OTPExpiresAt: user.OTPExpiresAt,
		RefreshToken: user.RefreshToken,
		LastLoginAt:  user.LastLoginAt,
	}
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:           dbUser.ID,
		Name:         dbUser.Name,
		Email:        dbUser.Email,
		Phone:        dbUser.Phone,
		PasswordHash: dbUser.PasswordHash,
		Role:         domain.Role(dbUser.Role),
		IsActive:     dbUser.IsActive,
		OTPVerified:  dbUser.OTPVerified,
		OTPHash:      dbUser.OTPHash,
		OTPExpiresAt: dbUser.OTPExpiresAt,
		RefreshToken: dbUser.RefreshToken,
		LastLoginAt:  dbUser.LastLoginAt,
		CreatedAt:    dbUser.CreatedAt,
		UpdatedAt:    dbUser.UpdatedAt,
	}
}
