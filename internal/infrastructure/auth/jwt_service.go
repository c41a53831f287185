package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/you/authsvc/domain"
)

// JWTServiceImpl implements domain.TokenService. Access and refresh tokens
// are signed with independent secrets so one kind can never validate as the
// other.
type JWTServiceImpl struct {
	accessSecret    []byte
	refreshSecret   []byte
	issuer          string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) domain.TokenService {
	return &JWTServiceImpl{
		accessSecret:    []byte(accessSecret),
		refreshSecret:   []byte(refreshSecret),
		issuer:          issuer,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}
}

// generateJTI creates a unique JWT ID
func (j *JWTServiceImpl) generateJTI() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// GenerateAccessToken implements domain.TokenService. The payload carries the
// user id and role.
func (j *JWTServiceImpl) GenerateAccessToken(userID uint, role domain.Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"iss":     j.issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(j.accessTokenTTL).Unix(),
		"jti":     j.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.accessSecret)
}

// GenerateRefreshToken implements domain.TokenService. The payload carries
// the user id only.
func (j *JWTServiceImpl) GenerateRefreshToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iss":     j.issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(j.refreshTokenTTL).Unix(),
		"jti":     j.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.refreshSecret)
}

// ValidateAccessToken implements domain.TokenService
func (j *JWTServiceImpl) ValidateAccessToken(tokenString string) (*domain.TokenClaims, error) {
	return j.validateToken(tokenString, j.accessSecret)
}

// ValidateRefreshToken implements domain.TokenService
func (j *JWTServiceImpl) ValidateRefreshToken(tokenString string) (*domain.TokenClaims, error) {
	return j.validateToken(tokenString, j.refreshSecret)
}

// validateToken validates a JWT token against secret and returns claims
func (j *JWTServiceImpl) validateToken(tokenString string, secret []byte) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return secret, nil
	})

	if err != nil {
		// Parse validates exp itself; the expired case keeps its own error.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	tokenClaims := &domain.TokenClaims{
		UserID:    uint(userID),
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
	}

	// Role is present on access tokens only
	if role, ok := claims["role"].(string); ok {
		tokenClaims.Role = domain.Role(role)
	}

	return tokenClaims, nil
}
