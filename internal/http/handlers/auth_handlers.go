package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/authsvc/domain"
)

// AuthHandlers handles authentication HTTP requests. Request bodies are
// validated by gin binding tags before reaching the lifecycle service.
type AuthHandlers struct {
	authSvc      domain.AuthService
	userRepo     domain.UserRepository
	logger       *zap.Logger
	exposeErrors bool
}

// NewAuthHandlers creates new auth handlers. exposeErrors includes internal
// error detail in 500 responses and must be false in production.
func NewAuthHandlers(authSvc domain.AuthService, userRepo domain.UserRepository, logger *zap.Logger, exposeErrors bool) *AuthHandlers {
	return &AuthHandlers{
		authSvc:      authSvc,
		userRepo:     userRepo,
		logger:       logger,
		exposeErrors: exposeErrors,
	}
}

// SignupRequest represents signup request
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required,min=10,max=15"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

// ConfirmRegistrationRequest represents registration confirmation request
type ConfirmRegistrationRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// LoginRequest represents login request; identifier is email or phone
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// EmailRequest represents requests carrying only an email
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest represents a reset-OTP verification request
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// ResetPasswordRequest represents a password reset request
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// RefreshRequest represents token refresh and logout requests
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Signup handles user registration
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	user, err := h.authSvc.Signup(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password, domain.Role(req.Role))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("user registered", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered. OTP sent to email.",
		"userId":  user.ID,
	})
}

// ConfirmRegistration handles OTP confirmation of a pending registration
func (h *AuthHandlers) ConfirmRegistration(c *gin.Context) {
	var req ConfirmRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	if err := h.authSvc.ConfirmRegistration(c.Request.Context(), req.Email, req.OTP); err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("registration confirmed", zap.String("email", req.Email))
	c.JSON(http.StatusOK, gin.H{"message": "Account verified successfully"})
}

// Login handles user login by email or phone
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("login successful", zap.Uint("user_id", result.User.ID))
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
		"user":         result.User,
	})
}

// ForgotPassword issues a password-reset OTP
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	if err := h.authSvc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to email for password reset"})
}

// VerifyForgotPasswordOTP checks a reset OTP without consuming it
func (h *AuthHandlers) VerifyForgotPasswordOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	if err := h.authSvc.VerifyForgotPasswordOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully"})
}

// ResendForgotPasswordOTP reissues a password-reset OTP
func (h *AuthHandlers) ResendForgotPasswordOTP(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	if err := h.authSvc.ResendForgotPasswordOTP(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "New OTP sent to email"})
}

// ResetPassword sets a new password after OTP verification
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("password reset", zap.String("email", req.Email))
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// RefreshAccessToken exchanges a valid refresh token for a new access token
func (h *AuthHandlers) RefreshAccessToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	accessToken, err := h.authSvc.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Access token refreshed",
		"accessToken": accessToken,
	})
}

// Logout revokes the stored refresh token
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("logout")
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// RequestInvitation acknowledges an invitation request by email
func (h *AuthHandlers) RequestInvitation(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	if err := h.authSvc.RequestInvitation(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation request received"})
}

// Me returns the authenticated user's profile (requires authentication)
func (h *AuthHandlers) Me(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), userID.(uint))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user.Public(),
		"isActive":  user.IsActive,
		"lastLogin": user.LastLoginAt,
	})
}

// GetUser returns another user's public profile (admin only)
func (h *AuthHandlers) GetUser(c *gin.Context) {
	var params struct {
		ID uint `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), params.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// respondError maps a domain error to a client-visible status and message.
// Internal detail is only included outside production.
func (h *AuthHandlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists with provided email or phone"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, domain.ErrAlreadyVerified):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Account already verified"})
	case errors.Is(err, domain.ErrOTPInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"message": "OTP expired or invalid"})
	case errors.Is(err, domain.ErrRoleUnknown):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown role"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, domain.ErrUserInactive):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User has been added as inactive"})
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenMalformed):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid refresh token"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		body := gin.H{"message": "Internal server error"}
		if h.exposeErrors {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
