package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/you/authsvc/domain"
	"github.com/you/authsvc/internal/mocks"
)

func newTestRouter(authSvc domain.AuthService, userRepo domain.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandlers(authSvc, userRepo, zap.NewNop(), false)

	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/confirm-registration", h.ConfirmRegistration)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/forgot-password", h.ForgotPassword)
	r.POST("/auth/verify-forgot-password-otp", h.VerifyForgotPasswordOTP)
	r.POST("/auth/resend-forgot-password-otp", h.ResendForgotPasswordOTP)
	r.POST("/auth/reset-password", h.ResetPassword)
	r.POST("/auth/refresh-token", h.RefreshAccessToken)
	r.POST("/auth/logout", h.Logout)
	r.POST("/auth/request-invitation", h.RequestInvitation)
	r.GET("/auth/me", func(c *gin.Context) {
		c.Set("user_id", uint(7))
		h.Me(c)
	})
	return r
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSignupHandler(t *testing.T) {
	validBody := map[string]string{
		"name":     "Amy",
		"email":    "a@x.com",
		"phone":    "9876543210",
		"password": "secret1",
	}

	tests := []struct {
		name       string
		body       interface{}
		signupErr  error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "success",
			body:       validBody,
			wantStatus: http.StatusCreated,
			wantBody:   "User registered. OTP sent to email.",
		},
		{
			name:       "missing email",
			body:       map[string]string{"name": "Amy", "phone": "9876543210", "password": "secret1"},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid request body",
		},
		{
			name:       "short password",
			body:       map[string]string{"name": "Amy", "email": "a@x.com", "phone": "9876543210", "password": "abc"},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid request body",
		},
		{
			name:       "duplicate user",
			body:       validBody,
			signupErr:  domain.ErrUserAlreadyExists,
			wantStatus: http.StatusConflict,
			wantBody:   "User already exists",
		},
		{
			name:       "unknown role",
			body:       validBody,
			signupErr:  domain.ErrRoleUnknown,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Unknown role",
		},
		{
			name:       "mail failure",
			body:       validBody,
			signupErr:  domain.ErrNotification,
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := &mocks.MockAuthService{}
			if tt.signupErr != nil {
				authSvc.SignupFunc = func(ctx context.Context, name, email, phone, password string, role domain.Role) (*domain.User, error) {
					return nil, tt.signupErr
				}
			}
			r := newTestRouter(authSvc, &mocks.MockUserRepository{})

			w := postJSON(r, "/auth/signup", tt.body)
			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestSignupHandler_HidesInternalDetail(t *testing.T) {
	authSvc := &mocks.MockAuthService{
		SignupFunc: func(ctx context.Context, name, email, phone, password string, role domain.Role) (*domain.User, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}
	r := newTestRouter(authSvc, &mocks.MockUserRepository{})

	w := postJSON(r, "/auth/signup", map[string]string{
		"name": "Amy", "email": "a@x.com", "phone": "9876543210", "password": "secret1",
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "connection refused")
}

func TestConfirmRegistrationHandler(t *testing.T) {
	validBody := map[string]string{"email": "a@x.com", "otp": "123456"}

	tests := []struct {
		name       string
		body       interface{}
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{name: "success", body: validBody, wantStatus: http.StatusOK, wantBody: "Account verified successfully"},
		{name: "non numeric otp", body: map[string]string{"email": "a@x.com", "otp": "abcdef"}, wantStatus: http.StatusBadRequest, wantBody: "Invalid request body"},
		{name: "short otp", body: map[string]string{"email": "a@x.com", "otp": "123"}, wantStatus: http.StatusBadRequest, wantBody: "Invalid request body"},
		{name: "unknown user", body: validBody, svcErr: domain.ErrUserNotFound, wantStatus: http.StatusNotFound, wantBody: "User not found"},
		{name: "already verified", body: validBody, svcErr: domain.ErrAlreadyVerified, wantStatus: http.StatusBadRequest, wantBody: "Account already verified"},
		{name: "bad otp", body: validBody, svcErr: domain.ErrOTPInvalid, wantStatus: http.StatusBadRequest, wantBody: "OTP expired or invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := &mocks.MockAuthService{}
			if tt.svcErr != nil {
				authSvc.ConfirmRegistrationFunc = func(ctx context.Context, email, otp string) error {
					return tt.svcErr
				}
			}
			r := newTestRouter(authSvc, &mocks.MockUserRepository{})

			w := postJSON(r, "/auth/confirm-registration", tt.body)
			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{name: "invalid credentials", svcErr: domain.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantBody: "Invalid credentials"},
		{name: "inactive user", svcErr: domain.ErrUserInactive, wantStatus: http.StatusUnauthorized, wantBody: "User has been added as inactive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := &mocks.MockAuthService{
				LoginFunc: func(ctx context.Context, identifier, password string) (*domain.AuthResult, error) {
					return nil, tt.svcErr
				},
			}
			r := newTestRouter(authSvc, &mocks.MockUserRepository{})

			w := postJSON(r, "/auth/login", map[string]string{"identifier": "a@x.com", "password": "secret1"})
			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestLoginHandler_Success(t *testing.T) {
	authSvc := &mocks.MockAuthService{
		LoginFunc: func(ctx context.Context, identifier, password string) (*domain.AuthResult, error) {
			return &domain.AuthResult{
				User:         domain.PublicUser{ID: 7, Name: "Amy", Email: "a@x.com", Phone: "9876543210", Role: domain.RoleEmployee},
				AccessToken:  "access-token",
				RefreshToken: "refresh-token",
			}, nil
		},
	}
	r := newTestRouter(authSvc, &mocks.MockUserRepository{})

	w := postJSON(r, "/auth/login", map[string]string{"identifier": "a@x.com", "password": "secret1"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Message      string `json:"message"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Login successful", resp.Message)
	require.Equal(t, "access-token", resp.AccessToken)
	require.Equal(t, "refresh-token", resp.RefreshToken)
	require.Equal(t, uint(7), resp.User.ID)
	require.Equal(t, "a@x.com", resp.User.Email)
}

func TestForgotPasswordHandler(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{name: "success", wantStatus: http.StatusOK, wantBody: "OTP sent to email for password reset"},
		{name: "unknown user", svcErr: domain.ErrUserNotFound, wantStatus: http.StatusNotFound, wantBody: "User not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := &mocks.MockAuthService{}
			if tt.svcErr != nil {
				authSvc.ForgotPasswordFunc = func(ctx context.Context, email string) error { return tt.svcErr }
			}
			r := newTestRouter(authSvc, &mocks.MockUserRepository{})

			w := postJSON(r, "/auth/forgot-password", map[string]string{"email": "a@x.com"})
			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestVerifyForgotPasswordOTPHandler(t *testing.T) {
	authSvc := &mocks.MockAuthService{}
	r := newTestRouter(authSvc, &mocks.MockUserRepository{})

	w := postJSON(r, "/auth/verify-forgot-password-otp", map[string]string{"email": "a@x.com", "otp": "123456"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "OTP verified successfully")
}

func TestResendForgotPasswordOTPHandler(t *testing.T) {
	authSvc := &mocks.MockAuthService{}
	r := newTestRouter(authSvc, &mocks.MockUserRepository{})

	w := postJSON(r, "/auth/resend-forgot-password-otp", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "New OTP sent to email")
}

func TestResetPasswordHandler(t *testing.T) {
	validBody := map[string]string{"email": "a@x.com", "otp": "123456", "newPassword": "secret2"}

	tests := []struct {
		name       string
		body       interface{}
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{name: "success", body: validBody, wantStatus: http.StatusOK, wantBody: "Password reset successfully"},
		{name: "short password", body: map[string]string{"email": "a@x.com", "otp": "123456", "newPassword": "ab"}, wantStatus: http.StatusBadRequest, wantBody: "Invalid request body"},
		{name: "bad otp", body: validBody, svcErr: domain.ErrOTPInvalid, wantStatus: http.StatusBadRequest, wantBody: "OTP expired or invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := &mocks.MockAuthService{}
			if tt.svcErr != nil {
				authSvc.ResetPasswordFunc = func(ctx context.Context, email, otp, newPassword string) error {
					return tt.svcErr
				}
			}
			r := newTestRouter(authSvc, &mocks.MockUserRepository{})

			w := postJSON(r, "/auth/reset-password", tt.body)
			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRefreshAccessTokenHandler(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{name: "success", token: "good-token", wantStatus: http.StatusOK, wantBody: "Access token refreshed"},
		{name: "missing token", token: "", wantStatus: http.StatusBadRequest, wantBody: "Invalid request body"},
		{name: "unknown token", token: "bad-token", svcErr: domain.ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantBody: "Invalid refresh token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := &mocks.MockAuthService{
				RefreshAccessTokenFunc: func(ctx context.Context, refreshToken string) (string, error) {
					if tt.svcErr != nil {
						return "", tt.svcErr
					}
					return "new-access-token", nil
				},
			}
			r := newTestRouter(authSvc, &mocks.MockUserRepository{})

			w := postJSON(r, "/auth/refresh-token", map[string]string{"refreshToken": tt.token})
			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{name: "success", wantStatus: http.StatusOK, wantBody: "Logged out successfully"},
		{name: "unknown token", svcErr: domain.ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantBody: "Invalid refresh token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := &mocks.MockAuthService{}
			if tt.svcErr != nil {
				authSvc.LogoutFunc = func(ctx context.Context, refreshToken string) error { return tt.svcErr }
			}
			r := newTestRouter(authSvc, &mocks.MockUserRepository{})

			w := postJSON(r, "/auth/logout", map[string]string{"refreshToken": "token"})
			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRequestInvitationHandler(t *testing.T) {
	var sentTo string
	authSvc := &mocks.MockAuthService{
		RequestInvitationFunc: func(ctx context.Context, email string) error {
			sentTo = email
			return nil
		},
	}
	r := newTestRouter(authSvc, &mocks.MockUserRepository{})

	w := postJSON(r, "/auth/request-invitation", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Invitation request received")
	require.Equal(t, "a@x.com", sentTo)
}

func TestMeHandler(t *testing.T) {
	userRepo := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.User, error) {
			require.Equal(t, uint(7), id)
			return &domain.User{
				ID:       7,
				Name:     "Amy",
				Email:    "a@x.com",
				Phone:    "9876543210",
				Role:     domain.RoleEmployee,
				IsActive: true,
			}, nil
		},
	}
	r := newTestRouter(&mocks.MockAuthService{}, userRepo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"email":"a@x.com"`)
	require.NotContains(t, w.Body.String(), "password")
}
