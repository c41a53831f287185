package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/domain"
	"github.com/you/authsvc/internal/http/handlers"
	"github.com/you/authsvc/internal/http/middleware"
)

// BuildRouter assembles the HTTP routes. All /auth endpoints share the
// rate limiter; /auth/me and the admin routes additionally require a
// valid access token.
func BuildRouter(
	authHandlers *handlers.AuthHandlers,
	authMW *middleware.AuthMW,
	rateLimiter *middleware.RateLimiter,
	commonMW ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(commonMW...)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth", rateLimiter.Limit())
	{
		auth.POST("/signup", authHandlers.Signup)
		auth.POST("/confirm-registration", authHandlers.ConfirmRegistration)
		auth.POST("/login", authHandlers.Login)
		auth.POST("/forgot-password", authHandlers.ForgotPassword)
		auth.POST("/verify-forgot-password-otp", authHandlers.VerifyForgotPasswordOTP)
		auth.POST("/resend-forgot-password-otp", authHandlers.ResendForgotPasswordOTP)
		auth.POST("/reset-password", authHandlers.ResetPassword)
		auth.POST("/refresh-token", authHandlers.RefreshAccessToken)
		auth.POST("/refresh-access-token", authHandlers.RefreshAccessToken)
		auth.POST("/logout", authHandlers.Logout)
		auth.POST("/request-invitation", authHandlers.RequestInvitation)

		auth.GET("/me", authMW.WithJWT(), authHandlers.Me)
	}

	admin := r.Group("/admin", authMW.WithJWT(), authMW.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/users/:id", authHandlers.GetUser)
	}

	return r
}
