package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/authsvc/internal/config"
	httpapi "github.com/you/authsvc/internal/http"
	"github.com/you/authsvc/internal/http/handlers"
	"github.com/you/authsvc/internal/http/middleware"
	"github.com/you/authsvc/internal/infrastructure/auth"
	"github.com/you/authsvc/internal/infrastructure/database"
	"github.com/you/authsvc/internal/infrastructure/notifications"
	"github.com/you/authsvc/internal/infrastructure/repositories"
	"github.com/you/authsvc/internal/services"
)

// Run wires every dependency together and serves HTTP until the process
// receives SIGINT or SIGTERM.
func Run(cfg *config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := database.Open(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database connected")

	redisClient := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("redis connected")

	mailer, err := notifications.NewSMTPMailer(notifications.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		Timeout:  cfg.SMTPTimeout,
		UseTLS:   cfg.SMTPUseTLS,
	})
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}

	userRepo := repositories.NewUserRepository(db)
	passwordSvc := auth.NewPasswordService(cfg.BcryptCost)
	tokenSvc := auth.NewJWTService(cfg.AccessSecret, cfg.RefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	otpSvc := services.NewOTPService(services.OTPConfig{Length: cfg.OTP_Length, TTL: cfg.OTP_TTL})
	authSvc := services.NewAuthService(userRepo, passwordSvc, tokenSvc, otpSvc, mailer)

	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo, logger, !cfg.IsProduction())
	authMW := middleware.NewAuthMW(tokenSvc)
	rateLimiter := middleware.NewRateLimiter(redisClient.Client, logger, cfg.RateLimitMax, cfg.RateLimitWindow)

	router := httpapi.BuildRouter(
		authHandlers,
		authMW,
		rateLimiter,
		middleware.RequestID(),
		middleware.RequestLogger(logger),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	_ = redisClient.Close()
	logger.Info("server stopped")
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
