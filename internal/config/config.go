package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// minimum length accepted for token signing secrets
const minSecretLen = 10

type AppConfig struct {
	Port        int    `yaml:"port"`
	GinMode     string `yaml:"gin_mode"`
	Environment string `yaml:"environment"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	AccessSecret  string `yaml:"access_secret"`
	RefreshSecret string `yaml:"refresh_secret"`
	Issuer        string `yaml:"issuer"`
	AccessTTL     string `yaml:"access_ttl"`
	RefreshTTL    string `yaml:"refresh_ttl"`
}

type OTPConfig struct {
	TTL    string `yaml:"ttl"`
	Length int    `yaml:"length"`
}

type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
	Timeout  string `yaml:"timeout"`
	UseTLS   bool   `yaml:"use_tls"`
}

type RateLimitConfig struct {
	Max    int    `yaml:"max"`
	Window string `yaml:"window"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	OTP       OTPConfig       `yaml:"otp"`
	Password  PasswordConfig  `yaml:"password"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Config is the immutable process-wide configuration, loaded once at startup.
// Secrets are never logged.
type Config struct {
	Port        string
	GinMode     string
	Environment string

	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccessSecret  string
	RefreshSecret string
	JWTIssuer     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	OTP_TTL    time.Duration
	OTP_Length int

	BcryptCost int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTimeout  time.Duration
	SMTPUseTLS   bool

	RateLimitMax    int
	RateLimitWindow time.Duration
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the YAML config file at path, applies environment overrides for
// secrets and fails fast on anything missing or malformed.
func Load(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := parseDuration(configFile.JWT.AccessTTL, 3*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	refTTL, err := parseDuration(configFile.JWT.RefreshTTL, 15*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}

	otpTTL, err := parseDuration(configFile.OTP.TTL, 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	smtpTimeout, err := parseDuration(configFile.SMTP.Timeout, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP timeout: %w", err)
	}

	rateWindow, err := parseDuration(configFile.RateLimit.Window, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit window: %w", err)
	}

	otpLength := configFile.OTP.Length
	if otpLength == 0 {
		otpLength = 6
	}

	rateMax := configFile.RateLimit.Max
	if rateMax == 0 {
		rateMax = 20
	}

	cfg := &Config{
		Port:            env("PORT", fmt.Sprintf("%d", configFile.App.Port)),
		GinMode:         configFile.App.GinMode,
		Environment:     env("ENVIRONMENT", configFile.App.Environment),
		DSN:             env("DATABASE_URL", configFile.Database.DSN),
		RedisAddr:       configFile.Redis.Addr,
		RedisPassword:   configFile.Redis.Password,
		RedisDB:         configFile.Redis.DB,
		AccessSecret:    env("ACCESS_SECRET_KEY", configFile.JWT.AccessSecret),
		RefreshSecret:   env("REFRESH_SECRET_KEY", configFile.JWT.RefreshSecret),
		JWTIssuer:       configFile.JWT.Issuer,
		AccessTTL:       accTTL,
		RefreshTTL:      refTTL,
		OTP_TTL:         otpTTL,
		OTP_Length:      otpLength,
		BcryptCost:      configFile.Password.BcryptCost,
		SMTPHost:        env("EMAIL_HOST", configFile.SMTP.Host),
		SMTPPort:        configFile.SMTP.Port,
		SMTPUsername:    env("EMAIL_USERNAME", configFile.SMTP.Username),
		SMTPPassword:    env("EMAIL_PASSWORD", configFile.SMTP.Password),
		SMTPFrom:        configFile.SMTP.From,
		SMTPFromName:    configFile.SMTP.FromName,
		SMTPTimeout:     smtpTimeout,
		SMTPUseTLS:      configFile.SMTP.UseTLS,
		RateLimitMax:    rateMax,
		RateLimitWindow: rateWindow,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.AccessSecret) < minSecretLen {
		return fmt.Errorf("access secret must be at least %d characters", minSecretLen)
	}
	if len(c.RefreshSecret) < minSecretLen {
		return fmt.Errorf("refresh secret must be at least %d characters", minSecretLen)
	}
	if c.AccessSecret == c.RefreshSecret {
		return fmt.Errorf("access and refresh secrets must differ")
	}
	if c.SMTPHost == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.SMTPPort == 0 {
		return fmt.Errorf("smtp port is required")
	}
	if c.Port == "" || c.Port == "0" {
		return fmt.Errorf("listening port is required")
	}
	switch c.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode. Internal
// error detail is only surfaced to clients when this is false.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
