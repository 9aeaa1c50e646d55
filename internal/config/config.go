package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const minJWTSecretLength = 32

type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	DBPath   string `env:"DB_PATH" envDefault:"file:numguess.db"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
	// LogFormat is "console" or "json".
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	LogColors bool   `env:"LOG_COLORS" envDefault:"true"`

	JWTSecret       string        `env:"JWT_SECRET" envDefault:"numguess-development-secret-change-me"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"numguess"`
	JWTAudience     string        `env:"JWT_AUDIENCE" envDefault:"numguess-api"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"60m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10"`

	StatsReconcileInterval time.Duration `env:"STATS_RECONCILE_INTERVAL" envDefault:"5m"`
	StatsReconcileRetry    time.Duration `env:"STATS_RECONCILE_RETRY" envDefault:"1m"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing. A value that fails to parse is
// logged and left zero, which Validate then rejects.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Printf("invalid environment configuration: %v", err)
	}
	return cfg
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat))
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength))
	}
	if c.JWTIssuer == "" {
		errs = append(errs, errors.New("JWT_ISSUER cannot be empty"))
	}
	if c.JWTAudience == "" {
		errs = append(errs, errors.New("JWT_AUDIENCE cannot be empty"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		errs = append(errs, errors.New("REFRESH_TOKEN_TTL must be longer than ACCESS_TOKEN_TTL"))
	}
	// bcrypt accepts costs 4 through 31.
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}
	if c.StatsReconcileInterval <= 0 {
		errs = append(errs, errors.New("STATS_RECONCILE_INTERVAL must be positive"))
	}
	if c.StatsReconcileRetry <= 0 {
		errs = append(errs, errors.New("STATS_RECONCILE_RETRY must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
