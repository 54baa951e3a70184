package app

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/hackreg/pkg/httpx"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env       string `env:"ENV"        envDefault:"dev"`  // dev, staging, prod
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"` // debug, info, warn, error
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json, text
	Port      int    `env:"PORT"       envDefault:"8080"`

	DatabaseFile string `env:"REG_DATABASE_FILE" envDefault:"registration.db"`
	PepperFile   string `env:"REG_PEPPER_FILE"   envDefault:"pepper"`

	// Empty secrets are replaced by random ones at startup.
	AuthSecret    string `env:"REG_AUTH_SECRET"`
	EmailSecret   string `env:"REG_EMAIL_SECRET"`
	ResetSecret   string `env:"REG_RESET_SECRET"`
	DiscordSecret string `env:"REG_DISCORD_SECRET"`

	// Zero leaves auth and email tokens valid until the secret changes.
	AuthTokenTTL  time.Duration `env:"REG_AUTH_TOKEN_TTL"`
	EmailTokenTTL time.Duration `env:"REG_EMAIL_TOKEN_TTL"`
	ResetTokenTTL time.Duration `env:"REG_RESET_TOKEN_TTL" envDefault:"60m"`

	TeamMaxSize    int    `env:"REG_TEAM_MAX_SIZE"   envDefault:"4"`
	WalkInPassword string `env:"REG_WALKIN_PASSWORD"`

	// Seeded as the first admin when the database has no users.
	AdminEmail    string `env:"REG_ADMIN_EMAIL"`
	AdminPassword string `env:"REG_ADMIN_PASSWORD"`

	// Base of links placed in emails.
	PublicURL string `env:"REG_PUBLIC_URL" envDefault:"http://localhost:3000"`

	// Resumes are kept in memory when no bucket is configured.
	S3Bucket    string `env:"REG_S3_BUCKET"`
	S3Region    string `env:"REG_S3_REGION"     envDefault:"us-east-1"`
	S3Endpoint  string `env:"REG_S3_ENDPOINT"`
	S3AccessKey string `env:"REG_S3_ACCESS_KEY"`
	S3SecretKey string `env:"REG_S3_SECRET_KEY"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1m"`

	RateLimits httpx.Limits `envPrefix:"RATELIMIT_"`
}

// LoadConfig reads the environment. Rate-limit profiles start from
// httpx.DefaultLimits and only the variables that are set override them.
func LoadConfig() (Config, error) {
	cfg := Config{RateLimits: httpx.DefaultLimits()}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TeamMaxSize < 1 {
		return Config{}, fmt.Errorf("REG_TEAM_MAX_SIZE must be at least 1, got %d", cfg.TeamMaxSize)
	}
	return cfg, nil
}
