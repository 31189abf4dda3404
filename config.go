package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bidding-service/database"
	aws_pkg "bidding-service/pkg/aws"
	"bidding-service/services"

	"github.com/joho/godotenv"
)

// Secret names read when AWS_USE_SECRETS=true.
const (
	dbCredentialsSecret = "bidding/DB_CREDENTIALS"
	jwtSecretName       = "bidding/JWT_SECRET"
)

// Config holds all configuration for the bidding service.
type Config struct {
	Env  string
	Port string

	Postgres database.PostgresConfig
	RedisURL string

	BiddingSNSTopicARN string
	SMSEnabled         bool
	SMSSenderID        string
	CloudWatchEnabled  bool
	MetricsNamespace   string

	JWTSecret string
	JWTTTL    time.Duration
	OTPTTL    time.Duration

	RepostWindow          time.Duration
	ImplicitSessionWindow time.Duration
	EnforceExpiry         bool
	RepostClearsBids      bool

	AllowedOrigins []string
	RequestTimeout time.Duration
	BidRatePerMin  int
	BidRateBurst   int
}

// Settings returns the bidding rules for the services.
func (c *Config) Settings() services.Settings {
	s := services.DefaultSettings()
	s.RepostWindow = c.RepostWindow
	s.ImplicitSessionWindow = c.ImplicitSessionWindow
	s.EnforceExpiry = c.EnforceExpiry
	s.RepostClearsBids = c.RepostClearsBids
	return s
}

// LoadConfig reads configuration from the environment (and a .env file when
// present) with optional Secrets Manager override.
func LoadConfig(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := configFromEnv()
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("secrets requested but AWS config unavailable: %w", err)
		}
		applySecrets(ctx, cfg, aws_pkg.NewSecretsClient(awsCfg))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configFromEnv() (*Config, error) {
	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8095"),
		Postgres: database.PostgresConfig{
			User:            os.Getenv("POSTGRES_USER"),
			Password:        os.Getenv("POSTGRES_PASSWORD"),
			DBName:          os.Getenv("POSTGRES_DB"),
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone:        getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		BiddingSNSTopicARN: os.Getenv("BIDDING_SNS_TOPIC_ARN"),
		SMSEnabled:         os.Getenv("SMS_ENABLED") == "true",
		SMSSenderID:        os.Getenv("SMS_SENDER_ID"),
		CloudWatchEnabled:  os.Getenv("CLOUDWATCH_ENABLED") == "true",
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", "Bidding"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		EnforceExpiry:      os.Getenv("ENFORCE_EXPIRY") == "true",
		RepostClearsBids:   os.Getenv("REPOST_CLEARS_BIDS") == "true",
		AllowedOrigins:     splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"JWT_TTL", "720h", &cfg.JWTTTL},
		{"OTP_TTL", "5m", &cfg.OTPTTL},
		{"REPOST_WINDOW", "30m", &cfg.RepostWindow},
		{"IMPLICIT_SESSION_WINDOW", "24h", &cfg.ImplicitSessionWindow},
		{"REQUEST_TIMEOUT", "30s", &cfg.RequestTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	ints := []struct {
		key      string
		fallback string
		dst      *int
	}{
		{"BID_RATE_PER_MIN", "30", &cfg.BidRatePerMin},
		{"BID_RATE_BURST", "10", &cfg.BidRateBurst},
	}
	for _, n := range ints {
		v, err := strconv.Atoi(getEnv(n.key, n.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", n.key, err)
		}
		*n.dst = v
	}

	return cfg, nil
}

// applySecrets overrides DB credentials and the JWT secret. Missing secrets
// leave the environment values in place.
func applySecrets(ctx context.Context, cfg *Config, sm aws_pkg.SecretGetter) {
	if m, err := aws_pkg.GetSecretJSON(ctx, sm, dbCredentialsSecret); err == nil {
		if v, ok := m["POSTGRES_USER"]; ok && v != "" {
			cfg.Postgres.User = v
		}
		if v, ok := m["POSTGRES_PASSWORD"]; ok && v != "" {
			cfg.Postgres.Password = v
		}
		if v, ok := m["POSTGRES_DB"]; ok && v != "" {
			cfg.Postgres.DBName = v
		}
		if v, ok := m["POSTGRES_HOST"]; ok && v != "" {
			cfg.Postgres.Host = v
		}
		if v, ok := m["POSTGRES_PORT"]; ok && v != "" {
			cfg.Postgres.Port = v
		}
	}
	if v, err := sm.GetSecret(ctx, jwtSecretName); err == nil && v != "" {
		cfg.JWTSecret = v
	}
}

func (c *Config) validate() error {
	if c.Postgres.User == "" || c.Postgres.Password == "" || c.Postgres.DBName == "" || c.Postgres.Host == "" {
		return fmt.Errorf("database config incomplete")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET not set")
	}
	if c.RepostWindow <= 0 || c.ImplicitSessionWindow <= 0 || c.OTPTTL <= 0 || c.JWTTTL <= 0 {
		return fmt.Errorf("durations must be positive")
	}
	if c.BidRatePerMin <= 0 || c.BidRateBurst <= 0 {
		return fmt.Errorf("bid rate limit must be positive")
	}
	return nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(o), "/")); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
