package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"analytics-service/deferred"
	aws_pkg "analytics-service/pkg/aws"
	"analytics-service/sink"

	"github.com/joho/godotenv"
)

const secretName = "analytics/SERVICE_SECRETS"

// Config holds all configuration for the analytics service.
type Config struct {
	Env         string
	Port        string
	ServiceName string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL string

	DeferredStore deferred.Mode
	DeferredTTL   time.Duration
	CookiePrefix  string
	CookieDomain  string
	CookieSecure  bool
	CookieSecret  string
	VisitorCookie string

	SingularLabel string
	UseSKUs       bool

	SinkType     sink.Type
	KafkaBrokers []string
	KafkaTopic   string
	SNSTopicARN  string

	AllowedOrigins     []string
	RateLimitPerMinute int
	RateLimitBurst     int

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string
}

// Load reads configuration from the environment (and a .env file when
// present), with an optional Secrets Manager override.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		if err := applySecrets(ctx, cfg, aws_pkg.NewSecretsClient(awsCfg)); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	mode, err := deferred.ParseMode(os.Getenv("DEFERRED_STORE"))
	if err != nil {
		return nil, err
	}
	sinkType, err := sink.ParseType(os.Getenv("ANALYTICS_SINK"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8095"),
		ServiceName: getEnv("SERVICE_NAME", "analytics-service"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),

		RedisURL: getEnv("REDIS_URL", "redis://redis:6379"),

		DeferredStore: mode,
		DeferredTTL:   getEnvDuration("DEFERRED_TTL", deferred.DefaultTTL),
		CookiePrefix:  getEnv("DEFERRED_COOKIE_PREFIX", "edd_"),
		CookieDomain:  os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:  getEnvBool("COOKIE_SECURE", true),
		CookieSecret:  os.Getenv("ANALYTICS_COOKIE_SECRET"),
		VisitorCookie: getEnv("VISITOR_COOKIE", "analytics_visitor"),

		SingularLabel: getEnv("LABEL_SINGULAR", "Download"),
		UseSKUs:       getEnvBool("USE_SKUS", false),

		SinkType:     sinkType,
		KafkaBrokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "analytics.events"),
		SNSTopicARN:  os.Getenv("ANALYTICS_SNS_TOPIC_ARN"),

		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 300),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 50),

		CloudWatchEnabled:   getEnvBool("CLOUDWATCH_ENABLED", false),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "Analytics"),
		CloudWatchLogGroup:  os.Getenv("CLOUDWATCH_LOG_GROUP"),
	}, nil
}

// applySecrets overrides credentials with the JSON secret document, if any.
func applySecrets(ctx context.Context, cfg *Config, sm aws_pkg.SecretGetter) error {
	raw, err := sm.GetSecret(ctx, secretName)
	if err != nil {
		return err
	}

	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return fmt.Errorf("decode secret %s: %w", secretName, err)
	}

	for key, dst := range map[string]*string{
		"ANALYTICS_COOKIE_SECRET": &cfg.CookieSecret,
		"POSTGRES_USER":           &cfg.PostgresUser,
		"POSTGRES_PASSWORD":       &cfg.PostgresPassword,
		"POSTGRES_DB":             &cfg.PostgresDB,
		"POSTGRES_HOST":           &cfg.PostgresHost,
	} {
		if v := m[key]; v != "" {
			*dst = v
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.PostgresUser == "" || c.PostgresPassword == "" || c.PostgresDB == "" {
		return fmt.Errorf("database config incomplete")
	}
	if c.DeferredStore == deferred.ModeCookie && len(c.CookieSecret) < 32 {
		return fmt.Errorf("ANALYTICS_COOKIE_SECRET must be at least 32 bytes for cookie mode")
	}
	if c.SinkType == sink.TypeSNS && c.SNSTopicARN == "" {
		return fmt.Errorf("ANALYTICS_SNS_TOPIC_ARN is required for the sns sink")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// PostgresDSN returns the connection string for gorm's postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
