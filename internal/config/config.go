package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string
	Timezone           string

	AnalyticsCacheTTL time.Duration
	SubmitDelay       time.Duration
	SeedTransactions  int
	SeedDays          int
	SeedRandom        uint64
	ReportCron        string

	RateLimitSubmitPerMinute int
	IdempotencyTTL           time.Duration
	BodyLimitBytes           int64
	ShutdownTimeout          time.Duration

	Obs ObsConfig

	location *time.Location
}

// ObsConfig groups logging, metrics and tracing settings.
type ObsConfig struct {
	ServiceName        string
	LogFormat          string
	LogLevel           string
	MetricsEnabled     bool
	MetricsNamespace   string
	MetricsBuckets     string
	TracingEnabled     bool
	TracingExporter    string
	TracingEndpoint    string
	TracingSampleRatio float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		Timezone:           valueOrDefault(k.String("TIMEZONE"), "Asia/Kolkata"),

		AnalyticsCacheTTL: parseDuration(k.String("ANALYTICS_CACHE_TTL"), "5m"),
		SubmitDelay:       parseDuration(k.String("BILLING_SUBMIT_DELAY"), "0s"),
		SeedTransactions:  parseInt(k.String("SEED_TRANSACTIONS"), 50),
		SeedDays:          parseInt(k.String("SEED_DAYS"), 30),
		SeedRandom:        parseUint(k.String("SEED_RANDOM"), 0),
		ReportCron:        cronOrDefault(k, "REPORT_CRON", "0 21 * * *"),

		RateLimitSubmitPerMinute: parseInt(k.String("RATE_LIMIT_SUBMIT_PER_MINUTE"), 30),
		IdempotencyTTL:           parseDuration(k.String("IDEMPOTENCY_TTL"), "10m"),
		BodyLimitBytes:           int64(parseInt(k.String("BODY_LIMIT_BYTES"), 64<<10)),
		ShutdownTimeout:          parseDuration(k.String("SHUTDOWN_TIMEOUT"), "10s"),

		Obs: ObsConfig{
			ServiceName:        valueOrDefault(k.String("OBS_SERVICE_NAME"), "barber-billing"),
			LogFormat:          valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:           valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsEnabled:     parseBoolDefault(k.String("OBS_METRICS_ENABLED"), true),
			MetricsNamespace:   valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "barber"),
			MetricsBuckets:     k.String("OBS_METRICS_BUCKETS_MS"),
			TracingEnabled:     parseBoolDefault(k.String("OBS_TRACING_ENABLED"), false),
			TracingExporter:    valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
			TracingEndpoint:    strings.TrimSpace(k.String("OBS_TRACING_ENDPOINT")),
			TracingSampleRatio: parseFloat(k.String("OBS_TRACING_SAMPLE_RATIO"), 1),
		},
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.location = loc

	var errs []error
	if cfg.SubmitDelay < 0 {
		errs = append(errs, errors.New("BILLING_SUBMIT_DELAY must not be negative"))
	}
	if cfg.SeedTransactions < 0 {
		errs = append(errs, errors.New("SEED_TRANSACTIONS must not be negative"))
	}
	if cfg.SeedDays <= 0 {
		errs = append(errs, errors.New("SEED_DAYS must be positive"))
	}
	if cfg.BodyLimitBytes <= 0 {
		errs = append(errs, errors.New("BODY_LIMIT_BYTES must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location returns the shop's time zone used for calendar periods.
func (c *Config) Location() *time.Location {
	if c == nil || c.location == nil {
		return time.Local
	}
	return c.location
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

// cronOrDefault returns the schedule for key. "off" or "none" disables the job.
func cronOrDefault(k *koanf.Koanf, key, fallback string) string {
	v := strings.TrimSpace(k.String(key))
	switch strings.ToLower(v) {
	case "":
		return fallback
	case "off", "none", "disabled":
		return ""
	default:
		return v
	}
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}

func parseUint(value string, fallback uint64) uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseFloat(value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
// An empty value unsets the variable for the duration of the load.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]*string, len(env))
	for key := range env {
		if prev, ok := os.LookupEnv(key); ok {
			original[key] = &prev
		} else {
			original[key] = nil
		}
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]*string) error {
	var errs []string
	for key, value := range values {
		var err error
		if value == nil {
			err = os.Unsetenv(key)
		} else {
			err = os.Setenv(key, *value)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
