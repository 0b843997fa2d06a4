package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store and session drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"

	SessionDriverRedis  = "redis"
	SessionDriverMemory = "memory"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Store         StoreConfig
	Postgres      PostgresConfig
	SQLite        SQLiteConfig
	Redis         RedisConfig
	Logger        LoggerConfig
	Auth          AuthConfig
	Session       SessionConfig
	I18n          I18nConfig
	Observability ObservabilityConfig
	Notification  NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// HTTPConfig holds transport concerns outside the API itself.
type HTTPConfig struct {
	AllowedOrigins []string
	StaticDir      string
	BodyLimitBytes int
}

// StoreConfig selects the credential and session backends.
type StoreConfig struct {
	Driver        string
	SessionDriver string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// SQLiteConfig holds the gorm/sqlite database location.
type SQLiteConfig struct {
	Path string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	BcryptCost int
	// AdminSecretKey gates registration. Empty means unconfigured and any
	// registration attempt carrying a key fails closed.
	AdminSecretKey string
	AdminEmail     string
	AdminPassword  string
	AdminName      string
}

// SessionConfig defines session token and cookie parameters.
type SessionConfig struct {
	Secret       string
	TTLMinutes   int
	CookieName   string
	HeaderName   string
	CookieSecure bool
}

// I18nConfig controls locale negotiation.
type I18nConfig struct {
	CookieName    string
	DefaultLocale string
}

// ObservabilityConfig toggles metrics and tracing.
type ObservabilityConfig struct {
	MetricsEnabled bool
	OTLPEndpoint   string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	env := getEnv("APP_ENV", EnvDevelopment)

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "account-service"),
			Env:                   env,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8787"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		HTTP: HTTPConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8787"}),
			StaticDir:      os.Getenv("STATIC_DIR"),
			BodyLimitBytes: getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 1<<20),
		},
		Store: StoreConfig{
			Driver:        getEnv("STORE_DRIVER", StoreDriverPostgres),
			SessionDriver: getEnv("SESSION_DRIVER", SessionDriverRedis),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "data.db"),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "account-service:"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			BcryptCost:     getEnvAsInt("AUTH_BCRYPT_COST", 10),
			AdminSecretKey: os.Getenv("ADMIN_SECRET_KEY"),
			AdminEmail:     os.Getenv("ADMIN_EMAIL"),
			AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
			AdminName:      getEnv("ADMIN_NAME", "Admin"),
		},
		Session: SessionConfig{
			Secret:       os.Getenv("SESSION_SECRET"),
			TTLMinutes:   getEnvAsInt("SESSION_TTL_MINUTES", 24*60),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "session"),
			HeaderName:   getEnv("SESSION_HEADER_NAME", "X-Session-Token"),
			CookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", env == EnvProduction),
		},
		I18n: I18nConfig{
			CookieName:    getEnv("I18N_COOKIE_NAME", "i18nextLng"),
			DefaultLocale: getEnv("I18N_DEFAULT_LOCALE", "zh-CN"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if cfg.Session.Secret == "" && env == EnvDevelopment {
		cfg.Session.Secret = "dev-session-secret"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Session.Secret) == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres store driver"))
		}
	case StoreDriverSQLite, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}
	switch c.Store.SessionDriver {
	case SessionDriverRedis, SessionDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_DRIVER %q", c.Store.SessionDriver))
	}
	if c.Session.TTLMinutes <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_MINUTES must be positive"))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the service runs in production mode.
func (a AppConfig) IsProduction() bool {
	return a.Env == EnvProduction
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
