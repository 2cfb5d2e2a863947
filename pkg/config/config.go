package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gadaihub/backoffice/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Uploads       UploadsConfig
	OIDC          OIDCConfig
	Scheduler     SchedulerConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// RedisConfig holds Redis configuration for rate limiting
type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

// UploadsConfig holds S3 presigned upload configuration
type UploadsConfig struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	UsePathStyle   bool
	PresignExpiry  time.Duration
	MaxObjectBytes int64
}

// OIDCConfig holds single sign-on configuration
type OIDCConfig struct {
	Enabled      bool
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// SchedulerConfig holds cron schedules for background jobs
type SchedulerConfig struct {
	Enabled             bool
	SessionPurgeSpec    string
	StaleApprovalSpec   string
	StaleApprovalMaxAge time.Duration
	DBStatsSpec         string
	AuditRetention      time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Redis:         loadRedisConfig(),
		Uploads:       loadUploadsConfig(),
		OIDC:          loadOIDCConfig(),
		Scheduler:     loadSchedulerConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("BACKOFFICE_HOST", "0.0.0.0"),
		Port:            getEnv("BACKOFFICE_PORT", "8080"),
		ReadTimeout:     getEnvDuration("BACKOFFICE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("BACKOFFICE_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("BACKOFFICE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("BACKOFFICE_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("BACKOFFICE_HEALTH_PORT", "9090"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:             getEnv("BACKOFFICE_POSTGRES_URL", ""),
		MaxOpenConns:    getEnvInt("BACKOFFICE_POSTGRES_MAX_CONNS", 25),
		MaxIdleConns:    getEnvInt("BACKOFFICE_POSTGRES_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("BACKOFFICE_POSTGRES_CONN_LIFETIME", 30*time.Minute),
		ConnectTimeout:  getEnvDuration("BACKOFFICE_POSTGRES_TIMEOUT", 10*time.Second),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:      getEnv("BACKOFFICE_REDIS_URL", ""),
		Password: getEnv("BACKOFFICE_REDIS_PASSWORD", ""),
		DB:       getEnvInt("BACKOFFICE_REDIS_DB", 0),
		PoolSize: getEnvInt("BACKOFFICE_REDIS_POOL_SIZE", 10),
	}
}

func loadUploadsConfig() UploadsConfig {
	return UploadsConfig{
		Endpoint:       getEnv("BACKOFFICE_S3_ENDPOINT", ""),
		Region:         getEnv("BACKOFFICE_S3_REGION", "ap-southeast-1"),
		Bucket:         getEnv("BACKOFFICE_S3_BUCKET", ""),
		AccessKey:      getEnv("BACKOFFICE_S3_ACCESS_KEY", ""),
		SecretKey:      getEnv("BACKOFFICE_S3_SECRET_KEY", ""),
		UsePathStyle:   getEnvBool("BACKOFFICE_S3_USE_PATH_STYLE", false),
		PresignExpiry:  getEnvDuration("BACKOFFICE_S3_PRESIGN_EXPIRY", 15*time.Minute),
		MaxObjectBytes: getEnvInt64("BACKOFFICE_S3_MAX_OBJECT_BYTES", 10<<20),
	}
}

func loadOIDCConfig() OIDCConfig {
	return OIDCConfig{
		Enabled:      getEnvBool("BACKOFFICE_OIDC_ENABLED", false),
		IssuerURL:    getEnv("BACKOFFICE_OIDC_ISSUER_URL", ""),
		ClientID:     getEnv("BACKOFFICE_OIDC_CLIENT_ID", ""),
		ClientSecret: getEnv("BACKOFFICE_OIDC_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("BACKOFFICE_OIDC_REDIRECT_URL", ""),
	}
}

func loadSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:             getEnvBool("BACKOFFICE_SCHEDULER_ENABLED", true),
		SessionPurgeSpec:    getEnv("BACKOFFICE_SESSION_PURGE_SPEC", "@hourly"),
		StaleApprovalSpec:   getEnv("BACKOFFICE_STALE_APPROVAL_SPEC", "@daily"),
		StaleApprovalMaxAge: getEnvDuration("BACKOFFICE_STALE_APPROVAL_MAX_AGE", 14*24*time.Hour),
		DBStatsSpec:         getEnv("BACKOFFICE_DB_STATS_SPEC", "@every 30s"),
		AuditRetention:      getEnvDuration("BACKOFFICE_AUDIT_RETENTION", 90*24*time.Hour),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(strings.ToLower(getEnv("BACKOFFICE_LOG_LEVEL", "info"))),
		MetricsEnabled:     getEnvBool("BACKOFFICE_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("BACKOFFICE_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("BACKOFFICE_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("BACKOFFICE_OTEL_SERVICE_NAME", "backoffice"),
		OTelServiceVersion: getEnv("BACKOFFICE_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("BACKOFFICE_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}

	if c.Uploads.Bucket != "" && c.Uploads.Region == "" {
		return fmt.Errorf("S3 region is required when an upload bucket is configured")
	}

	if c.OIDC.Enabled {
		if c.OIDC.IssuerURL == "" {
			return fmt.Errorf("OIDC issuer URL is required when OIDC is enabled")
		}
		if c.OIDC.ClientID == "" || c.OIDC.ClientSecret == "" {
			return fmt.Errorf("OIDC client credentials are required when OIDC is enabled")
		}
		if c.OIDC.RedirectURL == "" {
			return fmt.Errorf("OIDC redirect URL is required when OIDC is enabled")
		}
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
