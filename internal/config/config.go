package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Backend BackendConfig
	Poll    PollConfig
	Canon   CanonConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT validation settings for the serving API.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds report archive storage settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BackendConfig holds settings for the upstream recognition/rule API.
type BackendConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	AuthTicket  string `mapstructure:"auth_ticket"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// PollConfig holds job polling settings. The interval and empty-result retry
// delay default to the values the upstream clients have always used (2000 ms
// and 3000 ms). The empty-retry bound is ours; the legacy loop was unbounded.
type PollConfig struct {
	IntervalMS      int `mapstructure:"interval_ms"`
	EmptyRetryMS    int `mapstructure:"empty_retry_ms"`
	MaxEmptyRetries int `mapstructure:"max_empty_retries"`
}

// Interval returns the poll interval as a duration.
func (p *PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// EmptyRetryDelay returns the empty-result retry delay as a duration.
func (p *PollConfig) EmptyRetryDelay() time.Duration {
	return time.Duration(p.EmptyRetryMS) * time.Millisecond
}

// CanonConfig holds URL canonicalization settings. Origin is the absolute
// origin (scheme included) that relative and protocol-relative references
// resolve against.
type CanonConfig struct {
	Origin        string   `mapstructure:"origin"`
	SchemePrefix  string   `mapstructure:"scheme_prefix"`
	ExtraPrefixes []string `mapstructure:"extra_prefixes"`
}

// Load reads configuration from environment variables with the REVIEWD_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REVIEWD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "reviewd")
	v.SetDefault("db.password", "reviewd_secret")
	v.SetDefault("db.name", "reviewd_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "reviewd")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "reviewd-reports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Upstream backend defaults
	v.SetDefault("backend.base_url", "http://localhost:9090")
	v.SetDefault("backend.auth_ticket", "")
	v.SetDefault("backend.timeout_secs", 30)

	// Poll defaults
	v.SetDefault("poll.interval_ms", 2000)
	v.SetDefault("poll.empty_retry_ms", 3000)
	v.SetDefault("poll.max_empty_retries", 5)

	// Canonicalizer defaults
	v.SetDefault("canon.origin", "https://localhost:8080")
	v.SetDefault("canon.scheme_prefix", "reviewapp://")
	v.SetDefault("canon.extra_prefixes", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":            "REVIEWD_SERVER_PORT",
		"server.read_timeout":    "REVIEWD_SERVER_READ_TIMEOUT",
		"server.write_timeout":   "REVIEWD_SERVER_WRITE_TIMEOUT",
		"server.environment":     "REVIEWD_SERVER_ENVIRONMENT",
		"db.host":                "REVIEWD_DB_HOST",
		"db.port":                "REVIEWD_DB_PORT",
		"db.user":                "REVIEWD_DB_USER",
		"db.password":            "REVIEWD_DB_PASSWORD",
		"db.name":                "REVIEWD_DB_NAME",
		"db.sslmode":             "REVIEWD_DB_SSLMODE",
		"db.max_open":            "REVIEWD_DB_MAX_OPEN",
		"db.max_idle":            "REVIEWD_DB_MAX_IDLE",
		"jwt.secret":             "REVIEWD_JWT_SECRET",
		"jwt.issuer":             "REVIEWD_JWT_ISSUER",
		"s3.region":              "REVIEWD_S3_REGION",
		"s3.bucket":              "REVIEWD_S3_BUCKET",
		"s3.endpoint":            "REVIEWD_S3_ENDPOINT",
		"s3.access_key":          "REVIEWD_S3_ACCESS_KEY",
		"s3.secret_key":          "REVIEWD_S3_SECRET_KEY",
		"s3.presign_expiry":      "REVIEWD_S3_PRESIGN_EXPIRY",
		"log.level":              "REVIEWD_LOG_LEVEL",
		"log.format":             "REVIEWD_LOG_FORMAT",
		"cors.allowed_origins":   "REVIEWD_CORS_ALLOWED_ORIGINS",
		"backend.base_url":       "REVIEWD_BACKEND_BASE_URL",
		"backend.auth_ticket":    "REVIEWD_BACKEND_AUTH_TICKET",
		"backend.timeout_secs":   "REVIEWD_BACKEND_TIMEOUT_SECS",
		"poll.interval_ms":       "REVIEWD_POLL_INTERVAL_MS",
		"poll.empty_retry_ms":    "REVIEWD_POLL_EMPTY_RETRY_MS",
		"poll.max_empty_retries": "REVIEWD_POLL_MAX_EMPTY_RETRIES",
		"canon.origin":           "REVIEWD_CANON_ORIGIN",
		"canon.scheme_prefix":    "REVIEWD_CANON_SCHEME_PREFIX",
		"canon.extra_prefixes":   "REVIEWD_CANON_EXTRA_PREFIXES",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if REVIEWD_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("REVIEWD_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitCommaList(v.GetString("cors.allowed_origins")),
	}
	cfg.Backend = BackendConfig{
		BaseURL:     v.GetString("backend.base_url"),
		AuthTicket:  v.GetString("backend.auth_ticket"),
		TimeoutSecs: v.GetInt("backend.timeout_secs"),
	}
	cfg.Poll = PollConfig{
		IntervalMS:      v.GetInt("poll.interval_ms"),
		EmptyRetryMS:    v.GetInt("poll.empty_retry_ms"),
		MaxEmptyRetries: v.GetInt("poll.max_empty_retries"),
	}
	cfg.Canon = CanonConfig{
		Origin:        v.GetString("canon.origin"),
		SchemePrefix:  v.GetString("canon.scheme_prefix"),
		ExtraPrefixes: splitCommaList(v.GetString("canon.extra_prefixes")),
	}

	return cfg, nil
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
