package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string     `koanf:"host"`
	Port           int        `koanf:"port"`
	Mode           string     `koanf:"mode"`
	Timeout        string     `koanf:"timeout"`
	TrustRequestID bool       `koanf:"trust_request_id"`
	CORS           CORSConfig `koanf:"cors"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// DatabaseConfig holds product store settings.
type DatabaseConfig struct {
	Driver      string         `koanf:"driver"`
	SQLite      SQLiteConfig   `koanf:"sqlite"`
	Postgres    PostgresConfig `koanf:"postgres"`
	Pool        PoolConfig     `koanf:"pool"`
	AutoMigrate bool           `koanf:"auto_migrate"`
	Seed        bool           `koanf:"seed"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// TelemetryConfig holds metrics settings and the identity attached to logs.
type TelemetryConfig struct {
	Enabled        bool   `koanf:"enabled"`
	ServiceName    string `koanf:"service_name"`
	ServiceVersion string `koanf:"service_version"`
	Environment    string `koanf:"environment"`
	Namespace      string `koanf:"namespace"`
	MetricsPath    string `koanf:"metrics_path"`
	PushURL        string `koanf:"push_url"`
	PushInterval   string `koanf:"push_interval"`
}

// PushEvery returns the parsed push interval. Validate must have succeeded.
func (t TelemetryConfig) PushEvery() time.Duration {
	d, _ := time.ParseDuration(t.PushInterval)
	return d
}

// LoadGenConfig holds settings for the traffic generator.
type LoadGenConfig struct {
	BaseURL        string  `koanf:"base_url"`
	Interval       string  `koanf:"interval"`
	CreateRatio    float64 `koanf:"create_ratio"`
	DeleteRatio    float64 `koanf:"delete_ratio"`
	RequestTimeout string  `koanf:"request_timeout"`
}

// Every returns the parsed tick interval. Validate must have succeeded.
func (l LoadGenConfig) Every() time.Duration {
	d, _ := time.ParseDuration(l.Interval)
	return d
}

// Timeout returns the parsed per-request timeout. Validate must have succeeded.
func (l LoadGenConfig) Timeout() time.Duration {
	d, _ := time.ParseDuration(l.RequestTimeout)
	return d
}

// GeneratorConfig is the configuration read by the traffic generator.
type GeneratorConfig struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	LoadGen   LoadGenConfig   `koanf:"loadgen"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__DATABASE__POOL__MAX_IDLE_CONNS=20 overrides database.pool.max_idle_conns.
//
// Each existing envFile is read with godotenv before the environment overlay;
// variables already present in the process environment win.
func Load(configPath string, envFiles ...string) (*Config, error) {
	k, err := load(configPath, envFiles)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadGenerator reads the same sources as Load but only decodes and validates
// the log, telemetry and loadgen sections.
func LoadGenerator(configPath string, envFiles ...string) (*GeneratorConfig, error) {
	k, err := load(configPath, envFiles)
	if err != nil {
		return nil, err
	}

	var cfg GeneratorConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func load(configPath string, envFiles []string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	// Load YAML config file.
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	// Overlay environment variables with prefix APP__.
	// APP__SERVER__PORT -> server.port
	// APP__DATABASE__POOL__MAX_IDLE_CONNS -> database.pool.max_idle_conns
	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	return k, nil
}

// loadEnvFiles exports the variables of every env file that exists.
func loadEnvFiles(paths []string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks cross-field constraints and supported values.
func (c *Config) Validate() error {
	// Validate server.mode.
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	// Validate server.port range.
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	// Validate server.host.
	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	if err := c.Database.validate(c.Server.Mode); err != nil {
		return err
	}

	// Normalize optional duration fields: whitespace-only means unset.
	c.Server.Timeout = strings.TrimSpace(c.Server.Timeout)
	c.Server.CORS.MaxAge = strings.TrimSpace(c.Server.CORS.MaxAge)

	// Validate server.timeout (optional; must be a valid Go duration if set).
	if err := validateOptionalDuration("server.timeout", c.Server.Timeout); err != nil {
		return err
	}

	// Validate server.cors.max_age (optional; must be a valid Go duration if set).
	if ma := c.Server.CORS.MaxAge; ma != "" {
		d, err := time.ParseDuration(ma)
		if err != nil {
			return fmt.Errorf("invalid server.cors.max_age %q: must be a valid duration (e.g. \"24h\", \"3600s\"): %w", c.Server.CORS.MaxAge, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid server.cors.max_age %q: must be greater than 0", c.Server.CORS.MaxAge)
		}
	}

	if err := c.Telemetry.validate(); err != nil {
		return err
	}

	return c.Log.validate()
}

func (d *DatabaseConfig) validate(serverMode string) error {
	// Validate database.driver.
	d.Driver = strings.TrimSpace(d.Driver)
	switch d.Driver {
	case DriverSQLite, DriverPostgres, DriverMemory:
		// ok
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q, %q", d.Driver, DriverSQLite, DriverPostgres, DriverMemory)
	}

	if d.Driver == DriverSQLite {
		sqlitePath := strings.TrimSpace(d.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		d.SQLite.Path = sqlitePath
	}

	// When driver is postgres, required connection fields must be valid.
	if d.Driver == DriverPostgres {
		host := strings.TrimSpace(d.Postgres.Host)
		if host == "" {
			return fmt.Errorf("database.postgres.host is required when driver is postgres")
		}
		if d.Postgres.Port < 1 || d.Postgres.Port > 65535 {
			return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", d.Postgres.Port)
		}
		user := strings.TrimSpace(d.Postgres.User)
		if user == "" {
			return fmt.Errorf("database.postgres.user is required when driver is postgres")
		}
		dbName := strings.TrimSpace(d.Postgres.DBName)
		if dbName == "" {
			return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
		}
		sslMode := strings.TrimSpace(d.Postgres.SSLMode)

		switch sslMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
			// ok
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", d.Postgres.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
		}
		if serverMode == gin.ReleaseMode {
			switch sslMode {
			case "require", "verify-ca", "verify-full":
				// ok
			default:
				return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", d.Postgres.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
			}
		}

		d.Postgres.Host = host
		d.Postgres.User = user
		d.Postgres.DBName = dbName
		d.Postgres.SSLMode = sslMode
	}

	// Validate database.pool.conn_max_lifetime (optional; must be positive if set).
	d.Pool.ConnMaxLifetime = strings.TrimSpace(d.Pool.ConnMaxLifetime)
	return validateOptionalDuration("database.pool.conn_max_lifetime", d.Pool.ConnMaxLifetime)
}

// Validate checks the log, telemetry and loadgen sections and fills their defaults.
func (g *GeneratorConfig) Validate() error {
	if err := g.Log.validate(); err != nil {
		return err
	}
	if err := g.Telemetry.validate(); err != nil {
		return err
	}
	return g.LoadGen.validate()
}

func (t *TelemetryConfig) validate() error {
	t.ServiceName = strings.TrimSpace(t.ServiceName)
	if t.ServiceName == "" {
		t.ServiceName = "product-service"
	}
	t.ServiceVersion = strings.TrimSpace(t.ServiceVersion)
	if t.ServiceVersion == "" {
		t.ServiceVersion = "1.0.0"
	}
	t.Environment = strings.TrimSpace(t.Environment)
	if t.Environment == "" {
		t.Environment = "development"
	}

	t.MetricsPath = strings.TrimSpace(t.MetricsPath)
	if t.MetricsPath == "" {
		t.MetricsPath = "/metrics"
	}
	if !strings.HasPrefix(t.MetricsPath, "/") {
		return fmt.Errorf("invalid telemetry.metrics_path %q: must start with '/'", t.MetricsPath)
	}

	t.PushURL = strings.TrimSpace(t.PushURL)
	if t.PushURL != "" {
		u, err := url.Parse(t.PushURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid telemetry.push_url %q: must be an absolute URL", t.PushURL)
		}
	}

	t.PushInterval = strings.TrimSpace(t.PushInterval)
	if t.PushInterval == "" {
		t.PushInterval = "15s"
	}
	return validateRequiredDuration("telemetry.push_interval", t.PushInterval)
}

func (l *LoadGenConfig) validate() error {
	l.BaseURL = strings.TrimRight(strings.TrimSpace(l.BaseURL), "/")
	if l.BaseURL == "" {
		return fmt.Errorf("loadgen.base_url is required")
	}
	u, err := url.Parse(l.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid loadgen.base_url %q: must be an http or https URL", l.BaseURL)
	}

	l.Interval = strings.TrimSpace(l.Interval)
	if l.Interval == "" {
		l.Interval = "10s"
	}
	if err := validateRequiredDuration("loadgen.interval", l.Interval); err != nil {
		return err
	}

	l.RequestTimeout = strings.TrimSpace(l.RequestTimeout)
	if l.RequestTimeout == "" {
		l.RequestTimeout = "5s"
	}
	if err := validateRequiredDuration("loadgen.request_timeout", l.RequestTimeout); err != nil {
		return err
	}

	if l.CreateRatio < 0 || l.CreateRatio > 1 {
		return fmt.Errorf("invalid loadgen.create_ratio %v: must be between 0 and 1", l.CreateRatio)
	}
	if l.DeleteRatio < 0 || l.DeleteRatio > 1 {
		return fmt.Errorf("invalid loadgen.delete_ratio %v: must be between 0 and 1", l.DeleteRatio)
	}
	return nil
}

func (l *LogConfig) validate() error {
	// Validate log.level.
	level := strings.ToLower(strings.TrimSpace(l.Level))
	switch level {
	case "debug", "info", "warn", "error":
		l.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", l.Level, "debug", "info", "warn", "error")
	}

	// Validate log.format.
	format := strings.ToLower(strings.TrimSpace(l.Format))
	switch format {
	case "text", "json":
		l.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", l.Format, "text", "json")
	}

	return nil
}

func validateOptionalDuration(name, value string) error {
	if value == "" {
		return nil
	}
	return validateRequiredDuration(name, value)
}

func validateRequiredDuration(name, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, value)
	}
	return nil
}
