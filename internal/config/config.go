package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/DevLab-Dome/kross-dashboard-2026/internal/errors"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/storage"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig      `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig    `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Storage    StorageConfig     `yaml:"storage" envconfig:"STORAGE"`
	Cache      CacheConfig       `yaml:"cache" envconfig:"CACHE"`
	Telemetry  TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
	Schema     SchemaConfig      `yaml:"schema" envconfig:"SCHEMA"`
	Properties []domain.Property `yaml:"properties" ignored:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// StorageConfig selects the object store holding the snapshot folders
type StorageConfig struct {
	Backend         string `yaml:"backend" envconfig:"BACKEND"`
	Root            string `yaml:"root" envconfig:"ROOT"`
	Bucket          string `yaml:"bucket" envconfig:"BUCKET"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	Endpoint        string `yaml:"endpoint" envconfig:"ENDPOINT"`
}

// Options converts the section into storage.Open options
func (s StorageConfig) Options() storage.Options {
	return storage.Options{
		Backend:         s.Backend,
		Root:            s.Root,
		Bucket:          s.Bucket,
		CredentialsFile: s.CredentialsFile,
		Endpoint:        s.Endpoint,
	}
}

// CacheConfig configures the consolidated dataset cache
type CacheConfig struct {
	Backend         string        `yaml:"backend" envconfig:"BACKEND"`
	TTL             time.Duration `yaml:"ttl" envconfig:"TTL"`
	MaxEntries      int           `yaml:"max_entries" envconfig:"MAX_ENTRIES"`
	JanitorInterval time.Duration `yaml:"janitor_interval" envconfig:"JANITOR_INTERVAL"`
	RedisAddr       string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword   string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `yaml:"redis_db" envconfig:"REDIS_DB"`
	KeyPrefix       string        `yaml:"key_prefix" envconfig:"KEY_PREFIX"`
}

// TelemetryConfig configures tracing and metrics
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// SchemaConfig points at an optional alias table overriding the embedded one
type SchemaConfig struct {
	AliasFile string `yaml:"alias_file" envconfig:"ALIAS_FILE"`
}

// Load reads the first config file found in the default locations, then the environment
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile reads path (skipped when empty), then the environment. A missing
// explicit path is an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewConfigError("failed to read config file", err).WithContext("path", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to parse config file", err).WithContext("path", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}
	return cfg, nil
}

// Registry builds the property registry from the configured list
func (c *Config) Registry() (*PropertyRegistry, error) {
	return NewPropertyRegistry(c.Properties)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache backend redis requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "", "filesystem", "fs", "memory":
	case "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage backend gcs requires a bucket")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if _, err := NewPropertyRegistry(c.Properties); err != nil {
		return err
	}
	return nil
}

func findConfigFile() string {
	for _, location := range configFileLocations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8501", "http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Storage: StorageConfig{
			Backend: "filesystem",
			Root:    DefaultDataRoot,
		},
		Cache: CacheConfig{
			Backend:         "memory",
			TTL:             DefaultCacheTTL,
			MaxEntries:      DefaultCacheEntries,
			JanitorInterval: 5 * time.Minute,
			KeyPrefix:       "kross:",
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			EnableTracing:  false,
			EnableMetrics:  true,
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Properties: DefaultProperties(),
	}
}
