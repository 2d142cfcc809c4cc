// Package config provides configuration management for the literature search
// service. Values come from defaults, an optional YAML file, and environment
// variables prefixed with LITSEARCH, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the literature search service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// PaperSources contains the external source API settings.
	PaperSources PaperSourcesConfig `mapstructure:"paper_sources"`
	// Search contains aggregation pipeline settings.
	Search SearchConfig `mapstructure:"search"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// Host is the address to bind to.
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port.
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading the request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPAddress returns the host:port string for the HTTP server.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for the metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes all metric names.
	Namespace string `mapstructure:"namespace"`
}

// PaperSourcesConfig holds configuration for every external source.
type PaperSourcesConfig struct {
	ArXiv    ArXivConfig    `mapstructure:"arxiv"`
	OpenAlex OpenAlexConfig `mapstructure:"openalex"`
}

// ArXivConfig holds arXiv API settings.
type ArXivConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  float64       `mapstructure:"rate_limit"`
	BurstSize  int           `mapstructure:"burst_size"`
	MaxResults int           `mapstructure:"max_results"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// OpenAlexConfig holds OpenAlex API settings.
type OpenAlexConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	Email      string        `mapstructure:"email"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  float64       `mapstructure:"rate_limit"`
	BurstSize  int           `mapstructure:"burst_size"`
	MaxResults int           `mapstructure:"max_results"`
}

// SearchConfig holds aggregation pipeline settings.
type SearchConfig struct {
	// CoreCount, RelatedCount and BackgroundCount are the default corpus
	// bucket sizes.
	CoreCount       int `mapstructure:"core_count"`
	RelatedCount    int `mapstructure:"related_count"`
	BackgroundCount int `mapstructure:"background_count"`
	// MaxParallel bounds concurrent source requests per run.
	MaxParallel int `mapstructure:"max_parallel"`
	// MinCoreThreshold is the core size below which fallback queries run.
	MinCoreThreshold int `mapstructure:"min_core_threshold"`
	// SecondaryFromYear bounds the scholarly graph search.
	SecondaryFromYear int `mapstructure:"secondary_from_year"`
	// BackgroundFromYear bounds the background recency search.
	BackgroundFromYear int `mapstructure:"background_from_year"`
}

// Load loads configuration from defaults, an optional config file, and
// environment variables.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("LITSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/literature-search-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine; env vars and defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "litsearch")

	// arXiv defaults: the API asks for one request every three seconds.
	v.SetDefault("paper_sources.arxiv.enabled", true)
	v.SetDefault("paper_sources.arxiv.base_url", "https://export.arxiv.org/api")
	v.SetDefault("paper_sources.arxiv.timeout", "30s")
	v.SetDefault("paper_sources.arxiv.rate_limit", 0.34)
	v.SetDefault("paper_sources.arxiv.burst_size", 1)
	v.SetDefault("paper_sources.arxiv.max_results", 50)
	v.SetDefault("paper_sources.arxiv.max_retries", 3)
	v.SetDefault("paper_sources.arxiv.retry_delay", "2s")

	// OpenAlex defaults
	v.SetDefault("paper_sources.openalex.enabled", true)
	v.SetDefault("paper_sources.openalex.base_url", "https://api.openalex.org")
	v.SetDefault("paper_sources.openalex.email", "")
	v.SetDefault("paper_sources.openalex.timeout", "30s")
	v.SetDefault("paper_sources.openalex.rate_limit", 1.0)
	v.SetDefault("paper_sources.openalex.burst_size", 1)
	v.SetDefault("paper_sources.openalex.max_results", 20)

	// Search defaults
	v.SetDefault("search.core_count", 10)
	v.SetDefault("search.related_count", 15)
	v.SetDefault("search.background_count", 10)
	v.SetDefault("search.max_parallel", 4)
	v.SetDefault("search.min_core_threshold", 3)
	v.SetDefault("search.secondary_from_year", 2020)
	v.SetDefault("search.background_from_year", 2018)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if !c.PaperSources.ArXiv.Enabled && !c.PaperSources.OpenAlex.Enabled {
		return fmt.Errorf("at least one paper source must be enabled")
	}
	if c.PaperSources.ArXiv.RateLimit < 0 {
		return fmt.Errorf("arxiv rate limit must not be negative")
	}
	if c.PaperSources.OpenAlex.RateLimit < 0 {
		return fmt.Errorf("openalex rate limit must not be negative")
	}

	if c.Search.CoreCount <= 0 {
		return fmt.Errorf("search core_count must be positive")
	}
	if c.Search.RelatedCount < 0 || c.Search.BackgroundCount < 0 {
		return fmt.Errorf("search bucket counts must not be negative")
	}
	if c.Search.MaxParallel <= 0 {
		return fmt.Errorf("search max_parallel must be positive")
	}

	return nil
}
