// Package config provides configuration management for the citation contact service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the citation contact service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Storage contains report output and cache file settings.
	Storage StorageConfig `mapstructure:"storage"`
	// Sources contains metadata source API configurations.
	Sources SourcesConfig `mapstructure:"sources"`
	// Search contains email discovery search settings.
	Search SearchConfig `mapstructure:"search"`
	// Pipeline contains batch pipeline pacing settings.
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response. Batch
	// processing happens inside the request, so this must cover a full run.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxUploadBytes caps the size of uploaded CSV files.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
}

// StorageConfig holds report output and cache file settings.
type StorageConfig struct {
	// OutputDir is the directory generated reports are written to.
	OutputDir string `mapstructure:"output_dir"`
	// CachePath is the path of the persistent email cache file.
	CachePath string `mapstructure:"cache_path"`
}

// SourcesConfig holds configuration for the metadata source APIs.
type SourcesConfig struct {
	// Crossref contains Crossref API settings.
	Crossref SourceConfig `mapstructure:"crossref"`
	// PubMed contains PubMed E-utilities settings.
	PubMed SourceConfig `mapstructure:"pubmed"`
}

// SourceConfig holds configuration for a single metadata source API.
type SourceConfig struct {
	// Enabled controls whether this source is used.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is the API key (loaded from environment variable, e.g.
	// CITECONTACT_SOURCES_PUBMED_API_KEY).
	APIKey string `mapstructure:"-"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the timeout for API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// ContactEmail is advertised to sources that offer polite pools
	// (Crossref). Optional.
	ContactEmail string `mapstructure:"contact_email"`
}

// SearchConfig holds email discovery search settings.
type SearchConfig struct {
	// APIKey is the web search API key (loaded from CITECONTACT_SEARCH_API_KEY).
	APIKey string `mapstructure:"-"`
	// EngineID is the custom search engine ID (loaded from CITECONTACT_SEARCH_ENGINE_ID).
	EngineID string `mapstructure:"-"`
	// BaseURL is the search API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the timeout for search and page fetch calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxQueries is the per-process search query budget.
	MaxQueries int `mapstructure:"max_queries"`
	// ResultsPerQuery is the number of results requested per search.
	ResultsPerQuery int `mapstructure:"results_per_query"`
	// Pause is the delay between consecutive search queries for one author.
	Pause time.Duration `mapstructure:"pause"`
}

// PipelineConfig holds batch pipeline pacing settings.
type PipelineConfig struct {
	// CitationPause is the delay after each processed citation.
	CitationPause time.Duration `mapstructure:"citation_pause"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("CITECONTACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/citation-contact-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment variables.
func loadSecrets(cfg *Config) {
	cfg.Search.APIKey = os.Getenv("CITECONTACT_SEARCH_API_KEY")
	cfg.Search.EngineID = os.Getenv("CITECONTACT_SEARCH_ENGINE_ID")

	cfg.Sources.PubMed.APIKey = os.Getenv("CITECONTACT_SOURCES_PUBMED_API_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	// Batch runs are synchronous and paced, so allow long responses.
	v.SetDefault("server.write_timeout", "30m")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_upload_bytes", 16<<20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Storage defaults
	v.SetDefault("storage.output_dir", "outputs")
	v.SetDefault("storage.cache_path", "email_cache.json")

	// Metadata source defaults - Crossref
	// API keys are loaded exclusively from environment variables (see loadSecrets).
	v.SetDefault("sources.crossref.enabled", true)
	v.SetDefault("sources.crossref.base_url", "https://api.crossref.org")
	v.SetDefault("sources.crossref.timeout", "10s")
	v.SetDefault("sources.crossref.rate_limit", 10.0)
	v.SetDefault("sources.crossref.contact_email", "")

	// Metadata source defaults - PubMed
	v.SetDefault("sources.pubmed.enabled", true)
	v.SetDefault("sources.pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("sources.pubmed.timeout", "10s")
	v.SetDefault("sources.pubmed.rate_limit", 3.0) // NCBI recommends max 3 req/sec without API key

	// Search defaults
	v.SetDefault("search.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("search.timeout", "12s")
	v.SetDefault("search.max_queries", 80)
	v.SetDefault("search.results_per_query", 5)
	v.SetDefault("search.pause", "600ms")

	// Pipeline defaults
	v.SetDefault("pipeline.citation_pause", "500ms")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Storage.OutputDir == "" {
		return fmt.Errorf("storage output_dir is required")
	}
	if c.Storage.CachePath == "" {
		return fmt.Errorf("storage cache_path is required")
	}

	if !c.Sources.Crossref.Enabled && !c.Sources.PubMed.Enabled {
		return fmt.Errorf("at least one metadata source must be enabled")
	}
	if c.Sources.Crossref.Enabled && c.Sources.Crossref.RateLimit <= 0 {
		return fmt.Errorf("crossref rate_limit must be positive")
	}
	if c.Sources.PubMed.Enabled && c.Sources.PubMed.RateLimit <= 0 {
		return fmt.Errorf("pubmed rate_limit must be positive")
	}

	if c.Search.MaxQueries < 0 {
		return fmt.Errorf("search max_queries must not be negative")
	}
	if c.Search.ResultsPerQuery <= 0 || c.Search.ResultsPerQuery > 10 {
		return fmt.Errorf("search results_per_query must be between 1 and 10")
	}

	if c.Pipeline.CitationPause < 0 {
		return fmt.Errorf("pipeline citation_pause must not be negative")
	}

	return nil
}
