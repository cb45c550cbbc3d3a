// Package config loads and validates the sitepress service configuration.
// Configuration is YAML with environment variable expansion; a local .env
// file is loaded first when present so secrets stay out of the YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Platform PlatformConfig `yaml:"platform"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Publish  PublishConfig  `yaml:"publish"`
	Events   EventsConfig   `yaml:"events"`
	Janitor  JanitorConfig  `yaml:"janitor"`
}

// PlatformConfig describes the hosting platform itself.
type PlatformConfig struct {
	// RootDomain is the platform root under which subdomain sites are served
	// (e.g. "sitepress.app" serves acme.sitepress.app).
	RootDomain string `yaml:"root_domain"`

	// APIBaseURL is the public API endpoint injected into deployed sites for
	// dynamic island hydration.
	APIBaseURL string `yaml:"api_base_url"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	Addr      string `yaml:"addr"`       // API listener (publish, job status, resolve)
	AdminAddr string `yaml:"admin_addr"` // admin listener (healthz, metrics)
}

// DatabaseConfig configures the website repository backend.
type DatabaseConfig struct {
	Path string `yaml:"path"` // sqlite database file
}

// RedisConfig configures the job status store, routing cache, and publish lease.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// StorageBackend selects the artifact object store implementation.
type StorageBackend string

const (
	StorageBackendS3 StorageBackend = "s3"
	StorageBackendFS StorageBackend = "fs"
)

// StorageConfig configures the deployment artifact object store.
type StorageConfig struct {
	Backend StorageBackend `yaml:"backend"`

	// S3-compatible settings (backend: s3).
	Endpoint  string `yaml:"endpoint,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	UseSSL    bool   `yaml:"use_ssl,omitempty"`

	// Local filesystem settings (backend: fs).
	Directory string `yaml:"directory,omitempty"`
}

// RetryBackoffMode selects the backoff growth curve for transient upload retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// PublishConfig tunes the publish pipeline.
type PublishConfig struct {
	// JobTTL bounds how long a job status record is pollable.
	JobTTL time.Duration `yaml:"job_ttl"`

	// LeaseTTL bounds the per-website exclusive publish lease.
	LeaseTTL time.Duration `yaml:"lease_ttl"`

	// RouteTTL bounds domain/subdomain routing cache entries.
	RouteTTL time.Duration `yaml:"route_ttl"`

	// UploadConcurrency caps parallel artifact uploads (0 = default).
	UploadConcurrency int `yaml:"upload_concurrency"`

	// Transient object-store errors are retried per artifact; the job itself
	// is never retried.
	MaxRetries        int              `yaml:"max_retries"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff"`
	RetryInitialDelay string           `yaml:"retry_initial_delay"`
	RetryMaxDelay     string           `yaml:"retry_max_delay"`
}

// EventsConfig configures optional publish lifecycle events on NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// JanitorConfig configures the routing cache refresh job.
type JanitorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath) // #nosec G304 - path supplied by operator
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses configuration from raw YAML, expanding environment variables,
// applying defaults, and validating.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile loads a .env file from the working directory when present.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}
