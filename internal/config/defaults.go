package config

import "time"

// Default tuning values. Job status records outlive the longest realistic
// pipeline run by a wide margin; routing entries are refreshed by the janitor
// well inside their TTL.
const (
	DefaultJobTTL            = time.Hour
	DefaultLeaseTTL          = 10 * time.Minute
	DefaultRouteTTL          = 24 * time.Hour
	DefaultUploadConcurrency = 8
	DefaultMaxRetries        = 2
	DefaultJanitorInterval   = 6 * time.Hour
)

// ApplyDefaults fills unset fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.AdminAddr == "" {
		c.Server.AdminAddr = ":9090"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./sitepress.db"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageBackendFS
	}
	if c.Storage.Backend == StorageBackendFS && c.Storage.Directory == "" {
		c.Storage.Directory = "./deploys"
	}
	if c.Publish.JobTTL <= 0 {
		c.Publish.JobTTL = DefaultJobTTL
	}
	if c.Publish.LeaseTTL <= 0 {
		c.Publish.LeaseTTL = DefaultLeaseTTL
	}
	if c.Publish.RouteTTL <= 0 {
		c.Publish.RouteTTL = DefaultRouteTTL
	}
	if c.Publish.UploadConcurrency <= 0 {
		c.Publish.UploadConcurrency = DefaultUploadConcurrency
	}
	if c.Publish.MaxRetries < 0 {
		c.Publish.MaxRetries = DefaultMaxRetries
	}
	if c.Publish.RetryBackoff == "" {
		c.Publish.RetryBackoff = RetryBackoffLinear
	}
	if c.Publish.RetryInitialDelay == "" {
		c.Publish.RetryInitialDelay = "1s"
	}
	if c.Publish.RetryMaxDelay == "" {
		c.Publish.RetryMaxDelay = "30s"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "sitepress.publish"
	}
	if c.Janitor.Interval <= 0 {
		c.Janitor.Interval = DefaultJanitorInterval
	}
}
