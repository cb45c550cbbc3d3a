package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks the configuration for structural problems. Defaults must be
// applied first.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Platform.RootDomain) == "" {
		return fmt.Errorf("platform.root_domain is required")
	}
	if strings.Contains(c.Platform.RootDomain, "://") {
		return fmt.Errorf("platform.root_domain must be a bare hostname, not a URL")
	}
	if c.Platform.APIBaseURL == "" {
		return fmt.Errorf("platform.api_base_url is required")
	}
	if u, err := url.Parse(c.Platform.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("platform.api_base_url must be an absolute URL: %q", c.Platform.APIBaseURL)
	}

	switch c.Storage.Backend {
	case StorageBackendS3:
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("storage.endpoint is required for the s3 backend")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
	case StorageBackendFS:
		if c.Storage.Directory == "" {
			return fmt.Errorf("storage.directory is required for the fs backend")
		}
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q",
			StorageBackendS3, StorageBackendFS, c.Storage.Backend)
	}

	switch c.Publish.RetryBackoff {
	case RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
	default:
		return fmt.Errorf("publish.retry_backoff must be fixed, linear, or exponential, got %q",
			c.Publish.RetryBackoff)
	}
	if _, err := time.ParseDuration(c.Publish.RetryInitialDelay); err != nil {
		return fmt.Errorf("publish.retry_initial_delay: %w", err)
	}
	if _, err := time.ParseDuration(c.Publish.RetryMaxDelay); err != nil {
		return fmt.Errorf("publish.retry_max_delay: %w", err)
	}

	if c.Events.Enabled && c.Events.URL == "" {
		return fmt.Errorf("events.url is required when events are enabled")
	}
	return nil
}
