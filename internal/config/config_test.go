package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
platform:
  root_domain: sitepress.test
  api_base_url: https://api.sitepress.test
`

func TestParseMinimalAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, StorageBackendFS, cfg.Storage.Backend)
	assert.Equal(t, DefaultJobTTL, cfg.Publish.JobTTL)
	assert.Equal(t, DefaultRouteTTL, cfg.Publish.RouteTTL)
	assert.Equal(t, RetryBackoffLinear, cfg.Publish.RetryBackoff)
	assert.Equal(t, DefaultUploadConcurrency, cfg.Publish.UploadConcurrency)
}

func TestParseRejectsMissingRootDomain(t *testing.T) {
	_, err := Parse([]byte(`
platform:
  api_base_url: https://api.sitepress.test
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root_domain")
}

func TestParseRejectsURLAsRootDomain(t *testing.T) {
	_, err := Parse([]byte(`
platform:
  root_domain: https://sitepress.test
  api_base_url: https://api.sitepress.test
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bare hostname")
}

func TestParseRejectsS3WithoutBucket(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + `
storage:
  backend: s3
  endpoint: minio.local:9000
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func TestParseEnvExpansion(t *testing.T) {
	t.Setenv("SITEPRESS_TEST_BUCKET", "deploys")

	cfg, err := Parse([]byte(minimalYAML + `
storage:
  backend: s3
  endpoint: minio.local:9000
  bucket: ${SITEPRESS_TEST_BUCKET}
`))
	require.NoError(t, err)
	assert.Equal(t, "deploys", cfg.Storage.Bucket)
}

func TestParsePublishOverrides(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + `
publish:
  job_ttl: 30m
  lease_ttl: 2m
  retry_backoff: exponential
`))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Publish.JobTTL)
	assert.Equal(t, 2*time.Minute, cfg.Publish.LeaseTTL)
	assert.Equal(t, RetryBackoffExponential, cfg.Publish.RetryBackoff)
}

func TestParseRejectsUnknownBackoff(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + `
publish:
  retry_backoff: quadratic
`))
	require.Error(t, err)
}
