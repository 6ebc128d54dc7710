// Package s3 implements the store adapter for AWS S3 and S3-compatible
// object stores (R2, MinIO, Wasabi, DigitalOcean Spaces).
package s3

import "time"

// Config configures an S3 adapter.
//
// Authentication priority (AWS SDK v2 default chain):
//  1. Explicit AccessKeyID/SecretAccessKey (if provided)
//  2. Environment variables (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)
//  3. Shared credentials file (~/.aws/credentials)
//  4. EC2 instance metadata / ECS task role
//
// For S3-compatible stores, set Endpoint and typically ForcePathStyle.
// When Endpoint is set no default region is applied; Cloudflare R2 and
// most compatible stores accept "auto" or ignore the region entirely.
type Config struct {
	// Bucket is the bucket name (required).
	Bucket string

	// Region is the AWS region.
	// For AWS S3: defaults to us-east-1 if not specified via config or
	// environment. For S3-compatible (when Endpoint is set): no default.
	Region string

	// Endpoint is a custom endpoint URL for S3-compatible stores.
	// Leave empty for AWS S3.
	Endpoint string

	// AccessKeyID is an explicit access key. If set, SecretAccessKey must
	// also be set. Takes precedence over the default credential chain.
	AccessKeyID string

	// SecretAccessKey is an explicit secret key. Required if AccessKeyID
	// is set. Never logged.
	SecretAccessKey string

	// PublicBaseURL, when set, is the base for composing public object
	// URLs (e.g. a CDN domain in front of the bucket). Optional.
	PublicBaseURL string

	// ForcePathStyle forces path-style URLs (bucket in path, not
	// subdomain). Required for most S3-compatible stores.
	ForcePathStyle bool

	// PresignExpiry is the lifetime of presigned PUT URLs.
	// Zero uses DefaultPresignExpiry.
	PresignExpiry time.Duration
}

// DefaultPresignExpiry is the lifetime of presigned PUT URLs when the
// config does not specify one.
const DefaultPresignExpiry = 5 * time.Minute

// DefaultAWSRegion is the fallback region for AWS S3 when not specified.
const DefaultAWSRegion = "us-east-1"

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return &ConfigError{Field: "Bucket", Message: "bucket name is required"}
	}

	// If one explicit credential is set, both must be set
	if (c.AccessKeyID != "") != (c.SecretAccessKey != "") {
		return &ConfigError{
			Field:   "AccessKeyID/SecretAccessKey",
			Message: "both access key ID and secret access key must be provided together",
		}
	}

	if c.PresignExpiry < 0 {
		return &ConfigError{Field: "PresignExpiry", Message: "presign expiry must not be negative"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "s3 config: " + e.Field + ": " + e.Message
}
