package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding)

	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.AllowAnyOrigin())

	assert.Equal(t, "dev", cfg.Uploads.Env)
	assert.Equal(t, "hash", cfg.Uploads.Strategy)
	assert.Equal(t, 5*time.Minute, cfg.Uploads.PresignExpiry)
	assert.Equal(t, DefaultCacheControl, cfg.Uploads.CacheControl)

	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.StoreConfigured())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STOWGATE_SERVER_PORT", "3000")
	t.Setenv("STOWGATE_LOGGING_LEVEL", "debug")
	t.Setenv("STOWGATE_STORE_BUCKET", "media")
	t.Setenv("STOWGATE_STORE_ENDPOINT", "https://abc.r2.cloudflarestorage.com")
	t.Setenv("STOWGATE_UPLOADS_ENV", "prod")
	t.Setenv("STOWGATE_UPLOADS_PRESIGN_EXPIRY", "90s")
	t.Setenv("STOWGATE_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "media", cfg.Store.Bucket)
	assert.True(t, cfg.StoreConfigured())
	assert.Equal(t, "prod", cfg.Uploads.Env)
	assert.Equal(t, 90*time.Second, cfg.Uploads.PresignExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.AllowAnyOrigin())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stowgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
store:
  bucket: media
  endpoint: http://localhost:9000
  access_key_id: minioadmin
  secret_access_key: minioadmin
  force_path_style: true
uploads:
  strategy: original
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "media", cfg.Store.Bucket)
	assert.True(t, cfg.Store.ForcePathStyle)
	assert.Equal(t, "original", cfg.Uploads.Strategy)

	// Non-overridden values remain default.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stowgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600))

	t.Setenv("STOWGATE_SERVER_PORT", "4000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	t.Run("bad strategy", func(t *testing.T) {
		cfg := valid()
		cfg.Uploads.Strategy = "sequential"
		assert.ErrorContains(t, cfg.Validate(), "uploads.strategy")
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 70000
		assert.ErrorContains(t, cfg.Validate(), "server.port")
	})

	t.Run("lopsided credentials", func(t *testing.T) {
		cfg := valid()
		cfg.Store.AccessKeyID = "AKIA"
		assert.ErrorContains(t, cfg.Validate(), "provided together")
	})

	t.Run("zero presign expiry", func(t *testing.T) {
		cfg := valid()
		cfg.Uploads.PresignExpiry = 0
		assert.ErrorContains(t, cfg.Validate(), "presign_expiry")
	})

	t.Run("rate limit without rps", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.RPS = 0
		assert.ErrorContains(t, cfg.Validate(), "rate_limit.rps")
	})
}

func TestS3Config(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Store = StoreConfig{
		Endpoint:        "http://localhost:9000",
		Bucket:          "media",
		AccessKeyID:     "ak",
		SecretAccessKey: "sk",
		PublicBaseURL:   "https://img.example.com",
		ForcePathStyle:  true,
	}

	s3cfg := cfg.S3Config()
	assert.Equal(t, "media", s3cfg.Bucket)
	assert.Equal(t, "http://localhost:9000", s3cfg.Endpoint)
	assert.Equal(t, "https://img.example.com", s3cfg.PublicBaseURL)
	assert.True(t, s3cfg.ForcePathStyle)
	assert.Equal(t, cfg.Uploads.PresignExpiry, s3cfg.PresignExpiry)
}

func TestRedacted(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Store.SecretAccessKey = "super-secret"

	red := cfg.Redacted()
	assert.Equal(t, "********", red.Store.SecretAccessKey)
	assert.Equal(t, "super-secret", cfg.Store.SecretAccessKey)
}
