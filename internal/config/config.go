// Package config loads gateway configuration from defaults, an optional
// YAML config file, and STOWGATE_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/stowgate/stowgate/pkg/keygen"
	"github.com/stowgate/stowgate/pkg/store/s3"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. STOWGATE_SERVER_PORT or STOWGATE_STORE_SECRET_ACCESS_KEY.
const EnvPrefix = "STOWGATE"

// DefaultCacheControl is applied to uploads that do not declare their own
// cache-control directive.
const DefaultCacheControl = "public, max-age=31536000, immutable"

// Config is the full gateway configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Store     StoreConfig     `mapstructure:"store"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// CORSConfig configures origin allow-listing. A single "*" entry allows
// any origin.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig is the static credential bundle for the backing object
// store. The whole section is optional: without it the gateway serves
// only requests carrying per-request credential headers.
type StoreConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
}

// UploadsConfig controls key generation and presigning defaults.
type UploadsConfig struct {
	// Env is the environment tag leading every hash-strategy key.
	Env string `mapstructure:"env"`

	// Strategy is the default key strategy when a request does not pick
	// one: "hash" or "original".
	Strategy string `mapstructure:"strategy"`

	// PresignExpiry is the lifetime of signed upload URLs.
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`

	// CacheControl is applied when an upload request omits its own.
	CacheControl string `mapstructure:"cache_control"`
}

// RateLimitConfig throttles the sign-upload endpoint.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// Load reads configuration. path may name a config file explicitly; empty
// means search the working directory and ~/.config/stowgate for
// stowgate.yaml, with a missing file being fine.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("stowgate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/stowgate")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "json")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	// Empty defaults so env-only overrides are visible to Unmarshal.
	v.SetDefault("store.endpoint", "")
	v.SetDefault("store.region", "")
	v.SetDefault("store.bucket", "")
	v.SetDefault("store.access_key_id", "")
	v.SetDefault("store.secret_access_key", "")
	v.SetDefault("store.public_base_url", "")
	v.SetDefault("store.force_path_style", false)

	v.SetDefault("uploads.env", "dev")
	v.SetDefault("uploads.strategy", string(keygen.StrategyHash))
	v.SetDefault("uploads.presign_expiry", s3.DefaultPresignExpiry)
	v.SetDefault("uploads.cache_control", DefaultCacheControl)

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if !keygen.Strategy(c.Uploads.Strategy).Valid() {
		return fmt.Errorf("config: uploads.strategy %q must be %q or %q", c.Uploads.Strategy, keygen.StrategyHash, keygen.StrategyOriginal)
	}
	if c.Uploads.PresignExpiry <= 0 {
		return fmt.Errorf("config: uploads.presign_expiry must be positive")
	}
	if (c.Store.AccessKeyID != "") != (c.Store.SecretAccessKey != "") {
		return fmt.Errorf("config: store.access_key_id and store.secret_access_key must be provided together")
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		return fmt.Errorf("config: rate_limit.rps must be positive when rate limiting is enabled")
	}
	return nil
}

// StoreConfigured reports whether a static credential context exists.
func (c *Config) StoreConfigured() bool {
	return c.Store.Bucket != ""
}

// S3Config converts the static store section into an adapter config.
func (c *Config) S3Config() s3.Config {
	return s3.Config{
		Bucket:          c.Store.Bucket,
		Region:          c.Store.Region,
		Endpoint:        c.Store.Endpoint,
		AccessKeyID:     c.Store.AccessKeyID,
		SecretAccessKey: c.Store.SecretAccessKey,
		PublicBaseURL:   c.Store.PublicBaseURL,
		ForcePathStyle:  c.Store.ForcePathStyle,
		PresignExpiry:   c.Uploads.PresignExpiry,
	}
}

// AllowAnyOrigin reports whether the CORS allow-list is the wildcard.
func (c *Config) AllowAnyOrigin() bool {
	for _, o := range c.CORS.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// Redacted returns a copy safe for display: the secret key is masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.Store.SecretAccessKey != "" {
		out.Store.SecretAccessKey = "********"
	}
	return out
}
