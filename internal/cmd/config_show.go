package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out, err := yaml.Marshal(redactedView())
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

// redactedView flattens the effective config into yaml-friendly keys.
// The secret key is already masked by Redacted.
func redactedView() map[string]any {
	c := cfg.Redacted()
	return map[string]any{
		"server": map[string]any{
			"host":             c.Server.Host,
			"port":             c.Server.Port,
			"read_timeout":     c.Server.ReadTimeout.String(),
			"write_timeout":    c.Server.WriteTimeout.String(),
			"idle_timeout":     c.Server.IdleTimeout.String(),
			"shutdown_timeout": c.Server.ShutdownTimeout.String(),
		},
		"logging": map[string]any{
			"level":    c.Logging.Level,
			"encoding": c.Logging.Encoding,
		},
		"cors": map[string]any{
			"allowed_origins": c.CORS.AllowedOrigins,
		},
		"store": map[string]any{
			"endpoint":          c.Store.Endpoint,
			"region":            c.Store.Region,
			"bucket":            c.Store.Bucket,
			"access_key_id":     c.Store.AccessKeyID,
			"secret_access_key": c.Store.SecretAccessKey,
			"public_base_url":   c.Store.PublicBaseURL,
			"force_path_style":  c.Store.ForcePathStyle,
		},
		"uploads": map[string]any{
			"env":            c.Uploads.Env,
			"strategy":       c.Uploads.Strategy,
			"presign_expiry": c.Uploads.PresignExpiry.String(),
			"cache_control":  c.Uploads.CacheControl,
		},
		"rate_limit": map[string]any{
			"enabled": c.RateLimit.Enabled,
			"rps":     c.RateLimit.RPS,
			"burst":   c.RateLimit.Burst,
		},
	}
}
