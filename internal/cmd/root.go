// Package cmd implements the stowgate CLI.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stowgate/stowgate/internal/config"
	"github.com/stowgate/stowgate/internal/observability"
)

var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo is called from main with ldflags-injected build metadata.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var (
	cfgFile     string
	logLevel    string
	logEncoding string

	// cfg is loaded once in the persistent pre-run and shared by all
	// subcommands.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "stowgate",
	Short: "Presigned-upload gateway for S3-compatible object stores",
	Long: `stowgate is an upload console gateway: it mints content-addressed
object keys, issues presigned PUT URLs, and mediates listing, rename,
and batch operations against an S3-compatible bucket. Object bytes never
pass through the gateway.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is a local-dev convenience; absence is fine.
		_ = godotenv.Load()

		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Logging.Level = logLevel
		}
		if logEncoding != "" {
			c.Logging.Encoding = logEncoding
		}
		cfg = c

		return observability.Init(cfg.Logging.Level, cfg.Logging.Encoding)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./stowgate.yaml, ~/.config/stowgate/stowgate.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logEncoding, "log-encoding", "", "Log encoding override (json|console)")
}

// Execute runs the CLI with the given base context.
func Execute(ctx context.Context) error {
	defer observability.Sync()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println("Error:", err)
		return err
	}
	return nil
}
