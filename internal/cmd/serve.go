package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stowgate/stowgate/internal/observability"
	"github.com/stowgate/stowgate/internal/server"
	"github.com/stowgate/stowgate/pkg/store"
	"github.com/stowgate/stowgate/pkg/store/s3"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload gateway",
	Long: `Start the HTTP gateway.

With a configured store section the gateway serves all requests against
that static bucket. Without one, every request must carry the
X-Store-Endpoint / X-Store-Access-Key / X-Store-Secret-Key headers.

Examples:
  stowgate serve
  stowgate serve --config /etc/stowgate/stowgate.yaml
  STOWGATE_SERVER_PORT=9000 stowgate serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var static store.ObjectStore
	if cfg.StoreConfigured() {
		s, err := s3.New(ctx, cfg.S3Config())
		if err != nil {
			return fmt.Errorf("create store adapter: %w", err)
		}
		defer func() { _ = s.Close() }()
		static = s
	} else {
		observability.Logger.Warn("no static store configured; requests must carry credential headers")
	}

	srv := server.New(cfg, static, nil)

	observability.Logger.Info("starting stowgate",
		zap.String("version", versionInfo.Version),
		zap.String("bucket", cfg.Store.Bucket),
	)

	return srv.Run(ctx)
}
