package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stowgate/stowgate/pkg/match"
	"github.com/stowgate/stowgate/pkg/store"
	"github.com/stowgate/stowgate/pkg/store/s3"
)

var lsCmd = &cobra.Command{
	Use:   "ls [prefix]",
	Short: "List objects in the configured bucket",
	Long: `List one or more pages of the bucket, optionally filtered by a
glob pattern applied to the full key.

Examples:
  stowgate ls
  stowgate ls prod/2026/
  stowgate ls --glob '**/*.png' --all
  stowgate ls prod/ --max-keys 50`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

var (
	lsGlob    string
	lsMaxKeys int
	lsAll     bool
)

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().StringVar(&lsGlob, "glob", "", "Glob pattern applied to full keys")
	lsCmd.Flags().IntVar(&lsMaxKeys, "max-keys", 100, "Page size per backend request")
	lsCmd.Flags().BoolVar(&lsAll, "all", false, "Follow continuation tokens to the end of the listing")
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !cfg.StoreConfigured() {
		return fmt.Errorf("no store configured: set store.bucket or STOWGATE_STORE_BUCKET")
	}

	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}

	var filter *match.Filter
	if lsGlob != "" {
		f, err := match.NewFilter(lsGlob)
		if err != nil {
			return fmt.Errorf("invalid glob %q: %w", lsGlob, err)
		}
		filter = f
	}

	adapter, err := s3.New(ctx, cfg.S3Config())
	if err != nil {
		return fmt.Errorf("create store adapter: %w", err)
	}
	defer func() { _ = adapter.Close() }()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSIZE\tLAST_MODIFIED\tETAG")

	var (
		token string
		total int
	)
	for {
		page, err := adapter.List(ctx, store.ListOptions{
			Prefix:            prefix,
			ContinuationToken: token,
			MaxKeys:           lsMaxKeys,
		})
		if err != nil {
			return err
		}
		if filter != nil {
			page = filter.Apply(page)
		}

		for _, obj := range page.Objects {
			total++
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
				obj.Key,
				obj.Size,
				obj.LastModified.UTC().Format(time.RFC3339),
				obj.ETag,
			)
		}

		if !lsAll || !page.IsTruncated || page.ContinuationToken == "" {
			if page.IsTruncated && !lsAll {
				fmt.Fprintln(os.Stderr, "ls: listing truncated; pass --all to follow continuation tokens")
			}
			break
		}
		token = page.ContinuationToken
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "ls: %d objects\n", total)
	return nil
}
