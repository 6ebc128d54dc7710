package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stowgate/stowgate/pkg/keygen"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen <filename>",
	Short: "Generate object keys without touching the store",
	Long: `Generate the object key(s) the gateway would mint for a filename.
Useful for checking partitioning and sanitization behavior.

Examples:
  stowgate keygen photo.png
  stowgate keygen photo.png --env prod --prefix avatars
  stowgate keygen "weird name?.png" --strategy original
  stowgate keygen photo.png -n 5`,
	Args: cobra.ExactArgs(1),
	RunE: runKeygen,
}

var (
	keygenEnv      string
	keygenPrefix   string
	keygenStrategy string
	keygenCount    int
)

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVar(&keygenEnv, "env", "", "Environment segment (default: configured uploads.env)")
	keygenCmd.Flags().StringVar(&keygenPrefix, "prefix", "", "Optional prefix spliced after the environment segment")
	keygenCmd.Flags().StringVar(&keygenStrategy, "strategy", "", "Key strategy (hash|original; default: configured uploads.strategy)")
	keygenCmd.Flags().IntVarP(&keygenCount, "count", "n", 1, "Number of keys to generate")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	filename := args[0]

	env := keygenEnv
	if env == "" {
		env = cfg.Uploads.Env
	}
	strategy := keygen.Strategy(keygenStrategy)
	if keygenStrategy == "" {
		strategy = keygen.Strategy(cfg.Uploads.Strategy)
	}
	if !strategy.Valid() {
		return fmt.Errorf("invalid strategy %q: expected %q or %q", keygenStrategy, keygen.StrategyHash, keygen.StrategyOriginal)
	}
	if keygenCount < 1 {
		return fmt.Errorf("count must be >= 1")
	}

	out := cmd.OutOrStdout()
	for i := 0; i < keygenCount; i++ {
		if strategy == keygen.StrategyOriginal {
			fmt.Fprintln(out, keygen.OriginalKey(filename, keygenPrefix))
			continue
		}
		key, err := keygen.Generate(keygen.Params{
			Filename: filename,
			Env:      env,
			Prefix:   keygenPrefix,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, key)
	}
	return nil
}
