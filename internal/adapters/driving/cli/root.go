// Package cli wires the collector's driving services into cobra
// commands. Services are injected by main through the Set*Config
// functions before Execute runs.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jklebucki/rag-collector/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "rag-collector",
	Short: "Collect, chunk and index documents for retrieval",
	Long: `rag-collector scans configured source folders, splits document
text into overlapping chunks, embeds them and writes the result to a
vector index. Unchanged files are skipped; index entries whose source
files disappeared are cleaned up.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to collector.toml")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
