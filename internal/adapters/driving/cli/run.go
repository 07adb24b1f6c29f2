package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jklebucki/rag-collector/internal/core/ports/driving"
)

// collector is injected by main before Execute.
var collector driving.Collector

// SetCollector sets the collector used by the run and watch commands.
func SetCollector(c driving.Collector) {
	collector = c
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process all source folders once",
	Long: `Runs a single collection pass: every matching file under the
configured source folders is checked for changes, chunked and indexed,
then orphaned index entries are removed.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	if collector == nil {
		return errors.New("collector not configured")
	}

	summary, err := collector.Run(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Files seen:     %d\n", summary.FilesSeen)
	cmd.Printf("Files indexed:  %d\n", summary.FilesIndexed)
	cmd.Printf("Files skipped:  %d\n", summary.FilesSkipped)
	cmd.Printf("Files failed:   %d\n", summary.FilesFailed)
	cmd.Printf("Chunks indexed: %d\n", summary.ChunksIndexed)
	if summary.Cleanup != nil && summary.Cleanup.OrphanedFileCount() > 0 {
		cmd.Printf("Orphans removed: %d files, %d documents\n",
			summary.Cleanup.OrphanedFileCount(), summary.Cleanup.DocumentsDeleted)
	}
	return nil
}
