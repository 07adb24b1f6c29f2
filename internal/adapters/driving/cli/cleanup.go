package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jklebucki/rag-collector/internal/core/ports/driving"
)

// cleanupService is injected by main before Execute.
var cleanupService driving.CleanupService

// SetCleanupService sets the service used by the cleanup command.
func SetCleanupService(s driving.CleanupService) {
	cleanupService = s
}

var cleanupDryRun bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove index entries for deleted files",
	Long: `Scans the index for documents whose source files no longer exist
and deletes them, along with their change-detection records. With
--dry-run the orphans are only reported.`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "report orphans without deleting anything")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	if cleanupService == nil {
		return errors.New("cleanup service not configured")
	}

	ctx := cmd.Context()

	if cleanupDryRun {
		result, err := cleanupService.DryRunCleanup(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Orphaned files: %d (%d chunks)\n",
			result.OrphanedFileCount(), result.TotalOrphanedChunks)
		for _, path := range result.OrphanedFilePaths {
			cmd.Printf("  %s (%d chunks)\n", path, result.ChunksPerFile[path])
		}
		for _, msg := range result.Errors {
			cmd.PrintErrf("warning: %s\n", msg)
		}
		cmd.Println("Dry run; nothing was deleted.")
		return nil
	}

	result, err := cleanupService.FindOrphanedDocuments(ctx)
	if err != nil {
		return err
	}
	if result.OrphanedFileCount() == 0 {
		cmd.Println("No orphaned documents found.")
		return nil
	}

	deleted, err := cleanupService.DeleteOrphanedDocuments(ctx, result.OrphanedFilePaths)
	if err != nil {
		return err
	}
	cmd.Printf("Deleted %d documents across %d orphaned files.\n",
		deleted, result.OrphanedFileCount())
	return nil
}
