package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jklebucki/rag-collector/internal/adapters/driven/fs"
	"github.com/jklebucki/rag-collector/internal/core/ports/driving"
	"github.com/jklebucki/rag-collector/internal/logger"
)

// WatchConfig holds the dependencies of the watch command.
type WatchConfig struct {
	Watcher *fs.Watcher
	Cleanup driving.CleanupService
}

var watchConfig *WatchConfig

// SetWatchConfig sets the configuration for the watch command.
func SetWatchConfig(cfg *WatchConfig) {
	watchConfig = cfg
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run once, then reprocess files as they change",
	Long: `Runs a full collection pass and then keeps watching the source
folders. Created and modified files are reindexed after a short quiet
period; deleted files have their index entries removed.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if collector == nil {
		return errors.New("collector not configured")
	}
	if watchConfig == nil || watchConfig.Watcher == nil {
		return errors.New("watcher not configured")
	}

	ctx := cmd.Context()

	if _, err := collector.Run(ctx); err != nil {
		return err
	}

	events, err := watchConfig.Watcher.Watch(ctx)
	if err != nil {
		return err
	}

	cmd.Println("Watching source folders; press Ctrl+C to stop.")
	for event := range events {
		handleWatchEvent(ctx, event)
	}
	return ctx.Err()
}

func handleWatchEvent(ctx context.Context, event fs.Event) {
	if event.Removed {
		if watchConfig.Cleanup == nil {
			return
		}
		deleted, err := watchConfig.Cleanup.DeleteOrphanedDocuments(ctx, []string{event.Path})
		if err != nil {
			logger.Error("Failed to clean up %s: %v", event.Path, err)
			return
		}
		logger.Info("Removed %d documents for deleted file %s", deleted, event.Path)
		return
	}

	item, err := fs.NewFileItem(event.Path, "")
	if err != nil {
		logger.Warn("Skipping changed file %s: %v", event.Path, err)
		return
	}
	if _, err := collector.ProcessFile(ctx, item); err != nil && ctx.Err() == nil {
		logger.Error("Failed to reprocess %s: %v", event.Path, err)
	}
}
