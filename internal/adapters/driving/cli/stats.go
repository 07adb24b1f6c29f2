package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jklebucki/rag-collector/internal/core/ports/driving"
)

// indexer is injected by main before Execute.
var indexer driving.Indexer

// SetIndexer sets the indexer used by the stats command.
func SetIndexer(ix driving.Indexer) {
	indexer = ix
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if indexer == nil {
		return errors.New("indexer not configured")
	}

	stats := indexer.Stats(cmd.Context())
	if stats == nil {
		return errors.New("index statistics unavailable")
	}

	cmd.Printf("Documents:         %d\n", stats.TotalDocuments)
	cmd.Printf("Embedding model:   %s\n", stats.EmbeddingModel)
	cmd.Printf("Vector dimensions: %d\n", stats.VectorDimensions)
	if !stats.LastUpdated.IsZero() {
		cmd.Printf("Last updated:      %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05 UTC"))
	}
	return nil
}
