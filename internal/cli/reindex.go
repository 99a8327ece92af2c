package cli

import (
	"github.com/merfai/merf-go/internal/service"
	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Backfill embeddings for unembedded records",
	Long: `Embed every dream and deja vu entry whose embedding attach failed at
create time, or after switching embedding models. Records are processed
in batches with a live progress bar.`,
	RunE: runReindex,
}

func runReindex(cmd *cobra.Command, args []string) error {
	if err := initLLM(); err != nil {
		return err
	}

	svc := service.NewReindexService(dbClient, embedder)
	return RunReindexProgress(svc)
}
