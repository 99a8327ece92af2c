package cli

import (
	"context"
	"fmt"

	"github.com/merfai/merf-go/internal/engine"
	"github.com/merfai/merf-go/internal/metrics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and runtime statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dreams, err := dbClient.QueryListDreams(ctx, 0)
	if err != nil {
		return fmt.Errorf("list dreams: %w", err)
	}
	entries, err := dbClient.QueryListDejavu(ctx, 0)
	if err != nil {
		return fmt.Errorf("list dejavu: %w", err)
	}

	unembeddedDreams := 0
	for _, d := range dreams {
		if !d.HasEmbedding() {
			unembeddedDreams++
		}
	}
	unembeddedEntries := 0
	for _, e := range entries {
		if !e.HasEmbedding() {
			unembeddedEntries++
		}
	}

	fmt.Printf("Corpus\n")
	fmt.Printf("══════════════════════════════\n")
	fmt.Printf("Dreams:          %d", len(dreams))
	if unembeddedDreams > 0 {
		fmt.Printf("  (%d unembedded)", unembeddedDreams)
	}
	fmt.Println()
	fmt.Printf("Deja vu entries: %d", len(entries))
	if unembeddedEntries > 0 {
		fmt.Printf("  (%d unembedded)", unembeddedEntries)
	}
	fmt.Println()
	fmt.Printf("Motif catalog:   %s (%d motifs)\n", lexicon.Version, len(lexicon.Motifs))

	// Band distribution over the whole history.
	if len(dreams) > 0 {
		bands := map[engine.RiskBand]int{}
		for _, d := range dreams {
			result := engine.ScoreLikelihood(lexicon, d, dreams)
			bands[result.Band]++
		}
		fmt.Printf("\nLikelihood bands\n")
		fmt.Printf("══════════════════════════════\n")
		fmt.Printf("High:   %d\n", bands[engine.RiskHigh])
		fmt.Printf("Medium: %d\n", bands[engine.RiskMedium])
		fmt.Printf("Low:    %d\n", bands[engine.RiskLow])
	}

	snapshot := collector.Snapshot()
	fmt.Printf("\nRuntime\n")
	fmt.Printf("══════════════════════════════\n")
	fmt.Printf("Uptime: %.1fs\n", snapshot.UptimeSeconds)
	printOp("DB queries", snapshot.DBQuery)
	printOp("Embeddings", snapshot.Embedding)
	printOp("Narrative", snapshot.Narrative)
	printOp("Suggest", snapshot.Suggest)
	printOp("Likelihood", snapshot.Likelihood)

	return nil
}

func printOp(name string, op *metrics.OperationSnapshot) {
	if op == nil || op.Count == 0 {
		return
	}
	fmt.Printf("%s: %d calls, avg %.1fms\n", name, op.Count, op.AvgTimeMs)
}
