package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/merfai/merf-go/internal/engine"
	"github.com/merfai/merf-go/internal/service"
	"github.com/spf13/cobra"
)

var (
	suggestTop       int
	suggestNarrative bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <dream-id>",
	Short: "Match a dream against the deja vu corpus",
	Long: `Rank logged deja vu entries by how plausibly they correspond to a
dream. Scores blend embedding similarity with a field heuristic; entries
below the match threshold are dropped.

Examples:
  merf suggest 4f1c2a...
  merf suggest 4f1c2a... --top 3 --narrative`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestTop, "top", "n", 5, "max suggestions")
	suggestCmd.Flags().BoolVar(&suggestNarrative, "narrative", false, "rewrite summaries with the LLM")
}

func strengthStyle(s engine.Strength) string {
	label := strings.ToUpper(string(s))
	switch s {
	case engine.StrengthStrong:
		return defaultTheme.completedStyle().Render(label)
	case engine.StrengthMedium:
		return defaultTheme.statusStyle().Render(label)
	default:
		return defaultTheme.hintStyle().Render(label)
	}
}

func runSuggest(cmd *cobra.Command, args []string) error {
	var writer service.NoteWriter
	if suggestNarrative {
		if err := initLLM(); err != nil {
			return err
		}
		writer = model
	}

	svc := service.NewSuggestionService(dbClient, dbClient, writer, lexicon, collector)

	suggestions, err := svc.Suggest(context.Background(), args[0], service.SuggestOptions{
		TopN:      suggestTop,
		Narrative: suggestNarrative,
	})
	if err != nil {
		return fmt.Errorf("suggest: %w", err)
	}

	if len(suggestions) == 0 {
		fmt.Println("No deja vu entries matched this dream.")
		return nil
	}

	fmt.Printf("Suggestions (%d):\n\n", len(suggestions))
	for _, s := range suggestions {
		fmt.Printf("%d. [%d%%] %s  %s\n", s.Rank, s.Similarity, strengthStyle(s.Strength), s.Entry.Description)
		fmt.Printf("   %s\n", s.Summary)
		if verbose {
			details := []string{fmt.Sprintf("method=%s", s.Method)}
			if len(s.SharedMotifs) > 0 {
				details = append(details, "motifs="+strings.Join(s.SharedMotifs, ","))
			}
			if s.LocationMatch {
				details = append(details, "same location")
			}
			if s.EmotionMatch {
				details = append(details, "same emotion")
			}
			details = append(details, fmt.Sprintf("%d days apart", s.DaysBetween))
			fmt.Printf("   %s\n", defaultTheme.hintStyle().Render(strings.Join(details, "  ")))
		}
		fmt.Println()
	}
	return nil
}
