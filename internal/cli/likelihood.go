package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/merfai/merf-go/internal/engine"
	"github.com/merfai/merf-go/internal/service"
	"github.com/spf13/cobra"
)

var likelihoodNarrative bool

var likelihoodCmd = &cobra.Command{
	Use:   "likelihood <dream-id>",
	Short: "Score how likely a dream is to surface as deja vu",
	Long: `Score a dream's deja vu likelihood on a 0-100 scale with a risk band.
The score weighs intensity, novelty against the dream history, motif
risk, and repetition of location, emotion, and themes.

Examples:
  merf likelihood 4f1c2a...
  merf likelihood 4f1c2a... --narrative`,
	Args: cobra.ExactArgs(1),
	RunE: runLikelihood,
}

func init() {
	likelihoodCmd.Flags().BoolVar(&likelihoodNarrative, "narrative", false, "rewrite the note with the LLM")
}

func bandStyle(b engine.RiskBand) string {
	label := strings.ToUpper(string(b))
	switch b {
	case engine.RiskHigh:
		return defaultTheme.errorStyle().Render(label)
	case engine.RiskMedium:
		return defaultTheme.statusStyle().Render(label)
	default:
		return defaultTheme.completedStyle().Render(label)
	}
}

func runLikelihood(cmd *cobra.Command, args []string) error {
	var writer service.NoteWriter
	if likelihoodNarrative {
		if err := initLLM(); err != nil {
			return err
		}
		writer = model
	}

	svc := service.NewLikelihoodService(dbClient, writer, lexicon, collector)

	result, err := svc.Score(context.Background(), args[0], likelihoodNarrative)
	if err != nil {
		return fmt.Errorf("likelihood: %w", err)
	}

	fmt.Printf("Deja vu likelihood: %d/100  %s\n\n", result.Score, bandStyle(result.Band))
	fmt.Println(result.Note)

	if len(result.Motifs) > 0 {
		fmt.Printf("\nMotifs:\n")
		for _, m := range result.Motifs {
			fmt.Printf("- %s (risk %.2f)\n", m.Name, m.Risk)
		}
	}

	if verbose {
		fmt.Printf("\nComponents:\n")
		fmt.Printf("  Intensity:  %.2f\n", result.Intensity)
		fmt.Printf("  Novelty:    %.2f\n", result.Novelty)
		fmt.Printf("  Motif risk: %.2f\n", result.MotifRisk)
		fmt.Printf("  Repetition: %.2f\n", result.Repetition)
	}
	return nil
}
