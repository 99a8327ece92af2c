package cli

import (
	"context"
	"fmt"

	"github.com/merfai/merf-go/internal/models"
	"github.com/spf13/cobra"
)

var (
	dejavuLocation    string
	dejavuEmotion     string
	dejavuFamiliarity int
	dejavuTrigger     string
	dejavuDate        string
	dejavuLimit       int
)

var dejavuCmd = &cobra.Command{
	Use:   "dejavu",
	Short: "Log and list deja vu experiences",
}

var dejavuAddCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Log a new deja vu experience",
	Long: `Log a real-world deja vu experience.

Examples:
  merf dejavu add "Bu koridoru daha önce gördüm" --location okul --familiarity 7
  merf dejavu add "Felt I had lived this moment" --trigger "metro station"`,
	Args: cobra.ExactArgs(1),
	RunE: runDejavuAdd,
}

var dejavuListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deja vu entries, newest first",
	RunE:  runDejavuList,
}

func init() {
	dejavuAddCmd.Flags().StringVarP(&dejavuLocation, "location", "l", "", "where it happened")
	dejavuAddCmd.Flags().StringVarP(&dejavuEmotion, "emotion", "e", "", "dominant emotion")
	dejavuAddCmd.Flags().IntVarP(&dejavuFamiliarity, "familiarity", "f", 5, "familiarity strength 1-10")
	dejavuAddCmd.Flags().StringVar(&dejavuTrigger, "trigger", "", "what triggered the feeling")
	dejavuAddCmd.Flags().StringVar(&dejavuDate, "date", "", "entry date (YYYY-MM-DD, default today)")

	dejavuListCmd.Flags().IntVarP(&dejavuLimit, "limit", "n", 20, "max results (0 for all)")

	dejavuCmd.AddCommand(dejavuAddCmd)
	dejavuCmd.AddCommand(dejavuListCmd)
}

func runDejavuAdd(cmd *cobra.Command, args []string) error {
	if dejavuFamiliarity < 1 || dejavuFamiliarity > 10 {
		return fmt.Errorf("familiarity must be between 1 and 10")
	}
	date, err := parseDate(dejavuDate)
	if err != nil {
		return err
	}

	svc, err := dejavuService(true)
	if err != nil {
		return err
	}

	input := models.DejavuInput{
		Description: args[0],
		Location:    dejavuLocation,
		Emotion:     dejavuEmotion,
		Familiarity: dejavuFamiliarity,
		EntryDate:   date,
	}
	if dejavuTrigger != "" {
		input.TriggerContext = &dejavuTrigger
	}

	entry, err := svc.Create(context.Background(), input)
	if err != nil {
		return fmt.Errorf("add dejavu: %w", err)
	}

	id := models.MustRecordIDString(entry.ID)
	fmt.Printf("Logged deja vu %s\n", id)
	if !entry.HasEmbedding() {
		fmt.Println("Embedding pending - run 'merf reindex' once the provider is reachable.")
	}
	return nil
}

func runDejavuList(cmd *cobra.Command, args []string) error {
	svc, err := dejavuService(false)
	if err != nil {
		return err
	}

	entries, err := svc.List(context.Background(), dejavuLimit)
	if err != nil {
		return fmt.Errorf("list dejavu: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No deja vu entries logged yet.")
		return nil
	}

	fmt.Printf("Deja vu entries (%d):\n\n", len(entries))
	for _, e := range entries {
		id := models.MustRecordIDString(e.ID)
		desc := e.Description
		if len([]rune(desc)) > 50 {
			desc = string([]rune(desc)[:47]) + "..."
		}
		embeddedMark := ""
		if !e.HasEmbedding() {
			embeddedMark = " [unembedded]"
		}
		fmt.Printf("- %s  %s  (%s)%s\n", e.EntryDate.Format("2006-01-02"), desc, id, embeddedMark)
		if verbose {
			fmt.Printf("  Location: %s  Emotion: %s  Familiarity: %d\n", e.Location, e.Emotion, e.Familiarity)
			if e.TriggerContext != nil {
				fmt.Printf("  Trigger: %s\n", *e.TriggerContext)
			}
		}
	}
	return nil
}
