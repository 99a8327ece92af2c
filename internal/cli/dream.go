package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/merfai/merf-go/internal/models"
	"github.com/spf13/cobra"
)

var (
	dreamTitle     string
	dreamLocation  string
	dreamEmotion   string
	dreamIntensity int
	dreamThemes    []string
	dreamObjects   []string
	dreamDate      string
	dreamLimit     int
)

var dreamCmd = &cobra.Command{
	Use:   "dream",
	Short: "Log and list dreams",
}

var dreamAddCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Log a new dream",
	Long: `Log a new dream. The description is embedded immediately; if the
embedding provider is unreachable the dream is stored anyway and picked
up by the next reindex.

Examples:
  merf dream add "Yüksek bir binadan düşüyordum" --emotion korku --intensity 8
  merf dream add "Flying over the sea" --location coast --themes "flight,water"`,
	Args: cobra.ExactArgs(1),
	RunE: runDreamAdd,
}

var dreamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged dreams, newest first",
	RunE:  runDreamList,
}

func init() {
	dreamAddCmd.Flags().StringVarP(&dreamTitle, "title", "t", "", "short title")
	dreamAddCmd.Flags().StringVarP(&dreamLocation, "location", "l", "", "where the dream took place")
	dreamAddCmd.Flags().StringVarP(&dreamEmotion, "emotion", "e", "", "dominant emotion")
	dreamAddCmd.Flags().IntVarP(&dreamIntensity, "intensity", "i", 5, "intensity 1-10")
	dreamAddCmd.Flags().StringSliceVar(&dreamThemes, "themes", nil, "recurring themes")
	dreamAddCmd.Flags().StringSliceVar(&dreamObjects, "objects", nil, "notable objects")
	dreamAddCmd.Flags().StringVar(&dreamDate, "date", "", "dream date (YYYY-MM-DD, default today)")

	dreamListCmd.Flags().IntVarP(&dreamLimit, "limit", "n", 20, "max results (0 for all)")

	dreamCmd.AddCommand(dreamAddCmd)
	dreamCmd.AddCommand(dreamListCmd)
}

// parseDate parses a YYYY-MM-DD flag, defaulting to today.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return t, nil
}

func runDreamAdd(cmd *cobra.Command, args []string) error {
	if dreamIntensity < 1 || dreamIntensity > 10 {
		return fmt.Errorf("intensity must be between 1 and 10")
	}
	date, err := parseDate(dreamDate)
	if err != nil {
		return err
	}

	svc, err := dreamService(true)
	if err != nil {
		return err
	}

	ctx := context.Background()
	dream, err := svc.Create(ctx, models.DreamInput{
		Title:       dreamTitle,
		Description: args[0],
		Location:    dreamLocation,
		Emotion:     dreamEmotion,
		Intensity:   dreamIntensity,
		Themes:      dreamThemes,
		Objects:     dreamObjects,
		DreamDate:   date,
	})
	if err != nil {
		return fmt.Errorf("add dream: %w", err)
	}

	id := models.MustRecordIDString(dream.ID)
	fmt.Printf("Logged dream %s\n", id)
	if !dream.HasEmbedding() {
		fmt.Println("Embedding pending - run 'merf reindex' once the provider is reachable.")
	}
	return nil
}

func runDreamList(cmd *cobra.Command, args []string) error {
	svc, err := dreamService(false)
	if err != nil {
		return err
	}

	dreams, err := svc.List(context.Background(), dreamLimit)
	if err != nil {
		return fmt.Errorf("list dreams: %w", err)
	}

	if len(dreams) == 0 {
		fmt.Println("No dreams logged yet.")
		return nil
	}

	fmt.Printf("Dreams (%d):\n\n", len(dreams))
	for _, d := range dreams {
		id := models.MustRecordIDString(d.ID)
		title := d.Title
		if title == "" {
			title = d.Description
			if len([]rune(title)) > 50 {
				title = string([]rune(title)[:47]) + "..."
			}
		}
		embeddedMark := ""
		if !d.HasEmbedding() {
			embeddedMark = " [unembedded]"
		}
		fmt.Printf("- %s  %s  (%s)%s\n", d.DreamDate.Format("2006-01-02"), title, id, embeddedMark)
		if verbose {
			fmt.Printf("  %s\n", d.Description)
			if d.Location != "" || d.Emotion != "" {
				fmt.Printf("  Location: %s  Emotion: %s  Intensity: %d\n", d.Location, d.Emotion, d.Intensity)
			}
		}
	}
	return nil
}
