// Package cli provides the command-line interface for merf.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/merfai/merf-go/internal/config"
	"github.com/merfai/merf-go/internal/db"
	"github.com/merfai/merf-go/internal/engine"
	"github.com/merfai/merf-go/internal/llm"
	"github.com/merfai/merf-go/internal/metrics"
	"github.com/merfai/merf-go/internal/service"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, db client and metrics
	cfg       config.Config
	dbClient  *db.Client
	collector *metrics.Collector
	lexicon   engine.Lexicon

	// Lazy-initialized LLM components
	embedder *llm.Embedder
	model    *llm.Model

	closeLog func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "merf",
	Short: "Dream and deja vu matching engine",
	Long: `Merf logs dreams and real-world deja vu experiences, then scores how
they relate: which past entries a dream most plausibly corresponds to,
and how likely a dream is to surface later as deja vu.

Matching is hybrid - embedding cosine similarity blended with a field
heuristic - with a motif catalog covering common dream archetypes.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		collector = metrics.NewCollector()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, cleanup := config.SetupLogger(cfg.LogFile, level)
		slog.SetDefault(logger)
		closeLog = cleanup

		var err error
		lexicon, err = loadLexicon()
		if err != nil {
			return fmt.Errorf("load motif catalog: %w", err)
		}

		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		dbClient, err = db.NewClient(ctx, dbCfg, nil, collector)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if closeLog != nil {
			if err := closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// loadLexicon returns the configured motif catalog, falling back to the
// embedded default.
func loadLexicon() (engine.Lexicon, error) {
	if cfg.MotifLexiconPath == "" {
		return engine.DefaultLexicon(), nil
	}
	return engine.LoadLexiconFile(cfg.MotifLexiconPath)
}

// initLLM lazily initializes the embedder and narrative model. Commands
// that only read records skip this.
func initLLM() error {
	if embedder != nil {
		return nil
	}
	var err error
	embedder, err = llm.NewEmbedder(cfg, collector)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	model, err = llm.NewModel(cfg, collector)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}
	return nil
}

// dreamService returns the dream service, with or without an embedder.
func dreamService(requireLLM bool) (*service.DreamService, error) {
	if requireLLM {
		if err := initLLM(); err != nil {
			return nil, err
		}
		return service.NewDreamService(dbClient, embedder), nil
	}
	return service.NewDreamService(dbClient, nil), nil
}

// dejavuService returns the deja vu service, with or without an embedder.
func dejavuService(requireLLM bool) (*service.DejavuService, error) {
	if requireLLM {
		if err := initLLM(); err != nil {
			return nil, err
		}
		return service.NewDejavuService(dbClient, embedder), nil
	}
	return service.NewDejavuService(dbClient, nil), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(dreamCmd)
	rootCmd.AddCommand(dejavuCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(likelihoodCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}
