package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/merfai/merf-go/internal/api"
	"github.com/merfai/merf-go/internal/service"
	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server. Same engine as the CLI commands, exposed
under /api for other Merf services.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (default from MERF_SERVER_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := initLLM(); err != nil {
		return err
	}

	port := servePort
	if port == "" {
		port = cfg.ServerPort
	}

	logger := slog.Default()

	dreams := service.NewDreamService(dbClient, embedder)
	entries := service.NewDejavuService(dbClient, embedder)
	suggest := service.NewSuggestionService(dbClient, dbClient, model, lexicon, collector)
	likelihood := service.NewLikelihoodService(dbClient, model, lexicon, collector)

	router := api.NewRouter(dreams, entries, suggest, likelihood, collector, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // Long for LLM responses
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s/api", port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
