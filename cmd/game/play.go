package main

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/felwinter/trails/internal/catalog"
	"github.com/felwinter/trails/internal/config"
	"github.com/felwinter/trails/internal/engine"
	"github.com/felwinter/trails/internal/narrator"
	"github.com/felwinter/trails/internal/store"
	"github.com/felwinter/trails/internal/tui"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if catalogPath != "" {
		cfg.CatalogPath = catalogPath
	}
	return cfg, nil
}

func runGame(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The alt screen owns stdout, so logs go to a file.
	f, err := tea.LogToFile(cfg.LogFile, "felwinter")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	src, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Seed(ctx, src); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	c, err := st.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog from %s: %w", cfg.DBPath, err)
	}
	logger.Info("catalog ready", "title", c.Title, "scenes", len(c.Scenes), "db", cfg.DBPath)

	var narr narrator.Narrator = narrator.Plain{}
	if cfg.NarrationEnabled() {
		g, err := narrator.NewGemini(ctx, cfg.GeminiAPIKey, cfg.NarrationModel, c.Title)
		if err != nil {
			logger.Warn("narration disabled", "error", err)
		} else {
			narr = g
		}
	}
	defer narr.Close()

	eng := engine.New(c, st, logger)
	return tui.Run(eng, narr, c.Title, logger)
}
