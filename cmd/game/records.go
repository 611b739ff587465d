package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felwinter/trails/internal/store"
)

var recordsCmd = &cobra.Command{
	Use:   "records [player]",
	Short: "Show a player's finished games",
	Args:  cobra.ExactArgs(1),
	RunE:  showRecords,
}

func showRecords(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	history, err := st.History(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to read records: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(history) == 0 {
		fmt.Fprintf(out, "No games recorded for %s.\n", name)
		return nil
	}

	fmt.Fprintf(out, "Games played by %s:\n", name)
	for _, rec := range history {
		inv := strings.Join(rec.Inventory, ", ")
		if inv == "" {
			inv = "nothing"
		}
		fmt.Fprintf(out, "  %s  %-8s health %3d  carrying %s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Outcome, rec.Health, inv)
	}
	return nil
}
