// Package main is the entry point for the Trails of Felwinter game.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath      string
	catalogPath string
)

var rootCmd = &cobra.Command{
	Use:   "felwinter",
	Short: "Trails of Felwinter",
	Long:  `Trails of Felwinter is a terminal adventure through forests, caves and goblin fights.`,
	RunE:  runGame,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides FELWINTER_DB)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog YAML file (overrides FELWINTER_CATALOG)")

	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(catalogCmd)
}
