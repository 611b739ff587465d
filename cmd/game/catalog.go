package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felwinter/trails/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the scene catalog",
}

var catalogExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write the catalog to a YAML file for editing",
	Args:  cobra.ExactArgs(1),
	RunE:  exportCatalog,
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate a catalog YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  checkCatalog,
}

func init() {
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogCheckCmd)
}

func exportCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	if err := c.Save(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d scenes to %s\n", len(c.Scenes), args[0])
	return nil
}

func checkCatalog(cmd *cobra.Command, args []string) error {
	c, err := catalog.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d scenes, %d enemies, %d items\n",
		c.Title, len(c.Scenes), len(c.Enemies), len(c.Items))
	return nil
}
