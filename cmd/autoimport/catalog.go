package main

import (
	"github.com/spf13/cobra"
)

var flagFormat string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the identifiers that get explicit imports",
	Long:  "Prints the effective catalog: the built-in Nuxt table, or the one from the config file.",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&flagFormat, "format", "text", "output format: text|json|yaml")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := newCatalog(cfg)
	if err != nil {
		return err
	}

	entries := cat.Entries()
	if flagFormat == "text" {
		formatCatalogText(cmd.OutOrStdout(), entries)
		return nil
	}
	return writeStructured(cmd.OutOrStdout(), flagFormat, entries)
}
