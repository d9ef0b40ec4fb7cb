package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docufetch/internal/config"
)

var apiCmd = &cobra.Command{
	Use:   "api <source> <key>",
	Short: "Set the API key or contact email for a source",
	Long: `Api stores a credential in the config file. Sources that take one:
core, semantic_scholar and doaj (API keys); crossref, unpaywall, pubmed and
openalex (contact email).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetAPIKey(&cfg, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Set credential for %s\n", args[0])
		return saveConfig()
	},
}

var intervalCmd = &cobra.Command{
	Use:   "interval <hours>",
	Short: "Set how often monitor runs, in hours",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("interval must be a whole number of hours: %w", err)
		}
		if err := config.SetInterval(&cfg, hours); err != nil {
			return err
		}
		fmt.Printf("Update interval set to %d hours\n", hours)
		return saveConfig()
	},
}

func init() {
	rootCmd.AddCommand(apiCmd, intervalCmd)
}
