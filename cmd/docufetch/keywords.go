package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docufetch/internal/config"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Manage the search keywords",
	Long: `Keywords are searched one at a time on every run. With no subcommand,
keywords lists them.`,
	RunE: listKeywords,
}

var keywordsAddCmd = &cobra.Command{
	Use:   "add <keyword>...",
	Short: "Add one or more keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, kw := range args {
			if config.AddKeyword(&cfg, kw) {
				fmt.Printf("Added %q\n", kw)
			} else {
				fmt.Printf("Skipped %q (blank or already present)\n", kw)
			}
		}
		return saveConfig()
	},
}

var keywordsRemoveCmd = &cobra.Command{
	Use:   "remove <keyword>...",
	Short: "Remove one or more keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, kw := range args {
			if config.RemoveKeyword(&cfg, kw) {
				fmt.Printf("Removed %q\n", kw)
			} else {
				fmt.Printf("Not found: %q\n", kw)
			}
		}
		return saveConfig()
	},
}

var keywordsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every keyword",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config.ClearKeywords(&cfg)
		fmt.Println("Cleared all keywords")
		return saveConfig()
	},
}

var keywordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured keywords",
	Args:  cobra.NoArgs,
	RunE:  listKeywords,
}

func listKeywords(cmd *cobra.Command, args []string) error {
	if len(cfg.Keywords) == 0 {
		fmt.Println("No keywords configured. Add one with: docufetch keywords add <keyword>")
		return nil
	}
	for i, kw := range cfg.Keywords {
		fmt.Printf("%2d. %s\n", i+1, kw)
	}
	return nil
}

func init() {
	keywordsCmd.AddCommand(keywordsAddCmd, keywordsRemoveCmd, keywordsClearCmd, keywordsListCmd)
	rootCmd.AddCommand(keywordsCmd)
}
