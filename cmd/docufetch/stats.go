package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docufetch/internal/dedup"
	"github.com/pdiddy/docufetch/internal/orchestrate"
	"github.com/pdiddy/docufetch/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals for documents seen and downloaded",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		store, err := dedup.Open(ctx, runtimeConfig().Store)
		if err != nil {
			return fmt.Errorf("opening dedup store: %w", err)
		}
		defer store.Close()

		s, err := orchestrate.CollectStats(ctx, store)
		if err != nil {
			return err
		}
		if asJSON {
			return report.JSON(os.Stdout, s)
		}
		return printer(cmd).Stats(s)
	},
}

var clearHistoryCmd = &cobra.Command{
	Use:   "clear-history",
	Short: "Forget every document seen so far",
	Long: `Clear-history deletes the deduplication history, so the next fetch treats
every hit as new. Downloaded files are not touched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to clear history without --yes")
		}

		ctx := cmd.Context()
		store, err := dedup.Open(ctx, runtimeConfig().Store)
		if err != nil {
			return fmt.Errorf("opening dedup store: %w", err)
		}
		defer store.Close()

		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("History cleared")
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "print statistics as JSON")
	clearHistoryCmd.Flags().Bool("yes", false, "confirm deleting the history")

	rootCmd.AddCommand(statsCmd, clearHistoryCmd)
}
