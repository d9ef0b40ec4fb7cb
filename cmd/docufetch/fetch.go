package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docufetch/internal/report"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Search every enabled source and download new documents",
	Long: `Fetch searches each keyword against the enabled sources, merges the
hits, drops documents seen in earlier runs, and downloads the rest.
A source that fails or times out is reported and the run continues.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	addRunFlags(fetchCmd)
	fetchCmd.Flags().Bool("no-download", false, "record new documents without downloading them")
	fetchCmd.Flags().Bool("json", false, "print the run summary as JSON")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	opts, err := runOptions(cmd)
	if err != nil {
		return err
	}
	noDownload, _ := cmd.Flags().GetBool("no-download")
	opts.Download = !noDownload
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx := cmd.Context()
	o, store, err := openPipeline(ctx, opts.Download)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := o.Run(ctx, opts)
	if err != nil {
		return err
	}
	if asJSON {
		return report.JSON(os.Stdout, sum)
	}
	if err := printer(cmd).Summary(sum); err != nil {
		return err
	}
	if sum.Batch.HasFailures() {
		return fmt.Errorf("%d document(s) failed to download", sum.Batch.Failed)
	}
	return nil
}
