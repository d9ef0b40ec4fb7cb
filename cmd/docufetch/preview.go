package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docufetch/internal/report"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show what fetch would download without recording anything",
	Long: `Preview runs the same search and deduplication as fetch against a copy of
the history, then prints each source's counts and the documents that would
be downloaded. The history is left unchanged.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	addRunFlags(previewCmd)
	previewCmd.Flags().Bool("json", false, "print the plan as JSON")

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	opts, err := runOptions(cmd)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx := cmd.Context()
	o, store, err := openPipeline(ctx, false)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := o.Preview(ctx, opts)
	if err != nil {
		return err
	}
	if asJSON {
		return report.JSON(os.Stdout, sum.Results)
	}

	p := printer(cmd)
	for _, r := range sum.Results {
		fmt.Printf("\n%s\n", r.Keyword)
		if err := p.Outcomes(r); err != nil {
			return err
		}
	}
	fmt.Println()
	return p.Plan(sum.Plan())
}
