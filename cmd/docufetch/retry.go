package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Download documents that were found but never downloaded",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		o, store, err := openPipeline(ctx, true)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := o.RetryPending(ctx)
		if err != nil {
			return err
		}
		if result.HasFailures() {
			return fmt.Errorf("%d document(s) failed to download", result.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(retryCmd)
}
