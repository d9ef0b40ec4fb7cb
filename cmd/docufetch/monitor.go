package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docufetch/internal/orchestrate"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Fetch now and then every update interval until interrupted",
	Long: `Monitor runs fetch immediately and repeats it every update_interval hours
(see docufetch interval). Press Ctrl-C to stop; the current run finishes
its in-flight requests and exits.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	addRunFlags(monitorCmd)
	monitorCmd.Flags().Duration("every", 0, "override the configured interval (e.g. 30m)")

	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	opts, err := runOptions(cmd)
	if err != nil {
		return err
	}
	opts.Download = true

	interval, _ := cmd.Flags().GetDuration("every")
	if interval == 0 {
		interval = time.Duration(cfg.UpdateInterval) * time.Hour
	}

	ctx := cmd.Context()
	o, store, err := openPipeline(ctx, opts.Download)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("Monitoring %d keywords every %s\n", len(cfg.Keywords), interval)
	p := printer(cmd)
	err = o.Monitor(ctx, interval, opts, func(s orchestrate.Summary) {
		if err := p.Summary(s); err != nil {
			logger.Error("printing summary", "error", err)
		}
	})
	fmt.Println("Monitor stopped")
	return err
}
