package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docufetch/internal/dedup"
	"github.com/pdiddy/docufetch/internal/fetch"
	"github.com/pdiddy/docufetch/internal/httputil"
	"github.com/pdiddy/docufetch/internal/orchestrate"
	"github.com/pdiddy/docufetch/internal/source"
	"github.com/pdiddy/docufetch/pkg/types"
)

// openPipeline wires the store, sources and downloader for one command.
// The caller must Close the returned store.
func openPipeline(ctx context.Context, withDownloader bool) (*orchestrate.Orchestrator, dedup.Store, error) {
	c := runtimeConfig()

	store, err := dedup.Open(ctx, c.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("opening dedup store: %w", err)
	}

	client := httputil.NewClient(c.HTTP.Timeout)
	o := &orchestrate.Orchestrator{
		Config:  c,
		Store:   store,
		Sources: source.Build(c, client),
		Out:     os.Stdout,
		Logger:  logger,
	}
	if withDownloader {
		sink, err := fetch.NewSink(ctx, c.Download)
		if err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("opening download sink: %w", err)
		}
		o.Downloader = fetch.New(c, client, store, sink, os.Stdout, logger)
	}
	return o, store, nil
}

// runOptions reads the --category and --keyword flags shared by the run
// commands.
func runOptions(cmd *cobra.Command) (orchestrate.RunOptions, error) {
	var opts orchestrate.RunOptions
	category, _ := cmd.Flags().GetString("category")
	if category != "" {
		f, err := types.ParseCategoryFilter(category)
		if err != nil {
			return opts, err
		}
		opts.Category = f
	}
	opts.Keywords, _ = cmd.Flags().GetStringArray("keyword")
	return opts, nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("category", "", "source category: academic, news, or both (default from config)")
	cmd.Flags().StringArray("keyword", nil, "search this keyword instead of the configured ones (repeatable)")
}
