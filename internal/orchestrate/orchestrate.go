// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate drives aggregation runs across every configured
// keyword and hands the resulting plan to the downloader.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/docufetch/internal/aggregate"
	"github.com/pdiddy/docufetch/internal/dedup"
	"github.com/pdiddy/docufetch/internal/fetch"
	"github.com/pdiddy/docufetch/internal/logging"
	"github.com/pdiddy/docufetch/internal/source"
	"github.com/pdiddy/docufetch/pkg/types"
)

// ErrNoKeywords is returned when a run has no keywords to search.
var ErrNoKeywords = errors.New("no keywords configured")

// Downloader consumes a plan.
type Downloader interface {
	Batch(ctx context.Context, docs []types.Document) fetch.BatchResult
}

// Orchestrator runs keywords sequentially against a fixed source set.
type Orchestrator struct {
	Config     types.Config
	Store      dedup.Store
	Sources    []source.Ref
	Downloader Downloader

	// Out receives operator-facing progress lines.
	Out    io.Writer
	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// RunOptions narrows a single run.
type RunOptions struct {
	// Category overrides the configured category filter when set.
	Category types.CategoryFilter

	// Keywords overrides the configured keywords when non-empty.
	Keywords []string

	// Download hands the plan to the downloader.
	Download bool
}

// Summary is the outcome of one orchestrated run.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Results  []aggregate.Result
	Batch    fetch.BatchResult
}

// Plan returns every keyword's plan concatenated in keyword order.
func (s Summary) Plan() []types.Document {
	var plan []types.Document
	for _, r := range s.Results {
		plan = append(plan, r.Plan...)
	}
	return plan
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

// Run aggregates every keyword against the dedup store and, when asked,
// downloads the combined plan.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	sum, err := o.aggregate(ctx, o.Store, opts)
	if err != nil {
		return sum, err
	}

	plan := sum.Plan()
	if opts.Download && o.Downloader != nil && len(plan) > 0 {
		fmt.Fprintf(o.out(), "\nDownloading %d documents\n", len(plan))
		sum.Batch = o.Downloader.Batch(ctx, plan)
	}
	sum.Finished = o.now()
	return sum, nil
}

// Preview aggregates against an in-memory copy of the store, so nothing is
// recorded and nothing is downloaded.
func (o *Orchestrator) Preview(ctx context.Context, opts RunOptions) (Summary, error) {
	snap, err := dedup.Snapshot(ctx, o.Store)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", aggregate.ErrStoreLoad, err)
	}
	opts.Download = false
	sum, err := o.aggregate(ctx, snap, opts)
	sum.Finished = o.now()
	return sum, err
}

func (o *Orchestrator) aggregate(ctx context.Context, store dedup.Store, opts RunOptions) (Summary, error) {
	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = o.Config.Keywords
	}
	if len(keywords) == 0 {
		return Summary{}, ErrNoKeywords
	}
	filter := opts.Category
	if filter == "" {
		filter = o.Config.Category
	}

	sum := Summary{RunID: uuid.NewString(), Started: o.now()}
	log := o.logger().With(slog.String("run_id", sum.RunID))

	agg, err := aggregate.New(ctx, store,
		aggregate.WithLogger(log),
		aggregate.WithTimeout(o.Config.SourceTimeout),
		aggregate.WithMaxParallel(o.Config.MaxParallel),
		aggregate.WithClock(o.Now),
		aggregate.WithRunID(sum.RunID),
	)
	if err != nil {
		return sum, err
	}

	for _, kw := range keywords {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		fmt.Fprintf(o.out(), "Searching %q\n", kw)
		res, err := agg.Run(ctx, kw, o.Sources, filter, o.Config.MaxResultsPerSource)
		if err != nil {
			return sum, fmt.Errorf("keyword %q: %w", kw, err)
		}
		sum.Results = append(sum.Results, res)

		var dup int
		for _, out := range res.Report {
			dup += out.Duplicates
		}
		fmt.Fprintf(o.out(), "  %d new, %d already seen, %d sources failed\n", len(res.Plan), dup, len(res.Failures()))
	}
	return sum, nil
}

// RetryPending downloads every entry that was seen but never downloaded.
func (o *Orchestrator) RetryPending(ctx context.Context) (fetch.BatchResult, error) {
	pending, err := dedup.Pending(ctx, o.Store)
	if err != nil {
		return fetch.BatchResult{}, err
	}
	if len(pending) == 0 || o.Downloader == nil {
		fmt.Fprintln(o.out(), "No pending documents")
		return fetch.BatchResult{}, nil
	}

	docs := make([]types.Document, len(pending))
	for i, e := range pending {
		docs[i] = e.Document()
	}
	fmt.Fprintf(o.out(), "Retrying %d pending documents\n", len(docs))
	return o.Downloader.Batch(ctx, docs), nil
}

// Monitor runs immediately and then once per interval until ctx is done.
// A failed run is logged and the schedule continues.
func (o *Orchestrator) Monitor(ctx context.Context, interval time.Duration, opts RunOptions, each func(Summary)) error {
	if interval <= 0 {
		return fmt.Errorf("monitor interval must be positive, got %v", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		sum, err := o.Run(ctx, opts)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			o.logger().Error("monitor run failed", slog.String("error", err.Error()))
			fmt.Fprintf(o.out(), "run failed: %v\n", err)
		case each != nil:
			each(sum)
		}

		fmt.Fprintf(o.out(), "Next run at %s\n", o.now().Add(interval).Format(time.DateTime))
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Stats summarizes the dedup store.
type Stats struct {
	Total      int
	Downloaded int
	Pending    int

	// Bytes is the on-disk size of downloaded files that are still present.
	Bytes int64

	BySource   map[string]int
	ByCategory map[string]int
	ByKeyword  map[string]int

	FirstSeen time.Time
	LastSeen  time.Time
}

// SourceCount is one row of a per-source breakdown.
type SourceCount struct {
	Name  string
	Count int
}

// SortedSources returns BySource ordered by count, then name.
func (s Stats) SortedSources() []SourceCount {
	return sortCounts(s.BySource)
}

// SortedCategories returns ByCategory ordered by count, then name.
func (s Stats) SortedCategories() []SourceCount {
	return sortCounts(s.ByCategory)
}

func sortCounts(m map[string]int) []SourceCount {
	out := make([]SourceCount, 0, len(m))
	for k, v := range m {
		out = append(out, SourceCount{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CollectStats reads every entry in store and summarizes it.
func CollectStats(ctx context.Context, store dedup.Store) (Stats, error) {
	entries, err := store.Entries(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Total:      len(entries),
		BySource:   make(map[string]int),
		ByCategory: make(map[string]int),
		ByKeyword:  make(map[string]int),
	}
	for _, e := range entries {
		st.BySource[e.FirstSeenSource]++
		if e.Category != "" {
			st.ByCategory[string(e.Category)]++
		}
		if e.Keyword != "" {
			st.ByKeyword[e.Keyword]++
		}
		if st.FirstSeen.IsZero() || e.FirstSeenAt.Before(st.FirstSeen) {
			st.FirstSeen = e.FirstSeenAt
		}
		if e.FirstSeenAt.After(st.LastSeen) {
			st.LastSeen = e.FirstSeenAt
		}

		if !e.Downloaded() {
			st.Pending++
			continue
		}
		st.Downloaded++
		if strings.Contains(e.DownloadedPath, "://") {
			continue
		}
		if fi, err := os.Stat(e.DownloadedPath); err == nil {
			st.Bytes += fi.Size()
		}
	}
	return st, nil
}
