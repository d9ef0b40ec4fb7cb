// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate fans one keyword out to a set of sources, merges their
// hits into a single ordered stream and filters it against the dedup store.
//
// An Aggregator owns the in-memory membership set for the lifetime of a
// process. Each Run queries the requested sources concurrently, normalizes
// every hit, resolves its identity key and admits a document to the plan
// only if its key has never been seen. Admitted keys are recorded in the
// store before they join the plan, so a crash after Run returns can lose a
// download but never repeat one.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docufetch/internal/dedup"
	"github.com/pdiddy/docufetch/internal/identity"
	"github.com/pdiddy/docufetch/internal/logging"
	"github.com/pdiddy/docufetch/internal/normalize"
	"github.com/pdiddy/docufetch/internal/source"
	"github.com/pdiddy/docufetch/pkg/types"
)

var (
	// ErrNoSources is returned by Run when no source is both enabled and
	// allowed by the category filter.
	ErrNoSources = errors.New("no sources enabled for the requested category")

	// ErrStoreLoad is returned by New when the membership set cannot be
	// loaded from the store.
	ErrStoreLoad = errors.New("loading dedup store")
)

// DefaultSourceTimeout bounds a single source query.
const DefaultSourceTimeout = 60 * time.Second

// Result is the outcome of one Run.
type Result struct {
	Keyword string

	// Plan holds the documents to download, in merge order.
	Plan []types.Document

	// Report has one outcome per source passed to Run, in the same order.
	Report []types.SourceOutcome
}

// Failures returns the outcomes of requested sources that failed.
func (r Result) Failures() []types.SourceOutcome {
	var out []types.SourceOutcome
	for _, o := range r.Report {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTimeout sets the per-source query timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithMaxParallel caps the number of sources queried at once. Zero means
// one worker per requested source.
func WithMaxParallel(n int) Option {
	return func(a *Aggregator) { a.maxParallel = n }
}

// WithClock sets the time source used for first-seen timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithRunID tags every entry recorded by this Aggregator.
func WithRunID(id string) Option {
	return func(a *Aggregator) { a.runID = id }
}

// Aggregator merges and deduplicates hits across sources.
type Aggregator struct {
	store       dedup.Store
	logger      *slog.Logger
	timeout     time.Duration
	maxParallel int
	now         func() time.Time
	runID       string

	mu   sync.Mutex
	seen map[string]struct{}
}

// New loads the membership set from store and returns an Aggregator.
func New(ctx context.Context, store dedup.Store, opts ...Option) (*Aggregator, error) {
	a := &Aggregator{
		store:   store,
		logger:  logging.Discard(),
		timeout: DefaultSourceTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	seen, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreLoad, err)
	}
	if seen == nil {
		seen = make(map[string]struct{})
	}
	a.seen = seen
	a.logger.Debug("membership set loaded", slog.Int("keys", len(seen)))
	return a, nil
}

// Known reports whether key is in the membership set.
func (a *Aggregator) Known(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.seen[key]
	return ok
}

// sourceResult is what one worker brings back.
type sourceResult struct {
	hits    []source.RawHit
	err     error
	elapsed time.Duration
}

// Run queries the requested sources for keyword and returns the plan of
// never-seen documents along with one outcome per source. Source failures
// are reported, not returned; the only error is ErrNoSources.
func (a *Aggregator) Run(ctx context.Context, keyword string, sources []source.Ref, filter types.CategoryFilter, limit int) (Result, error) {
	res := Result{Keyword: keyword, Report: make([]types.SourceOutcome, len(sources))}

	var requested []int
	for i, ref := range sources {
		res.Report[i] = types.SourceOutcome{
			SourceName: ref.Name(),
			Category:   ref.Category(),
			Requested:  ref.Enabled && filter.Allows(ref.Category()),
		}
		if res.Report[i].Requested {
			requested = append(requested, i)
		}
	}
	if len(requested) == 0 {
		return res, ErrNoSources
	}

	a.logger.Info("aggregating",
		slog.String("keyword", keyword),
		slog.Int("sources", len(requested)),
		slog.String("category", string(filter)))

	results := make([]sourceResult, len(sources))
	var g errgroup.Group
	if a.maxParallel > 0 {
		g.SetLimit(a.maxParallel)
	}
	for _, i := range requested {
		i := i
		adapter := sources[i].Adapter
		g.Go(func() error {
			results[i] = a.query(ctx, adapter, keyword, limit)
			return nil
		})
	}
	g.Wait()

	for _, i := range requested {
		out := &res.Report[i]
		r := results[i]
		out.Elapsed = r.elapsed

		if r.err != nil {
			out.Error = source.Classify(r.err)
			out.Message = r.err.Error()
			a.logger.Warn("source failed",
				slog.String("source", out.SourceName),
				slog.String("kind", string(out.Error)),
				slog.String("error", out.Message))
			continue
		}

		hits := r.hits
		if limit > 0 && len(hits) > limit {
			hits = hits[:limit]
		}
		out.HitCount = len(hits)

		for _, hit := range hits {
			doc, err := normalize.Normalize(hit, out.SourceName, out.Category)
			if err != nil {
				out.Dropped++
				a.logger.Debug("hit dropped", slog.String("source", out.SourceName), slog.String("error", err.Error()))
				continue
			}
			doc.Keyword = keyword
			doc.IdentityKey = identity.Resolve(doc)

			switch a.admit(ctx, doc) {
			case admitted:
				out.New++
				res.Plan = append(res.Plan, doc)
			case duplicate:
				out.Duplicates++
			case unrecorded:
				out.Unrecorded++
			}
		}

		a.logger.Info("source done",
			slog.String("source", out.SourceName),
			slog.Int("hits", out.HitCount),
			slog.Int("new", out.New),
			slog.Int("duplicates", out.Duplicates),
			slog.Duration("elapsed", out.Elapsed))
	}
	return res, nil
}

// query runs one adapter under its own deadline. An adapter that does not
// return by the deadline is abandoned and reported as a timeout.
func (a *Aggregator) query(ctx context.Context, adapter source.Adapter, keyword string, limit int) sourceResult {
	start := a.now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan sourceResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- sourceResult{err: fmt.Errorf("%s: adapter panic: %v", adapter.Name(), p)}
			}
		}()
		hits, err := adapter.Search(ctx, keyword, limit)
		done <- sourceResult{hits: hits, err: err}
	}()

	var r sourceResult
	select {
	case r = <-done:
	case <-ctx.Done():
		r.err = &source.Error{Source: adapter.Name(), Kind: source.Classify(ctx.Err()), Err: ctx.Err()}
	}
	r.elapsed = a.now().Sub(start)
	return r
}

type admission int

const (
	admitted admission = iota
	duplicate
	unrecorded
)

// admit checks doc against the membership set and records it if new. The
// key joins the set only after the store has committed it.
func (a *Aggregator) admit(ctx context.Context, doc types.Document) admission {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.seen[doc.IdentityKey]; ok {
		return duplicate
	}
	if err := a.store.RecordSeen(ctx, types.EntryFor(doc, a.runID, a.now())); err != nil {
		a.logger.Error("recording document",
			slog.String("key", doc.IdentityKey),
			slog.String("title", doc.Title),
			slog.String("error", err.Error()))
		return unrecorded
	}
	a.seen[doc.IdentityKey] = struct{}{}
	return admitted
}
