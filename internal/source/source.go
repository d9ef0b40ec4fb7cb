// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source queries external document sources (scholarly APIs, a
// search-engine scrape and news feeds) and returns their raw hits.
//
// Every source implements Adapter. Adapters own their query syntax, rate
// limits and 429 backoff; callers see only RawHit values or an *Error whose
// Kind says why the source produced nothing.
package source

import (
	"context"

	"github.com/pdiddy/docufetch/pkg/types"
)

//go:generate mockgen -destination=mocks/mock_adapter.go -package=mocks github.com/pdiddy/docufetch/internal/source Adapter

// Adapter searches a single external source.
type Adapter interface {
	Name() string
	Category() types.Category
	Search(ctx context.Context, keyword string, limit int) ([]RawHit, error)
}

// RawHit is one search result in whatever shape the source delivered it.
// Nothing in it is guaranteed; the normalizer decides what is usable.
type RawHit struct {
	// ID is the source-native identifier (arXiv ID, DOI, PMID, ...).
	ID    string
	Title string

	// Authors holds names as the source spelled them. A source that only
	// offers a joined author string puts it in a single element.
	Authors []string

	URL    string
	PDFURL string

	// Published is the date in the source's own representation.
	Published string

	Abstract string
}

// Ref pairs an adapter with its enabled flag from configuration.
type Ref struct {
	Adapter Adapter
	Enabled bool
}

// Name returns the adapter name.
func (r Ref) Name() string { return r.Adapter.Name() }

// Category returns the adapter category.
func (r Ref) Category() types.Category { return r.Adapter.Category() }
