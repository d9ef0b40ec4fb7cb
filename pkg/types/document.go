// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data structures shared across docufetch packages.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Category separates scholarly sources from news sources.
type Category string

const (
	CategoryAcademic Category = "academic"
	CategoryNews     Category = "news"
)

// CategoryFilter selects which source categories participate in a run.
type CategoryFilter string

const (
	FilterAcademic CategoryFilter = "academic"
	FilterNews     CategoryFilter = "news"
	FilterBoth     CategoryFilter = "both"
)

// Allows reports whether sources of category c pass the filter. The empty
// filter behaves like FilterBoth.
func (f CategoryFilter) Allows(c Category) bool {
	switch f {
	case FilterAcademic:
		return c == CategoryAcademic
	case FilterNews:
		return c == CategoryNews
	default:
		return true
	}
}

// ParseCategoryFilter converts a user-supplied string into a CategoryFilter.
func ParseCategoryFilter(s string) (CategoryFilter, error) {
	switch f := CategoryFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAcademic, FilterNews, FilterBoth:
		return f, nil
	case "":
		return FilterBoth, nil
	default:
		return "", fmt.Errorf("unknown category %q (want academic, news or both)", s)
	}
}

// Document is the canonical form of one search hit after normalization.
type Document struct {
	// Title is never empty; internal whitespace is collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors holds display names in source order, "Given Family" form.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// SourceName identifies the adapter that produced the hit.
	SourceName string `json:"source" yaml:"source"`

	Category Category `json:"category" yaml:"category"`

	// URL is the landing page of the document.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// PDFURL is a direct link to the full text, empty when the source has none.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// PublishedAt is zero when the source gave no parseable date.
	PublishedAt time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`

	// IdentityKey is assigned by the identity resolver and is empty before that.
	IdentityKey string `json:"identity_key,omitempty" yaml:"identity_key,omitempty"`

	Abstract   string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	ExternalID string `json:"external_id,omitempty" yaml:"external_id,omitempty"`

	// Keyword is the search keyword that surfaced the document.
	Keyword string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
}

// DownloadURL returns the link a downloader should fetch: the PDF when
// preferPDF is set and one exists, the landing page otherwise.
func (d Document) DownloadURL(preferPDF bool) string {
	if preferPDF && d.PDFURL != "" {
		return d.PDFURL
	}
	if d.URL != "" {
		return d.URL
	}
	return d.PDFURL
}
