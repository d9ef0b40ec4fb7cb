// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raw source hits into canonical Documents.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/docufetch/internal/source"
	"github.com/pdiddy/docufetch/pkg/types"
)

// ErrMissingTitle is returned for hits whose title is empty after trimming.
var ErrMissingTitle = errors.New("missing title")

// markupPattern matches tag-shaped spans some sources embed in titles
// (Crossref JATS tags, HTML emphasis). Bare comparison signs are left alone.
var markupPattern = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)

// Normalize maps one raw hit onto a Document. Only a missing title fails the
// hit; malformed authors and dates degrade to empty values. The returned
// Document has no identity key yet.
func Normalize(hit source.RawHit, sourceName string, category types.Category) (types.Document, error) {
	title := cleanText(hit.Title)
	if title == "" {
		return types.Document{}, fmt.Errorf("%s hit %q: %w", sourceName, hit.ID, ErrMissingTitle)
	}

	return types.Document{
		Title:       title,
		Authors:     Authors(hit.Authors),
		SourceName:  sourceName,
		Category:    category,
		URL:         strings.TrimSpace(hit.URL),
		PDFURL:      strings.TrimSpace(hit.PDFURL),
		PublishedAt: ParseDate(hit.Published),
		Abstract:    cleanText(hit.Abstract),
		ExternalID:  strings.TrimSpace(hit.ID),
	}, nil
}

// cleanText strips inline markup and collapses whitespace.
func cleanText(s string) string {
	if strings.ContainsRune(s, '<') {
		s = markupPattern.ReplaceAllString(s, " ")
	}
	return strings.Join(strings.Fields(s), " ")
}
