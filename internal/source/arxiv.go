// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/docufetch/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Arxiv queries the arXiv Atom API, newest submissions first.
type Arxiv struct {
	HTTP
}

func (a *Arxiv) Name() string             { return "arxiv" }
func (a *Arxiv) Category() types.Category { return types.CategoryAcademic }

func (a *Arxiv) Search(ctx context.Context, keyword string, limit int) ([]RawHit, error) {
	limit = clampLimit(limit, 50, 2000)

	params := url.Values{
		"search_query": {buildArxivQuery(keyword)},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limit)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}

	var feed arxivFeed
	if err := a.getXML(ctx, a.Name(), arxivAPIBase+"?"+params.Encode(), nil, &feed); err != nil {
		return nil, err
	}

	hits := make([]RawHit, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		h := RawHit{
			ID:        extractArxivID(entry.ID),
			Title:     entry.Title,
			URL:       strings.TrimSpace(entry.ID),
			Published: strings.TrimSpace(entry.Published),
			Abstract:  entry.Summary,
		}
		for _, au := range entry.Authors {
			h.Authors = append(h.Authors, au.Name)
		}
		for _, l := range entry.Links {
			if l.Title == "pdf" || l.Type == "application/pdf" {
				h.PDFURL = l.Href
				break
			}
		}
		hits = append(hits, h)
	}
	return truncate(hits, limit), nil
}

// buildArxivQuery requires every keyword term to appear in any field.
func buildArxivQuery(keyword string) string {
	terms := strings.Fields(keyword)
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = "all:" + t
	}
	return strings.Join(parts, " AND ")
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}
