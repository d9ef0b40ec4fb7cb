// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/docufetch/pkg/types"
)

// doajAPIBase is the DOAJ article search endpoint; the query is a path
// segment. Declared as a var so tests can substitute an httptest server.
var doajAPIBase = "https://doaj.org/api/search/articles"

// DOAJ queries the Directory of Open Access Journals.
type DOAJ struct {
	HTTP
	APIKey string
}

func (d *DOAJ) Name() string             { return "doaj" }
func (d *DOAJ) Category() types.Category { return types.CategoryAcademic }

func (d *DOAJ) Search(ctx context.Context, keyword string, limit int) ([]RawHit, error) {
	limit = clampLimit(limit, 50, 100)

	params := url.Values{
		"page":     {"1"},
		"pageSize": {strconv.Itoa(limit)},
	}
	if d.APIKey != "" {
		params.Set("api_key", d.APIKey)
	}
	reqURL := doajAPIBase + "/" + url.PathEscape(keyword) + "?" + params.Encode()

	var dr doajResponse
	if err := d.getJSON(ctx, d.Name(), reqURL, nil, &dr); err != nil {
		return nil, err
	}

	hits := make([]RawHit, 0, len(dr.Results))
	for _, r := range dr.Results {
		b := r.BibJSON
		h := RawHit{
			ID:        r.ID,
			Title:     b.Title,
			Abstract:  b.Abstract,
			Published: b.Year,
		}
		if b.Year != "" && b.Month != "" {
			if m, err := strconv.Atoi(b.Month); err == nil {
				h.Published = b.Year + "-" + twoDigit(m)
			}
		}
		for _, id := range b.Identifier {
			if strings.EqualFold(id.Type, "doi") && id.ID != "" {
				h.ID = id.ID
				h.URL = "https://doi.org/" + id.ID
			}
		}
		for _, l := range b.Link {
			if h.URL == "" {
				h.URL = l.URL
			}
			if strings.EqualFold(l.Type, "fulltext") && strings.Contains(strings.ToLower(l.ContentType), "pdf") {
				h.PDFURL = l.URL
			}
		}
		for _, a := range b.Author {
			h.Authors = append(h.Authors, a.Name)
		}
		hits = append(hits, h)
	}
	return truncate(hits, limit), nil
}

func twoDigit(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// DOAJ API JSON structures.
type doajResponse struct {
	Total   int          `json:"total"`
	Results []doajResult `json:"results"`
}

type doajResult struct {
	ID      string      `json:"id"`
	BibJSON doajBibJSON `json:"bibjson"`
}

type doajBibJSON struct {
	Title      string           `json:"title"`
	Abstract   string           `json:"abstract"`
	Year       string           `json:"year"`
	Month      string           `json:"month"`
	Author     []doajAuthor     `json:"author"`
	Identifier []doajIdentifier `json:"identifier"`
	Link       []doajLink       `json:"link"`
}

type doajAuthor struct {
	Name string `json:"name"`
}

type doajIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type doajLink struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}
