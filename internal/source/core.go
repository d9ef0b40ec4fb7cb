// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/docufetch/pkg/types"
)

// coreAPIBase is the CORE v3 works search endpoint. Declared as a var so
// tests can substitute an httptest server.
var coreAPIBase = "https://api.core.ac.uk/v3/search/works"

// Core queries the CORE open-access aggregator. It requires an API key.
type Core struct {
	HTTP
	APIKey string
}

func (c *Core) Name() string             { return "core" }
func (c *Core) Category() types.Category { return types.CategoryAcademic }

func (c *Core) Search(ctx context.Context, keyword string, limit int) ([]RawHit, error) {
	if c.APIKey == "" {
		return nil, newError(c.Name(), types.ErrorAuth, "no CORE API key configured")
	}
	limit = clampLimit(limit, 50, 100)

	params := url.Values{
		"q":     {keyword},
		"limit": {strconv.Itoa(limit)},
	}
	header := http.Header{"Authorization": {"Bearer " + c.APIKey}}

	var cr coreResponse
	if err := c.getJSON(ctx, c.Name(), coreAPIBase+"?"+params.Encode(), header, &cr); err != nil {
		return nil, err
	}

	hits := make([]RawHit, 0, len(cr.Results))
	for _, w := range cr.Results {
		h := RawHit{
			ID:        strconv.FormatInt(w.ID, 10),
			Title:     w.Title,
			PDFURL:    w.DownloadURL,
			Published: w.PublishedDate,
			Abstract:  w.Abstract,
		}
		if w.DOI != "" {
			h.ID = w.DOI
			h.URL = "https://doi.org/" + w.DOI
		}
		for _, l := range w.Links {
			if l.Type == "display" && h.URL == "" {
				h.URL = l.URL
			}
		}
		if h.URL == "" {
			h.URL = w.DownloadURL
		}
		if h.Published == "" && w.YearPublished > 0 {
			h.Published = strconv.Itoa(w.YearPublished)
		}
		for _, a := range w.Authors {
			h.Authors = append(h.Authors, a.Name)
		}
		hits = append(hits, h)
	}
	return truncate(hits, limit), nil
}

// CORE API JSON structures.
type coreResponse struct {
	TotalHits int        `json:"totalHits"`
	Results   []coreWork `json:"results"`
}

type coreWork struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Abstract      string       `json:"abstract"`
	DOI           string       `json:"doi"`
	DownloadURL   string       `json:"downloadUrl"`
	PublishedDate string       `json:"publishedDate"`
	YearPublished int          `json:"yearPublished"`
	Authors       []coreAuthor `json:"authors"`
	Links         []coreLink   `json:"links"`
}

type coreAuthor struct {
	Name string `json:"name"`
}

type coreLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
