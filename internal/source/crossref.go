// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/docufetch/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// Crossref queries the Crossref REST API. Email joins the polite pool.
type Crossref struct {
	HTTP
	Email string
}

func (c *Crossref) Name() string             { return "crossref" }
func (c *Crossref) Category() types.Category { return types.CategoryAcademic }

func (c *Crossref) Search(ctx context.Context, keyword string, limit int) ([]RawHit, error) {
	limit = clampLimit(limit, 50, 1000)

	params := url.Values{
		"query":  {keyword},
		"rows":   {strconv.Itoa(limit)},
		"sort":   {"relevance"},
		"order":  {"desc"},
		"select": {"DOI,title,author,URL,link,issued,published,abstract"},
	}
	if c.Email != "" {
		params.Set("mailto", c.Email)
	}

	var cr crossrefResponse
	if err := c.getJSON(ctx, c.Name(), crossrefAPIBase+"?"+params.Encode(), nil, &cr); err != nil {
		return nil, err
	}

	hits := make([]RawHit, 0, len(cr.Message.Items))
	for _, item := range cr.Message.Items {
		h := RawHit{
			ID:       item.DOI,
			URL:      item.URL,
			Abstract: item.Abstract,
		}
		if len(item.Title) > 0 {
			h.Title = item.Title[0]
		}
		if h.URL == "" && item.DOI != "" {
			h.URL = "https://doi.org/" + item.DOI
		}
		for _, a := range item.Author {
			name := strings.TrimSpace(a.Given + " " + a.Family)
			if name == "" {
				name = a.Name
			}
			h.Authors = append(h.Authors, name)
		}
		for _, l := range item.Link {
			if strings.EqualFold(l.ContentType, "application/pdf") {
				h.PDFURL = l.URL
				break
			}
		}
		h.Published = item.Published.String()
		if h.Published == "" {
			h.Published = item.Issued.String()
		}
		hits = append(hits, h)
	}
	return truncate(hits, limit), nil
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI       string           `json:"DOI"`
	URL       string           `json:"URL"`
	Title     []string         `json:"title"`
	Abstract  string           `json:"abstract"`
	Author    []crossrefAuthor `json:"author"`
	Link      []crossrefLink   `json:"link"`
	Issued    crossrefDate     `json:"issued"`
	Published crossrefDate     `json:"published"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefLink struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// String renders the date parts as "2006-01-02", "2006-01" or "2006".
func (d crossrefDate) String() string {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0] == 0 {
		return ""
	}
	p := d.DateParts[0]
	switch len(p) {
	case 1:
		return fmt.Sprintf("%04d", p[0])
	case 2:
		return fmt.Sprintf("%04d-%02d", p[0], p[1])
	default:
		return fmt.Sprintf("%04d-%02d-%02d", p[0], p[1], p[2])
	}
}
