// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/docufetch/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,year,publicationDate,url,openAccessPdf"

// SemanticScholar queries the Semantic Scholar Graph API. The API key is
// optional and raises the rate limit.
type SemanticScholar struct {
	HTTP
	APIKey string
}

func (s *SemanticScholar) Name() string             { return "semantic_scholar" }
func (s *SemanticScholar) Category() types.Category { return types.CategoryAcademic }

func (s *SemanticScholar) Search(ctx context.Context, keyword string, limit int) ([]RawHit, error) {
	limit = clampLimit(limit, 50, 100)

	params := url.Values{
		"query":  {keyword},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}

	var header http.Header
	if s.APIKey != "" {
		header = http.Header{"x-api-key": {s.APIKey}}
	}

	var sr semanticResponse
	if err := s.getJSON(ctx, s.Name(), semanticAPIBase+"?"+params.Encode(), header, &sr); err != nil {
		return nil, err
	}

	hits := make([]RawHit, 0, len(sr.Data))
	for _, paper := range sr.Data {
		h := RawHit{
			ID:        paper.PaperID,
			Title:     paper.Title,
			URL:       paper.URL,
			Published: paper.PublicationDate,
			Abstract:  paper.Abstract,
		}
		if h.Published == "" && paper.Year > 0 {
			h.Published = strconv.Itoa(paper.Year)
		}
		if paper.ExternalIDs.DOI != "" {
			h.ID = paper.ExternalIDs.DOI
		}
		if paper.OpenAccessPDF != nil {
			h.PDFURL = paper.OpenAccessPDF.URL
		}
		for _, a := range paper.Authors {
			h.Authors = append(h.Authors, a.Name)
		}
		hits = append(hits, h)
	}
	return truncate(hits, limit), nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string              `json:"paperId"`
	Title           string              `json:"title"`
	Abstract        string              `json:"abstract"`
	Year            int                 `json:"year"`
	PublicationDate string              `json:"publicationDate"`
	URL             string              `json:"url"`
	Authors         []semanticAuthor    `json:"authors"`
	ExternalIDs     semanticExternalIDs `json:"externalIds"`
	OpenAccessPDF   *semanticPDF        `json:"openAccessPdf"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

type semanticPDF struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}
