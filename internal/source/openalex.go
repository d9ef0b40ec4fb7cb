// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/docufetch/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// OpenAlex queries the OpenAlex Works API.
type OpenAlex struct {
	HTTP
	// Email is sent as mailto parameter for polite pool access.
	Email string
}

func (o *OpenAlex) Name() string             { return "openalex" }
func (o *OpenAlex) Category() types.Category { return types.CategoryAcademic }

func (o *OpenAlex) Search(ctx context.Context, keyword string, limit int) ([]RawHit, error) {
	limit = clampLimit(limit, 50, 200)

	params := url.Values{
		"search":   {keyword},
		"per_page": {strconv.Itoa(limit)},
		"page":     {"1"},
	}
	if o.Email != "" {
		params.Set("mailto", o.Email)
	}

	var oar openAlexResponse
	if err := o.getJSON(ctx, o.Name(), openAlexSearchBase+"?"+params.Encode(), nil, &oar); err != nil {
		return nil, err
	}

	hits := make([]RawHit, 0, len(oar.Results))
	for _, work := range oar.Results {
		h := RawHit{
			ID:        strings.TrimPrefix(work.DOI, "https://doi.org/"),
			Title:     work.Title,
			URL:       work.DOI,
			Published: work.PublicationDate,
			Abstract:  reconstructAbstract(work.AbstractInvertedIndex),
		}
		if h.ID == "" {
			h.ID = work.ID
		}
		if h.URL == "" {
			h.URL = work.ID
		}
		if h.Published == "" && work.PublicationYear > 0 {
			h.Published = strconv.Itoa(work.PublicationYear)
		}
		if work.BestOALocation != nil && work.BestOALocation.PDFURL != "" {
			h.PDFURL = work.BestOALocation.PDFURL
		} else if strings.HasSuffix(strings.ToLower(work.OpenAccess.OAURL), ".pdf") {
			h.PDFURL = work.OpenAccess.OAURL
		}
		for _, authorship := range work.Authorships {
			h.Authors = append(h.Authors, authorship.Author.DisplayName)
		}
		hits = append(hits, h)
	}
	return truncate(hits, limit), nil
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to its positions.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationDate       string               `json:"publication_date"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
	BestOALocation        *openAlexLocation    `json:"best_oa_location"`
}

type openAlexAuthorship struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexOpenAccess struct {
	IsOA  bool   `json:"is_oa"`
	OAURL string `json:"oa_url"`
}

type openAlexLocation struct {
	LandingPageURL string `json:"landing_page_url"`
	PDFURL         string `json:"pdf_url"`
}
