// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/docufetch/pkg/types"
)

// unpaywallAPIBase is the Unpaywall v2 root. Declared as a var so tests
// can substitute an httptest server.
var unpaywallAPIBase = "https://api.unpaywall.org/v2"

// Unpaywall finds open-access copies. A keyword that is a DOI is looked up
// directly; anything else goes through title search. Unpaywall requires an
// email on every request.
type Unpaywall struct {
	HTTP
	Email string
}

func (u *Unpaywall) Name() string             { return "unpaywall" }
func (u *Unpaywall) Category() types.Category { return types.CategoryAcademic }

func (u *Unpaywall) Search(ctx context.Context, keyword string, limit int) ([]RawHit, error) {
	if u.Email == "" {
		return nil, newError(u.Name(), types.ErrorAuth, "no Unpaywall email configured")
	}
	limit = clampLimit(limit, 50, 50)
	params := url.Values{"email": {u.Email}}

	if doi := strings.TrimSpace(keyword); looksLikeDOI(doi) {
		var rec unpaywallRecord
		if err := u.getJSON(ctx, u.Name(), unpaywallAPIBase+"/"+doi+"?"+params.Encode(), nil, &rec); err != nil {
			return nil, err
		}
		return []RawHit{rec.hit()}, nil
	}

	params.Set("query", keyword)
	var sr unpaywallSearchResponse
	if err := u.getJSON(ctx, u.Name(), unpaywallAPIBase+"/search?"+params.Encode(), nil, &sr); err != nil {
		return nil, err
	}

	hits := make([]RawHit, 0, len(sr.Results))
	for _, r := range sr.Results {
		hits = append(hits, r.Response.hit())
	}
	return truncate(hits, limit), nil
}

// looksLikeDOI reports whether s has the "10.<registrant>/<suffix>" shape.
func looksLikeDOI(s string) bool {
	return strings.HasPrefix(s, "10.") && strings.Contains(s, "/") && !strings.ContainsAny(s, " \t")
}

// Unpaywall API JSON structures.
type unpaywallSearchResponse struct {
	Results []struct {
		Response unpaywallRecord `json:"response"`
	} `json:"results"`
}

type unpaywallRecord struct {
	DOI            string             `json:"doi"`
	DOIURL         string             `json:"doi_url"`
	Title          string             `json:"title"`
	PublishedDate  string             `json:"published_date"`
	Year           int                `json:"year"`
	Authors        []unpaywallAuthor  `json:"z_authors"`
	BestOALocation *unpaywallLocation `json:"best_oa_location"`
}

type unpaywallAuthor struct {
	Given         string `json:"given"`
	Family        string `json:"family"`
	RawAuthorName string `json:"raw_author_name"`
}

type unpaywallLocation struct {
	URL       string `json:"url"`
	URLForPDF string `json:"url_for_pdf"`
}

func (r unpaywallRecord) hit() RawHit {
	h := RawHit{
		ID:        r.DOI,
		Title:     r.Title,
		URL:       r.DOIURL,
		Published: r.PublishedDate,
	}
	if h.Published == "" && r.Year > 0 {
		h.Published = strconv.Itoa(r.Year)
	}
	if r.BestOALocation != nil {
		h.PDFURL = r.BestOALocation.URLForPDF
		if h.URL == "" {
			h.URL = r.BestOALocation.URL
		}
	}
	for _, a := range r.Authors {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name == "" {
			name = a.RawAuthorName
		}
		h.Authors = append(h.Authors, name)
	}
	return h
}
