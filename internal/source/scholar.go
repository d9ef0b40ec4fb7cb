// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/docufetch/pkg/types"
)

// scholarBase is the Google Scholar results page. Declared as a var so
// tests can substitute an httptest server.
var scholarBase = "https://scholar.google.com/scholar"

const scholarPageSize = 10

var yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// Scholar scrapes Google Scholar result pages. Scholar has no API and
// answers aggressive clients with a CAPTCHA, which is reported as a quota
// failure; keep its limiter slow.
type Scholar struct {
	HTTP
}

func (s *Scholar) Name() string             { return "scholar" }
func (s *Scholar) Category() types.Category { return types.CategoryAcademic }

func (s *Scholar) Search(ctx context.Context, keyword string, limit int) ([]RawHit, error) {
	limit = clampLimit(limit, 20, 100)
	header := http.Header{"Accept-Language": {"en-US,en;q=0.8"}}

	var hits []RawHit
	for start := 0; len(hits) < limit; start += scholarPageSize {
		params := url.Values{
			"q":     {keyword},
			"hl":    {"en"},
			"start": {strconv.Itoa(start)},
		}
		body, err := s.getBody(ctx, s.Name(), scholarBase+"?"+params.Encode(), header)
		if err != nil {
			if len(hits) > 0 {
				break
			}
			return nil, err
		}

		page, err := parseScholarPage(body)
		if err != nil {
			if len(hits) > 0 {
				break
			}
			return nil, err
		}
		hits = append(hits, page...)
		if len(page) < scholarPageSize {
			break
		}
	}
	return truncate(hits, limit), nil
}

// parseScholarPage extracts the result entries of one results page.
func parseScholarPage(body []byte) ([]RawHit, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Source: "scholar", Kind: types.ErrorParse, Err: err}
	}
	if doc.Find("#gs_captcha_ccl, #captcha-form, form#gs_captcha_f").Length() > 0 ||
		bytes.Contains(body, []byte("not a robot")) {
		return nil, newError("scholar", types.ErrorQuotaExceeded, "blocked by CAPTCHA")
	}

	var hits []RawHit
	doc.Find("div.gs_r.gs_or.gs_scl").Each(func(_ int, res *goquery.Selection) {
		ri := res.Find("div.gs_ri")
		heading := ri.Find("h3.gs_rt")

		h := RawHit{
			ID:       res.AttrOr("data-cid", ""),
			URL:      heading.Find("a").AttrOr("href", ""),
			PDFURL:   res.Find("div.gs_or_ggsm a").AttrOr("href", ""),
			Abstract: strings.TrimSpace(ri.Find("div.gs_rs").Text()),
		}
		// Drop the "[PDF]", "[HTML]" and "[CITATION]" badges.
		heading.Find("span.gs_ctg2, span.gs_ct1, span.gs_ct2").Remove()
		h.Title = strings.TrimSpace(heading.Text())

		meta := strings.ReplaceAll(ri.Find("div.gs_a").Text(), "\u00a0", " ")
		authors, rest, _ := strings.Cut(meta, " - ")
		for _, a := range strings.Split(authors, ",") {
			a = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(a), "…."))
			if a != "" {
				h.Authors = append(h.Authors, a)
			}
		}
		if years := yearPattern.FindAllString(rest, -1); len(years) > 0 {
			h.Published = years[len(years)-1]
		}
		hits = append(hits, h)
	})
	return hits, nil
}
