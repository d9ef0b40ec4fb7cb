// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/docufetch/pkg/types"
)

// pubmedAPIBase is the NCBI E-utilities root. Declared as a var so tests
// can substitute an httptest server.
var pubmedAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMed searches PubMed with esearch and fetches records with efetch.
// Email identifies the caller to NCBI.
type PubMed struct {
	HTTP
	Email string
}

func (p *PubMed) Name() string             { return "pubmed" }
func (p *PubMed) Category() types.Category { return types.CategoryAcademic }

func (p *PubMed) Search(ctx context.Context, keyword string, limit int) ([]RawHit, error) {
	limit = clampLimit(limit, 50, 10000)

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {keyword},
		"retmax":  {strconv.Itoa(limit)},
		"retmode": {"json"},
		"sort":    {"relevance"},
	}
	if p.Email != "" {
		params.Set("email", p.Email)
	}

	var sr pubmedSearchResponse
	if err := p.getJSON(ctx, p.Name(), pubmedAPIBase+"/esearch.fcgi?"+params.Encode(), nil, &sr); err != nil {
		return nil, err
	}
	ids := sr.Result.IDList
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	fetch := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	if p.Email != "" {
		fetch.Set("email", p.Email)
	}

	var set pubmedArticleSet
	if err := p.getXML(ctx, p.Name(), pubmedAPIBase+"/efetch.fcgi?"+fetch.Encode(), nil, &set); err != nil {
		return nil, err
	}

	hits := make([]RawHit, 0, len(set.Articles))
	for _, a := range set.Articles {
		c := a.Citation
		h := RawHit{
			ID:        c.PMID,
			Title:     c.Article.Title,
			URL:       "https://pubmed.ncbi.nlm.nih.gov/" + c.PMID + "/",
			Published: c.Article.Journal.Issue.PubDate.String(),
			Abstract:  strings.Join(c.Article.Abstract.Text, " "),
		}
		for _, au := range c.Article.Authors {
			switch {
			case au.ForeName != "" && au.LastName != "":
				h.Authors = append(h.Authors, au.ForeName+" "+au.LastName)
			case au.LastName != "":
				h.Authors = append(h.Authors, au.LastName)
			case au.CollectiveName != "":
				h.Authors = append(h.Authors, au.CollectiveName)
			}
		}
		hits = append(hits, h)
	}
	return truncate(hits, limit), nil
}

// E-utilities JSON and XML structures.
type pubmedSearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    string `xml:"ArticleTitle"`
			Abstract struct {
				Text []string `xml:"AbstractText"`
			} `xml:"Abstract"`
			Authors []pubmedAuthor `xml:"AuthorList>Author"`
			Journal struct {
				Issue struct {
					PubDate pubmedDate `xml:"PubDate"`
				} `xml:"JournalIssue"`
			} `xml:"Journal"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
}

type pubmedAuthor struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	CollectiveName string `xml:"CollectiveName"`
}

type pubmedDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

// String renders the date as "2006 Jan 2", "2006 Jan" or "2006".
func (d pubmedDate) String() string {
	if d.Year == "" {
		// MedlineDate looks like "2019 Nov-Dec"; keep the year.
		if f := strings.Fields(d.MedlineDate); len(f) > 0 {
			return f[0]
		}
		return ""
	}
	month := d.Month
	if n, err := strconv.Atoi(month); err == nil && n >= 1 && n <= 12 {
		month = time.Month(n).String()[:3]
	}
	switch {
	case month == "":
		return d.Year
	case d.Day == "":
		return d.Year + " " + month
	default:
		return d.Year + " " + month + " " + strings.TrimLeft(d.Day, "0")
	}
}
