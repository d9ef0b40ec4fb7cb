// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docufetch/pkg/types"
)

func TestSemanticScholarSearch(t *testing.T) {
	var apiKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-api-key")
		w.Write([]byte(`{"total": 1, "data": [{
			"paperId": "abc123",
			"title": "Graph Neural Networks: A Review",
			"year": 2020,
			"url": "https://www.semanticscholar.org/paper/abc123",
			"authors": [{"name": "Jie Zhou"}, {"name": "Ganqu Cui"}],
			"externalIds": {"DOI": "10.1016/j.aiopen.2021.01.001"},
			"openAccessPdf": {"url": "https://example.org/gnn.pdf"}
		}]}`))
	}))
	defer ts.Close()
	swap(t, &semanticAPIBase, ts.URL)

	s := &SemanticScholar{HTTP: HTTP{Client: ts.Client()}, APIKey: "k1"}
	hits, err := s.Search(context.Background(), "gnn", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, "k1", apiKey)
	assert.Equal(t, "10.1016/j.aiopen.2021.01.001", hits[0].ID)
	assert.Equal(t, "2020", hits[0].Published)
	assert.Equal(t, "https://example.org/gnn.pdf", hits[0].PDFURL)
	assert.Equal(t, []string{"Jie Zhou", "Ganqu Cui"}, hits[0].Authors)
}

func TestOpenAlexSearch(t *testing.T) {
	var mailto string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mailto = r.URL.Query().Get("mailto")
		w.Write([]byte(`{"results": [
			{
				"id": "https://openalex.org/W1",
				"doi": "https://doi.org/10.1109/tnnls.2020.2978386",
				"title": "A Comprehensive Survey on Graph Neural Networks",
				"publication_date": "2020-03-24",
				"authorships": [{"author": {"display_name": "Zonghan Wu"}}],
				"abstract_inverted_index": {"Deep": [0], "learning": [1]},
				"best_oa_location": {"pdf_url": "https://arxiv.org/pdf/1901.00596"}
			},
			{
				"id": "https://openalex.org/W2",
				"title": "Second",
				"publication_year": 2018,
				"open_access": {"is_oa": true, "oa_url": "https://example.org/paper.PDF"}
			}
		]}`))
	}))
	defer ts.Close()
	swap(t, &openAlexSearchBase, ts.URL)

	o := &OpenAlex{HTTP: HTTP{Client: ts.Client()}, Email: "me@example.org"}
	hits, err := o.Search(context.Background(), "gnn", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "me@example.org", mailto)
	assert.Equal(t, "10.1109/tnnls.2020.2978386", hits[0].ID)
	assert.Equal(t, "https://doi.org/10.1109/tnnls.2020.2978386", hits[0].URL)
	assert.Equal(t, "Deep learning", hits[0].Abstract)
	assert.Equal(t, "https://arxiv.org/pdf/1901.00596", hits[0].PDFURL)

	assert.Equal(t, "https://openalex.org/W2", hits[1].ID)
	assert.Equal(t, "https://openalex.org/W2", hits[1].URL)
	assert.Equal(t, "2018", hits[1].Published)
	assert.Equal(t, "https://example.org/paper.PDF", hits[1].PDFURL)
}

func TestCrossrefSearch(t *testing.T) {
	ts := serve(t, http.StatusOK, `{"message": {"items": [{
		"DOI": "10.1109/TNNLS.2020.2978386",
		"title": ["A Comprehensive Survey on Graph Neural Networks"],
		"author": [{"given": "Zonghan", "family": "Wu"}, {"name": "GNN Consortium"}],
		"link": [
			{"URL": "https://example.org/x.html", "content-type": "text/html"},
			{"URL": "https://example.org/x.pdf", "content-type": "application/pdf"}
		],
		"issued": {"date-parts": [[2020]]},
		"published": {"date-parts": [[2021, 1, 4]]}
	}]}}`)
	swap(t, &crossrefAPIBase, ts.URL)

	c := &Crossref{HTTP: HTTP{Client: ts.Client()}}
	hits, err := c.Search(context.Background(), "gnn", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	h := hits[0]
	assert.Equal(t, "https://doi.org/10.1109/TNNLS.2020.2978386", h.URL)
	assert.Equal(t, []string{"Zonghan Wu", "GNN Consortium"}, h.Authors)
	assert.Equal(t, "https://example.org/x.pdf", h.PDFURL)
	assert.Equal(t, "2021-01-04", h.Published)
}

func TestCrossrefDateString(t *testing.T) {
	tests := []struct {
		parts [][]int
		want  string
	}{
		{nil, ""},
		{[][]int{{2020}}, "2020"},
		{[][]int{{2020, 3}}, "2020-03"},
		{[][]int{{2020, 3, 9}}, "2020-03-09"},
		{[][]int{{0}}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, crossrefDate{DateParts: tt.parts}.String())
	}
}

func TestCoreSearch(t *testing.T) {
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"totalHits": 1, "results": [{
			"id": 42,
			"title": "Graph Neural Networks: A Review",
			"downloadUrl": "https://core.ac.uk/download/42.pdf",
			"yearPublished": 2020,
			"authors": [{"name": "Zhou, Jie"}],
			"links": [{"type": "display", "url": "https://core.ac.uk/works/42"}]
		}]}`))
	}))
	defer ts.Close()
	swap(t, &coreAPIBase, ts.URL)

	c := &Core{HTTP: HTTP{Client: ts.Client()}, APIKey: "secret"}
	hits, err := c.Search(context.Background(), "gnn", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "42", hits[0].ID)
	assert.Equal(t, "https://core.ac.uk/works/42", hits[0].URL)
	assert.Equal(t, "https://core.ac.uk/download/42.pdf", hits[0].PDFURL)
	assert.Equal(t, "2020", hits[0].Published)
}

func TestCredentialedSourcesWithoutCredentials(t *testing.T) {
	tests := []struct {
		name    string
		adapter Adapter
	}{
		{"core", &Core{}},
		{"unpaywall", &Unpaywall{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := tt.adapter.Search(context.Background(), "gnn", 5)
			assert.Nil(t, hits)
			assert.Equal(t, types.ErrorAuth, Classify(err))
			assert.ErrorIs(t, err, ErrAuth)
		})
	}
}

const samplePubMedXML = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>32217482</PMID>
      <Article>
        <Journal><JournalIssue><PubDate><Year>2021</Year><Month>Jan</Month></PubDate></JournalIssue></Journal>
        <ArticleTitle>A Comprehensive Survey on Graph Neural Networks.</ArticleTitle>
        <Abstract><AbstractText>Deep learning</AbstractText><AbstractText>has revolutionized.</AbstractText></Abstract>
        <AuthorList>
          <Author><LastName>Wu</LastName><ForeName>Zonghan</ForeName><Initials>Z</Initials></Author>
          <Author><CollectiveName>GNN Group</CollectiveName></Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestPubMedSearch(t *testing.T) {
	var fetchedIDs string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
			w.Write([]byte(`{"esearchresult": {"idlist": ["32217482", "99999999"]}}`))
		case strings.HasSuffix(r.URL.Path, "/efetch.fcgi"):
			fetchedIDs = r.URL.Query().Get("id")
			w.Write([]byte(samplePubMedXML))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	swap(t, &pubmedAPIBase, ts.URL)

	p := &PubMed{HTTP: HTTP{Client: ts.Client()}, Email: "me@example.org"}
	hits, err := p.Search(context.Background(), "gnn", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, "32217482,99999999", fetchedIDs)
	h := hits[0]
	assert.Equal(t, "32217482", h.ID)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/32217482/", h.URL)
	assert.Equal(t, []string{"Zonghan Wu", "GNN Group"}, h.Authors)
	assert.Equal(t, "2021 Jan", h.Published)
	assert.Equal(t, "Deep learning has revolutionized.", h.Abstract)
}

func TestPubMedNoResults(t *testing.T) {
	ts := serve(t, http.StatusOK, `{"esearchresult": {"idlist": []}}`)
	swap(t, &pubmedAPIBase, ts.URL)

	p := &PubMed{HTTP: HTTP{Client: ts.Client()}}
	hits, err := p.Search(context.Background(), "nothing", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPubMedDateString(t *testing.T) {
	tests := []struct {
		d    pubmedDate
		want string
	}{
		{pubmedDate{Year: "2021", Month: "Jan", Day: "05"}, "2021 Jan 5"},
		{pubmedDate{Year: "2021", Month: "3"}, "2021 Mar"},
		{pubmedDate{Year: "2021"}, "2021"},
		{pubmedDate{MedlineDate: "2019 Nov-Dec"}, "2019"},
		{pubmedDate{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.d.String())
	}
}

func TestDOAJSearch(t *testing.T) {
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.Write([]byte(`{"total": 1, "results": [{
			"id": "doaj1",
			"bibjson": {
				"title": "Graph Neural Networks in Practice",
				"year": "2022",
				"month": "7",
				"author": [{"name": "Ana Silva"}],
				"identifier": [{"type": "doi", "id": "10.1234/gnn"}],
				"link": [{"type": "fulltext", "url": "https://journal.example/gnn.pdf", "content_type": "PDF"}]
			}
		}]}`))
	}))
	defer ts.Close()
	swap(t, &doajAPIBase, ts.URL)

	d := &DOAJ{HTTP: HTTP{Client: ts.Client()}}
	hits, err := d.Search(context.Background(), "graph networks", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, "/graph%20networks", path)
	assert.Equal(t, "10.1234/gnn", hits[0].ID)
	assert.Equal(t, "https://doi.org/10.1234/gnn", hits[0].URL)
	assert.Equal(t, "https://journal.example/gnn.pdf", hits[0].PDFURL)
	assert.Equal(t, "2022-07", hits[0].Published)
}

func TestUnpaywallSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "me@example.org", r.URL.Query().Get("email"))
		switch r.URL.Path {
		case "/search":
			w.Write([]byte(`{"results": [{"response": {
				"doi": "10.1/a", "doi_url": "https://doi.org/10.1/a", "title": "Found by search",
				"year": 2019, "z_authors": [{"given": "Ana", "family": "Silva"}]
			}}]}`))
		case "/10.1/b":
			w.Write([]byte(`{
				"doi": "10.1/b", "title": "Found by DOI", "published_date": "2020-02-02",
				"z_authors": [{"raw_author_name": "B. Jones"}],
				"best_oa_location": {"url": "https://repo.example/b", "url_for_pdf": "https://repo.example/b.pdf"}
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	swap(t, &unpaywallAPIBase, ts.URL)

	u := &Unpaywall{HTTP: HTTP{Client: ts.Client()}, Email: "me@example.org"}

	hits, err := u.Search(context.Background(), "open access", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Found by search", hits[0].Title)
	assert.Equal(t, "2019", hits[0].Published)
	assert.Equal(t, []string{"Ana Silva"}, hits[0].Authors)

	hits, err = u.Search(context.Background(), "10.1/b", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Found by DOI", hits[0].Title)
	assert.Equal(t, "https://repo.example/b", hits[0].URL)
	assert.Equal(t, "https://repo.example/b.pdf", hits[0].PDFURL)
	assert.Equal(t, []string{"B. Jones"}, hits[0].Authors)
}

func TestOpenAIRESearch(t *testing.T) {
	// A single result arrives as an object, not an array.
	ts := serve(t, http.StatusOK, `{"response": {"results": {"result": {
		"metadata": {"oaf:entity": {"oaf:result": {
			"title": [
				{"$": "GNN: subtitle", "@classid": "subtitle"},
				{"$": "Graph Neural Networks: A Review", "@classid": "main title"}
			],
			"creator": {"$": "Zhou, Jie"},
			"dateofacceptance": {"$": "2020-01-01"},
			"pid": [{"$": "10.1016/j.aiopen.2021.01.001", "@classid": "doi"}],
			"children": {"instance": [
				{"webresource": {"url": {"$": "https://repo.example/gnn.pdf"}}}
			]}
		}}}
	}}}}`)
	swap(t, &openaireAPIBase, ts.URL)

	o := &OpenAIRE{HTTP: HTTP{Client: ts.Client()}}
	hits, err := o.Search(context.Background(), "gnn", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	h := hits[0]
	assert.Equal(t, "Graph Neural Networks: A Review", h.Title)
	assert.Equal(t, []string{"Zhou, Jie"}, h.Authors)
	assert.Equal(t, "https://doi.org/10.1016/j.aiopen.2021.01.001", h.URL)
	assert.Equal(t, "https://repo.example/gnn.pdf", h.PDFURL)
	assert.Equal(t, "2020-01-01", h.Published)
}

func TestOpenAIRENoResults(t *testing.T) {
	ts := serve(t, http.StatusOK, `{"response": {"results": null}}`)
	swap(t, &openaireAPIBase, ts.URL)

	o := &OpenAIRE{HTTP: HTTP{Client: ts.Client()}}
	hits, err := o.Search(context.Background(), "gnn", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
