// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/docufetch/pkg/types"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"lowercases", "Graph Neural Networks", "graph neural networks"},
		{"strips punctuation", "Graph Neural Networks: A Review", "graph neural networks a review"},
		{"collapses whitespace", "  Graph\n   Neural\tNetworks  ", "graph neural networks"},
		{"keeps digits", "GPT-4 Technical Report", "gpt4 technical report"},
		{"keeps non-ascii letters", "Über Graphen", "über graphen"},
		{"empty", "", ""},
		{"punctuation only", "?!...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.title))
		})
	}
}

func TestAuthorToken(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"given family", []string{"Zonghan Wu", "Shirui Pan"}, "wu"},
		{"initials", []string{"Z. Wu"}, "wu"},
		{"no authors", nil, ""},
		{"skips blank first entry", []string{"  ", "Ada Lovelace"}, "lovelace"},
		{"single token", []string{"Plato"}, "plato"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AuthorToken(tt.authors))
		})
	}
}

func TestKeyIsHexDigest(t *testing.T) {
	k := Key("Graph Neural Networks: A Review", []string{"Zonghan Wu"})
	assert.Len(t, k, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", k)
}

func TestResolveIgnoresSourceURLAndTailAuthors(t *testing.T) {
	a := types.Document{
		Title:      "Graph Neural Networks: A Review",
		Authors:    []string{"Zonghan Wu", "Shirui Pan"},
		SourceName: "arxiv",
		URL:        "https://arxiv.org/abs/1901.00596",
	}
	b := types.Document{
		Title:      "graph neural networks a review",
		Authors:    []string{"Z. Wu", "S. Pan", "F. Chen"},
		SourceName: "semantic_scholar",
		URL:        "https://www.semanticscholar.org/paper/abc",
		PDFURL:     "https://example.org/gnn.pdf",
	}
	assert.Equal(t, Resolve(a), Resolve(b))
}

func TestResolveDistinguishesFirstAuthor(t *testing.T) {
	a := types.Document{Title: "A Survey", Authors: []string{"Ann Smith"}}
	b := types.Document{Title: "A Survey", Authors: []string{"Bob Jones"}}
	c := types.Document{Title: "A Survey"}
	assert.NotEqual(t, Resolve(a), Resolve(b))
	assert.NotEqual(t, Resolve(a), Resolve(c))
}

func TestResolveDeterministic(t *testing.T) {
	doc := types.Document{Title: "Attention Is All You Need", Authors: []string{"Ashish Vaswani"}}
	first := Resolve(doc)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(doc))
	}
}
