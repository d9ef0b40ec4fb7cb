// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docufetch/internal/identity"
	"github.com/pdiddy/docufetch/internal/source"
	"github.com/pdiddy/docufetch/pkg/types"
)

func TestNormalize(t *testing.T) {
	hit := source.RawHit{
		ID:        "1901.00596",
		Title:     "  Graph Neural Networks:\n   A Review  ",
		Authors:   []string{"Zonghan Wu", " Shirui Pan "},
		URL:       " https://arxiv.org/abs/1901.00596 ",
		PDFURL:    "https://arxiv.org/pdf/1901.00596",
		Published: "2019-01-03T03:00:00Z",
		Abstract:  "Deep learning\n has revolutionized ...",
	}

	doc, err := Normalize(hit, "arxiv", types.CategoryAcademic)
	require.NoError(t, err)

	assert.Equal(t, "Graph Neural Networks: A Review", doc.Title)
	assert.Equal(t, []string{"Zonghan Wu", "Shirui Pan"}, doc.Authors)
	assert.Equal(t, "arxiv", doc.SourceName)
	assert.Equal(t, types.CategoryAcademic, doc.Category)
	assert.Equal(t, "https://arxiv.org/abs/1901.00596", doc.URL)
	assert.Equal(t, "https://arxiv.org/pdf/1901.00596", doc.PDFURL)
	assert.Equal(t, time.Date(2019, 1, 3, 3, 0, 0, 0, time.UTC), doc.PublishedAt)
	assert.Equal(t, "Deep learning has revolutionized ...", doc.Abstract)
	assert.Equal(t, "1901.00596", doc.ExternalID)
	assert.Empty(t, doc.IdentityKey)
}

func TestNormalizeMissingTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\n\t", "<i></i>"} {
		_, err := Normalize(source.RawHit{Title: title, Authors: []string{"A. Author"}}, "crossref", types.CategoryAcademic)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingTitle), "title %q", title)
	}
}

func TestNormalizeStripsMarkup(t *testing.T) {
	doc, err := Normalize(source.RawHit{Title: "The <i>E. coli</i> genome"}, "crossref", types.CategoryAcademic)
	require.NoError(t, err)
	assert.Equal(t, "The E. coli genome", doc.Title)
}

func TestNormalizeKeepsComparisonSigns(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Bounds for n < k > m", "Bounds for n < k > m"},
		{"Rates for 0 < p < 1", "Rates for 0 < p < 1"},
		{"Sub<sub>2</sub> and <jats:italic>x</jats:italic> > 0", "Sub 2 and x > 0"},
	}
	for _, tt := range tests {
		doc, err := Normalize(source.RawHit{Title: tt.raw}, "crossref", types.CategoryAcademic)
		require.NoError(t, err)
		assert.Equal(t, tt.want, doc.Title, "raw %q", tt.raw)
	}
}

func TestUpperCaseSurnameResolvesToSameKey(t *testing.T) {
	title := "Graph Neural Networks: A Review"
	tests := []struct {
		name  string
		upper []string
		mixed []string
		token string
	}{
		{"wu", []string{"Zonghan WU", "Shirui Pan"}, []string{"Zonghan Wu", "Shirui Pan"}, "wu"},
		{"li", []string{"Xiaoming LI"}, []string{"Xiaoming Li"}, "li"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Normalize(source.RawHit{Title: title, Authors: tt.upper}, "crossref", types.CategoryAcademic)
			require.NoError(t, err)
			b, err := Normalize(source.RawHit{Title: title, Authors: tt.mixed}, "arxiv", types.CategoryAcademic)
			require.NoError(t, err)

			assert.Equal(t, tt.token, identity.AuthorToken(a.Authors))
			assert.Equal(t, identity.Resolve(b), identity.Resolve(a))
		})
	}
}

func TestNormalizeBadDateLeavesZero(t *testing.T) {
	doc, err := Normalize(source.RawHit{Title: "T", Published: "Spring 2020"}, "doaj", types.CategoryAcademic)
	require.NoError(t, err)
	assert.True(t, doc.PublishedAt.IsZero())
}

func TestAuthors(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"one per entry", []string{"Zonghan Wu", "Shirui Pan"}, []string{"Zonghan Wu", "Shirui Pan"}},
		{"family initials comma list", []string{"Wu, Z., Pan, S., Chen, F."}, []string{"Z. Wu", "S. Pan", "F. Chen"}},
		{"semicolons", []string{"Wu, Zonghan; Pan, Shirui"}, []string{"Zonghan Wu", "Shirui Pan"}},
		{"and conjunction", []string{"Zonghan Wu, Shirui Pan and Fengwen Chen"}, []string{"Zonghan Wu", "Shirui Pan", "Fengwen Chen"}},
		{"ampersand", []string{"Ada Lovelace & Charles Babbage"}, []string{"Ada Lovelace", "Charles Babbage"}},
		{"lone family given", []string{"Lovelace, Ada"}, []string{"Ada Lovelace"}},
		{"family given per entry", []string{"Wu, Zonghan", "Pan, Shirui"}, []string{"Zonghan Wu", "Shirui Pan"}},
		{"upper-case surname keeps order", []string{"Zonghan WU", "Xiaoming LI"}, []string{"Zonghan WU", "Xiaoming LI"}},
		{"drops blanks and placeholders", []string{"", "  ", "Ada Lovelace", "et al."}, []string{"Ada Lovelace"}},
		{"suffix kept", []string{"King, Jr.", "Rosa Parks"}, []string{"King, Jr.", "Rosa Parks"}},
		{"empty", nil, nil},
		{"empty string", []string{""}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authors(tt.raw))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2020-03-15", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2020-03", time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2020", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2020 Mar 15", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2020/03/15 00:00", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2020-03-15T10:30:00", time.Date(2020, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"Sun, 15 Mar 2020 10:30:00 +0000", time.Date(2020, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"not a date", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseDate(tt.in)), "ParseDate(%q) = %v", tt.in, ParseDate(tt.in))
		})
	}
}
