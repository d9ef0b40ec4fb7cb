// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/docufetch/pkg/types"
)

// openaireAPIBase is the OpenAIRE publication search endpoint. Declared as
// a var so tests can substitute an httptest server.
var openaireAPIBase = "https://api.openaire.eu/search/publications"

// OpenAIRE queries the OpenAIRE research graph.
type OpenAIRE struct {
	HTTP
}

func (o *OpenAIRE) Name() string             { return "openaire" }
func (o *OpenAIRE) Category() types.Category { return types.CategoryAcademic }

func (o *OpenAIRE) Search(ctx context.Context, keyword string, limit int) ([]RawHit, error) {
	limit = clampLimit(limit, 50, 100)

	params := url.Values{
		"keywords": {keyword},
		"size":     {strconv.Itoa(limit)},
		"format":   {"json"},
	}

	var resp openaireResponse
	if err := o.getJSON(ctx, o.Name(), openaireAPIBase+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Response.Results == nil {
		return nil, nil
	}

	hits := make([]RawHit, 0, len(resp.Response.Results.Result))
	for _, r := range resp.Response.Results.Result {
		hits = append(hits, r.Metadata.Entity.Result.hit())
	}
	return truncate(hits, limit), nil
}

// oneOrMany decodes a JSON value that is either a single T or an array of
// T, as the OpenAIRE XML-to-JSON conversion produces.
type oneOrMany[T any] []T

func (m *oneOrMany[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = nil
		return nil
	}
	if b[0] == '[' {
		var list []T
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*m = list
		return nil
	}
	var one T
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*m = oneOrMany[T]{one}
	return nil
}

// oafValue is an element with text content and attributes.
type oafValue struct {
	Value   string `json:"$"`
	ClassID string `json:"@classid"`
}

// OpenAIRE API JSON structures.
type openaireResponse struct {
	Response struct {
		Results *struct {
			Result oneOrMany[openaireResult] `json:"result"`
		} `json:"results"`
	} `json:"response"`
}

type openaireResult struct {
	Metadata struct {
		Entity struct {
			Result openaireRecord `json:"oaf:result"`
		} `json:"oaf:entity"`
	} `json:"metadata"`
}

type openaireRecord struct {
	Title            oneOrMany[oafValue]         `json:"title"`
	Creator          oneOrMany[oafValue]         `json:"creator"`
	Description      oneOrMany[oafValue]         `json:"description"`
	DateOfAcceptance oafValue                    `json:"dateofacceptance"`
	PID              oneOrMany[oafValue]         `json:"pid"`
	Instance         oneOrMany[openaireInstance] `json:"instance"`
	Children         struct {
		Instance oneOrMany[openaireInstance] `json:"instance"`
	} `json:"children"`
}

type openaireInstance struct {
	WebResource oneOrMany[openaireWebResource] `json:"webresource"`
}

type openaireWebResource struct {
	URL oafValue `json:"url"`
}

func (r openaireRecord) hit() RawHit {
	var h RawHit
	for _, t := range r.Title {
		if h.Title == "" || t.ClassID == "main title" {
			h.Title = t.Value
		}
	}
	for _, c := range r.Creator {
		h.Authors = append(h.Authors, c.Value)
	}
	if len(r.Description) > 0 {
		h.Abstract = r.Description[0].Value
	}
	h.Published = r.DateOfAcceptance.Value

	for _, p := range r.PID {
		if p.ClassID == "doi" && p.Value != "" {
			h.ID = p.Value
			h.URL = "https://doi.org/" + p.Value
			break
		}
	}

	instances := append(oneOrMany[openaireInstance]{}, r.Instance...)
	instances = append(instances, r.Children.Instance...)
	for _, inst := range instances {
		for _, wr := range inst.WebResource {
			u := wr.URL.Value
			if u == "" {
				continue
			}
			if h.URL == "" {
				h.URL = u
			}
			if h.PDFURL == "" && strings.HasSuffix(strings.ToLower(u), ".pdf") {
				h.PDFURL = u
			}
		}
	}
	return h
}
