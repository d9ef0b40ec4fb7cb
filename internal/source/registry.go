// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"net/http"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/docufetch/pkg/types"
)

// Names lists every known source in aggregation order.
var Names = []string{
	"arxiv",
	"scholar",
	"semantic_scholar",
	"openalex",
	"crossref",
	"core",
	"unpaywall",
	"pubmed",
	"doaj",
	"openaire",
	"news",
}

// DefaultEnabled is the enabled set for a fresh configuration.
func DefaultEnabled() map[string]bool {
	m := make(map[string]bool, len(Names))
	for _, name := range Names {
		m[name] = false
	}
	m["arxiv"] = true
	m["scholar"] = true
	m["news"] = true
	return m
}

// Known reports whether name is a registered source.
func Known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// sourceLimits are the request rates each source tolerates.
var sourceLimits = map[string]rate.Limit{
	"arxiv":            rate.Every(3 * time.Second),
	"scholar":          rate.Every(5 * time.Second),
	"semantic_scholar": rate.Every(time.Second),
	"openalex":         10,
	"crossref":         5,
	"core":             rate.Every(time.Second),
	"unpaywall":        5,
	"pubmed":           3,
	"doaj":             2,
	"openaire":         2,
	"news":             2,
}

const defaultUserAgent = "docufetch/0.1 (+https://github.com/pdiddy/docufetch)"

// Build returns a Ref for every known source, in Names order, with the
// enabled flag and credentials taken from cfg. Names in cfg.Sources that
// are not registered are ignored.
func Build(cfg types.Config, client *http.Client) []Ref {
	ua := cfg.HTTP.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	base := func(name string) HTTP {
		return HTTP{
			Client:     client,
			UserAgent:  ua,
			Limiter:    rate.NewLimiter(sourceLimits[name], 1),
			MaxRetries: 2,
		}
	}
	keys := cfg.APIKeys

	adapters := map[string]Adapter{
		"arxiv":            &Arxiv{HTTP: base("arxiv")},
		"scholar":          &Scholar{HTTP: base("scholar")},
		"semantic_scholar": &SemanticScholar{HTTP: base("semantic_scholar"), APIKey: keys.SemanticScholar},
		"openalex":         &OpenAlex{HTTP: base("openalex"), Email: keys.OpenAlexEmail},
		"crossref":         &Crossref{HTTP: base("crossref"), Email: keys.CrossrefEmail},
		"core":             &Core{HTTP: base("core"), APIKey: keys.Core},
		"unpaywall":        &Unpaywall{HTTP: base("unpaywall"), Email: keys.UnpaywallEmail},
		"pubmed":           &PubMed{HTTP: base("pubmed"), Email: keys.NCBIEmail},
		"doaj":             &DOAJ{HTTP: base("doaj"), APIKey: keys.DOAJ},
		"openaire":         &OpenAIRE{HTTP: base("openaire")},
		"news":             &News{HTTP: base("news"), Feeds: cfg.News.Feeds},
	}

	refs := make([]Ref, 0, len(Names))
	for _, name := range Names {
		refs = append(refs, Ref{Adapter: adapters[name], Enabled: cfg.Sources[name]})
	}
	return refs
}

// EnabledNames returns the enabled source names in sorted order.
func EnabledNames(sources map[string]bool) []string {
	var names []string
	for name, on := range sources {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
