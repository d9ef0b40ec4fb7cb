// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pdiddy/docufetch/internal/source"
	"github.com/pdiddy/docufetch/pkg/types"
)

var apiKeyFields = []string{
	"core",
	"crossref_email",
	"unpaywall_email",
	"ncbi_email",
	"doaj_api_key",
	"semantic_scholar",
	"openalex_email",
}

// AddKeyword appends kw unless it is blank or already present.
func AddKeyword(cfg *types.Config, kw string) bool {
	kw = strings.TrimSpace(kw)
	if kw == "" || slices.Contains(cfg.Keywords, kw) {
		return false
	}
	cfg.Keywords = append(cfg.Keywords, kw)
	return true
}

// RemoveKeyword deletes kw and reports whether it was present.
func RemoveKeyword(cfg *types.Config, kw string) bool {
	kw = strings.TrimSpace(kw)
	i := slices.Index(cfg.Keywords, kw)
	if i < 0 {
		return false
	}
	cfg.Keywords = slices.Delete(cfg.Keywords, i, i+1)
	return true
}

// ClearKeywords removes every keyword.
func ClearKeywords(cfg *types.Config) {
	cfg.Keywords = []string{}
}

// SetSource enables or disables a registered source.
func SetSource(cfg *types.Config, name string, enabled bool) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if !source.Known(name) {
		return fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]bool)
	}
	cfg.Sources[name] = enabled
	return nil
}

// SetAPIKey stores a credential for the named source. PubMed takes the
// contact email NCBI asks clients to send.
func SetAPIKey(cfg *types.Config, name, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "core":
		cfg.APIKeys.Core = value
	case "crossref":
		cfg.APIKeys.CrossrefEmail = value
	case "unpaywall":
		cfg.APIKeys.UnpaywallEmail = value
	case "pubmed", "ncbi":
		cfg.APIKeys.NCBIEmail = value
	case "doaj":
		cfg.APIKeys.DOAJ = value
	case "semantic_scholar":
		cfg.APIKeys.SemanticScholar = value
	case "openalex":
		cfg.APIKeys.OpenAlexEmail = value
	default:
		return fmt.Errorf("%w: %s takes no credentials", ErrUnknownSource, name)
	}
	return nil
}

// SetInterval sets the monitor period in hours.
func SetInterval(cfg *types.Config, hours int) error {
	if hours < 1 {
		return fmt.Errorf("interval must be at least 1 hour, got %d", hours)
	}
	cfg.UpdateInterval = hours
	return nil
}
