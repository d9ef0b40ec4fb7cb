// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads source credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key name and the
// trimmed file contents are the value.
//
// Recognized key files: core-api-key, semantic-scholar-api-key,
// doaj-api-key, crossref-email, unpaywall-email, ncbi-email,
// openalex-email, minio-access-key, minio-secret-key, redis-password and
// postgres-dsn.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/docufetch/pkg/types"
)

// DefaultDir is where the CLI looks for secret files.
const DefaultDir = ".secrets/"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on warn but do not abort.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	if warn == nil {
		warn = io.Discard
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply copies secrets into cfg fields that are still empty and returns the
// names of the secrets it used, sorted. Values already set in cfg win.
func Apply(cfg *types.Config, secrets map[string]string) []string {
	targets := map[string]*string{
		"core-api-key":             &cfg.APIKeys.Core,
		"semantic-scholar-api-key": &cfg.APIKeys.SemanticScholar,
		"doaj-api-key":             &cfg.APIKeys.DOAJ,
		"crossref-email":           &cfg.APIKeys.CrossrefEmail,
		"unpaywall-email":          &cfg.APIKeys.UnpaywallEmail,
		"ncbi-email":               &cfg.APIKeys.NCBIEmail,
		"openalex-email":           &cfg.APIKeys.OpenAlexEmail,
		"minio-access-key":         &cfg.Download.Minio.AccessKey,
		"minio-secret-key":         &cfg.Download.Minio.SecretKey,
		"redis-password":           &cfg.Store.RedisPassword,
		"postgres-dsn":             &cfg.Store.PostgresDSN,
	}

	var used []string
	for name, dst := range targets {
		v, ok := secrets[name]
		if !ok || *dst != "" {
			continue
		}
		*dst = v
		used = append(used, name)
	}
	sort.Strings(used)
	return used
}
