// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docufetch/pkg/types"
)

func TestKeywords(t *testing.T) {
	var cfg types.Config

	assert.True(t, AddKeyword(&cfg, " machine learning "))
	assert.False(t, AddKeyword(&cfg, "machine learning"))
	assert.False(t, AddKeyword(&cfg, "   "))
	assert.True(t, AddKeyword(&cfg, "climate"))
	assert.Equal(t, []string{"machine learning", "climate"}, cfg.Keywords)

	assert.True(t, RemoveKeyword(&cfg, "machine learning"))
	assert.False(t, RemoveKeyword(&cfg, "machine learning"))
	assert.Equal(t, []string{"climate"}, cfg.Keywords)

	ClearKeywords(&cfg)
	assert.Empty(t, cfg.Keywords)
}

func TestSetSource(t *testing.T) {
	var cfg types.Config
	require.NoError(t, SetSource(&cfg, "PubMed", true))
	assert.True(t, cfg.Sources["pubmed"])

	require.NoError(t, SetSource(&cfg, "pubmed", false))
	assert.False(t, cfg.Sources["pubmed"])

	assert.ErrorIs(t, SetSource(&cfg, "altavista", true), ErrUnknownSource)
}

func TestSetAPIKey(t *testing.T) {
	var cfg types.Config
	require.NoError(t, SetAPIKey(&cfg, "core", " ck_1 "))
	require.NoError(t, SetAPIKey(&cfg, "pubmed", "me@example.org"))
	require.NoError(t, SetAPIKey(&cfg, "unpaywall", "you@example.org"))

	assert.Equal(t, "ck_1", cfg.APIKeys.Core)
	assert.Equal(t, "me@example.org", cfg.APIKeys.NCBIEmail)
	assert.Equal(t, "you@example.org", cfg.APIKeys.UnpaywallEmail)
	assert.ErrorIs(t, SetAPIKey(&cfg, "arxiv", "x"), ErrUnknownSource)
}

func TestSetInterval(t *testing.T) {
	var cfg types.Config
	require.NoError(t, SetInterval(&cfg, 24))
	assert.Equal(t, 24, cfg.UpdateInterval)
	assert.Error(t, SetInterval(&cfg, 0))
	assert.Equal(t, 24, cfg.UpdateInterval)
}
