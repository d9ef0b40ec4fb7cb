// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DedupEntry is the persisted record of one identity key.
type DedupEntry struct {
	IdentityKey     string    `json:"identity_key" yaml:"identity_key"`
	FirstSeenSource string    `json:"first_seen_source" yaml:"first_seen_source"`
	FirstSeenAt     time.Time `json:"first_seen_at" yaml:"first_seen_at"`

	// DownloadedPath is empty until a download has been confirmed.
	DownloadedPath string    `json:"downloaded_path,omitempty" yaml:"downloaded_path,omitempty"`
	DownloadedAt   time.Time `json:"downloaded_at,omitempty" yaml:"downloaded_at,omitempty"`

	// Locator fields let a pending entry be retried without re-querying sources.
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	URL      string   `json:"url,omitempty" yaml:"url,omitempty"`
	PDFURL   string   `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`
	Category Category `json:"category,omitempty" yaml:"category,omitempty"`
	Keyword  string   `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	RunID    string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// Downloaded reports whether the entry has a confirmed download.
func (e DedupEntry) Downloaded() bool {
	return e.DownloadedPath != ""
}

// EntryFor builds the entry recorded when doc is first seen.
func EntryFor(doc Document, runID string, seenAt time.Time) DedupEntry {
	return DedupEntry{
		IdentityKey:     doc.IdentityKey,
		FirstSeenSource: doc.SourceName,
		FirstSeenAt:     seenAt,
		Title:           doc.Title,
		URL:             doc.URL,
		PDFURL:          doc.PDFURL,
		Category:        doc.Category,
		Keyword:         doc.Keyword,
		RunID:           runID,
	}
}

// Document rebuilds enough of a Document from the entry to download it again.
func (e DedupEntry) Document() Document {
	return Document{
		Title:       e.Title,
		SourceName:  e.FirstSeenSource,
		Category:    e.Category,
		URL:         e.URL,
		PDFURL:      e.PDFURL,
		IdentityKey: e.IdentityKey,
		Keyword:     e.Keyword,
	}
}
