// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads planned documents, writes a metadata sidecar for
// each one and marks it downloaded in the dedup store.
//
// A document is marked downloaded only after its file is in the sink. Any
// failure leaves the entry pending so a later retry can pick it up.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docufetch/internal/dedup"
	"github.com/pdiddy/docufetch/internal/httputil"
	"github.com/pdiddy/docufetch/internal/logging"
	"github.com/pdiddy/docufetch/pkg/types"
)

const (
	metadataDir = "metadata"

	// maxDownloadBytes caps a single download.
	maxDownloadBytes = 256 << 20

	maxStemRunes = 100
)

var (
	// ErrNoURL is returned for documents with nothing to download.
	ErrNoURL = errors.New("document has no download URL")

	// ErrInvalidPDF is returned when PDF validation is on and the body is
	// not a readable PDF.
	ErrInvalidPDF = errors.New("downloaded file is not a valid PDF")
)

// Record describes one completed download.
type Record struct {
	Document    types.Document
	Location    string
	Size        int64
	ContentType string
}

// BatchResult holds the outcome of a batch download.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Bytes      int64
	Records    []Record
}

// Total returns the number of documents processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any download failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Metadata is the YAML sidecar written next to each download.
type Metadata struct {
	Title        string    `yaml:"title"`
	Authors      []string  `yaml:"authors,omitempty"`
	Source       string    `yaml:"source"`
	Category     string    `yaml:"category"`
	Keyword      string    `yaml:"keyword,omitempty"`
	URL          string    `yaml:"url,omitempty"`
	PDFURL       string    `yaml:"pdf_url,omitempty"`
	PublishedAt  time.Time `yaml:"published_at,omitempty"`
	IdentityKey  string    `yaml:"identity_key"`
	Abstract     string    `yaml:"abstract,omitempty"`
	Location     string    `yaml:"location"`
	ContentType  string    `yaml:"content_type,omitempty"`
	Size         int64     `yaml:"size"`
	DownloadedAt time.Time `yaml:"downloaded_at"`
}

// Downloader fetches documents into a Sink.
type Downloader struct {
	Client *http.Client
	Store  dedup.Store
	Sink   Sink

	UserAgent string

	// PreferPDF downloads PDFURL when a document has one.
	PreferPDF bool

	// ValidatePDF rejects PDF downloads that do not parse.
	ValidatePDF bool

	// Delay is the pause between consecutive downloads in a batch.
	Delay time.Duration

	// Out receives per-document progress lines.
	Out    io.Writer
	Logger *slog.Logger
}

// New returns a Downloader configured from cfg.
func New(cfg types.Config, client *http.Client, store dedup.Store, sink Sink, w io.Writer, logger *slog.Logger) *Downloader {
	if w == nil {
		w = io.Discard
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Downloader{
		Client:      client,
		Store:       store,
		Sink:        sink,
		UserAgent:   cfg.HTTP.UserAgent,
		PreferPDF:   cfg.DownloadPDFs,
		ValidatePDF: cfg.Download.ValidatePDF,
		Delay:       cfg.Download.Delay,
		Out:         w,
		Logger:      logger,
	}
}

// Download fetches doc, stores it with its metadata sidecar and marks its
// identity key downloaded.
func (d *Downloader) Download(ctx context.Context, doc types.Document) (Record, error) {
	target := doc.DownloadURL(d.PreferPDF)
	if target == "" {
		return Record{}, ErrNoURL
	}
	wantPDF := target == doc.PDFURL

	data, contentType, err := d.get(ctx, target, wantPDF)
	if err != nil {
		return Record{}, err
	}

	isPDF := looksLikePDF(data, contentType)
	if d.ValidatePDF && wantPDF {
		if !isPDF {
			return Record{}, fmt.Errorf("%w: content type %q", ErrInvalidPDF, contentType)
		}
		if err := validatePDF(data); err != nil {
			return Record{}, err
		}
	}

	stem := FileStem(doc)
	name := path.Join(string(doc.Category), stem+extension(target, contentType, isPDF))
	loc, err := d.Sink.Put(ctx, name, data, contentType)
	if err != nil {
		return Record{}, fmt.Errorf("storing %s: %w", name, err)
	}
	rec := Record{Document: doc, Location: loc, Size: int64(len(data)), ContentType: contentType}

	if err := d.writeMetadata(ctx, stem, rec); err != nil {
		d.Logger.Warn("metadata sidecar not written", slog.String("key", doc.IdentityKey), slog.String("error", err.Error()))
		fmt.Fprintf(d.Out, "  warning: metadata for %s not written: %v\n", stem, err)
	}

	if err := d.Store.MarkDownloaded(ctx, doc.IdentityKey, loc); err != nil {
		return rec, fmt.Errorf("marking %s downloaded: %w", doc.IdentityKey, err)
	}
	return rec, nil
}

// Batch downloads docs in order, continuing after individual failures. It
// stops early when ctx is cancelled and counts the rest as skipped.
func (d *Downloader) Batch(ctx context.Context, docs []types.Document) BatchResult {
	var result BatchResult
	for i, doc := range docs {
		if i > 0 && d.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(d.Delay):
			}
		}
		if ctx.Err() != nil {
			result.Skipped += len(docs) - i
			fmt.Fprintf(d.Out, "interrupted: %d documents left pending\n", len(docs)-i)
			break
		}

		rec, err := d.Download(ctx, doc)
		switch {
		case errors.Is(err, ErrNoURL):
			result.Skipped++
			fmt.Fprintf(d.Out, "skipped: %s (no URL)\n", doc.Title)
		case err != nil:
			result.Failed++
			fmt.Fprintf(d.Out, "failed:  %s (%v)\n", doc.Title, err)
			d.Logger.Warn("download failed", slog.String("key", doc.IdentityKey), slog.String("error", err.Error()))
		default:
			result.Downloaded++
			result.Bytes += rec.Size
			result.Records = append(result.Records, rec)
			fmt.Fprintf(d.Out, "downloaded: %s -> %s\n", doc.Title, rec.Location)
		}
	}
	fmt.Fprintf(d.Out, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// get fetches target and returns its body and media type.
func (d *Downloader) get(ctx context.Context, target string, wantPDF bool) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	if wantPDF {
		req.Header.Set("Accept", "application/pdf")
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, target)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading body: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, "", fmt.Errorf("download exceeds %d bytes", maxDownloadBytes)
	}

	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return data, contentType, nil
}

func (d *Downloader) writeMetadata(ctx context.Context, stem string, rec Record) error {
	doc := rec.Document
	meta := Metadata{
		Title:        doc.Title,
		Authors:      doc.Authors,
		Source:       doc.SourceName,
		Category:     string(doc.Category),
		Keyword:      doc.Keyword,
		URL:          doc.URL,
		PDFURL:       doc.PDFURL,
		PublishedAt:  doc.PublishedAt,
		IdentityKey:  doc.IdentityKey,
		Abstract:     doc.Abstract,
		Location:     rec.Location,
		ContentType:  rec.ContentType,
		Size:         rec.Size,
		DownloadedAt: time.Now().UTC(),
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	_, err = d.Sink.Put(ctx, path.Join(metadataDir, stem+".yaml"), data, "application/yaml")
	return err
}

func looksLikePDF(data []byte, contentType string) bool {
	return contentType == "application/pdf" || bytes.HasPrefix(data, []byte("%PDF-"))
}

// validatePDF parses data and requires at least one page.
func validatePDF(data []byte) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, p)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if r.NumPage() < 1 {
		return fmt.Errorf("%w: no pages", ErrInvalidPDF)
	}
	return nil
}

// extension picks the file extension for a download.
func extension(target, contentType string, isPDF bool) string {
	if isPDF {
		return ".pdf"
	}
	switch contentType {
	case "text/html", "application/xhtml+xml":
		return ".html"
	case "text/plain":
		return ".txt"
	case "application/xml", "text/xml":
		return ".xml"
	}
	if u, err := url.Parse(target); err == nil {
		if ext := path.Ext(u.Path); ext != "" && len(ext) <= 6 {
			return strings.ToLower(ext)
		}
	}
	return ".html"
}

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]+`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// FileStem returns a filesystem-safe name for doc: its sanitized title
// followed by the first eight characters of its identity key.
func FileStem(doc types.Document) string {
	stem := unsafeChars.ReplaceAllString(doc.Title, "_")
	stem = spaceRuns.ReplaceAllString(strings.TrimSpace(stem), "_")
	stem = strings.Trim(stem, "._")
	if r := []rune(stem); len(r) > maxStemRunes {
		stem = strings.TrimRight(string(r[:maxStemRunes]), "._")
	}
	if stem == "" {
		stem = "document"
	}
	key := doc.IdentityKey
	if len(key) > 8 {
		key = key[:8]
	}
	if key == "" {
		return stem
	}
	return stem + "_" + key
}
