// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docufetch/pkg/types"
)

func TestFileSinkPut(t *testing.T) {
	dir := t.TempDir()
	s := &FileSink{Root: dir}

	loc, err := s.Put(context.Background(), "academic/paper.pdf", []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "academic", "paper.pdf"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(dir, "academic"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewSink(t *testing.T) {
	s, err := NewSink(context.Background(), types.DownloadConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileSink{}, s)

	_, err = NewSink(context.Background(), types.DownloadConfig{})
	assert.Error(t, err)

	_, err = NewSink(context.Background(), types.DownloadConfig{Sink: "ftp"})
	assert.Error(t, err)

	_, err = NewSink(context.Background(), types.DownloadConfig{Sink: types.SinkMinio})
	assert.Error(t, err)
}

// fakeS3 answers the bucket check and object uploads.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.objects[r.URL.Path] = string(body)
		f.mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func TestMinioSinkPut(t *testing.T) {
	fake := &fakeS3{objects: make(map[string]string)}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	s, err := NewMinioSink(context.Background(), types.MinioConfig{
		Endpoint:  strings.TrimPrefix(ts.URL, "http://"),
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "papers",
	})
	require.NoError(t, err)

	loc, err := s.Put(context.Background(), "academic/paper.pdf", []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "s3://papers/academic/paper.pdf", loc)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	// The client may frame the payload in signed chunks.
	assert.Contains(t, fake.objects["/papers/academic/paper.pdf"], "%PDF-1.4")
}
