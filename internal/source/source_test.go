// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docufetch/internal/httputil"
	"github.com/pdiddy/docufetch/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// serve starts a server answering every request with status and body.
func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// swap points an endpoint variable at url for the duration of the test.
func swap(t *testing.T, target *string, url string) {
	t.Helper()
	old := *target
	*target = url
	t.Cleanup(func() { *target = old })
}

func TestStatusErrorKinds(t *testing.T) {
	tests := []struct {
		code     int
		want     types.ErrorKind
		sentinel error
	}{
		{http.StatusUnauthorized, types.ErrorAuth, ErrAuth},
		{http.StatusForbidden, types.ErrorAuth, ErrAuth},
		{http.StatusTooManyRequests, types.ErrorQuotaExceeded, ErrQuotaExceeded},
		{http.StatusGatewayTimeout, types.ErrorTimeout, ErrTimeout},
		{http.StatusInternalServerError, types.ErrorTransport, ErrTransport},
		{http.StatusNotFound, types.ErrorTransport, ErrTransport},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			ts := serve(t, tt.code, "")
			swap(t, &crossrefAPIBase, ts.URL)

			c := &Crossref{HTTP: HTTP{Client: ts.Client(), MaxRetries: 1}}
			hits, err := c.Search(context.Background(), "graph", 5)
			require.Error(t, err)
			assert.Nil(t, hits)

			var se *Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.want, se.Kind)
			assert.Equal(t, tt.code, se.StatusCode)
			assert.Equal(t, "crossref", se.Source)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), fmt.Sprintf("HTTP %d", tt.code))
		})
	}
}

func TestMalformedBodyIsParseError(t *testing.T) {
	ts := serve(t, http.StatusOK, `{not json`)
	swap(t, &openAlexSearchBase, ts.URL)

	o := &OpenAlex{HTTP: HTTP{Client: ts.Client()}}
	_, err := o.Search(context.Background(), "graph", 5)
	assert.Equal(t, types.ErrorParse, Classify(err))
	assert.ErrorIs(t, err, ErrParse)
}

func TestDeadlineIsTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()
	swap(t, &semanticAPIBase, ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := &SemanticScholar{HTTP: HTTP{Client: ts.Client()}}
	_, err := s.Search(ctx, "graph", 5)
	assert.Equal(t, types.ErrorTimeout, Classify(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.ErrorKind
	}{
		{"nil", nil, types.ErrorNone},
		{"deadline", context.DeadlineExceeded, types.ErrorTimeout},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), types.ErrorTimeout},
		{"typed", &Error{Kind: types.ErrorAuth, Err: errors.New("no key")}, types.ErrorAuth},
		{"wrapped typed", fmt.Errorf("x: %w", &Error{Kind: types.ErrorParse, Err: errors.New("bad")}), types.ErrorParse},
		{"quota sentinel", fmt.Errorf("blocked: %w", ErrQuotaExceeded), types.ErrorQuotaExceeded},
		{"plain", errors.New("connection reset"), types.ErrorTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, clampLimit(0, 50, 100))
	assert.Equal(t, 100, clampLimit(500, 50, 100))
	assert.Equal(t, 7, clampLimit(7, 50, 100))
	assert.Equal(t, 500, clampLimit(500, 50, 0))
}

func TestUserAgentSent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer ts.Close()
	swap(t, &openAlexSearchBase, ts.URL)

	o := &OpenAlex{HTTP: HTTP{Client: ts.Client(), UserAgent: "docufetch-test/1"}}
	hits, err := o.Search(context.Background(), "graph", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, "docufetch-test/1", got)
}
