// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/pdiddy/docufetch/internal/httputil"
	"github.com/pdiddy/docufetch/pkg/types"
)

// maxBodyBytes caps how much of a response an adapter will read.
const maxBodyBytes = 16 << 20

// HTTP is the request plumbing shared by the HTTP-based adapters: rate
// limiting, User-Agent, 429 backoff and status classification.
type HTTP struct {
	Client    *http.Client
	UserAgent string

	// Limiter paces requests to the source. Nil means unlimited.
	Limiter *rate.Limiter

	// MaxRetries bounds retries on HTTP 429 (httputil default when 0).
	MaxRetries int
}

func (h *HTTP) client() *http.Client {
	if h.Client == nil {
		return http.DefaultClient
	}
	return h.Client
}

// get sends a GET request and returns the response when the status is 2xx.
// Any other outcome is an *Error; the caller closes the body.
func (h *HTTP) get(ctx context.Context, source, reqURL string, header http.Header) (*http.Response, error) {
	if h.Limiter != nil {
		if err := h.Limiter.Wait(ctx); err != nil {
			// Wait fails early when the next token lies past the deadline.
			return nil, &Error{Source: source, Kind: types.ErrorTimeout, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, newError(source, types.ErrorTransport, "creating request: %w", err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := httputil.DoWithRetry(ctx, h.client(), req, h.MaxRetries)
	if err != nil {
		return nil, requestError(source, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, statusError(source, resp.StatusCode)
	}
	return resp, nil
}

// getJSON fetches reqURL and decodes the JSON body into v.
func (h *HTTP) getJSON(ctx context.Context, source, reqURL string, header http.Header, v any) error {
	resp, err := h.get(ctx, source, reqURL, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v); err != nil {
		return decodeError(ctx, source, err)
	}
	return nil
}

// getXML fetches reqURL and decodes the XML body into v.
func (h *HTTP) getXML(ctx context.Context, source, reqURL string, header http.Header, v any) error {
	resp, err := h.get(ctx, source, reqURL, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := xml.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v); err != nil {
		return decodeError(ctx, source, err)
	}
	return nil
}

// getBody fetches reqURL and returns the raw body.
func (h *HTTP) getBody(ctx context.Context, source, reqURL string, header http.Header) ([]byte, error) {
	resp, err := h.get(ctx, source, reqURL, header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, requestError(source, err)
	}
	return data, nil
}

// decodeError separates a body cut off by cancellation from a malformed one.
func decodeError(ctx context.Context, source string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return requestError(source, ctxErr)
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Source: source, Kind: types.ErrorTimeout, Err: err}
	}
	return &Error{Source: source, Kind: types.ErrorParse, Err: err}
}

// clampLimit applies a default and a source-side maximum to limit.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}

// truncate returns at most limit hits.
func truncate(hits []RawHit, limit int) []RawHit {
	if limit > 0 && len(hits) > limit {
		return hits[:limit]
	}
	return hits
}
