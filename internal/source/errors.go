// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/pdiddy/docufetch/pkg/types"
)

// Sentinel errors matched by errors.Is against an *Error.
var (
	ErrTimeout       = errors.New("source timed out")
	ErrAuth          = errors.New("source rejected credentials")
	ErrQuotaExceeded = errors.New("source quota exceeded")
	ErrTransport     = errors.New("source transport failure")
	ErrParse         = errors.New("source response could not be parsed")
)

// Error is returned by adapters when a search fails.
type Error struct {
	Source string
	Kind   types.ErrorKind
	// StatusCode is the HTTP status when the failure came from a response.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %v", e.Source, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(kind types.ErrorKind) error {
	switch kind {
	case types.ErrorTimeout:
		return ErrTimeout
	case types.ErrorAuth:
		return ErrAuth
	case types.ErrorQuotaExceeded:
		return ErrQuotaExceeded
	case types.ErrorParse:
		return ErrParse
	default:
		return ErrTransport
	}
}

// newError builds an *Error of the given kind.
func newError(source string, kind types.ErrorKind, format string, args ...any) *Error {
	return &Error{Source: source, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// statusError maps a non-2xx HTTP status onto an error kind.
func statusError(source string, code int) *Error {
	kind := types.ErrorTransport
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = types.ErrorAuth
	case http.StatusTooManyRequests:
		kind = types.ErrorQuotaExceeded
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		kind = types.ErrorTimeout
	}
	return &Error{
		Source:     source,
		Kind:       kind,
		StatusCode: code,
		Err:        fmt.Errorf("%s returned HTTP %d", source, code),
	}
}

// requestError wraps an error from sending a request or reading its body.
func requestError(source string, err error) *Error {
	return &Error{Source: source, Kind: Classify(err), Err: err}
}

// Classify returns the error kind for err. Errors that carry no kind of
// their own are transport failures unless they are deadline expirations.
func Classify(err error) types.ErrorKind {
	if err == nil {
		return types.ErrorNone
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
		return types.ErrorTimeout
	case errors.Is(err, ErrAuth):
		return types.ErrorAuth
	case errors.Is(err, ErrQuotaExceeded):
		return types.ErrorQuotaExceeded
	case errors.Is(err, ErrParse):
		return types.ErrorParse
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return types.ErrorTimeout
	}
	return types.ErrorTransport
}
