// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ErrorKind classifies why a source produced no hits.
type ErrorKind string

const (
	ErrorNone          ErrorKind = ""
	ErrorTimeout       ErrorKind = "timeout"
	ErrorAuth          ErrorKind = "auth"
	ErrorQuotaExceeded ErrorKind = "quota_exceeded"
	ErrorTransport     ErrorKind = "transport"
	ErrorParse         ErrorKind = "parse"
)

// SourceOutcome reports what one source contributed to an aggregation run.
type SourceOutcome struct {
	SourceName string   `json:"source"`
	Category   Category `json:"category"`

	// Requested is false when the source was disabled or filtered out.
	Requested bool `json:"requested"`

	// HitCount is the number of raw hits the source returned.
	HitCount int `json:"hit_count"`

	// Error is empty on success.
	Error   ErrorKind `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`

	Dropped    int `json:"dropped"`
	Duplicates int `json:"duplicates"`
	New        int `json:"new"`

	// Unrecorded counts new documents left out of the plan because the
	// store could not record them.
	Unrecorded int `json:"unrecorded"`

	Elapsed time.Duration `json:"elapsed"`
}

// Failed reports whether the source was requested and returned an error.
func (o SourceOutcome) Failed() bool {
	return o.Requested && o.Error != ErrorNone
}
