package store

import (
	"bytes"
	"cmp"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/cwbudde/isdestimator/internal/estimator"
	"golang.org/x/crypto/sha3"
)

// Report is a persisted estimation: the request that produced it, keyed by
// its content hash, and the estimator output.
type Report struct {
	// Key is ReportKey(Request).
	Key string `json:"key"`

	// Family names the problem family, "sd" or "mq".
	Family string `json:"family"`

	// Request is the canonical JSON of the estimation request.
	Request json.RawMessage `json:"request"`

	Estimate estimator.Report `json:"estimate"`

	CreatedAt time.Time `json:"createdAt"`
}

// ReportInfo is the listing view of a Report.
type ReportInfo struct {
	Key       string    `json:"key"`
	Family    string    `json:"family"`
	Problem   string    `json:"problem"`
	Fastest   string    `json:"fastest,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewReport builds a report for request, computing its key.
func NewReport(family string, request any, estimate estimator.Report) (*Report, error) {
	data, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return &Report{
		Key:       keyOf(data),
		Family:    family,
		Request:   data,
		Estimate:  estimate,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ReportKey returns the hex SHA3-256 of the JSON encoding of request.
// Struct requests encode deterministically, so equal requests share a key.
func ReportKey(request any) (string, error) {
	data, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	return keyOf(data), nil
}

func keyOf(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// canonicalKey hashes raw after stripping the whitespace indented storage
// adds.
func canonicalKey(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return keyOf(buf.Bytes())
}

// ToInfo converts a Report to its listing metadata.
func (r *Report) ToInfo() ReportInfo {
	return ReportInfo{
		Key:       r.Key,
		Family:    r.Family,
		Problem:   r.Estimate.Problem,
		Fastest:   r.Estimate.Fastest,
		CreatedAt: r.CreatedAt,
	}
}

// Validate checks that the report can be stored and found again.
func (r *Report) Validate() error {
	switch {
	case r.Key == "":
		return &ValidationError{Field: "Key", Reason: "cannot be empty"}
	case len(r.Key) != 64:
		return &ValidationError{Field: "Key", Reason: fmt.Sprintf("must be 64 hex digits, got %d characters", len(r.Key))}
	case r.Family == "":
		return &ValidationError{Field: "Family", Reason: "cannot be empty"}
	case len(r.Request) == 0:
		return &ValidationError{Field: "Request", Reason: "cannot be empty"}
	case canonicalKey(r.Request) != r.Key:
		return &ValidationError{Field: "Key", Reason: "does not match the request"}
	case r.CreatedAt.IsZero():
		return &ValidationError{Field: "CreatedAt", Reason: "cannot be zero"}
	}
	return nil
}

// ValidationError represents a report validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// sortInfos orders infos newest first, then by key.
func sortInfos(infos []ReportInfo) {
	slices.SortFunc(infos, func(a, b ReportInfo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
}
