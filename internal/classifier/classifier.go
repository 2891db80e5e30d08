package classifier

import (
	"context"
	"fmt"
	"math"

	"github.com/spec-kit/nexus-ai/internal/domain"
)

// Result is the full outcome of one classification run: the validated
// contract fields plus audit material for the store.
type Result struct {
	Classification domain.Classification
	RawResponse    string
	ModelVersion   string
}

// Classifier turns raw user text into a structurally-guaranteed
// classification. Implementations must clamp or default every field before
// returning; callers never receive an out-of-enum urgency/sentiment or an
// out-of-range confidence.
type Classifier interface {
	Classify(ctx context.Context, message string) (*Result, error)
}

// ClassificationError reports that the underlying mechanism could not
// produce a usable result. RawResponse carries the unparsed upstream reply
// for diagnostics when one was received.
type ClassificationError struct {
	Provider    string
	RawResponse string
	Err         error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s classification failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s classification failed", e.Provider)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
