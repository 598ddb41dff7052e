// Package face wraps the external face capabilities the gateway depends
// on: embedding extraction (a remote service) and the similarity decision.
package face

import (
	"context"
	"math"
)

// Extractor produces zero or more fixed-length embeddings for the faces
// found in an image.
type Extractor interface {
	Embeddings(ctx context.Context, image []byte) ([][]float32, error)
}

// Matcher decides whether two embeddings belong to the same person.
type Matcher interface {
	Match(known, probe []float32) bool
}

// EuclideanMatcher matches when the Euclidean distance is within
// Tolerance. 0.6 is the conventional threshold for 128-d face encodings.
type EuclideanMatcher struct {
	Tolerance float64
}

func NewEuclideanMatcher(tolerance float64) EuclideanMatcher {
	if tolerance <= 0 {
		tolerance = 0.6
	}
	return EuclideanMatcher{Tolerance: tolerance}
}

func (m EuclideanMatcher) Match(known, probe []float32) bool {
	if len(known) == 0 || len(known) != len(probe) {
		return false
	}
	var sum float64
	for i := range known {
		d := float64(known[i] - probe[i])
		sum += d * d
	}
	return math.Sqrt(sum) <= m.Tolerance
}
