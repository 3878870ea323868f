package embedding

import (
	"context"
	"errors"
	"math"
)

// ErrUnavailable marks every failure of the embedding capability (model load,
// timeout, non-2xx response). Callers branch on it with errors.Is.
var ErrUnavailable = errors.New("embedding unavailable")

// ErrEmptyInput is returned for blank input text.
var ErrEmptyInput = errors.New("embedding input is empty")

// Embedder maps free text to a fixed-length vector.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the model identifier, used for logging and cache keys.
	Model() string
}

// normalizeVector scales a vector to unit length so cosine distance in pgvector
// compares directions only.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

// truncateRunes cuts text to at most max runes. max <= 0 disables truncation.
func truncateRunes(text string, max int) string {
	if max <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == max {
			return text[:i]
		}
		count++
	}
	return text
}
