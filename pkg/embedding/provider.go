package embedding

import (
	"context"
	"math"
)

// Provider turns text into a dense vector. Implementations call an
// external model service and must return unit-length vectors so cosine
// similarity is comparable across backends.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NormalizeVector scales a vector to unit length. Cosine distance in the
// index requires normalized vectors (magnitude = 1).
func NormalizeVector(vec []float32) []float32 {
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
