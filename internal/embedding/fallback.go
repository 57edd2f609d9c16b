package embedding

import (
	"hash/fnv"
	"math"
	"strings"
)

// FallbackVector builds a deterministic embedding from word hashing. It is
// used when the hosted provider is unavailable so retrieval can keep running
// in degraded mode: similar wording still lands near itself in the index,
// even though semantic quality is far below a real embedding.
func FallbackVector(text string, dims int) []float32 {
	if dims <= 0 {
		dims = DefaultDimensions
	}

	vector := make([]float32, dims)
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		// All-equal low-magnitude components keep downstream math well-defined.
		for i := range vector {
			vector[i] = 1.0 / float32(dims)
		}
		return vector
	}

	for _, word := range words {
		h := fnv.New32a()
		h.Write([]byte(word))
		idx := int(h.Sum32()) % dims
		if idx < 0 {
			idx += dims
		}
		vector[idx] += 1.0
	}

	// Normalize to unit length so scores stay comparable with provider output.
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}

	return vector
}
