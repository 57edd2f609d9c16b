// Package vector queries a hosted vector index for passages similar to a
// query embedding. The index itself is an external collaborator; this
// package only speaks its query contract. Two providers are supported: a
// Pinecone-style REST endpoint and a Qdrant gRPC collection.
package vector

import (
	"context"

	"github.com/leycura/curabot/internal/domain"
)

// Searcher returns the top-K passages nearest to the query vector, ordered
// by similarity. Implementations do not retry and do not cache across
// requests; a failed call means "no context available" to the caller.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]domain.Passage, error)
}

var (
	_ Searcher = (*PineconeClient)(nil)
	_ Searcher = (*QdrantStore)(nil)
)
