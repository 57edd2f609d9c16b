package vector

import (
	"context"
	"fmt"
	"strings"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/leycura/curabot/internal/domain"
)

// QdrantStore is the alternate vector provider, querying a Qdrant
// collection over gRPC. The collection plays the role the namespace plays
// for the REST provider.
type QdrantStore struct {
	conn       *grpc.ClientConn
	points     pb.PointsClient
	collection string
}

// NewQdrantStore dials Qdrant at the given gRPC address.
func NewQdrantStore(addr, collection string) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial qdrant %s: %w", addr, err)
	}
	return &QdrantStore{
		conn:       conn,
		points:     pb.NewPointsClient(conn),
		collection: collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.conn.Close()
}

// Search performs k-NN similarity search with payloads enabled. Points
// without a usable text payload are dropped.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, topK int) ([]domain.Passage, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	passages := make([]domain.Passage, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		payload := r.GetPayload()
		text := strings.TrimSpace(payload["text"].GetStringValue())
		if text == "" {
			continue
		}
		passages = append(passages, domain.Passage{
			Text:   text,
			Score:  r.GetScore(),
			Source: payload["source"].GetStringValue(),
		})
	}
	return passages, nil
}
