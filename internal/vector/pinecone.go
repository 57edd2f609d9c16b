package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leycura/curabot/internal/domain"
)

const pineconeRequestTimeout = 15 * time.Second

// PineconeClient queries a Pinecone-style index over its REST query
// endpoint. Authentication is a per-request Api-Key header.
type PineconeClient struct {
	host       string
	apiKey     string
	namespace  string
	httpClient *http.Client
}

type PineconeConfig struct {
	Host      string
	APIKey    string
	Namespace string
	// HTTPClient overrides the default client, used by tests.
	HTTPClient *http.Client
}

// NewPineconeClient creates a client for the index hosted at cfg.Host.
func NewPineconeClient(cfg PineconeConfig) *PineconeClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: pineconeRequestTimeout}
	}
	return &PineconeClient{
		host:       strings.TrimRight(cfg.Host, "/"),
		apiKey:     cfg.APIKey,
		namespace:  cfg.Namespace,
		httpClient: httpClient,
	}
}

type pineconeQueryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Namespace       string    `json:"namespace,omitempty"`
}

// pineconeMatch mirrors the loosely-typed upstream shape; metadata fields
// may be absent and are extracted defensively.
type pineconeMatch struct {
	ID       string          `json:"id"`
	Score    float32         `json:"score"`
	Metadata pineconeMatchMD `json:"metadata"`
}

type pineconeMatchMD struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

type pineconeQueryResponse struct {
	Matches []pineconeMatch `json:"matches"`
}

// Search issues one query against the index and maps matches to passages.
// Matches without usable text are dropped rather than surfaced as errors.
func (c *PineconeClient) Search(ctx context.Context, vector []float32, topK int) ([]domain.Passage, error) {
	payload, err := json.Marshal(pineconeQueryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       c.namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/query", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build query request: %w", err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector index query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("vector index returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result pineconeQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}

	passages := make([]domain.Passage, 0, len(result.Matches))
	for _, m := range result.Matches {
		text := strings.TrimSpace(m.Metadata.Text)
		if text == "" {
			continue
		}
		passages = append(passages, domain.Passage{
			Text:   text,
			Score:  m.Score,
			Source: m.Metadata.Source,
		})
	}
	return passages, nil
}
