package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is the embedding model used against OpenAI-compatible providers
	DefaultModel = openai.AdaEmbeddingV2
	// DefaultDimensions is the expected dimension of embeddings from ada-002
	DefaultDimensions = 1536
	// DefaultMaxChars caps the input text sent to the provider
	DefaultMaxChars = 5000
)

var (
	// ErrEmptyText is returned when text is empty after trimming
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when the embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when the embedding API key is not configured
	ErrNoAPIKey = errors.New("embedding API key not set")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// Client converts text into a fixed-length vector through a hosted
// OpenAI-compatible embedding endpoint. There is no retry: any failure is
// the caller's signal to degrade.
type Client struct {
	api        EmbeddingAPI
	dimensions int
	maxChars   int
}

type providerAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// CreateEmbeddings calls the provider to create embeddings
func (a *providerAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      openai.EmbeddingModel
	Dimensions int
	MaxChars   int
}

// NewClient creates an embedding client for the configured provider.
// OpenRouter, DeepSeek and OpenAI all speak the same embeddings contract,
// so a base URL is all that distinguishes them.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return newClientWithAPI(&providerAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, cfg), nil
}

func newClientWithAPI(api EmbeddingAPI, cfg Config) *Client {
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Client{api: api, dimensions: dimensions, maxChars: maxChars}
}

// Dimensions returns the vector length this client expects from the provider.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// Embed generates an embedding for the given text, truncated to the
// provider character cap. Empty input fails fast without an outbound call.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if runes := []rune(text); len(runes) > c.maxChars {
		text = string(runes[:c.maxChars])
	}

	vector, err := c.api.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(vector) != c.dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(vector))
	}

	return vector, nil
}
