// Package llm calls a hosted OpenAI-compatible chat-completion endpoint.
// Providers are distinguished only by base URL; OpenRouter additionally
// takes attribution headers on every request.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultTemperature    = 0.1
	defaultMaxTokens      = 800
	defaultRequestTimeout = 60 * time.Second
	streamTimeout         = 5 * time.Minute
)

// ErrNoAPIKey is returned when the chat API key is not configured
var ErrNoAPIKey = errors.New("chat API key not set")

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// Config represents chat provider configuration.
type Config struct {
	Provider    string // openrouter, deepseek, openai
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	// Referer and Title are OpenRouter attribution headers.
	Referer string
	Title   string
}

// Client wraps the chat-completion provider.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// attributionTransport adds the OpenRouter HTTP-Referer / X-Title headers.
type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		req.Header.Set("X-Title", t.title)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewClient creates a chat client for the configured provider.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	httpClient := &http.Client{Timeout: defaultRequestTimeout}
	if cfg.Referer != "" || cfg.Title != "" {
		httpClient.Transport = &attributionTransport{referer: cfg.Referer, title: cfg.Title}
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.HTTPClient = httpClient

	switch cfg.Provider {
	case "deepseek":
		clientConfig.BaseURL = "https://api.deepseek.com"
	case "openai":
		// go-openai default base URL
	case "openrouter", "":
		clientConfig.BaseURL = "https://openrouter.ai/api/v1"
	default:
		// Generic OpenAI-compatible provider, base URL required below.
	}
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Chat performs a synchronous completion and returns the generated text.
// An empty choice list counts as a generation failure.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages:    convertMessages(messages),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from chat provider")
	}

	return resp.Choices[0].Message.Content, nil
}

// ChatStream performs a streaming completion, sending content deltas on the
// returned channel as they arrive. Both channels are closed when the stream
// ends; a value on the error channel means the stream failed before
// completing.
func (c *Client) ChatStream(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	contentChan := make(chan string, 10)
	errChan := make(chan error, 1)

	go func() {
		defer close(contentChan)
		defer close(errChan)

		ctx, cancel := context.WithTimeout(ctx, streamTimeout)
		defer cancel()

		stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			Messages:    convertMessages(messages),
		})
		if err != nil {
			errChan <- fmt.Errorf("create stream failed: %w", err)
			return
		}
		defer func() { _ = stream.Close() }()

		for {
			response, err := stream.Recv()
			if err != nil {
				if strings.Contains(err.Error(), "EOF") {
					return
				}
				select {
				case errChan <- fmt.Errorf("stream recv failed: %w", err):
				case <-ctx.Done():
				}
				return
			}

			if len(response.Choices) == 0 {
				continue
			}

			if delta := response.Choices[0].Delta.Content; delta != "" {
				select {
				case contentChan <- delta:
				case <-ctx.Done():
					return
				}
			}

			if response.Choices[0].FinishReason != "" {
				return
			}
		}
	}()

	return contentChan, errChan
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		role := m.Role
		switch role {
		case "system", "user", "assistant":
		default:
			role = openai.ChatMessageRoleUser
		}
		out[i] = openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}
	return out
}
