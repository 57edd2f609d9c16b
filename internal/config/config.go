package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Embedding provider (OpenAI-compatible: OpenRouter, DeepSeek, OpenAI).
	EmbeddingAPIKey     string `envconfig:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL    string `envconfig:"EMBEDDING_BASE_URL" default:"https://openrouter.ai/api/v1"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	EmbeddingMaxChars   int    `envconfig:"EMBEDDING_MAX_CHARS" default:"5000"`

	// Vector index. Provider is "pinecone" (REST query endpoint) or "qdrant".
	VectorProvider  string  `envconfig:"VECTOR_PROVIDER" default:"pinecone"`
	VectorHost      string  `envconfig:"VECTOR_HOST"`
	VectorAPIKey    string  `envconfig:"VECTOR_API_KEY"`
	VectorNamespace string  `envconfig:"VECTOR_NAMESPACE" default:"leycura"`
	VectorTopK      int     `envconfig:"VECTOR_TOP_K" default:"5"`
	VectorMinScore  float32 `envconfig:"VECTOR_MIN_SCORE" default:"0.5"`

	// Chat completion provider.
	ChatProvider    string  `envconfig:"CHAT_PROVIDER" default:"openrouter"`
	ChatAPIKey      string  `envconfig:"CHAT_API_KEY"`
	ChatBaseURL     string  `envconfig:"CHAT_BASE_URL"`
	ChatModel       string  `envconfig:"CHAT_MODEL" default:"google/gemma-7b-it:free"`
	ChatTemperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0.1"`
	ChatMaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"800"`
	ChatReferer     string  `envconfig:"CHAT_REFERER" default:"https://leycura.org"`
	ChatTitle       string  `envconfig:"CHAT_TITLE" default:"Ley Cura Chatbot"`

	// Pipeline tuning.
	ContextMaxChars int  `envconfig:"CONTEXT_MAX_CHARS" default:"3000"`
	JSONContract    bool `envconfig:"JSON_CONTRACT" default:"true"`
	ScriptedAnswers bool `envconfig:"SCRIPTED_ANSWERS" default:"false"`

	// Brevo (transactional email / contacts).
	BrevoAPIKey      string `envconfig:"BREVO_API_KEY"`
	BrevoBaseURL     string `envconfig:"BREVO_BASE_URL" default:"https://api.brevo.com"`
	ContactRecipient string `envconfig:"CONTACT_RECIPIENT" default:"contacto@leycura.org"`
	ContactName      string `envconfig:"CONTACT_NAME" default:"Ley C.U.R.A."`
	NewsletterListID int    `envconfig:"BREVO_NEWSLETTER_LIST_ID"`
	SumateListID     int    `envconfig:"BREVO_SUMATE_LIST_ID"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CURABOT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasEmbedding() bool {
	return c.EmbeddingAPIKey != ""
}

func (c *Config) HasVector() bool {
	return c.VectorHost != "" && (c.VectorProvider == "qdrant" || c.VectorAPIKey != "")
}

func (c *Config) HasChat() bool {
	return c.ChatAPIKey != ""
}

func (c *Config) HasBrevo() bool {
	return c.BrevoAPIKey != ""
}
