package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithEnvVars(t *testing.T) {
	os.Setenv("CURABOT_PORT", "9090")
	os.Setenv("CURABOT_DEBUG", "true")
	os.Setenv("CURABOT_EMBEDDING_API_KEY", "sk-embed")
	os.Setenv("CURABOT_VECTOR_HOST", "https://leycura-law-index.svc.pinecone.io")
	os.Setenv("CURABOT_VECTOR_API_KEY", "pc-test")
	os.Setenv("CURABOT_CHAT_API_KEY", "sk-chat")
	os.Setenv("CURABOT_VECTOR_MIN_SCORE", "0.7")
	defer func() {
		os.Unsetenv("CURABOT_PORT")
		os.Unsetenv("CURABOT_DEBUG")
		os.Unsetenv("CURABOT_EMBEDDING_API_KEY")
		os.Unsetenv("CURABOT_VECTOR_HOST")
		os.Unsetenv("CURABOT_VECTOR_API_KEY")
		os.Unsetenv("CURABOT_CHAT_API_KEY")
		os.Unsetenv("CURABOT_VECTOR_MIN_SCORE")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.HasEmbedding())
	assert.True(t, cfg.HasVector())
	assert.True(t, cfg.HasChat())
	assert.False(t, cfg.HasBrevo())
	assert.Equal(t, float32(0.7), cfg.VectorMinScore)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "pinecone", cfg.VectorProvider)
	assert.Equal(t, "leycura", cfg.VectorNamespace)
	assert.Equal(t, 5, cfg.VectorTopK)
	assert.Equal(t, float32(0.5), cfg.VectorMinScore)
	assert.Equal(t, 3000, cfg.ContextMaxChars)
	assert.Equal(t, 5000, cfg.EmbeddingMaxChars)
	assert.Equal(t, 1536, cfg.EmbeddingDimensions)
	assert.Equal(t, float32(0.1), cfg.ChatTemperature)
	assert.Equal(t, 800, cfg.ChatMaxTokens)
	assert.Equal(t, "contacto@leycura.org", cfg.ContactRecipient)
	assert.True(t, cfg.JSONContract)
	assert.False(t, cfg.ScriptedAnswers)
}

func TestConfig_HasVector_QdrantNeedsNoAPIKey(t *testing.T) {
	cfg := &Config{VectorProvider: "qdrant", VectorHost: "localhost:6334"}
	assert.True(t, cfg.HasVector())

	cfg = &Config{VectorProvider: "pinecone", VectorHost: "https://idx.pinecone.io"}
	assert.False(t, cfg.HasVector())
}
