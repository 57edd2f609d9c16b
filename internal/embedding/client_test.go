package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingAPI is a mock for the embedding provider API
type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func TestClient_Embed_Success(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := newClientWithAPI(mockAPI, Config{})

	ctx := context.Background()
	text := "¿Qué establece la ley sobre la historia clínica unificada?"
	expected := make([]float32, 1536)
	for i := range expected {
		expected[i] = float32(i) * 0.001
	}

	mockAPI.On("CreateEmbeddings", ctx, text).Return(expected, nil)

	vector, err := client.Embed(ctx, text)

	assert.NoError(t, err)
	assert.Len(t, vector, 1536)
	assert.Equal(t, expected, vector)
	mockAPI.AssertExpectations(t)
}

func TestClient_Embed_EmptyText(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := newClientWithAPI(mockAPI, Config{})

	vector, err := client.Embed(context.Background(), "   \n  ")

	assert.Error(t, err)
	assert.Nil(t, vector)
	assert.Equal(t, ErrEmptyText, err)
	// Fast-fail: no outbound call happens.
	mockAPI.AssertNotCalled(t, "CreateEmbeddings", mock.Anything, mock.Anything)
}

func TestClient_Embed_TruncatesToCharCap(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := newClientWithAPI(mockAPI, Config{Dimensions: 4, MaxChars: 10})

	long := strings.Repeat("ñ", 25)
	mockAPI.On("CreateEmbeddings", mock.Anything, strings.Repeat("ñ", 10)).
		Return([]float32{1, 2, 3, 4}, nil)

	vector, err := client.Embed(context.Background(), long)

	assert.NoError(t, err)
	assert.Len(t, vector, 4)
	mockAPI.AssertExpectations(t)
}

func TestClient_Embed_APIError(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := newClientWithAPI(mockAPI, Config{})

	apiErr := errors.New("API rate limit exceeded")
	mockAPI.On("CreateEmbeddings", mock.Anything, "texto").Return(nil, apiErr)

	vector, err := client.Embed(context.Background(), "texto")

	assert.Error(t, err)
	assert.Nil(t, vector)
	assert.Contains(t, err.Error(), "failed to create embedding")
	mockAPI.AssertExpectations(t)
}

func TestClient_Embed_WrongDimensions(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := newClientWithAPI(mockAPI, Config{})

	mockAPI.On("CreateEmbeddings", mock.Anything, "texto").
		Return(make([]float32, 512), nil)

	vector, err := client.Embed(context.Background(), "texto")

	assert.Error(t, err)
	assert.Nil(t, vector)
	assert.ErrorIs(t, err, ErrWrongDimensions)
	mockAPI.AssertExpectations(t)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Equal(t, ErrNoAPIKey, err)

	client, err := NewClient(Config{APIKey: "sk-test"})
	assert.NoError(t, err)
	assert.Equal(t, DefaultDimensions, client.Dimensions())
}

func TestFallbackVector_Deterministic(t *testing.T) {
	a := FallbackVector("ley cura salud", 64)
	b := FallbackVector("ley cura salud", 64)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFallbackVector_UnitNorm(t *testing.T) {
	vector := FallbackVector("datos personales de salud", 128)

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestFallbackVector_EmptyText(t *testing.T) {
	vector := FallbackVector("", 8)
	assert.Len(t, vector, 8)
	for _, v := range vector {
		assert.Equal(t, float32(1.0/8.0), v)
	}
}
