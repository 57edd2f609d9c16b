package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leycura/curabot/internal/domain"
	"github.com/leycura/curabot/internal/service"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Ask(ctx context.Context, query domain.ChatQuery) *domain.Answer {
	args := m.Called(ctx, query)
	return args.Get(0).(*domain.Answer)
}

func (m *MockChatService) AskStream(ctx context.Context, query domain.ChatQuery) service.StreamResult {
	args := m.Called(ctx, query)
	return args.Get(0).(service.StreamResult)
}

func TestChatHandler_Ask_Success(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	mockSvc.On("Ask", mock.Anything, mock.MatchedBy(func(query domain.ChatQuery) bool {
		return query.Message == "¿Qué es la ley?" && len(query.History) == 2
	})).Return(&domain.Answer{
		Text:        "La Ley C.U.R.A. unifica la historia clínica.",
		Sources:     3,
		Suggestions: []string{"¿Cómo se financia?"},
		Confidence:  0.9,
		HasContext:  true,
	})

	body := `{"message":"¿Qué es la ley?","history":[{"role":"user","content":"hola"},{"role":"assistant","content":"hola, ¿en qué ayudo?"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "La Ley C.U.R.A. unifica la historia clínica.", resp.Answer)
	assert.Equal(t, 3, resp.Sources)
	assert.True(t, resp.Success)
	assert.False(t, resp.Error)
	assert.True(t, resp.HasContext)
	mockSvc.AssertExpectations(t)
}

func TestChatHandler_Ask_DegradedStillReturns200(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	mockSvc.On("Ask", mock.Anything, mock.Anything).Return(&domain.Answer{
		Text:     service.ApologyAnswer,
		Degraded: true,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hola"}`))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, service.ApologyAnswer, resp.Answer)
	assert.False(t, resp.Success)
	assert.True(t, resp.Error)
}

func TestChatHandler_Ask_EmptyMessage(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"   "}`))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "message is required")
	mockSvc.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestChatHandler_Ask_InvalidBody(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestChatHandler_AskStream(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	tokens := make(chan string, 2)
	tokens <- "Hola"
	tokens <- " mundo"
	close(tokens)

	mockSvc.On("AskStream", mock.Anything, mock.Anything).Return(service.StreamResult{
		Tokens:     (<-chan string)(tokens),
		Sources:    2,
		HasContext: true,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream", strings.NewReader(`{"message":"hola"}`))
	w := httptest.NewRecorder()

	handler.AskStream(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, `data: {"token":"Hola"}`)
	assert.Contains(t, body, `data: {"token":" mundo"}`)
	assert.Contains(t, body, `"done":true`)
	assert.Contains(t, body, `"sources":2`)
	assert.Contains(t, body, `"success":true`)
}

func TestChatHandler_AskStream_DegradedRetrievalReportsFailure(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	tokens := make(chan string, 1)
	tokens <- "Respuesta"
	close(tokens)

	mockSvc.On("AskStream", mock.Anything, mock.Anything).Return(service.StreamResult{
		Tokens:     (<-chan string)(tokens),
		Sources:    1,
		HasContext: true,
		Degraded:   true,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream", strings.NewReader(`{"message":"hola"}`))
	w := httptest.NewRecorder()

	handler.AskStream(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestChatHandler_AskStream_EmptyMessage(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	handler.AskStream(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "AskStream", mock.Anything, mock.Anything)
}
