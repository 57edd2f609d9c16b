package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/leycura/curabot/internal/api"
	"github.com/leycura/curabot/internal/domain"
	"github.com/leycura/curabot/internal/service"
)

type ChatService interface {
	Ask(ctx context.Context, query domain.ChatQuery) *domain.Answer
	AskStream(ctx context.Context, query domain.ChatQuery) service.StreamResult
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatTurnRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message string            `json:"message"`
	History []ChatTurnRequest `json:"history,omitempty"`
}

// ChatResponse is the widget contract. Pipeline failures are reported in
// band with a 200 status; the widget renders Answer either way and only
// uses the flags to style the bubble.
type ChatResponse struct {
	Answer      string   `json:"answer"`
	Sources     int      `json:"sources"`
	Suggestions []string `json:"suggestions,omitempty"`
	Confidence  float32  `json:"confidence"`
	HasContext  bool     `json:"hasContext"`
	Success     bool     `json:"success"`
	Error       bool     `json:"error,omitempty"`
}

func (r ChatRequest) toQuery() domain.ChatQuery {
	history := make([]domain.ChatTurn, 0, len(r.History))
	for _, turn := range r.History {
		history = append(history, domain.ChatTurn{Role: turn.Role, Content: turn.Content})
	}
	return domain.ChatQuery{Message: r.Message, History: history}
}

// Ask answers one chat message. Only a missing message is a client error;
// everything that goes wrong further down the pipeline still produces a
// 200 with a usable answer.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query := req.toQuery()
	if query.TrimmedMessage() == "" {
		api.HandleError(w, domain.ErrEmptyMessage)
		return
	}

	answer := h.svc.Ask(r.Context(), query)

	api.JSON(w, http.StatusOK, ChatResponse{
		Answer:      answer.Text,
		Sources:     answer.Sources,
		Suggestions: answer.Suggestions,
		Confidence:  answer.Confidence,
		HasContext:  answer.HasContext,
		Success:     !answer.Degraded,
		Error:       answer.Degraded,
	})
}

type streamTokenEvent struct {
	Token string `json:"token"`
}

type streamDoneEvent struct {
	Done       bool `json:"done"`
	Sources    int  `json:"sources"`
	HasContext bool `json:"hasContext"`
	Success    bool `json:"success"`
}

// AskStream answers one chat message as a server-sent event stream: one
// token event per generation delta, then a final done event carrying the
// retrieval facts.
func (h *ChatHandler) AskStream(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query := req.toQuery()
	if query.TrimmedMessage() == "" {
		api.HandleError(w, domain.ErrEmptyMessage)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	result := h.svc.AskStream(r.Context(), query)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for token := range result.Tokens {
		writeSSE(w, streamTokenEvent{Token: token})
		flusher.Flush()
	}

	writeSSE(w, streamDoneEvent{Done: true, Sources: result.Sources, HasContext: result.HasContext, Success: !result.Degraded})
	flusher.Flush()
}

func writeSSE(w http.ResponseWriter, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
