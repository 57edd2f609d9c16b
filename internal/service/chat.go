package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/leycura/curabot/internal/domain"
	"github.com/leycura/curabot/internal/embedding"
	"github.com/leycura/curabot/internal/enrich"
	"github.com/leycura/curabot/internal/llm"
	"github.com/leycura/curabot/internal/telemetry"
)

// Embedder converts text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Searcher retrieves scored passages for a query vector.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]domain.Passage, error)
}

// Generator produces an answer from a message list.
type Generator interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
	ChatStream(ctx context.Context, messages []llm.Message) (<-chan string, <-chan error)
}

// ChatConfig parameterizes the pipeline. Historical drafts hardcoded these
// values inconsistently; here a single configuration object owns them.
type ChatConfig struct {
	TopK            int
	MinScore        float32
	MaxContextChars int
	JSONContract    bool
	// ScriptedAnswers bypasses retrieval and generation for the mapped
	// categories, guaranteeing a precise answer on high-stakes topics.
	ScriptedAnswers map[domain.Category]string
}

// DefaultChatConfig returns the canonical pipeline parameters.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		TopK:            5,
		MinScore:        0.5,
		MaxContextChars: 3000,
		JSONContract:    true,
	}
}

// ApologyAnswer is shown whenever the pipeline cannot produce a real
// answer. The chat widget must never see a raw technical error.
const ApologyAnswer = "Hola, soy el asistente de la Ley C.U.R.A. Actualmente hay un problema técnico con el servicio. " +
	"Por favor, intentá de nuevo en unos minutos con una pregunta específica sobre la ley.\n\n" +
	"(Podés preguntar sobre artículos, derechos, disposiciones, etc.)"

// ChatService runs the retrieval-augmented answer pipeline. Every stage is
// an outbound call to a hosted provider; each failure degrades the request
// instead of aborting it, so Ask always returns a usable Answer.
type ChatService struct {
	embedder  Embedder
	searcher  Searcher
	generator Generator
	cfg       ChatConfig
}

// NewChatService creates a ChatService. Any dependency may be nil when its
// provider is not configured; the corresponding stage is then skipped.
func NewChatService(embedder Embedder, searcher Searcher, generator Generator, cfg ChatConfig) *ChatService {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 3000
	}
	return &ChatService{
		embedder:  embedder,
		searcher:  searcher,
		generator: generator,
		cfg:       cfg,
	}
}

// Ask answers one user question. The flow is strictly forward:
// enrich → embed → search → generate → assemble, with any stage failure
// short-circuiting into that stage's fallback.
func (s *ChatService) Ask(ctx context.Context, query domain.ChatQuery) *domain.Answer {
	message := query.TrimmedMessage()
	category, expanded := enrich.Expand(message)

	ctx, span := telemetry.StartSpan(ctx, "ChatService.Ask", telemetry.SpanAttributes{
		Category:  string(category),
		Operation: "ask",
	})
	defer span.End()

	if scripted, ok := s.cfg.ScriptedAnswers[category]; ok {
		return &domain.Answer{
			Text:        scripted,
			Suggestions: defaultSuggestions(category),
			Confidence:  1,
		}
	}

	passages, fellBack := s.retrieve(ctx, expanded)
	contextBlock, sources := s.buildContext(passages)
	hasContext := contextBlock != ""

	if s.generator == nil {
		log.Printf("chat: %v", domain.ErrChatNotConfigured)
		answer := s.apology(category)
		answer.Sources = sources
		answer.HasContext = hasContext
		return answer
	}

	messages := buildMessages(buildSystemPrompt(contextBlock, s.cfg.JSONContract), query.BoundedHistory(), message)

	raw, err := s.generator.Chat(ctx, messages)
	if err != nil {
		log.Printf("chat: generation failed: %v", err)
		telemetry.CaptureError(ctx, err)
		answer := s.apology(category)
		answer.Sources = sources
		answer.HasContext = hasContext
		return answer
	}

	answer := s.assemble(raw, category, hasContext)
	answer.Sources = sources
	answer.HasContext = hasContext
	if fellBack {
		// The answer text is real, but it was retrieved with the degraded
		// hash vector; the widget must not present it as a full success.
		answer.Degraded = true
	}
	return answer
}

// StreamResult carries the token stream plus the retrieval facts known
// before generation starts.
type StreamResult struct {
	Tokens     <-chan string
	Sources    int
	HasContext bool
	Degraded   bool
}

// AskStream runs the same pipeline but pipes generation tokens through as
// they arrive, so partial output reaches the user before a late failure.
// The streaming variant always uses the plain-text contract.
func (s *ChatService) AskStream(ctx context.Context, query domain.ChatQuery) StreamResult {
	message := query.TrimmedMessage()
	category, expanded := enrich.Expand(message)

	// The span covers retrieval and stream setup; token delivery runs past it.
	ctx, span := telemetry.StartSpan(ctx, "ChatService.AskStream", telemetry.SpanAttributes{
		Category:  string(category),
		Operation: "ask_stream",
	})
	defer span.End()

	if scripted, ok := s.cfg.ScriptedAnswers[category]; ok {
		return StreamResult{Tokens: singleToken(scripted)}
	}

	passages, fellBack := s.retrieve(ctx, expanded)
	contextBlock, sources := s.buildContext(passages)
	hasContext := contextBlock != ""

	if s.generator == nil {
		log.Printf("chat: %v", domain.ErrChatNotConfigured)
		return StreamResult{Tokens: singleToken(ApologyAnswer), Sources: sources, HasContext: hasContext, Degraded: true}
	}

	messages := buildMessages(buildSystemPrompt(contextBlock, false), query.BoundedHistory(), message)
	upstream, errChan := s.generator.ChatStream(ctx, messages)

	tokens := make(chan string, 10)
	go func() {
		defer close(tokens)
		sent := false
		for delta := range upstream {
			sent = true
			select {
			case tokens <- delta:
			case <-ctx.Done():
				return
			}
		}
		if err := <-errChan; err != nil {
			log.Printf("chat: stream failed: %v", err)
			if !sent {
				tokens <- ApologyAnswer
			}
		}
	}()

	return StreamResult{Tokens: tokens, Sources: sources, HasContext: hasContext, Degraded: fellBack}
}

// retrieve runs embed + search, degrading to a hash-based fallback vector
// when the embedding provider fails and to no context when search fails.
// The second return reports whether the fallback vector was used.
func (s *ChatService) retrieve(ctx context.Context, expanded string) ([]domain.Passage, bool) {
	if s.searcher == nil {
		log.Printf("chat: %v, skipping retrieval", domain.ErrVectorNotConfigured)
		return nil, false
	}

	var vector []float32
	fellBack := false
	if s.embedder != nil {
		var err error
		vector, err = s.embedder.Embed(ctx, expanded)
		if err != nil {
			log.Printf("chat: embedding failed, using fallback vector: %v", err)
			telemetry.CaptureError(ctx, err)
			vector = embedding.FallbackVector(expanded, s.embedder.Dimensions())
			fellBack = true
		}
	} else {
		log.Printf("chat: %v, using fallback vector", domain.ErrEmbeddingNotConfigured)
		vector = embedding.FallbackVector(expanded, embedding.DefaultDimensions)
		fellBack = true
	}

	passages, err := s.searcher.Search(ctx, vector, s.cfg.TopK)
	if err != nil {
		log.Printf("chat: vector search failed, continuing without context: %v", err)
		telemetry.CaptureError(ctx, err)
		return nil, fellBack
	}
	return passages, fellBack
}

// buildContext filters, dedupes and orders passages, then concatenates them
// into a bounded context block. Returns the block and how many passages
// made it in.
func (s *ChatService) buildContext(passages []domain.Passage) (string, int) {
	seen := make(map[string]struct{}, len(passages))
	kept := make([]domain.Passage, 0, len(passages))
	for _, p := range passages {
		if p.Score < s.cfg.MinScore {
			continue
		}
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		p.Text = text
		kept = append(kept, p)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	var b strings.Builder
	sources := 0
	for _, p := range kept {
		sep := ""
		if b.Len() > 0 {
			sep = "\n\n"
		}
		remaining := s.cfg.MaxContextChars - b.Len() - len(sep)
		if remaining <= 0 {
			break
		}
		text := p.Text
		truncated := false
		if len(text) > remaining {
			text = truncateToRuneBoundary(text, remaining)
			truncated = true
			if text == "" {
				break
			}
		}
		b.WriteString(sep)
		b.WriteString(text)
		sources++
		if truncated {
			break
		}
	}
	return b.String(), sources
}

// truncateToRuneBoundary cuts text to at most limit bytes without splitting
// a UTF-8 sequence.
func truncateToRuneBoundary(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// assemble turns raw model output into an Answer, honoring the JSON
// contract leniently: any parse failure falls back to the raw text.
func (s *ChatService) assemble(raw string, category domain.Category, hasContext bool) *domain.Answer {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.apology(category)
	}

	if s.cfg.JSONContract {
		if structured, ok := parseStructured(raw); ok {
			answer := &domain.Answer{
				Text:        structured.Answer,
				Suggestions: domain.ClampSuggestions(structured.Suggestions),
				Confidence:  domain.ClampConfidence(structured.Confidence),
			}
			if len(answer.Suggestions) == 0 {
				answer.Suggestions = defaultSuggestions(category)
			}
			return answer
		}
	}

	confidence := float32(0.3)
	if hasContext {
		confidence = 0.6
	}
	return &domain.Answer{
		Text:        raw,
		Suggestions: defaultSuggestions(category),
		Confidence:  confidence,
	}
}

func (s *ChatService) apology(category domain.Category) *domain.Answer {
	return &domain.Answer{
		Text:        ApologyAnswer,
		Suggestions: defaultSuggestions(category),
		Degraded:    true,
	}
}

func singleToken(text string) <-chan string {
	ch := make(chan string, 1)
	ch <- text
	close(ch)
	return ch
}
