package domain

import "strings"

// Category represents the topic bucket a question falls into.
type Category string

const (
	CategoryFinancing      Category = "financing"
	CategoryPrivacy        Category = "privacy"
	CategoryDefinition     Category = "definition"
	CategoryCredential     Category = "credential"
	CategoryArticle        Category = "article"
	CategoryImplementation Category = "implementation"
	CategoryGeneral        Category = "general"
)

// HistoryWindow is the maximum number of prior conversation turns kept per
// request. The chat widget sends at most this many.
const HistoryWindow = 6

// ChatTurn is a single prior message in the conversation.
type ChatTurn struct {
	Role    string
	Content string
}

// ChatQuery is the request-scoped input to the pipeline. Nothing here is
// persisted; it lives for one HTTP request.
type ChatQuery struct {
	Message string
	History []ChatTurn
}

// TrimmedMessage returns the message with surrounding whitespace removed.
func (q ChatQuery) TrimmedMessage() string {
	return strings.TrimSpace(q.Message)
}

// BoundedHistory returns the most recent HistoryWindow turns, dropping any
// entry with a blank role or content.
func (q ChatQuery) BoundedHistory() []ChatTurn {
	turns := make([]ChatTurn, 0, len(q.History))
	for _, t := range q.History {
		if strings.TrimSpace(t.Role) == "" || strings.TrimSpace(t.Content) == "" {
			continue
		}
		turns = append(turns, t)
	}
	if len(turns) > HistoryWindow {
		turns = turns[len(turns)-HistoryWindow:]
	}
	return turns
}

// Passage is one retrieved law fragment with its similarity score.
type Passage struct {
	Text   string
	Score  float32
	Source string
}

// Answer is the single artifact the pipeline produces per request.
type Answer struct {
	Text        string
	Sources     int
	Suggestions []string
	Confidence  float32
	HasContext  bool
	Degraded    bool
}

// MaxSuggestions caps the follow-up questions returned with an answer.
const MaxSuggestions = 3

// ClampSuggestions drops empty entries and caps the list at MaxSuggestions.
func ClampSuggestions(suggestions []string) []string {
	out := make([]string, 0, MaxSuggestions)
	for _, s := range suggestions {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

// ClampConfidence bounds a model-reported confidence to [0, 1].
func ClampConfidence(c float32) float32 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
