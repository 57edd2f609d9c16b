package service

import (
	"strings"

	"github.com/leycura/curabot/internal/domain"
	"github.com/leycura/curabot/internal/llm"
)

const groundedPrompt = `Sos el asistente oficial de la "Ley C.U.R.A." de Argentina (Cobertura Universal en Red Asistencial).
Respondé EXCLUSIVAMENTE basándote en el siguiente contexto extraído del texto de la ley.
Si la pregunta no puede responderse con el contexto, decí: "No encuentro información específica sobre eso en la Ley C.U.R.A."
Respondé en español, de forma clara y breve.

CONTEXTO:
`

const ungroundedPrompt = `Sos el asistente oficial de la "Ley C.U.R.A." de Argentina (Cobertura Universal en Red Asistencial).
Respondé preguntas sobre esta ley de manera concisa y en español.
Si no sabés algo, decí: "No encuentro información sobre eso en la Ley C.U.R.A."`

const jsonContract = `

Devolvé tu respuesta ÚNICAMENTE como un objeto JSON con esta forma exacta:
{"answer": "texto de la respuesta", "suggestions": ["hasta 3 preguntas de seguimiento"], "confidence": 0.0, "sources": 0}
Sin texto adicional fuera del JSON.`

// buildSystemPrompt assembles the persona + grounding instruction, with the
// retrieved context inlined when there is one.
func buildSystemPrompt(contextBlock string, useJSON bool) string {
	var b strings.Builder
	if contextBlock != "" {
		b.WriteString(groundedPrompt)
		b.WriteString(contextBlock)
	} else {
		b.WriteString(ungroundedPrompt)
	}
	if useJSON {
		b.WriteString(jsonContract)
	}
	return b.String()
}

// buildMessages orders the conversation: system prompt, bounded history,
// then the current question.
func buildMessages(systemPrompt string, history []domain.ChatTurn, message string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.SystemPrompt(systemPrompt))
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.UserMessage(message))
	return messages
}

// defaultSuggestions backs the follow-up chips when the model supplies none.
func defaultSuggestions(category domain.Category) []string {
	switch category {
	case domain.CategoryFinancing:
		return []string{
			"¿Quién administra los fondos?",
			"¿Qué artículo regula el financiamiento?",
			"¿Cambia algo para las provincias?",
		}
	case domain.CategoryPrivacy:
		return []string{
			"¿Quién puede ver mi historia clínica?",
			"¿Qué pasa si se filtran mis datos?",
			"¿Puedo revocar mi consentimiento?",
		}
	case domain.CategoryCredential:
		return []string{
			"¿Cómo obtengo la credencial digital?",
			"¿La credencial tiene costo?",
			"¿Sirve en todo el país?",
		}
	case domain.CategoryArticle:
		return []string{
			"¿Cuántos artículos tiene la ley?",
			"¿Qué dice el artículo sobre derechos del paciente?",
			"¿Dónde leo el texto completo?",
		}
	case domain.CategoryImplementation:
		return []string{
			"¿Cuándo entra en vigencia?",
			"¿Quién es la autoridad de aplicación?",
			"¿Cómo se implementa en mi provincia?",
		}
	default:
		return []string{
			"¿Qué es la Ley C.U.R.A.?",
			"¿Cómo protege mis datos de salud?",
			"¿Cómo se financia?",
		}
	}
}
