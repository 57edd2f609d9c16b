package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leycura/curabot/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Category
	}{
		{"financing", "¿Cómo se financia la ley?", domain.CategoryFinancing},
		{"financing unaccented", "quien paga todo esto", domain.CategoryFinancing},
		{"privacy", "¿Qué pasa con mis datos personales?", domain.CategoryPrivacy},
		{"definition", "¿Qué es la Ley C.U.R.A.?", domain.CategoryDefinition},
		{"definition unaccented", "que significa cura", domain.CategoryDefinition},
		{"credential", "¿Cómo obtengo la credencial?", domain.CategoryCredential},
		{"article", "¿Qué dice el artículo 5?", domain.CategoryArticle},
		{"implementation", "¿Cuándo entra en vigencia?", domain.CategoryImplementation},
		{"uppercase", "PRIVACIDAD de la información", domain.CategoryPrivacy},
		{"no match", "hola, buenas tardes", domain.CategoryGeneral},
		{"empty", "", domain.CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// Mentions both financing and articles; financing has higher priority.
	got := Classify("¿qué artículo habla del financiamiento?")
	assert.Equal(t, domain.CategoryFinancing, got)
}

func TestExpand_AppendsCategoryPhrase(t *testing.T) {
	category, expanded := Expand("¿Qué es la Ley C.U.R.A.?")
	assert.Equal(t, domain.CategoryDefinition, category)
	assert.True(t, strings.HasPrefix(expanded, "¿Qué es la Ley C.U.R.A.?"))
	assert.Contains(t, expanded, "historia clínica unificada")
}

func TestExpand_GeneralFallbackAlwaysProducesOutput(t *testing.T) {
	category, expanded := Expand("buen día")
	assert.Equal(t, domain.CategoryGeneral, category)
	assert.Contains(t, expanded, "Ley C.U.R.A.")
	assert.NotEqual(t, "buen día", expanded)
}
