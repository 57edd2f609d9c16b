// Package enrich widens a user question before embedding. Questions are
// classified into a closed set of topic categories by literal keyword
// matching, and a category-specific expansion phrase is appended to improve
// semantic recall against the indexed law text.
package enrich

import (
	"strings"

	"github.com/leycura/curabot/internal/domain"
)

// categoryOrder fixes the priority when a question matches several
// categories: the first listed category wins.
var categoryOrder = []domain.Category{
	domain.CategoryFinancing,
	domain.CategoryPrivacy,
	domain.CategoryDefinition,
	domain.CategoryCredential,
	domain.CategoryArticle,
	domain.CategoryImplementation,
}

// Matching is case-insensitive but diacritic-sensitive: the keyword lists
// carry both accented and unaccented spellings where users commonly omit
// the accent.
var keywords = map[domain.Category][]string{
	domain.CategoryFinancing: {
		"financia", "financiamiento", "presupuesto", "costo", "costos",
		"fondos", "dinero", "recursos", "quien paga", "quién paga",
	},
	domain.CategoryPrivacy: {
		"privacidad", "datos personales", "proteccion de datos",
		"protección de datos", "confidencial", "seguridad de los datos",
		"habeas data", "hábeas data", "consentimiento",
	},
	domain.CategoryDefinition: {
		"que es", "qué es", "que significa", "qué significa", "definicion",
		"definición", "de que trata", "de qué trata", "objetivo",
	},
	domain.CategoryCredential: {
		"credencial", "carnet", "tarjeta", "identificacion digital",
		"identificación digital", "cedula", "cédula", "qr",
	},
	domain.CategoryArticle: {
		"articulo", "artículo", "inciso", "capitulo", "capítulo", "anexo",
		"texto de la ley",
	},
	domain.CategoryImplementation: {
		"implementacion", "implementación", "aplicacion", "aplicación",
		"cuando entra en vigencia", "cuándo entra en vigencia", "vigencia",
		"reglamentacion", "reglamentación", "provincias",
	},
}

var expansions = map[domain.Category]string{
	domain.CategoryFinancing:      "financiamiento presupuesto fondos recursos del sistema de salud",
	domain.CategoryPrivacy:        "privacidad protección de datos personales de salud consentimiento",
	domain.CategoryDefinition:     "definición objetivo propósito de la Ley C.U.R.A. historia clínica unificada",
	domain.CategoryCredential:     "credencial digital sanitaria identificación del paciente",
	domain.CategoryArticle:        "articulado texto normativo disposiciones de la ley",
	domain.CategoryImplementation: "implementación vigencia reglamentación autoridad de aplicación",
	domain.CategoryGeneral:        "Ley C.U.R.A. salud datos sanitarios Argentina",
}

// Classify assigns a topic category to raw question text. It always
// succeeds; unmatched text falls back to the general category.
func Classify(text string) domain.Category {
	lower := strings.ToLower(text)
	for _, category := range categoryOrder {
		for _, kw := range keywords[category] {
			if strings.Contains(lower, kw) {
				return category
			}
		}
	}
	return domain.CategoryGeneral
}

// Expand returns the detected category and the question text with the
// category's expansion phrase appended. Pure function of its input.
func Expand(text string) (domain.Category, string) {
	category := Classify(text)
	return category, strings.TrimSpace(text) + " " + expansions[category]
}
