package service

import "github.com/leycura/curabot/internal/domain"

// DefaultScriptedAnswers returns the pre-written answers shipped for
// high-stakes topics where an exact wording matters more than retrieval
// quality. Enabled by configuration; empty map means every question goes
// through the full pipeline.
func DefaultScriptedAnswers() map[domain.Category]string {
	return map[domain.Category]string{
		domain.CategoryFinancing: "La Ley C.U.R.A. no crea nuevos impuestos. Se financia reasignando partidas ya existentes " +
			"del presupuesto nacional de salud y con los ahorros generados por la digitalización: menos estudios duplicados, " +
			"menos papeleo administrativo y mejor trazabilidad del gasto. El fondo es administrado por la autoridad de " +
			"aplicación con auditoría pública anual, y las provincias reciben los recursos según su adhesión al sistema.",
	}
}
