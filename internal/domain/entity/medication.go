package entity

import "time"

// Medication medicamento del catálogo (datos de referencia, inmutables salvo
// ediciones administrativas; nunca se borra mientras haya Stock u OrderLine
// que lo referencie).
type Medication struct {
	ID                   string
	CommercialName       string
	ActiveIngredient     string
	Presentation         string // ej: comprimidos 500mg x10
	RequiresPrescription bool
	Laboratory           string
	Category             string // analgésico, antibiótico, etc.
	CreatedAt            time.Time
}
