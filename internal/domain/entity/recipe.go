package entity

import "time"

// Recipe receta médica cargada por un cliente.
type Recipe struct {
	ID        string
	ClientID  string
	Doctor    string
	ImagePath string // ruta o base64, opcional
	Validated bool
	IssuedAt  time.Time
	CreatedAt time.Time
}

// RecipeDetail medicamento prescripto dentro de una receta.
type RecipeDetail struct {
	ID                 string
	RecipeID           string
	MedicationID       string
	PrescribedQuantity int64
	Dosage             string
}

// Covers indica si la receta prescribe el medicamento dado.
func Covers(details []*RecipeDetail, medicationID string) bool {
	for _, d := range details {
		if d.MedicationID == medicationID {
			return true
		}
	}
	return false
}
