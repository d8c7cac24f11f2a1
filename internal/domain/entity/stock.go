package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock cantidad vendible y precio de un medicamento en una farmacia.
// Par (PharmacyID, MedicationID) único. Invariante: Quantity >= 0 siempre;
// un intento que lo viole debe fallar, nunca recortarse en silencio.
type Stock struct {
	PharmacyID   string
	MedicationID string
	Price        decimal.Decimal
	Quantity     int64
	UpdatedAt    time.Time
}

// Sellable indica si la fila puede venderse: las filas re-creadas por una
// reversión quedan con precio 0 y la farmacia debe re-tarifarlas antes.
func (s *Stock) Sellable() bool {
	return s.Price.GreaterThan(decimal.Zero)
}
