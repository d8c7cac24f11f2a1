package dto

import "github.com/shopspring/decimal"

// UpsertStockRequest body para POST /api/pharmacies/stock. La farmacia sale
// del token; upsert idempotente sobre (farmacia, medicamento).
type UpsertStockRequest struct {
	MedicationID string          `json:"medication_id" validate:"required,uuid"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	Quantity     int64           `json:"quantity" validate:"min=0"`
}

// StockResponse salida de una fila de stock.
type StockResponse struct {
	PharmacyID   string          `json:"pharmacy_id"`
	MedicationID string          `json:"medication_id"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
}
