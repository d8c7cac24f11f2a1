package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest una línea del carrito: medicamento + cantidad.
type OrderLineRequest struct {
	MedicationID string `json:"medication_id" validate:"required,uuid"`
	Quantity     int64  `json:"quantity" validate:"required,min=1"`
}

// PlaceOrderRequest body para POST /api/orders.
type PlaceOrderRequest struct {
	PharmacyID    string             `json:"pharmacy_id" validate:"required,uuid"`
	PaymentMethod string             `json:"payment_method" validate:"required"`
	RecipeID      string             `json:"recipe_id,omitempty"`
	Lines         []OrderLineRequest `json:"lines" validate:"required,min=1"`
}

// ReturnOrderRequest body opcional para POST /api/orders/:id/return.
type ReturnOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

// OrderLineResponse línea persistida con el precio congelado al checkout.
type OrderLineResponse struct {
	ID           string          `json:"id"`
	MedicationID string          `json:"medication_id"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// OrderResponse pedido con sus líneas.
type OrderResponse struct {
	ID            string              `json:"id"`
	ClientID      string              `json:"client_id"`
	PharmacyID    string              `json:"pharmacy_id"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	Total         decimal.Decimal     `json:"total"`
	RecipeID      string              `json:"recipe_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	Lines         []OrderLineResponse `json:"lines,omitempty"`
}
