package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
	OrderStatusReturned  = "returned"
	OrderStatusPickedUp  = "picked_up"
	OrderStatusDelivered = "delivered"
)

// Order pedido de un cliente contra una farmacia. Total es un registro
// financiero del precio al momento de la compra: debe igualar la suma de los
// subtotales de sus líneas al crearse y es inmutable después.
type Order struct {
	ID            string
	ClientID      string
	PharmacyID    string
	Status        string
	PaymentMethod string // tarjeta, transferencia, efectivo
	Total         decimal.Decimal
	RecipeID      string // opcional, receta que respalda líneas con venta bajo receta
	CreatedAt     time.Time
}

// OrderLine línea de un pedido. UnitPrice se copia de Stock.Price en el
// checkout y nunca se vuelve a leer del stock.
type OrderLine struct {
	ID           string
	OrderID      string
	MedicationID string
	Quantity     int64
	UnitPrice    decimal.Decimal
}

// Subtotal cantidad por precio unitario congelado.
func (l *OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// IsTerminal indica si el pedido ya no admite cancelación ni devolución.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCancelled || o.Status == OrderStatusReturned
}

// CanCancel legal salvo que ya esté cancelado o devuelto.
func (o *Order) CanCancel() bool { return !o.IsTerminal() }

// CanReturn legal salvo que ya esté cancelado o devuelto.
func (o *Order) CanReturn() bool { return !o.IsTerminal() }

// CanPickup legal salvo cancelado, devuelto, ya retirado o ya entregado.
func (o *Order) CanPickup() bool {
	return !o.IsTerminal() && o.Status != OrderStatusPickedUp && o.Status != OrderStatusDelivered
}

// CanDeliver legal salvo cancelado, devuelto o ya entregado.
func (o *Order) CanDeliver() bool {
	return !o.IsTerminal() && o.Status != OrderStatusDelivered
}

// CanConfirm legal solo mientras el pedido no fue retirado, entregado ni cerrado.
func (o *Order) CanConfirm() bool {
	return !o.IsTerminal() && o.Status != OrderStatusPickedUp && o.Status != OrderStatusDelivered
}
