package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
)

// Matriz de guardas de la máquina de estados del pedido.
func TestOrder_GuardasPorEstado(t *testing.T) {
	cases := []struct {
		status     string
		canConfirm bool
		canCancel  bool
		canReturn  bool
		canPickup  bool
		canDeliver bool
	}{
		{entity.OrderStatusPending, true, true, true, true, true},
		{entity.OrderStatusConfirmed, true, true, true, true, true},
		{entity.OrderStatusPickedUp, false, true, true, false, true},
		{entity.OrderStatusDelivered, false, true, true, false, false},
		{entity.OrderStatusCancelled, false, false, false, false, false},
		{entity.OrderStatusReturned, false, false, false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			ord := &entity.Order{Status: tc.status}
			assert.Equal(t, tc.canConfirm, ord.CanConfirm(), "CanConfirm en %s", tc.status)
			assert.Equal(t, tc.canCancel, ord.CanCancel(), "CanCancel en %s", tc.status)
			assert.Equal(t, tc.canReturn, ord.CanReturn(), "CanReturn en %s", tc.status)
			assert.Equal(t, tc.canPickup, ord.CanPickup(), "CanPickup en %s", tc.status)
			assert.Equal(t, tc.canDeliver, ord.CanDeliver(), "CanDeliver en %s", tc.status)
		})
	}
}

func TestOrder_IsTerminal(t *testing.T) {
	assert.True(t, (&entity.Order{Status: entity.OrderStatusCancelled}).IsTerminal())
	assert.True(t, (&entity.Order{Status: entity.OrderStatusReturned}).IsTerminal())
	assert.False(t, (&entity.Order{Status: entity.OrderStatusPending}).IsTerminal())
	assert.False(t, (&entity.Order{Status: entity.OrderStatusDelivered}).IsTerminal())
}

func TestOrderLine_Subtotal(t *testing.T) {
	line := &entity.OrderLine{
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("150.50"),
	}
	assert.True(t, decimal.RequireFromString("451.50").Equal(line.Subtotal()),
		"subtotal debe ser cantidad por precio congelado")
}

func TestStock_Sellable(t *testing.T) {
	assert.True(t, (&entity.Stock{Price: decimal.RequireFromString("10")}).Sellable())
	assert.False(t, (&entity.Stock{Price: decimal.Zero}).Sellable(),
		"una fila re-creada por reversión (precio 0) no debe poder venderse")
}
