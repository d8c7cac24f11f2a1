package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/order"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria (snapshot + restore = rollback transaccional)
// ──────────────────────────────────────────────────────────────────────────────

type fakeState struct {
	mu      sync.Mutex
	stock   map[string]entity.Stock
	orders  map[string]entity.Order
	lines   map[string][]entity.OrderLine
	returns []entity.OrderReturn
}

func newFakeState() *fakeState {
	return &fakeState{
		stock:  make(map[string]entity.Stock),
		orders: make(map[string]entity.Order),
		lines:  make(map[string][]entity.OrderLine),
	}
}

func stockKey(pharmacyID, medicationID string) string { return pharmacyID + "|" + medicationID }

func (st *fakeState) snapshot() *fakeState {
	snap := newFakeState()
	for k, v := range st.stock {
		snap.stock[k] = v
	}
	for k, v := range st.orders {
		snap.orders[k] = v
	}
	for k, v := range st.lines {
		snap.lines[k] = append([]entity.OrderLine(nil), v...)
	}
	snap.returns = append([]entity.OrderReturn(nil), st.returns...)
	return snap
}

type fakeTxRunner struct {
	st *fakeState
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
) error) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	snap := r.st.snapshot()
	if err := fn(&fakeStockRepo{st: r.st}, &fakeOrderRepo{st: r.st}); err != nil {
		r.st.stock, r.st.orders, r.st.lines, r.st.returns = snap.stock, snap.orders, snap.lines, snap.returns
		return err
	}
	return nil
}

type fakeStockRepo struct {
	st *fakeState
}

func (r *fakeStockRepo) Get(pharmacyID, medicationID string) (*entity.Stock, error) {
	if s, ok := r.st.stock[stockKey(pharmacyID, medicationID)]; ok {
		copia := s
		return &copia, nil
	}
	return &entity.Stock{PharmacyID: pharmacyID, MedicationID: medicationID, Price: decimal.Zero}, nil
}

func (r *fakeStockRepo) GetForUpdate(pharmacyID, medicationID string) (*entity.Stock, error) {
	return r.Get(pharmacyID, medicationID)
}

func (r *fakeStockRepo) Upsert(stock *entity.Stock) error {
	r.st.stock[stockKey(stock.PharmacyID, stock.MedicationID)] = *stock
	return nil
}

func (r *fakeStockRepo) Adjust(pharmacyID, medicationID string, delta int64) (*entity.Stock, error) {
	s, _ := r.Get(pharmacyID, medicationID)
	if s.Quantity+delta < 0 {
		return nil, &domain.InsufficientStockError{MedicationID: medicationID}
	}
	s.Quantity += delta
	if err := r.Upsert(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *fakeStockRepo) ListByPharmacy(string) ([]*entity.Stock, error)   { return nil, nil }
func (r *fakeStockRepo) ListByMedication(string) ([]*entity.Stock, error) { return nil, nil }

type fakeOrderRepo struct {
	st *fakeState
}

func (r *fakeOrderRepo) Create(o *entity.Order) error {
	r.st.orders[o.ID] = *o
	return nil
}

func (r *fakeOrderRepo) CreateLine(l *entity.OrderLine) error {
	r.st.lines[l.OrderID] = append(r.st.lines[l.OrderID], *l)
	return nil
}

func (r *fakeOrderRepo) GetByID(id string) (*entity.Order, error) {
	if o, ok := r.st.orders[id]; ok {
		copia := o
		return &copia, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeOrderRepo) GetForUpdate(id string) (*entity.Order, error) { return r.GetByID(id) }

func (r *fakeOrderRepo) GetLinesByOrderID(orderID string) ([]*entity.OrderLine, error) {
	var result []*entity.OrderLine
	for _, l := range r.st.lines[orderID] {
		copia := l
		result = append(result, &copia)
	}
	return result, nil
}

func (r *fakeOrderRepo) ListByClient(clientID string) ([]*entity.Order, error) {
	var result []*entity.Order
	for _, o := range r.st.orders {
		if o.ClientID == clientID {
			copia := o
			result = append(result, &copia)
		}
	}
	return result, nil
}

func (r *fakeOrderRepo) ListByPharmacy(pharmacyID string) ([]*entity.Order, error) {
	var result []*entity.Order
	for _, o := range r.st.orders {
		if o.PharmacyID == pharmacyID {
			copia := o
			result = append(result, &copia)
		}
	}
	return result, nil
}

func (r *fakeOrderRepo) UpdateStatus(id, status string) error {
	o, ok := r.st.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	r.st.orders[id] = o
	return nil
}

func (r *fakeOrderRepo) CreateReturn(ret *entity.OrderReturn) error {
	r.st.returns = append(r.st.returns, *ret)
	return nil
}

func (r *fakeOrderRepo) Delete(id string) error {
	if _, ok := r.st.orders[id]; !ok {
		return domain.ErrNotFound
	}
	var kept []entity.OrderReturn
	for _, ret := range r.st.returns {
		if ret.OrderID != id {
			kept = append(kept, ret)
		}
	}
	r.st.returns = kept
	delete(r.st.lines, id)
	delete(r.st.orders, id)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: un pedido pendiente de 2 unidades ya descontadas del stock
// ──────────────────────────────────────────────────────────────────────────────

const (
	farmaciaID = "farmacia-1"
	clienteID  = "cliente-1"
	medID      = "med-tafirol"
	pedidoID   = "pedido-1"
)

func newFixture(t *testing.T) (*fakeState, *order.UseCase) {
	t.Helper()
	st := newFakeState()
	st.stock[stockKey(farmaciaID, medID)] = entity.Stock{
		PharmacyID:   farmaciaID,
		MedicationID: medID,
		Price:        decimal.RequireFromString("100.00"),
		Quantity:     3, // quedaban 5, el pedido descontó 2
	}
	st.orders[pedidoID] = entity.Order{
		ID:            pedidoID,
		ClientID:      clienteID,
		PharmacyID:    farmaciaID,
		Status:        entity.OrderStatusPending,
		PaymentMethod: "tarjeta",
		Total:         decimal.RequireFromString("200.00"),
		CreatedAt:     time.Now(),
	}
	st.lines[pedidoID] = []entity.OrderLine{{
		ID:           "linea-1",
		OrderID:      pedidoID,
		MedicationID: medID,
		Quantity:     2,
		UnitPrice:    decimal.RequireFromString("100.00"),
	}}
	uc := order.NewUseCase(&fakeTxRunner{st: st}, &fakeOrderRepo{st: st}, logger.Nop())
	return st, uc
}

func qty(st *fakeState) int64 { return st.stock[stockKey(farmaciaID, medID)].Quantity }

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Cancelar repone las unidades del pedido y deja el estado en cancelled.
func TestCancel_ReponeStock(t *testing.T) {
	st, uc := newFixture(t)

	out, err := uc.Cancel(context.Background(), clienteID, entity.RoleClient, pedidoID)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusCancelled, out.Status)
	assert.EqualValues(t, 5, qty(st), "las 2 unidades deben volver al stock")
	assert.Empty(t, st.returns, "cancelar no registra devolución")
}

// La segunda cancelación viola la guarda y no vuelve a reponer stock.
func TestCancel_DobleCancelacion(t *testing.T) {
	st, uc := newFixture(t)

	_, err := uc.Cancel(context.Background(), clienteID, entity.RoleClient, pedidoID)
	require.NoError(t, err)

	_, err = uc.Cancel(context.Background(), clienteID, entity.RoleClient, pedidoID)
	require.Error(t, err)

	var terminal *domain.TerminalStateError
	require.True(t, errors.As(err, &terminal))
	assert.Equal(t, entity.OrderStatusCancelled, terminal.Status)
	assert.True(t, errors.Is(err, domain.ErrOrderTerminal))
	assert.EqualValues(t, 5, qty(st), "la reposición debe aplicarse una sola vez")
}

// La farmacia también puede cancelar un pedido propio.
func TestCancel_PorFarmacia(t *testing.T) {
	st, uc := newFixture(t)
	out, err := uc.Cancel(context.Background(), farmaciaID, entity.RolePharmacy, pedidoID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, out.Status)
	assert.EqualValues(t, 5, qty(st))
}

// Un tercero ajeno al pedido no puede operar sobre él.
func TestTransiciones_CallerAjeno(t *testing.T) {
	st, uc := newFixture(t)
	_, err := uc.Cancel(context.Background(), "intruso", entity.RoleClient, pedidoID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.EqualValues(t, 3, qty(st), "un intento prohibido no debe tocar el stock")
}

// Devolver repone el stock y registra la devolución con su motivo.
func TestReturn_ReponeStockYRegistraDevolucion(t *testing.T) {
	st, uc := newFixture(t)

	out, err := uc.Return(context.Background(), clienteID, entity.RoleClient, pedidoID, "vino dañado")
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusReturned, out.Status)
	assert.EqualValues(t, 5, qty(st))
	require.Len(t, st.returns, 1)
	assert.Equal(t, pedidoID, st.returns[0].OrderID)
	assert.Equal(t, "vino dañado", st.returns[0].Reason)
}

// Si la fila de stock desapareció, la reversión la re-crea con precio 0.
func TestReturn_RecreaFilaDeStockSinPrecio(t *testing.T) {
	st, uc := newFixture(t)
	delete(st.stock, stockKey(farmaciaID, medID))

	_, err := uc.Return(context.Background(), clienteID, entity.RoleClient, pedidoID, "")
	require.NoError(t, err)

	s, ok := st.stock[stockKey(farmaciaID, medID)]
	require.True(t, ok, "la fila debe re-crearse")
	assert.EqualValues(t, 2, s.Quantity)
	assert.True(t, s.Price.IsZero(), "la fila re-creada queda sin precio hasta que la farmacia la re-tarife")
}

// Confirmar es exclusivo de la farmacia del pedido.
func TestConfirm_SoloFarmacia(t *testing.T) {
	_, uc := newFixture(t)

	_, err := uc.Confirm(context.Background(), clienteID, entity.RoleClient, pedidoID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := uc.Confirm(context.Background(), farmaciaID, entity.RolePharmacy, pedidoID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, out.Status)
}

// Retiro y entrega: picked_up admite deliver pero no otro pickup.
func TestPickupYDeliver(t *testing.T) {
	_, uc := newFixture(t)

	out, err := uc.Pickup(context.Background(), farmaciaID, entity.RolePharmacy, pedidoID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPickedUp, out.Status)

	_, err = uc.Pickup(context.Background(), farmaciaID, entity.RolePharmacy, pedidoID)
	var terminal *domain.TerminalStateError
	require.True(t, errors.As(err, &terminal), "no se puede retirar dos veces")
	assert.Equal(t, entity.OrderStatusPickedUp, terminal.Status)

	out, err = uc.Deliver(context.Background(), farmaciaID, entity.RolePharmacy, pedidoID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, out.Status)
}

// Un pedido entregado todavía admite devolución (reponiendo stock).
func TestReturn_DespuesDeEntregado(t *testing.T) {
	st, uc := newFixture(t)

	_, err := uc.Deliver(context.Background(), farmaciaID, entity.RolePharmacy, pedidoID)
	require.NoError(t, err)

	out, err := uc.Return(context.Background(), clienteID, entity.RoleClient, pedidoID, "reacción adversa")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusReturned, out.Status)
	assert.EqualValues(t, 5, qty(st))
}

func TestGet_Autorizacion(t *testing.T) {
	_, uc := newFixture(t)

	out, err := uc.Get(context.Background(), clienteID, pedidoID)
	require.NoError(t, err)
	assert.Equal(t, pedidoID, out.ID)
	require.Len(t, out.Lines, 1)

	_, err = uc.Get(context.Background(), "intruso", pedidoID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestList_PorRol(t *testing.T) {
	_, uc := newFixture(t)

	comoCliente, err := uc.List(context.Background(), clienteID, entity.RoleClient)
	require.NoError(t, err)
	assert.Len(t, comoCliente, 1)

	comoFarmacia, err := uc.List(context.Background(), farmaciaID, entity.RolePharmacy)
	require.NoError(t, err)
	assert.Len(t, comoFarmacia, 1)

	ajeno, err := uc.List(context.Background(), "otro-cliente", entity.RoleClient)
	require.NoError(t, err)
	assert.Empty(t, ajeno)
}

// Delete: solo la farmacia dueña, y solo sobre pedidos terminales; borra las
// líneas junto con la cabecera.
func TestDelete_PedidoTerminal(t *testing.T) {
	st, uc := newFixture(t)

	err := uc.Delete(context.Background(), farmaciaID, entity.RolePharmacy, pedidoID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un pedido pendiente no se puede borrar")

	_, err = uc.Cancel(context.Background(), clienteID, entity.RoleClient, pedidoID)
	require.NoError(t, err)

	err = uc.Delete(context.Background(), clienteID, entity.RoleClient, pedidoID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "el cliente no puede borrar pedidos")

	err = uc.Delete(context.Background(), farmaciaID, entity.RolePharmacy, pedidoID)
	require.NoError(t, err)
	assert.Empty(t, st.orders)
	assert.Empty(t, st.lines, "las líneas deben borrarse en cascada con la cabecera")
}

// Borrar un pedido devuelto elimina también el registro de devolución: si
// quedara, la FK de order_returns impediría borrar la cabecera.
func TestDelete_PedidoDevuelto(t *testing.T) {
	st, uc := newFixture(t)

	_, err := uc.Return(context.Background(), clienteID, entity.RoleClient, pedidoID, "vino dañado")
	require.NoError(t, err)
	require.Len(t, st.returns, 1)

	err = uc.Delete(context.Background(), farmaciaID, entity.RolePharmacy, pedidoID)
	require.NoError(t, err)
	assert.Empty(t, st.orders)
	assert.Empty(t, st.lines)
	assert.Empty(t, st.returns, "la devolución debe borrarse junto con el pedido")
}
