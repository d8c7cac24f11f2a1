package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/checkout"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/dto"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

// fakeState estado compartido de los fakes. El TxRunner fake toma un snapshot
// antes de ejecutar el callback y lo restaura si falla, imitando el rollback
// transaccional; el mutex serializa los checkouts como lo harían los bloqueos
// de fila.
type fakeState struct {
	mu      sync.Mutex
	stock   map[string]entity.Stock // clave pharmacyID|medicationID
	orders  map[string]entity.Order
	lines   map[string][]entity.OrderLine // por orderID
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

func (st *fakeState) restore(snap *fakeState) {
	st.stock = snap.stock
	st.orders = snap.orders
	st.lines = snap.lines
	st.returns = snap.returns
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
		r.st.restore(snap)
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

func (r *fakeStockRepo) ListByPharmacy(pharmacyID string) ([]*entity.Stock, error) {
	var result []*entity.Stock
	for _, s := range r.st.stock {
		if s.PharmacyID == pharmacyID {
			copia := s
			result = append(result, &copia)
		}
	}
	return result, nil
}

func (r *fakeStockRepo) ListByMedication(medicationID string) ([]*entity.Stock, error) {
	var result []*entity.Stock
	for _, s := range r.st.stock {
		if s.MedicationID == medicationID && s.Quantity > 0 {
			copia := s
			result = append(result, &copia)
		}
	}
	return result, nil
}

type fakeOrderRepo struct {
	st *fakeState
}

func (r *fakeOrderRepo) Create(order *entity.Order) error {
	r.st.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) CreateLine(line *entity.OrderLine) error {
	r.st.lines[line.OrderID] = append(r.st.lines[line.OrderID], *line)
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

type fakeUserRepo struct {
	pharmacies map[string]*entity.Pharmacy
	err        error // si está seteado, las lecturas fallan con este error
}

func (r *fakeUserRepo) CreateClient(*entity.Client) error     { return nil }
func (r *fakeUserRepo) CreatePharmacy(*entity.Pharmacy) error { return nil }
func (r *fakeUserRepo) FindByEmail(string) (entity.Principal, error) {
	return nil, domain.ErrNotFound
}
func (r *fakeUserRepo) FindByID(string) (entity.Principal, error) { return nil, domain.ErrNotFound }
func (r *fakeUserRepo) GetClientByID(string) (*entity.Client, error) {
	return nil, domain.ErrNotFound
}
func (r *fakeUserRepo) GetPharmacyByID(id string) (*entity.Pharmacy, error) {
	if r.err != nil {
		return nil, r.err
	}
	if p, ok := r.pharmacies[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}
func (r *fakeUserRepo) UpdateProfile(string, map[string]string) error { return nil }

type fakeMedicationRepo struct {
	meds map[string]*entity.Medication
	err  error // si está seteado, las lecturas fallan con este error
}

func (r *fakeMedicationRepo) Create(*entity.Medication) error { return nil }
func (r *fakeMedicationRepo) GetByID(id string) (*entity.Medication, error) {
	if r.err != nil {
		return nil, r.err
	}
	if m, ok := r.meds[id]; ok {
		return m, nil
	}
	return nil, domain.ErrNotFound
}
func (r *fakeMedicationRepo) List() ([]*entity.Medication, error) { return nil, nil }
func (r *fakeMedicationRepo) Search(repository.MedicationSearch) ([]*entity.Medication, error) {
	return nil, nil
}
func (r *fakeMedicationRepo) Update(*entity.Medication) error { return nil }

type fakeRecipeRepo struct {
	recipes map[string]*entity.Recipe
	details map[string][]*entity.RecipeDetail
}

func (r *fakeRecipeRepo) Create(*entity.Recipe) error             { return nil }
func (r *fakeRecipeRepo) CreateDetail(*entity.RecipeDetail) error { return nil }
func (r *fakeRecipeRepo) GetByID(id string) (*entity.Recipe, error) {
	if rec, ok := r.recipes[id]; ok {
		return rec, nil
	}
	return nil, domain.ErrNotFound
}
func (r *fakeRecipeRepo) GetDetailsByRecipeID(recipeID string) ([]*entity.RecipeDetail, error) {
	return r.details[recipeID], nil
}
func (r *fakeRecipeRepo) ListByClient(string) ([]*entity.Recipe, error) { return nil, nil }
func (r *fakeRecipeRepo) MarkValidated(string) error                    { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	farmaciaID  = "farmacia-1"
	clienteID   = "cliente-1"
	medTafirol  = "med-tafirol"
	medAmoxidal = "med-amoxidal"
)

type fixture struct {
	st      *fakeState
	users   *fakeUserRepo
	meds    *fakeMedicationRepo
	recipes *fakeRecipeRepo
	uc      *checkout.UseCase
}

func newFixture() *fixture {
	st := newFakeState()
	users := &fakeUserRepo{pharmacies: map[string]*entity.Pharmacy{
		farmaciaID: {User: entity.User{ID: farmaciaID, Role: entity.RolePharmacy}, TradeName: "Farmacia Central"},
	}}
	meds := &fakeMedicationRepo{meds: map[string]*entity.Medication{
		medTafirol:  {ID: medTafirol, CommercialName: "Tafirol 500"},
		medAmoxidal: {ID: medAmoxidal, CommercialName: "Amoxidal 500", RequiresPrescription: true},
	}}
	recipes := &fakeRecipeRepo{
		recipes: make(map[string]*entity.Recipe),
		details: make(map[string][]*entity.RecipeDetail),
	}
	uc := checkout.NewUseCase(&fakeTxRunner{st: st}, users, meds, recipes)
	return &fixture{st: st, users: users, meds: meds, recipes: recipes, uc: uc}
}

func (f *fixture) setStock(medicationID, price string, qty int64) {
	f.st.stock[stockKey(farmaciaID, medicationID)] = entity.Stock{
		PharmacyID:   farmaciaID,
		MedicationID: medicationID,
		Price:        decimal.RequireFromString(price),
		Quantity:     qty,
	}
}

func (f *fixture) stockQty(medicationID string) int64 {
	return f.st.stock[stockKey(farmaciaID, medicationID)].Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Checkout feliz: descuenta stock, congela precios y el total es la suma de
// los subtotales.
func TestPlaceOrder_DescuentaStockYCalculaTotal(t *testing.T) {
	f := newFixture()
	f.setStock(medTafirol, "100.00", 5)

	out, err := f.uc.PlaceOrder(context.Background(), clienteID, dto.PlaceOrderRequest{
		PharmacyID:    farmaciaID,
		PaymentMethod: "tarjeta",
		Lines:         []dto.OrderLineRequest{{MedicationID: medTafirol, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusPending, out.Status)
	assert.True(t, decimal.RequireFromString("300.00").Equal(out.Total),
		"total debe ser 3 x 100.00 = 300.00")
	require.Len(t, out.Lines, 1)
	assert.True(t, decimal.RequireFromString("100.00").Equal(out.Lines[0].UnitPrice),
		"el precio unitario debe congelarse al del stock")
	assert.EqualValues(t, 2, f.stockQty(medTafirol), "el stock debe quedar en 5-3=2")
	assert.Len(t, f.st.orders, 1)
	assert.Len(t, f.st.lines[out.ID], 1)
}

// Si una línea no alcanza, nada se persiste: ni pedido, ni líneas, ni
// descuentos parciales de las líneas anteriores.
func TestPlaceOrder_StockInsuficiente_NoPersisteNada(t *testing.T) {
	f := newFixture()
	f.setStock(medTafirol, "100.00", 10)
	f.setStock(medAmoxidal, "4800.00", 1)

	_, err := f.uc.PlaceOrder(context.Background(), clienteID, dto.PlaceOrderRequest{
		PharmacyID:    farmaciaID,
		PaymentMethod: "efectivo",
		RecipeID:      recetaValidada(f),
		Lines: []dto.OrderLineRequest{
			{MedicationID: medTafirol, Quantity: 2},
			{MedicationID: medAmoxidal, Quantity: 5}, // solo hay 1
		},
	})
	require.Error(t, err)

	var insuficiente *domain.InsufficientStockError
	require.True(t, errors.As(err, &insuficiente), "debe identificar el medicamento sin stock")
	assert.Equal(t, medAmoxidal, insuficiente.MedicationID)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.EqualValues(t, 10, f.stockQty(medTafirol), "el descuento de la otra línea debe revertirse")
	assert.EqualValues(t, 1, f.stockQty(medAmoxidal))
	assert.Empty(t, f.st.orders, "no debe quedar ningún pedido")
	assert.Empty(t, f.st.lines)
}

// Una fila re-creada por reversión (precio 0) no puede venderse aunque tenga
// cantidad.
func TestPlaceOrder_FilaSinPrecio_Rechaza(t *testing.T) {
	f := newFixture()
	f.setStock(medTafirol, "0", 5)

	_, err := f.uc.PlaceOrder(context.Background(), clienteID, dto.PlaceOrderRequest{
		PharmacyID:    farmaciaID,
		PaymentMethod: "tarjeta",
		Lines:         []dto.OrderLineRequest{{MedicationID: medTafirol, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.EqualValues(t, 5, f.stockQty(medTafirol))
	assert.Empty(t, f.st.orders)
}

func TestPlaceOrder_CarritoInvalido(t *testing.T) {
	f := newFixture()
	f.setStock(medTafirol, "100.00", 5)

	casos := []struct {
		nombre string
		in     dto.PlaceOrderRequest
	}{
		{"carrito vacío", dto.PlaceOrderRequest{PharmacyID: farmaciaID, PaymentMethod: "tarjeta"}},
		{"cantidad cero", dto.PlaceOrderRequest{
			PharmacyID: farmaciaID, PaymentMethod: "tarjeta",
			Lines: []dto.OrderLineRequest{{MedicationID: medTafirol, Quantity: 0}},
		}},
		{"cantidad negativa", dto.PlaceOrderRequest{
			PharmacyID: farmaciaID, PaymentMethod: "tarjeta",
			Lines: []dto.OrderLineRequest{{MedicationID: medTafirol, Quantity: -2}},
		}},
		{"medicamento repetido", dto.PlaceOrderRequest{
			PharmacyID: farmaciaID, PaymentMethod: "tarjeta",
			Lines: []dto.OrderLineRequest{
				{MedicationID: medTafirol, Quantity: 1},
				{MedicationID: medTafirol, Quantity: 2},
			},
		}},
		{"sin medio de pago", dto.PlaceOrderRequest{
			PharmacyID: farmaciaID,
			Lines:      []dto.OrderLineRequest{{MedicationID: medTafirol, Quantity: 1}},
		}},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			_, err := f.uc.PlaceOrder(context.Background(), clienteID, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.EqualValues(t, 5, f.stockQty(medTafirol), "ningún caso inválido debe tocar el stock")
}

func TestPlaceOrder_FarmaciaInexistente(t *testing.T) {
	f := newFixture()
	_, err := f.uc.PlaceOrder(context.Background(), clienteID, dto.PlaceOrderRequest{
		PharmacyID:    "farmacia-fantasma",
		PaymentMethod: "tarjeta",
		Lines:         []dto.OrderLineRequest{{MedicationID: medTafirol, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Una falla de infraestructura en las lecturas previas se propaga tal cual;
// un pedido no debe recibir 404 porque la base está caída.
func TestPlaceOrder_FallaDeRepositorio_SePropaga(t *testing.T) {
	pedidoTafirol := dto.PlaceOrderRequest{
		PharmacyID:    farmaciaID,
		PaymentMethod: "tarjeta",
		Lines:         []dto.OrderLineRequest{{MedicationID: medTafirol, Quantity: 1}},
	}
	fallaDB := errors.New("conexión rechazada")

	t.Run("lectura de farmacia", func(t *testing.T) {
		f := newFixture()
		f.setStock(medTafirol, "100.00", 5)
		f.users.err = fallaDB

		_, err := f.uc.PlaceOrder(context.Background(), clienteID, pedidoTafirol)
		require.ErrorIs(t, err, fallaDB)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("lectura de medicamento", func(t *testing.T) {
		f := newFixture()
		f.setStock(medTafirol, "100.00", 5)
		f.meds.err = fallaDB

		_, err := f.uc.PlaceOrder(context.Background(), clienteID, pedidoTafirol)
		require.ErrorIs(t, err, fallaDB)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})
}

// recetaValidada registra una receta validada del cliente que cubre Amoxidal
// y devuelve su id.
func recetaValidada(f *fixture) string {
	const id = "receta-1"
	f.recipes.recipes[id] = &entity.Recipe{ID: id, ClientID: clienteID, Validated: true}
	f.recipes.details[id] = []*entity.RecipeDetail{
		{ID: "det-1", RecipeID: id, MedicationID: medAmoxidal, PrescribedQuantity: 10},
	}
	return id
}

func TestPlaceOrder_VentaBajoReceta(t *testing.T) {
	pedidoAmoxidal := func(recipeID string) dto.PlaceOrderRequest {
		return dto.PlaceOrderRequest{
			PharmacyID:    farmaciaID,
			PaymentMethod: "tarjeta",
			RecipeID:      recipeID,
			Lines:         []dto.OrderLineRequest{{MedicationID: medAmoxidal, Quantity: 1}},
		}
	}

	t.Run("sin receta se rechaza", func(t *testing.T) {
		f := newFixture()
		f.setStock(medAmoxidal, "4800.00", 5)
		_, err := f.uc.PlaceOrder(context.Background(), clienteID, pedidoAmoxidal(""))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("receta sin validar se rechaza", func(t *testing.T) {
		f := newFixture()
		f.setStock(medAmoxidal, "4800.00", 5)
		f.recipes.recipes["receta-x"] = &entity.Recipe{ID: "receta-x", ClientID: clienteID, Validated: false}
		_, err := f.uc.PlaceOrder(context.Background(), clienteID, pedidoAmoxidal("receta-x"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("receta de otro cliente se rechaza", func(t *testing.T) {
		f := newFixture()
		f.setStock(medAmoxidal, "4800.00", 5)
		f.recipes.recipes["receta-ajena"] = &entity.Recipe{ID: "receta-ajena", ClientID: "otro-cliente", Validated: true}
		_, err := f.uc.PlaceOrder(context.Background(), clienteID, pedidoAmoxidal("receta-ajena"))
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("receta que no prescribe el medicamento se rechaza", func(t *testing.T) {
		f := newFixture()
		f.setStock(medAmoxidal, "4800.00", 5)
		f.recipes.recipes["receta-otra"] = &entity.Recipe{ID: "receta-otra", ClientID: clienteID, Validated: true}
		f.recipes.details["receta-otra"] = []*entity.RecipeDetail{
			{ID: "det-z", RecipeID: "receta-otra", MedicationID: medTafirol, PrescribedQuantity: 1},
		}
		_, err := f.uc.PlaceOrder(context.Background(), clienteID, pedidoAmoxidal("receta-otra"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("receta validada que cubre el medicamento pasa", func(t *testing.T) {
		f := newFixture()
		f.setStock(medAmoxidal, "4800.00", 5)
		out, err := f.uc.PlaceOrder(context.Background(), clienteID, pedidoAmoxidal(recetaValidada(f)))
		require.NoError(t, err)
		assert.EqualValues(t, 4, f.stockQty(medAmoxidal))
		assert.Equal(t, "receta-1", out.RecipeID)
	})
}

// Con una sola unidad disponible y N compradores concurrentes, exactamente
// uno gana; el resto recibe stock insuficiente y el stock nunca queda
// negativo.
func TestPlaceOrder_ConcurrenciaUnSoloGanador(t *testing.T) {
	f := newFixture()
	f.setStock(medTafirol, "100.00", 1)

	const compradores = 10
	var wg sync.WaitGroup
	resultados := make(chan error, compradores)
	for i := 0; i < compradores; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.PlaceOrder(context.Background(), clienteID, dto.PlaceOrderRequest{
				PharmacyID:    farmaciaID,
				PaymentMethod: "tarjeta",
				Lines:         []dto.OrderLineRequest{{MedicationID: medTafirol, Quantity: 1}},
			})
			resultados <- err
		}()
	}
	wg.Wait()
	close(resultados)

	exitos, insuficientes := 0, 0
	for err := range resultados {
		switch {
		case err == nil:
			exitos++
		case errors.Is(err, domain.ErrInsufficientStock):
			insuficientes++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, exitos, "exactamente un comprador debe ganar la unidad")
	assert.Equal(t, compradores-1, insuficientes)
	assert.EqualValues(t, 0, f.stockQty(medTafirol), "el stock debe terminar en 0, nunca negativo")
	assert.Len(t, f.st.orders, 1)
}
