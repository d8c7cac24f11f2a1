package checkout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/dto"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
)

// UseCase motor de checkout: valida el carrito contra el catálogo, congela
// precios, crea el pedido con sus líneas y descuenta stock en una sola
// transacción con bloqueo de fila (SELECT FOR UPDATE).
type UseCase struct {
	txRunner       TxRunner
	userRepo       repository.UserRepository
	medicationRepo repository.MedicationRepository
	recipeRepo     repository.RecipeRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	userRepo repository.UserRepository,
	medicationRepo repository.MedicationRepository,
	recipeRepo repository.RecipeRepository,
) *UseCase {
	return &UseCase{
		txRunner:       txRunner,
		userRepo:       userRepo,
		medicationRepo: medicationRepo,
		recipeRepo:     recipeRepo,
	}
}

// PlaceOrder ejecuta el checkout completo para un cliente.
//
// Validaciones fuera de la transacción (solo lectura): carrito no vacío,
// cantidades positivas, farmacia y medicamentos existentes, y receta validada
// para los medicamentos de venta bajo receta.
//
// Dentro de la transacción, por cada línea en orden determinístico de
// medicamento (evita deadlocks entre carritos concurrentes): se bloquea la
// fila de stock, se re-valida la disponibilidad contra la fila bloqueada, se
// congela el precio unitario y se descuenta la cantidad. Si cualquier línea
// falla, la transacción entera se revierte: ningún pedido parcial, ningún
// descuento parcial.
func (uc *UseCase) PlaceOrder(ctx context.Context, clientID string, in dto.PlaceOrderRequest) (*dto.OrderResponse, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el carrito está vacío", domain.ErrInvalidInput)
	}
	if in.PharmacyID == "" || in.PaymentMethod == "" {
		return nil, domain.ErrInvalidInput
	}
	for _, line := range in.Lines {
		if line.MedicationID == "" || line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cantidad inválida", domain.ErrInvalidInput)
		}
	}

	// Farmacia destino. Una falla de infraestructura se propaga tal cual: no
	// debe disfrazarse de 404.
	pharmacy, err := uc.userRepo.GetPharmacyByID(in.PharmacyID)
	if err != nil {
		return nil, err
	}
	if pharmacy == nil {
		return nil, domain.ErrNotFound
	}

	// Medicamentos del carrito (lectura fuera de la tx)
	medsByID := make(map[string]*entity.Medication, len(in.Lines))
	for _, line := range in.Lines {
		if _, ok := medsByID[line.MedicationID]; ok {
			return nil, fmt.Errorf("%w: medicamento repetido en el carrito", domain.ErrInvalidInput)
		}
		med, err := uc.medicationRepo.GetByID(line.MedicationID)
		if err != nil {
			return nil, err
		}
		if med == nil {
			return nil, domain.ErrNotFound
		}
		medsByID[line.MedicationID] = med
	}

	if err := uc.checkPrescriptions(clientID, in, medsByID); err != nil {
		return nil, err
	}

	// Orden determinístico de bloqueo
	sorted := make([]dto.OrderLineRequest, len(in.Lines))
	copy(sorted, in.Lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MedicationID < sorted[j].MedicationID })

	now := time.Now()
	order := &entity.Order{
		ID:            uuid.New().String(),
		ClientID:      clientID,
		PharmacyID:    in.PharmacyID,
		Status:        entity.OrderStatusPending,
		PaymentMethod: in.PaymentMethod,
		RecipeID:      in.RecipeID,
		CreatedAt:     now,
	}
	var lines []*entity.OrderLine

	err = uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error {
		total := decimal.Zero
		lines = lines[:0]
		for _, req := range sorted {
			// Bloquea la fila de stock y re-valida contra el snapshot bloqueado
			stock, err := stockRepo.GetForUpdate(in.PharmacyID, req.MedicationID)
			if err != nil {
				return err
			}
			if stock.Quantity < req.Quantity {
				return &domain.InsufficientStockError{MedicationID: req.MedicationID}
			}
			// Las filas re-creadas por una reversión quedan con precio 0 y no
			// pueden venderse hasta que la farmacia las re-tarife.
			if !stock.Sellable() {
				return fmt.Errorf("%w: el medicamento %s no tiene precio asignado", domain.ErrInvalidInput, req.MedicationID)
			}

			stock.Quantity -= req.Quantity
			stock.UpdatedAt = now
			if err := stockRepo.Upsert(stock); err != nil {
				return err
			}

			lines = append(lines, &entity.OrderLine{
				ID:           uuid.New().String(),
				OrderID:      order.ID,
				MedicationID: req.MedicationID,
				Quantity:     req.Quantity,
				UnitPrice:    stock.Price, // precio congelado al momento del checkout
			})
			total = total.Add(stock.Price.Mul(decimal.NewFromInt(req.Quantity)))
		}

		order.Total = total
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		for _, line := range lines {
			if err := orderRepo.CreateLine(line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toOrderResponse(order, lines), nil
}

// checkPrescriptions exige una receta validada del cliente que cubra cada
// medicamento de venta bajo receta del carrito.
func (uc *UseCase) checkPrescriptions(clientID string, in dto.PlaceOrderRequest, medsByID map[string]*entity.Medication) error {
	var restricted []string
	for _, line := range in.Lines {
		if medsByID[line.MedicationID].RequiresPrescription {
			restricted = append(restricted, line.MedicationID)
		}
	}
	if len(restricted) == 0 {
		return nil
	}
	if in.RecipeID == "" {
		return fmt.Errorf("%w: el carrito incluye medicamentos de venta bajo receta", domain.ErrInvalidInput)
	}
	recipe, err := uc.recipeRepo.GetByID(in.RecipeID)
	if err != nil {
		return err
	}
	if recipe == nil {
		return domain.ErrNotFound
	}
	if recipe.ClientID != clientID {
		return domain.ErrForbidden
	}
	if !recipe.Validated {
		return fmt.Errorf("%w: la receta aún no fue validada", domain.ErrInvalidInput)
	}
	details, err := uc.recipeRepo.GetDetailsByRecipeID(recipe.ID)
	if err != nil {
		return err
	}
	for _, medID := range restricted {
		if !entity.Covers(details, medID) {
			return fmt.Errorf("%w: la receta no prescribe el medicamento %s", domain.ErrInvalidInput, medID)
		}
	}
	return nil
}

func toOrderResponse(order *entity.Order, lines []*entity.OrderLine) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:            order.ID,
		ClientID:      order.ClientID,
		PharmacyID:    order.PharmacyID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		Total:         order.Total,
		RecipeID:      order.RecipeID,
		CreatedAt:     order.CreatedAt,
		Lines:         make([]dto.OrderLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ID:           l.ID,
			MedicationID: l.MedicationID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			Subtotal:     l.Subtotal(),
		})
	}
	return resp
}
