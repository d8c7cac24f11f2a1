package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/dto"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/pkg/logger"
)

// Acciones sobre el ciclo de vida de un pedido.
const (
	actionConfirm = "confirm"
	actionCancel  = "cancel"
	actionReturn  = "return"
	actionPickup  = "pickup"
	actionDeliver = "deliver"
)

// UseCase ciclo de vida del pedido: transiciones de estado con sus guardas y
// la reversión de stock en cancelación/devolución. También resuelve lecturas
// y el borrado con cascada explícita sobre las líneas.
type UseCase struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	log       *logger.Logger
}

// NewUseCase construye el caso de uso. orderRepo va atado al pool (lecturas);
// las transiciones y el borrado usan los repos transaccionales que entrega
// txRunner.
func NewUseCase(txRunner TxRunner, orderRepo repository.OrderRepository, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, orderRepo: orderRepo, log: log}
}

// Confirm la farmacia acepta un pedido pendiente.
func (uc *UseCase) Confirm(ctx context.Context, callerID, callerRole, orderID string) (*dto.OrderResponse, error) {
	return uc.transition(ctx, callerID, callerRole, orderID, actionConfirm, "")
}

// Cancel cancela el pedido y repone el stock de cada línea.
func (uc *UseCase) Cancel(ctx context.Context, callerID, callerRole, orderID string) (*dto.OrderResponse, error) {
	return uc.transition(ctx, callerID, callerRole, orderID, actionCancel, "")
}

// Return registra la devolución (con motivo opcional) y repone el stock.
func (uc *UseCase) Return(ctx context.Context, callerID, callerRole, orderID, reason string) (*dto.OrderResponse, error) {
	return uc.transition(ctx, callerID, callerRole, orderID, actionReturn, reason)
}

// Pickup marca el pedido como retirado en mostrador.
func (uc *UseCase) Pickup(ctx context.Context, callerID, callerRole, orderID string) (*dto.OrderResponse, error) {
	return uc.transition(ctx, callerID, callerRole, orderID, actionPickup, "")
}

// Deliver marca el pedido como entregado a domicilio.
func (uc *UseCase) Deliver(ctx context.Context, callerID, callerRole, orderID string) (*dto.OrderResponse, error) {
	return uc.transition(ctx, callerID, callerRole, orderID, actionDeliver, "")
}

// transition aplica una transición dentro de una transacción: bloquea la
// cabecera del pedido, re-verifica la guarda contra el estado bloqueado,
// actualiza el estado y, si corresponde, ejecuta la reversión de stock.
func (uc *UseCase) transition(ctx context.Context, callerID, callerRole, orderID, action, reason string) (*dto.OrderResponse, error) {
	var updated *entity.Order
	var lines []*entity.OrderLine

	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error {
		ord, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return domain.ErrNotFound
		}
		if err := authorize(ord, callerID, callerRole, action); err != nil {
			return err
		}

		newStatus, err := nextStatus(ord, action)
		if err != nil {
			return err
		}

		lines, err = orderRepo.GetLinesByOrderID(ord.ID)
		if err != nil {
			return err
		}

		if action == actionCancel || action == actionReturn {
			if err := uc.reverseStock(stockRepo, ord, lines); err != nil {
				return err
			}
		}
		if action == actionReturn {
			ret := &entity.OrderReturn{
				ID:        uuid.New().String(),
				OrderID:   ord.ID,
				Reason:    reason,
				CreatedAt: time.Now(),
			}
			if err := orderRepo.CreateReturn(ret); err != nil {
				return err
			}
		}

		if err := orderRepo.UpdateStatus(ord.ID, newStatus); err != nil {
			return err
		}
		ord.Status = newStatus
		updated = ord
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(updated, lines), nil
}

// reverseStock repone en stock la cantidad de cada línea del pedido. Si la
// fila (farmacia, medicamento) ya no existe se re-crea con precio 0: queda
// invendible hasta que la farmacia la re-tarife vía upsert de stock.
func (uc *UseCase) reverseStock(stockRepo repository.StockRepository, ord *entity.Order, lines []*entity.OrderLine) error {
	for _, line := range lines {
		stock, err := stockRepo.Adjust(ord.PharmacyID, line.MedicationID, line.Quantity)
		if err != nil {
			return err
		}
		if !stock.Sellable() {
			uc.log.Warn().
				Str("order_id", ord.ID).
				Str("medication_id", line.MedicationID).
				Msg("reversión sobre fila de stock sin precio; re-tarifar antes de vender")
		}
	}
	return nil
}

// authorize el caller debe ser el cliente o la farmacia del pedido; confirmar,
// retirar y entregar son acciones exclusivas de la farmacia.
func authorize(ord *entity.Order, callerID, callerRole, action string) error {
	if callerID != ord.ClientID && callerID != ord.PharmacyID {
		return domain.ErrForbidden
	}
	switch action {
	case actionConfirm, actionPickup, actionDeliver:
		if callerRole != entity.RolePharmacy || callerID != ord.PharmacyID {
			return domain.ErrForbidden
		}
	}
	return nil
}

// nextStatus evalúa la guarda de la máquina de estados y devuelve el estado
// destino. Guarda violada => TerminalStateError con el estado actual.
func nextStatus(ord *entity.Order, action string) (string, error) {
	switch action {
	case actionConfirm:
		if !ord.CanConfirm() {
			return "", &domain.TerminalStateError{Status: ord.Status}
		}
		return entity.OrderStatusConfirmed, nil
	case actionCancel:
		if !ord.CanCancel() {
			return "", &domain.TerminalStateError{Status: ord.Status}
		}
		return entity.OrderStatusCancelled, nil
	case actionReturn:
		if !ord.CanReturn() {
			return "", &domain.TerminalStateError{Status: ord.Status}
		}
		return entity.OrderStatusReturned, nil
	case actionPickup:
		if !ord.CanPickup() {
			return "", &domain.TerminalStateError{Status: ord.Status}
		}
		return entity.OrderStatusPickedUp, nil
	case actionDeliver:
		if !ord.CanDeliver() {
			return "", &domain.TerminalStateError{Status: ord.Status}
		}
		return entity.OrderStatusDelivered, nil
	}
	return "", domain.ErrInvalidInput
}

// Get devuelve un pedido con sus líneas. 403 si el caller no es ni el cliente
// ni la farmacia del pedido.
func (uc *UseCase) Get(ctx context.Context, callerID, orderID string) (*dto.OrderResponse, error) {
	ord, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, domain.ErrNotFound
	}
	if callerID != ord.ClientID && callerID != ord.PharmacyID {
		return nil, domain.ErrForbidden
	}
	lines, err := uc.orderRepo.GetLinesByOrderID(ord.ID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(ord, lines), nil
}

// List devuelve los pedidos del caller según su rol.
func (uc *UseCase) List(ctx context.Context, callerID, callerRole string) ([]dto.OrderResponse, error) {
	var orders []*entity.Order
	var err error
	switch callerRole {
	case entity.RolePharmacy:
		orders, err = uc.orderRepo.ListByPharmacy(callerID)
	default:
		orders, err = uc.orderRepo.ListByClient(callerID)
	}
	if err != nil {
		return nil, err
	}
	result := make([]dto.OrderResponse, 0, len(orders))
	for _, ord := range orders {
		result = append(result, *toOrderResponse(ord, nil))
	}
	return result, nil
}

// Delete borra un pedido terminal (cancelado o devuelto) junto con sus
// devoluciones y líneas: cascada explícita en la aplicación dentro de una
// sola transacción, no delegada al esquema. Solo la farmacia dueña puede
// borrarlo.
func (uc *UseCase) Delete(ctx context.Context, callerID, callerRole, orderID string) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error {
		ord, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return domain.ErrNotFound
		}
		if callerRole != entity.RolePharmacy || callerID != ord.PharmacyID {
			return domain.ErrForbidden
		}
		if !ord.IsTerminal() {
			return fmt.Errorf("%w: solo se puede borrar un pedido cancelado o devuelto", domain.ErrInvalidInput)
		}
		return orderRepo.Delete(ord.ID)
	})
}

func toOrderResponse(ord *entity.Order, lines []*entity.OrderLine) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:            ord.ID,
		ClientID:      ord.ClientID,
		PharmacyID:    ord.PharmacyID,
		Status:        ord.Status,
		PaymentMethod: ord.PaymentMethod,
		Total:         ord.Total,
		RecipeID:      ord.RecipeID,
		CreatedAt:     ord.CreatedAt,
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
