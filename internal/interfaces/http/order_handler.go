package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/checkout"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/dto"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/order"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/pkg/metrics"
)

// OrderHandler maneja checkout y ciclo de vida de pedidos (protegido).
type OrderHandler struct {
	checkoutUC *checkout.UseCase
	orderUC    *order.UseCase
	pdfUC      *order.PDFUseCase
	metrics    *metrics.ServerMetrics
}

// NewOrderHandler construye el handler de pedidos.
func NewOrderHandler(checkoutUC *checkout.UseCase, orderUC *order.UseCase, pdfUC *order.PDFUseCase, m *metrics.ServerMetrics) *OrderHandler {
	return &OrderHandler{checkoutUC: checkoutUC, orderUC: orderUC, pdfUC: pdfUC, metrics: m}
}

// Place godoc
// @Summary      Crear pedido (checkout atómico)
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PlaceOrderRequest  true  "farmacia, medio de pago, líneas"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	clientID := GetUserID(c)
	var in dto.PlaceOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.checkoutUC.PlaceOrder(c.Context(), clientID, in)
	if err != nil {
		return h.placeError(c, err)
	}
	h.metrics.Checkouts.WithLabelValues("success").Inc()
	return c.JSON(out)
}

func (h *OrderHandler) placeError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		h.metrics.Checkouts.WithLabelValues("insufficient_stock").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: "stock insuficiente para el medicamento " + insufficient.MedicationID,
		})
	}
	if errors.Is(err, domain.ErrInsufficientStock) {
		h.metrics.Checkouts.WithLabelValues("insufficient_stock").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	}
	h.metrics.Checkouts.WithLabelValues("error").Inc()
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	if errors.Is(err, domain.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "farmacia, medicamento o receta no encontrada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// List pedidos del usuario del token: historial si es cliente, recibidos si es farmacia.
// GET /api/orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	out, err := h.orderUC.List(c.Context(), GetUserID(c), GetRole(c))
	if err != nil {
		return h.lifecycleError(c, err)
	}
	return c.JSON(out)
}

// GetByID detalle de un pedido con sus líneas.
// GET /api/orders/:id
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.orderUC.Get(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return h.lifecycleError(c, err)
	}
	return c.JSON(out)
}

// Confirm la farmacia confirma el pedido pendiente.
// POST /api/orders/:id/confirm
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	out, err := h.orderUC.Confirm(c.Context(), GetUserID(c), GetRole(c), c.Params("id"))
	if err != nil {
		return h.lifecycleError(c, err)
	}
	return c.JSON(out)
}

// Cancel cancela el pedido y repone el stock descontado.
// POST /api/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.orderUC.Cancel(c.Context(), GetUserID(c), GetRole(c), c.Params("id"))
	if err != nil {
		return h.lifecycleError(c, err)
	}
	return c.JSON(out)
}

// Return registra la devolución y repone el stock.
// POST /api/orders/:id/return
func (h *OrderHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnOrderRequest
	_ = c.BodyParser(&in) // body opcional
	out, err := h.orderUC.Return(c.Context(), GetUserID(c), GetRole(c), c.Params("id"), in.Reason)
	if err != nil {
		return h.lifecycleError(c, err)
	}
	return c.JSON(out)
}

// Pickup la farmacia marca el pedido como retirado.
// POST /api/orders/:id/pickup
func (h *OrderHandler) Pickup(c *fiber.Ctx) error {
	out, err := h.orderUC.Pickup(c.Context(), GetUserID(c), GetRole(c), c.Params("id"))
	if err != nil {
		return h.lifecycleError(c, err)
	}
	return c.JSON(out)
}

// Deliver la farmacia marca el pedido como entregado.
// POST /api/orders/:id/deliver
func (h *OrderHandler) Deliver(c *fiber.Ctx) error {
	out, err := h.orderUC.Deliver(c.Context(), GetUserID(c), GetRole(c), c.Params("id"))
	if err != nil {
		return h.lifecycleError(c, err)
	}
	return c.JSON(out)
}

// Delete borra un pedido terminal junto con sus líneas.
// DELETE /api/orders/:id (solo farmacia)
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.orderUC.Delete(c.Context(), GetUserID(c), GetRole(c), c.Params("id")); err != nil {
		return h.lifecycleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Receipt descarga el comprobante PDF del pedido.
// GET /api/orders/:id/receipt
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdfUC.DownloadReceiptPDF(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return h.lifecycleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

func (h *OrderHandler) lifecycleError(c *fiber.Ctx, err error) error {
	var terminal *domain.TerminalStateError
	if errors.As(err, &terminal) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "ILLEGAL_TRANSITION",
			Message: "el pedido está en estado " + terminal.Status,
		})
	}
	if errors.Is(err, domain.ErrOrderTerminal) || errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	if errors.Is(err, domain.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al pedido"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido no encontrado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
