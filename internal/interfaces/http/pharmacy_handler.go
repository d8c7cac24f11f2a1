package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/catalog"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/dto"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
)

// PharmacyHandler inventario de la farmacia autenticada.
type PharmacyHandler struct {
	uc *catalog.UseCase
}

// NewPharmacyHandler construye el handler de farmacias.
func NewPharmacyHandler(uc *catalog.UseCase) *PharmacyHandler {
	return &PharmacyHandler{uc: uc}
}

// UpsertStock fija precio y cantidad de un medicamento en la farmacia del token.
// POST /api/pharmacies/stock (solo farmacia)
func (h *PharmacyHandler) UpsertStock(c *fiber.Ctx) error {
	pharmacyID := GetUserID(c)
	var in dto.UpsertStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.UpsertStock(c.Context(), pharmacyID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "precio debe ser positivo y cantidad no negativa"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "medicamento no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Inventory inventario completo de la farmacia del token.
// GET /api/pharmacies/stock (solo farmacia)
func (h *PharmacyHandler) Inventory(c *fiber.Ctx) error {
	pharmacyID := GetUserID(c)
	out, err := h.uc.PharmacyInventory(c.Context(), pharmacyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByID ficha pública de una farmacia.
// GET /api/pharmacies/:id
func (h *PharmacyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetPharmacy(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "farmacia no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// InventoryByID inventario de una farmacia arbitraria.
// GET /api/pharmacies/:id/inventory
func (h *PharmacyHandler) InventoryByID(c *fiber.Ctx) error {
	out, err := h.uc.PharmacyInventory(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "farmacia no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
