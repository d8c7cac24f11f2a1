package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/catalog"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/dto"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
)

// MedicationHandler maneja el catálogo de medicamentos (protegido).
type MedicationHandler struct {
	uc *catalog.UseCase
}

// NewMedicationHandler construye el handler del catálogo.
func NewMedicationHandler(uc *catalog.UseCase) *MedicationHandler {
	return &MedicationHandler{uc: uc}
}

// Create alta administrativa de un medicamento.
// POST /api/medications (solo farmacia)
func (h *MedicationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMedicationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CreateMedication(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el medicamento ya existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List catálogo completo o filtrado por query params.
// GET /api/medications?q=&category=&requires_prescription=
func (h *MedicationHandler) List(c *fiber.Ctx) error {
	q := c.Query("q")
	category := c.Query("category")
	var requiresPrescription *bool
	if v := c.Query("requires_prescription"); v != "" {
		b := v == "true" || v == "1"
		requiresPrescription = &b
	}

	if q == "" && category == "" && requiresPrescription == nil {
		out, err := h.uc.ListMedications(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		return c.JSON(out)
	}
	out, err := h.uc.SearchMedications(c.Context(), q, category, requiresPrescription)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByID detalle de un medicamento.
// GET /api/medications/:id
func (h *MedicationHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	out, err := h.uc.GetMedication(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "medicamento no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Pharmacies farmacias con stock disponible del medicamento.
// GET /api/medications/:id/pharmacies
func (h *MedicationHandler) Pharmacies(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	out, err := h.uc.PharmaciesWithMedication(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "medicamento no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
