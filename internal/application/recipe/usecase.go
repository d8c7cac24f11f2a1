package recipe

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/dto"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
)

// UseCase recetas médicas: alta por el cliente, listado propio y validación
// por la farmacia. Una receta validada habilita el checkout de medicamentos
// de venta bajo receta.
type UseCase struct {
	recipeRepo     repository.RecipeRepository
	medicationRepo repository.MedicationRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(recipeRepo repository.RecipeRepository, medicationRepo repository.MedicationRepository) *UseCase {
	return &UseCase{recipeRepo: recipeRepo, medicationRepo: medicationRepo}
}

// Create alta de una receta con sus detalles. Cada medicamento debe existir.
func (uc *UseCase) Create(ctx context.Context, clientID string, in dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	if in.Doctor == "" || len(in.Details) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, d := range in.Details {
		if d.MedicationID == "" || d.PrescribedQuantity <= 0 || d.Dosage == "" {
			return nil, domain.ErrInvalidInput
		}
		med, err := uc.medicationRepo.GetByID(d.MedicationID)
		if err != nil || med == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	rec := &entity.Recipe{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		Doctor:    in.Doctor,
		ImagePath: in.ImagePath,
		Validated: false,
		IssuedAt:  now,
		CreatedAt: now,
	}
	if err := uc.recipeRepo.Create(rec); err != nil {
		return nil, err
	}
	details := make([]*entity.RecipeDetail, 0, len(in.Details))
	for _, d := range in.Details {
		detail := &entity.RecipeDetail{
			ID:                 uuid.New().String(),
			RecipeID:           rec.ID,
			MedicationID:       d.MedicationID,
			PrescribedQuantity: d.PrescribedQuantity,
			Dosage:             d.Dosage,
		}
		if err := uc.recipeRepo.CreateDetail(detail); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return toRecipeResponse(rec, details), nil
}

// ListOwn recetas del cliente autenticado.
func (uc *UseCase) ListOwn(ctx context.Context, clientID string) ([]dto.RecipeResponse, error) {
	recipes, err := uc.recipeRepo.ListByClient(clientID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.RecipeResponse, 0, len(recipes))
	for _, rec := range recipes {
		details, err := uc.recipeRepo.GetDetailsByRecipeID(rec.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, *toRecipeResponse(rec, details))
	}
	return result, nil
}

// Validate marca la receta como válida. Operación del lado farmacia.
func (uc *UseCase) Validate(ctx context.Context, callerRole, recipeID string) error {
	if callerRole != entity.RolePharmacy {
		return domain.ErrForbidden
	}
	rec, err := uc.recipeRepo.GetByID(recipeID)
	if err != nil || rec == nil {
		return domain.ErrNotFound
	}
	return uc.recipeRepo.MarkValidated(recipeID)
}

func toRecipeResponse(rec *entity.Recipe, details []*entity.RecipeDetail) *dto.RecipeResponse {
	resp := &dto.RecipeResponse{
		ID:        rec.ID,
		ClientID:  rec.ClientID,
		Doctor:    rec.Doctor,
		Validated: rec.Validated,
		IssuedAt:  rec.IssuedAt,
		CreatedAt: rec.CreatedAt,
	}
	for _, d := range details {
		resp.Details = append(resp.Details, dto.RecipeDetailResponse{
			ID:                 d.ID,
			MedicationID:       d.MedicationID,
			PrescribedQuantity: d.PrescribedQuantity,
			Dosage:             d.Dosage,
		})
	}
	return resp
}
