package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/dto"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
)

// UseCase catálogo de medicamentos y stock por farmacia. El stock que se
// administra acá (upsert de la farmacia) es la única mutación legítima fuera
// de los motores de checkout y reversión.
type UseCase struct {
	medicationRepo repository.MedicationRepository
	stockRepo      repository.StockRepository
	userRepo       repository.UserRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	medicationRepo repository.MedicationRepository,
	stockRepo repository.StockRepository,
	userRepo repository.UserRepository,
) *UseCase {
	return &UseCase{medicationRepo: medicationRepo, stockRepo: stockRepo, userRepo: userRepo}
}

// CreateMedication alta administrativa de un medicamento en el catálogo.
func (uc *UseCase) CreateMedication(ctx context.Context, in dto.CreateMedicationRequest) (*dto.MedicationResponse, error) {
	if in.CommercialName == "" || in.ActiveIngredient == "" || in.Presentation == "" ||
		in.Laboratory == "" || in.Category == "" {
		return nil, domain.ErrInvalidInput
	}
	med := &entity.Medication{
		ID:                   uuid.New().String(),
		CommercialName:       in.CommercialName,
		ActiveIngredient:     in.ActiveIngredient,
		Presentation:         in.Presentation,
		RequiresPrescription: in.RequiresPrescription,
		Laboratory:           in.Laboratory,
		Category:             in.Category,
		CreatedAt:            time.Now(),
	}
	if err := uc.medicationRepo.Create(med); err != nil {
		return nil, err
	}
	return toMedicationResponse(med), nil
}

// GetMedication detalle por id.
func (uc *UseCase) GetMedication(ctx context.Context, id string) (*dto.MedicationResponse, error) {
	med, err := uc.medicationRepo.GetByID(id)
	if err != nil || med == nil {
		return nil, domain.ErrNotFound
	}
	return toMedicationResponse(med), nil
}

// ListMedications catálogo completo.
func (uc *UseCase) ListMedications(ctx context.Context) ([]dto.MedicationResponse, error) {
	meds, err := uc.medicationRepo.List()
	if err != nil {
		return nil, err
	}
	return toMedicationResponses(meds), nil
}

// SearchMedications búsqueda por nombre comercial o principio activo, con
// filtros opcionales de categoría y venta bajo receta.
func (uc *UseCase) SearchMedications(ctx context.Context, query, category string, requiresPrescription *bool) ([]dto.MedicationResponse, error) {
	if query == "" {
		return nil, domain.ErrInvalidInput
	}
	meds, err := uc.medicationRepo.Search(repository.MedicationSearch{
		Query:                query,
		Category:             category,
		RequiresPrescription: requiresPrescription,
	})
	if err != nil {
		return nil, err
	}
	return toMedicationResponses(meds), nil
}

// PharmaciesWithMedication farmacias con disponibilidad y precio de un medicamento.
func (uc *UseCase) PharmaciesWithMedication(ctx context.Context, medicationID string) ([]dto.PharmacyAvailabilityResponse, error) {
	med, err := uc.medicationRepo.GetByID(medicationID)
	if err != nil || med == nil {
		return nil, domain.ErrNotFound
	}
	stocks, err := uc.stockRepo.ListByMedication(medicationID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.PharmacyAvailabilityResponse, 0, len(stocks))
	for _, s := range stocks {
		pharmacy, err := uc.userRepo.GetPharmacyByID(s.PharmacyID)
		if err != nil || pharmacy == nil {
			continue // fila de stock huérfana: no rompe la búsqueda
		}
		result = append(result, dto.PharmacyAvailabilityResponse{
			PharmacyID: pharmacy.ID,
			TradeName:  pharmacy.TradeName,
			Latitude:   pharmacy.Latitude,
			Longitude:  pharmacy.Longitude,
			Price:      s.Price.StringFixed(2),
			Available:  s.Quantity,
		})
	}
	return result, nil
}

// UpsertStock setea precio y cantidad del par (farmacia, medicamento). Upsert
// idempotente; exige precio positivo y cantidad no negativa.
func (uc *UseCase) UpsertStock(ctx context.Context, pharmacyID string, in dto.UpsertStockRequest) (*dto.StockResponse, error) {
	if in.MedicationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.Price.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: el precio debe ser positivo", domain.ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrInvalidInput)
	}
	med, err := uc.medicationRepo.GetByID(in.MedicationID)
	if err != nil || med == nil {
		return nil, domain.ErrNotFound
	}
	stock := &entity.Stock{
		PharmacyID:   pharmacyID,
		MedicationID: in.MedicationID,
		Price:        in.Price,
		Quantity:     in.Quantity,
		UpdatedAt:    time.Now(),
	}
	if err := uc.stockRepo.Upsert(stock); err != nil {
		return nil, err
	}
	return toStockResponse(stock), nil
}

// GetPharmacy ficha pública de una farmacia.
func (uc *UseCase) GetPharmacy(ctx context.Context, id string) (*dto.PharmacyResponse, error) {
	pharmacy, err := uc.userRepo.GetPharmacyByID(id)
	if err != nil || pharmacy == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.PharmacyResponse{
		ID:        pharmacy.ID,
		TradeName: pharmacy.TradeName,
		Address:   pharmacy.Address,
		Phone:     pharmacy.Phone,
		OpensAt:   pharmacy.OpensAt,
		ClosesAt:  pharmacy.ClosesAt,
		Latitude:  pharmacy.Latitude,
		Longitude: pharmacy.Longitude,
	}, nil
}

// PharmacyInventory stock completo de una farmacia.
func (uc *UseCase) PharmacyInventory(ctx context.Context, pharmacyID string) ([]dto.StockResponse, error) {
	pharmacy, err := uc.userRepo.GetPharmacyByID(pharmacyID)
	if err != nil || pharmacy == nil {
		return nil, domain.ErrNotFound
	}
	stocks, err := uc.stockRepo.ListByPharmacy(pharmacyID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.StockResponse, 0, len(stocks))
	for _, s := range stocks {
		result = append(result, *toStockResponse(s))
	}
	return result, nil
}

func toMedicationResponse(med *entity.Medication) *dto.MedicationResponse {
	return &dto.MedicationResponse{
		ID:                   med.ID,
		CommercialName:       med.CommercialName,
		ActiveIngredient:     med.ActiveIngredient,
		Presentation:         med.Presentation,
		RequiresPrescription: med.RequiresPrescription,
		Laboratory:           med.Laboratory,
		Category:             med.Category,
	}
}

func toMedicationResponses(meds []*entity.Medication) []dto.MedicationResponse {
	result := make([]dto.MedicationResponse, 0, len(meds))
	for _, med := range meds {
		result = append(result, *toMedicationResponse(med))
	}
	return result
}

func toStockResponse(s *entity.Stock) *dto.StockResponse {
	return &dto.StockResponse{
		PharmacyID:   s.PharmacyID,
		MedicationID: s.MedicationID,
		Price:        s.Price,
		Quantity:     s.Quantity,
	}
}
