package repository

import "github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"

// MedicationSearch filtros de búsqueda del catálogo.
type MedicationSearch struct {
	Query                string // contra nombre comercial o principio activo
	Category             string
	RequiresPrescription *bool
}

// MedicationRepository puerto de persistencia para el catálogo de medicamentos.
type MedicationRepository interface {
	Create(medication *entity.Medication) error
	GetByID(id string) (*entity.Medication, error)
	List() ([]*entity.Medication, error)
	Search(filter MedicationSearch) ([]*entity.Medication, error)
	Update(medication *entity.Medication) error
}
