package repository

import "github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"

// StockRepository puerto para consultar/actualizar stock por farmacia+medicamento.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve la fila; si no existe, una fila en cero (precio 0, cantidad 0).
	Get(pharmacyID, medicationID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). Solo tiene
	// sentido dentro de una transacción.
	GetForUpdate(pharmacyID, medicationID string) (*entity.Stock, error)
	// Upsert inserta o reemplaza precio y cantidad.
	Upsert(stock *entity.Stock) error
	// Adjust suma delta a la cantidad con la fila bloqueada. Crea la fila con
	// precio 0 si no existe y delta es positivo; falla con ErrInsufficientStock
	// si el resultado sería negativo.
	Adjust(pharmacyID, medicationID string, delta int64) (*entity.Stock, error)
	ListByPharmacy(pharmacyID string) ([]*entity.Stock, error)
	// ListByMedication filas con cantidad disponible > 0, para buscar farmacias
	// que tengan el medicamento.
	ListByMedication(medicationID string) ([]*entity.Stock, error)
}
