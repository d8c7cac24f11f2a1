package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock de un medicamento en una farmacia. Si la fila no
// existe devuelve una fila en cero.
func (r *StockRepo) Get(pharmacyID, medicationID string) (*entity.Stock, error) {
	query := `
		SELECT pharmacy_id, medication_id, price, quantity, updated_at
		FROM stock WHERE pharmacy_id = $1 AND medication_id = $2`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, pharmacyID, medicationID).Scan(
		&s.PharmacyID, &s.MedicationID, &s.Price, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{PharmacyID: pharmacyID, MedicationID: medicationID, Price: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(pharmacyID, medicationID string) (*entity.Stock, error) {
	query := `
		SELECT pharmacy_id, medication_id, price, quantity, updated_at
		FROM stock WHERE pharmacy_id = $1 AND medication_id = $2
		FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, pharmacyID, medicationID).Scan(
		&s.PharmacyID, &s.MedicationID, &s.Price, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{PharmacyID: pharmacyID, MedicationID: medicationID, Price: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o reemplaza precio y cantidad (por farmacia y medicamento).
func (r *StockRepo) Upsert(stock *entity.Stock) error {
	query := `
		INSERT INTO stock (pharmacy_id, medication_id, price, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (pharmacy_id, medication_id)
		DO UPDATE SET price = EXCLUDED.price, quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, stock.PharmacyID, stock.MedicationID, stock.Price, stock.Quantity)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// Adjust suma delta a la cantidad con la fila bloqueada. Si la fila no existe
// y delta es positivo la crea con precio 0 (caso reversión sobre stock ya
// eliminado); si el resultado sería negativo falla con ErrInsufficientStock.
func (r *StockRepo) Adjust(pharmacyID, medicationID string, delta int64) (*entity.Stock, error) {
	s, err := r.GetForUpdate(pharmacyID, medicationID)
	if err != nil {
		return nil, err
	}
	newQty := s.Quantity + delta
	if newQty < 0 {
		return nil, &domain.InsufficientStockError{MedicationID: medicationID}
	}
	s.Quantity = newQty
	if err := r.Upsert(s); err != nil {
		return nil, err
	}
	return s, nil
}

// ListByPharmacy inventario completo de una farmacia.
func (r *StockRepo) ListByPharmacy(pharmacyID string) ([]*entity.Stock, error) {
	query := `
		SELECT pharmacy_id, medication_id, price, quantity, updated_at
		FROM stock WHERE pharmacy_id = $1
		ORDER BY medication_id`
	rows, err := r.q.Query(context.Background(), query, pharmacyID)
	if err != nil {
		return nil, fmt.Errorf("list stock by pharmacy: %w", err)
	}
	defer rows.Close()
	return scanStockRows(rows)
}

// ListByMedication filas con cantidad disponible, para saber qué farmacias
// tienen el medicamento.
func (r *StockRepo) ListByMedication(medicationID string) ([]*entity.Stock, error) {
	query := `
		SELECT pharmacy_id, medication_id, price, quantity, updated_at
		FROM stock WHERE medication_id = $1 AND quantity > 0
		ORDER BY pharmacy_id`
	rows, err := r.q.Query(context.Background(), query, medicationID)
	if err != nil {
		return nil, fmt.Errorf("list stock by medication: %w", err)
	}
	defer rows.Close()
	return scanStockRows(rows)
}

func scanStockRows(rows pgx.Rows) ([]*entity.Stock, error) {
	var result []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.PharmacyID, &s.MedicationID, &s.Price, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		result = append(result, &s)
	}
	return result, rows.Err()
}
