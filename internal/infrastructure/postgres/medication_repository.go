package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
)

var _ repository.MedicationRepository = (*MedicationRepo)(nil)

// MedicationRepo implementación de MedicationRepository sobre PostgreSQL.
type MedicationRepo struct {
	q Querier
}

// NewMedicationRepository construye el adaptador del catálogo.
func NewMedicationRepository(q Querier) *MedicationRepo {
	return &MedicationRepo{q: q}
}

const medicationColumns = `
	id, commercial_name, COALESCE(active_ingredient, ''), COALESCE(presentation, ''),
	requires_prescription, COALESCE(laboratory, ''), COALESCE(category, ''), created_at`

// Create inserta un medicamento nuevo en el catálogo.
func (r *MedicationRepo) Create(m *entity.Medication) error {
	query := `
		INSERT INTO medications (id, commercial_name, active_ingredient, presentation,
			requires_prescription, laboratory, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.CommercialName, nullIfEmpty(m.ActiveIngredient), nullIfEmpty(m.Presentation),
		m.RequiresPrescription, nullIfEmpty(m.Laboratory), nullIfEmpty(m.Category), m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create medication: %w", err)
	}
	return nil
}

// GetByID busca un medicamento por id.
func (r *MedicationRepo) GetByID(id string) (*entity.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE id = $1`
	m, err := r.scanOne(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List devuelve el catálogo completo ordenado por nombre comercial.
func (r *MedicationRepo) List() ([]*entity.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications ORDER BY commercial_name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// Search filtra por texto (nombre comercial o principio activo, ILIKE),
// categoría exacta y venta bajo receta.
func (r *MedicationRepo) Search(filter repository.MedicationSearch) ([]*entity.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE 1=1`
	var args []any
	i := 1
	if filter.Query != "" {
		query += fmt.Sprintf(" AND (commercial_name ILIKE $%d OR active_ingredient ILIKE $%d)", i, i)
		args = append(args, "%"+filter.Query+"%")
		i++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", i)
		args = append(args, filter.Category)
		i++
	}
	if filter.RequiresPrescription != nil {
		query += fmt.Sprintf(" AND requires_prescription = $%d", i)
		args = append(args, *filter.RequiresPrescription)
	}
	query += " ORDER BY commercial_name"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("search medications: %w", err)
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// Update edición administrativa de un medicamento existente.
func (r *MedicationRepo) Update(m *entity.Medication) error {
	query := `
		UPDATE medications
		SET commercial_name = $2, active_ingredient = $3, presentation = $4,
		    requires_prescription = $5, laboratory = $6, category = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		m.ID, m.CommercialName, nullIfEmpty(m.ActiveIngredient), nullIfEmpty(m.Presentation),
		m.RequiresPrescription, nullIfEmpty(m.Laboratory), nullIfEmpty(m.Category),
	)
	if err != nil {
		return fmt.Errorf("update medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MedicationRepo) scanOne(row pgx.Row) (*entity.Medication, error) {
	var m entity.Medication
	err := row.Scan(&m.ID, &m.CommercialName, &m.ActiveIngredient, &m.Presentation,
		&m.RequiresPrescription, &m.Laboratory, &m.Category, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan medication: %w", err)
	}
	return &m, nil
}

func (r *MedicationRepo) scanRows(rows pgx.Rows) ([]*entity.Medication, error) {
	var result []*entity.Medication
	for rows.Next() {
		var m entity.Medication
		if err := rows.Scan(&m.ID, &m.CommercialName, &m.ActiveIngredient, &m.Presentation,
			&m.RequiresPrescription, &m.Laboratory, &m.Category, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		result = append(result, &m)
	}
	return result, rows.Err()
}
