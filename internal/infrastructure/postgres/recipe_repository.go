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

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación de RecipeRepository sobre PostgreSQL.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador de recetas.
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

const recipeColumns = `
	id, client_id, COALESCE(doctor, ''), COALESCE(image_path, ''), validated, issued_at, created_at`

// Create inserta la receta.
func (r *RecipeRepo) Create(recipe *entity.Recipe) error {
	query := `
		INSERT INTO recipes (id, client_id, doctor, image_path, validated, issued_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		recipe.ID, recipe.ClientID, nullIfEmpty(recipe.Doctor), nullIfEmpty(recipe.ImagePath),
		recipe.Validated, recipe.IssuedAt, recipe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create recipe: %w", err)
	}
	return nil
}

// CreateDetail inserta un medicamento prescripto en la receta.
func (r *RecipeRepo) CreateDetail(detail *entity.RecipeDetail) error {
	query := `
		INSERT INTO recipe_details (id, recipe_id, medication_id, prescribed_quantity, dosage)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		detail.ID, detail.RecipeID, detail.MedicationID, detail.PrescribedQuantity, nullIfEmpty(detail.Dosage),
	)
	if err != nil {
		return fmt.Errorf("create recipe detail: %w", err)
	}
	return nil
}

// GetByID busca la receta.
func (r *RecipeRepo) GetByID(id string) (*entity.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1`
	var rec entity.Recipe
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&rec.ID, &rec.ClientID, &rec.Doctor, &rec.ImagePath, &rec.Validated, &rec.IssuedAt, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &rec, nil
}

// GetDetailsByRecipeID devuelve los medicamentos prescriptos.
func (r *RecipeRepo) GetDetailsByRecipeID(recipeID string) ([]*entity.RecipeDetail, error) {
	query := `
		SELECT id, recipe_id, medication_id, prescribed_quantity, COALESCE(dosage, '')
		FROM recipe_details WHERE recipe_id = $1`
	rows, err := r.q.Query(context.Background(), query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("get recipe details: %w", err)
	}
	defer rows.Close()

	var result []*entity.RecipeDetail
	for rows.Next() {
		var d entity.RecipeDetail
		if err := rows.Scan(&d.ID, &d.RecipeID, &d.MedicationID, &d.PrescribedQuantity, &d.Dosage); err != nil {
			return nil, fmt.Errorf("scan recipe detail: %w", err)
		}
		result = append(result, &d)
	}
	return result, rows.Err()
}

// ListByClient recetas cargadas por un cliente, más reciente primero.
func (r *RecipeRepo) ListByClient(clientID string) ([]*entity.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE client_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, clientID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var result []*entity.Recipe
	for rows.Next() {
		var rec entity.Recipe
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Doctor, &rec.ImagePath,
			&rec.Validated, &rec.IssuedAt, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		result = append(result, &rec)
	}
	return result, rows.Err()
}

// MarkValidated marca la receta como validada por una farmacia.
func (r *RecipeRepo) MarkValidated(id string) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE recipes SET validated = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("validate recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
