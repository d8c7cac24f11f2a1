package repository

import "github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"

// RecipeRepository puerto de persistencia para recetas y sus detalles.
type RecipeRepository interface {
	Create(recipe *entity.Recipe) error
	CreateDetail(detail *entity.RecipeDetail) error
	GetByID(id string) (*entity.Recipe, error)
	GetDetailsByRecipeID(recipeID string) ([]*entity.RecipeDetail, error)
	ListByClient(clientID string) ([]*entity.Recipe, error)
	MarkValidated(id string) error
}
