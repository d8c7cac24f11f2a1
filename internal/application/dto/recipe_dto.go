package dto

import "time"

// RecipeDetailRequest un medicamento prescripto dentro de la receta.
type RecipeDetailRequest struct {
	MedicationID       string `json:"medication_id" validate:"required,uuid"`
	PrescribedQuantity int64  `json:"prescribed_quantity" validate:"required,min=1"`
	Dosage             string `json:"dosage" validate:"required,max=200"`
}

// CreateRecipeRequest body para POST /api/recipes.
type CreateRecipeRequest struct {
	Doctor    string                `json:"doctor" validate:"required,max=150"`
	ImagePath string                `json:"recipe_image,omitempty"`
	Details   []RecipeDetailRequest `json:"details" validate:"required,min=1"`
}

// RecipeDetailResponse detalle persistido.
type RecipeDetailResponse struct {
	ID                 string `json:"id"`
	MedicationID       string `json:"medication_id"`
	PrescribedQuantity int64  `json:"prescribed_quantity"`
	Dosage             string `json:"dosage"`
}

// RecipeResponse receta con sus detalles.
type RecipeResponse struct {
	ID        string                 `json:"id"`
	ClientID  string                 `json:"client_id"`
	Doctor    string                 `json:"doctor"`
	Validated bool                   `json:"validated"`
	IssuedAt  time.Time              `json:"issued_at"`
	CreatedAt time.Time              `json:"created_at"`
	Details   []RecipeDetailResponse `json:"details,omitempty"`
}
