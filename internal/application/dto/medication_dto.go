package dto

// CreateMedicationRequest body para POST /api/medications.
type CreateMedicationRequest struct {
	CommercialName       string `json:"commercial_name" validate:"required,max=150"`
	ActiveIngredient     string `json:"active_ingredient" validate:"required,max=150"`
	Presentation         string `json:"presentation" validate:"required,max=150"`
	RequiresPrescription bool   `json:"requires_prescription"`
	Laboratory           string `json:"laboratory" validate:"required,max=100"`
	Category             string `json:"category" validate:"required,max=100"`
}

// MedicationResponse salida de un medicamento del catálogo.
type MedicationResponse struct {
	ID                   string `json:"id"`
	CommercialName       string `json:"commercial_name"`
	ActiveIngredient     string `json:"active_ingredient"`
	Presentation         string `json:"presentation"`
	RequiresPrescription bool   `json:"requires_prescription"`
	Laboratory           string `json:"laboratory"`
	Category             string `json:"category"`
}

// PharmacyAvailabilityResponse una farmacia que tiene stock de un medicamento.
type PharmacyAvailabilityResponse struct {
	PharmacyID string   `json:"pharmacy_id"`
	TradeName  string   `json:"trade_name"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Price      string   `json:"price"`
	Available  int64    `json:"available"`
}
