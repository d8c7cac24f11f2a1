package dto

import "time"

// RegisterClientRequest body para POST /api/auth/register/client.
type RegisterClientRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"omitempty,max=100"`
	DNI             string `json:"dni" validate:"required,max=20"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
	BirthDate       string `json:"birth_date,omitempty"` // YYYY-MM-DD
	HealthInsurance string `json:"health_insurance,omitempty"`
}

// RegisterPharmacyRequest body para POST /api/auth/register/pharmacy.
type RegisterPharmacyRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	FirstName string   `json:"first_name" validate:"required,max=100"`
	LastName  string   `json:"last_name" validate:"omitempty,max=100"`
	TradeName string   `json:"trade_name" validate:"required,max=150"`
	CUIT      string   `json:"cuit" validate:"required,max=20"`
	Phone     string   `json:"phone,omitempty"`
	Address   string   `json:"address,omitempty"`
	OpensAt   string   `json:"opens_at,omitempty"`  // HH:MM
	ClosesAt  string   `json:"closes_at,omitempty"` // HH:MM
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// LoginRequest body para POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse identidad base en respuestas (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileResponse perfil completo: campos base más los de la variante.
type ProfileResponse struct {
	UserResponse
	// Cliente
	DNI             string `json:"dni,omitempty"`
	BirthDate       string `json:"birth_date,omitempty"`
	HealthInsurance string `json:"health_insurance,omitempty"`
	// Farmacia
	TradeName string   `json:"trade_name,omitempty"`
	CUIT      string   `json:"cuit,omitempty"`
	OpensAt   string   `json:"opens_at,omitempty"`
	ClosesAt  string   `json:"closes_at,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// UpdateProfileRequest body para PUT /api/users/profile. Solo campos base.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// LoginResponse salida con token JWT y la variante autenticada.
type LoginResponse struct {
	Token    string       `json:"access_token"`
	Type     string       `json:"token_type"`
	UserID   string       `json:"user_id"`
	UserRole string       `json:"user_type"`
	User     UserResponse `json:"user"`
}
