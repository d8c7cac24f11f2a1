package repository

import "github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"

// UserRepository puerto de persistencia para la identidad base y sus variantes.
type UserRepository interface {
	CreateClient(client *entity.Client) error
	CreatePharmacy(pharmacy *entity.Pharmacy) error
	// FindByEmail devuelve la variante concreta (Client o Pharmacy) como Principal.
	FindByEmail(email string) (entity.Principal, error)
	FindByID(id string) (entity.Principal, error)
	GetClientByID(id string) (*entity.Client, error)
	GetPharmacyByID(id string) (*entity.Pharmacy, error)
	UpdateProfile(userID string, fields map[string]string) error
}
