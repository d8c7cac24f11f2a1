package repository

import "github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"

// OrderRepository puerto de persistencia para Order, sus líneas y devoluciones.
// El Order es dueño exclusivo de sus OrderLines: Delete borra primero las
// líneas y después la cabecera (cascada explícita en la aplicación, no en el
// esquema).
type OrderRepository interface {
	Create(order *entity.Order) error
	CreateLine(line *entity.OrderLine) error
	GetByID(id string) (*entity.Order, error)
	// GetForUpdate bloquea la cabecera para serializar transiciones de estado
	// concurrentes sobre el mismo pedido.
	GetForUpdate(id string) (*entity.Order, error)
	GetLinesByOrderID(orderID string) ([]*entity.OrderLine, error)
	ListByClient(clientID string) ([]*entity.Order, error)
	ListByPharmacy(pharmacyID string) ([]*entity.Order, error)
	UpdateStatus(id, status string) error
	CreateReturn(ret *entity.OrderReturn) error
	Delete(id string) error
}
