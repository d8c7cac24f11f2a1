package order

import (
	"context"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD. Las
// transiciones de estado con reversión de stock (cancelar, devolver) deben
// aplicarse como unidad atómica: estado nuevo y reposición juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
