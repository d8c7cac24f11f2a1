package checkout

import (
	"context"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del checkout: o se
// persisten el pedido, sus líneas y todos los descuentos de stock, o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
