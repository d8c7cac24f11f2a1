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

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de pedidos.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// recipe_id es UUID nullable: sin el cast a text, COALESCE resuelve el literal
// '' como uuid y Postgres rechaza la cadena vacía (22P02).
const orderColumns = `
	id, client_id, pharmacy_id, status, payment_method, total,
	COALESCE(recipe_id::text, ''), created_at`

// Create inserta la cabecera del pedido.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (id, client_id, pharmacy_id, status, payment_method, total, recipe_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.ClientID, order.PharmacyID, order.Status,
		order.PaymentMethod, order.Total, nullIfEmpty(order.RecipeID), order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// CreateLine inserta una línea del pedido.
func (r *OrderRepo) CreateLine(line *entity.OrderLine) error {
	query := `
		INSERT INTO order_lines (id, order_id, medication_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.OrderID, line.MedicationID, line.Quantity, line.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("create order line: %w", err)
	}
	return nil
}

// GetByID busca la cabecera del pedido.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate busca la cabecera y bloquea la fila para serializar
// transiciones de estado concurrentes.
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetLinesByOrderID devuelve las líneas del pedido.
func (r *OrderRepo) GetLinesByOrderID(orderID string) ([]*entity.OrderLine, error) {
	query := `
		SELECT id, order_id, medication_id, quantity, unit_price
		FROM order_lines WHERE order_id = $1
		ORDER BY medication_id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()

	var result []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MedicationID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		result = append(result, &l)
	}
	return result, rows.Err()
}

// ListByClient historial de pedidos de un cliente, más reciente primero.
func (r *OrderRepo) ListByClient(clientID string) ([]*entity.Order, error) {
	return r.list("client_id = $1", clientID)
}

// ListByPharmacy pedidos recibidos por una farmacia, más reciente primero.
func (r *OrderRepo) ListByPharmacy(pharmacyID string) ([]*entity.Order, error) {
	return r.list("pharmacy_id = $1", pharmacyID)
}

func (r *OrderRepo) list(cond string, arg any) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + cond + ` ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, arg)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var result []*entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.ClientID, &o.PharmacyID, &o.Status,
			&o.PaymentMethod, &o.Total, &o.RecipeID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		result = append(result, &o)
	}
	return result, rows.Err()
}

// UpdateStatus cambia el estado de la cabecera.
func (r *OrderRepo) UpdateStatus(id, status string) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateReturn registra la devolución de un pedido.
func (r *OrderRepo) CreateReturn(ret *entity.OrderReturn) error {
	query := `
		INSERT INTO order_returns (id, order_id, reason, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query,
		ret.ID, ret.OrderID, nullIfEmpty(ret.Reason), ret.CreatedAt)
	if err != nil {
		return fmt.Errorf("create order return: %w", err)
	}
	return nil
}

// Delete borra el pedido: devoluciones, líneas y al final la cabecera. La
// cascada es responsabilidad de la aplicación, no del esquema; debe ejecutarse
// con un Querier atado a una transacción.
func (r *OrderRepo) Delete(id string) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM order_returns WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order returns: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) scanOne(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.ClientID, &o.PharmacyID, &o.Status,
		&o.PaymentMethod, &o.Total, &o.RecipeID, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}
