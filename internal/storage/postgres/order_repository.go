package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

const (
	orderColumns = "id, customer_id, status, total_centavos, version, created_at, updated_at"

	orderInsertSQL = `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`

	orderItemInsertSQL = `
		INSERT INTO order_items (id, order_id, service_id, service_name, qty, price_centavos, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`

	orderSelectSQL = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1`

	orderListSQL = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC`

	// Версия в WHERE реализует оптимистичную блокировку: два кассира,
	// одновременно меняющие один заказ, не затирают правки друг друга.
	orderUpdateSQL = `
		UPDATE orders
		SET customer_id = $1, status = $2, total_centavos = $3,
		    version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6`

	orderItemsSQL = `
		SELECT id, service_id, service_name, qty, price_centavos, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC`
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// Create сохраняет заказ вместе с позициями в одной транзакции.
func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, orderInsertSQL,
		order.ID, order.CustomerID, string(order.Status), order.TotalCentavos,
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVersionConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		if _, err = tx.ExecContext(ctx, orderItemInsertSQL,
			item.ID, order.ID, item.ServiceID, item.ServiceName,
			item.Qty, item.PriceCentavos, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	order, err := scanOrder(r.db.QueryRowContext(ctx, orderSelectSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	if err := r.attachItems(ctx, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *orderRepository) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, orderListSQL+" LIMIT $2", customerID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, orderListSQL, customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		if err := r.attachItems(ctx, &order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

// Save обновляет заказ, только если версия в базе совпадает с той, что
// читал вызывающий. Нулевое число затронутых строк означает либо чужую
// параллельную правку, либо удалённый заказ; различаем их отдельным чтением.
func (r *orderRepository) Save(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, orderUpdateSQL,
		order.CustomerID, string(order.Status), order.TotalCentavos,
		order.UpdatedAt, order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var existingID string
		scanErr := tx.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1`, order.ID).Scan(&existingID)
		switch {
		case errors.Is(scanErr, sql.ErrNoRows):
			return domain.ErrOrderNotFound
		case scanErr != nil:
			return fmt.Errorf("check order exists: %w", scanErr)
		default:
			return domain.ErrVersionConflict
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save order: %w", err)
	}

	return nil
}

// rowScanner покрывает и QueryRow, и Rows, чтобы чтение заказа было одним кодом.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var order domain.Order
	var status string
	if err := row.Scan(
		&order.ID, &order.CustomerID, &status, &order.TotalCentavos,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}

func (r *orderRepository) attachItems(ctx context.Context, order *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, orderItemsSQL, order.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.ServiceID, &item.ServiceName, &item.Qty, &item.PriceCentavos, &item.CreatedAt); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order items: %w", err)
	}

	order.Items = items
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
