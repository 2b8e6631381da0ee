package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository создаёт PostgreSQL-реализацию PaymentRepository.
func NewPaymentRepository(store *Store) domain.PaymentRepository {
	return &paymentRepository{db: store.DB()}
}

func (r *paymentRepository) Create(payment domain.Payment) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (
			id, order_id, amount_centavos, paid_at, method_id, status, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		payment.ID,
		payment.OrderID,
		payment.AmountCentavos,
		nullableTime(payment.PaidAt),
		payment.MethodID,
		string(payment.Status),
		payment.Version,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVersionConflict
		}
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByOrder(orderID string) (domain.Payment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		payment domain.Payment
		status  string
		paidAt  sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, amount_centavos, paid_at, method_id, status, version, created_at, updated_at
		FROM payments
		WHERE order_id = $1
	`, orderID).Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.AmountCentavos,
		&paidAt,
		&payment.MethodID,
		&status,
		&payment.Version,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Payment{}, domain.ErrPaymentNotFound
		}
		return domain.Payment{}, fmt.Errorf("select payment: %w", err)
	}

	payment.Status = domain.PaymentStatus(status)
	if paidAt.Valid {
		payment.PaidAt = paidAt.Time.UTC()
	}

	return payment, nil
}

func (r *paymentRepository) Save(payment domain.Payment) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET amount_centavos = $1,
		    paid_at = $2,
		    method_id = $3,
		    status = $4,
		    version = version + 1,
		    updated_at = $5
		WHERE id = $6
		  AND version = $7
	`,
		payment.AmountCentavos,
		nullableTime(payment.PaidAt),
		payment.MethodID,
		string(payment.Status),
		payment.UpdatedAt,
		payment.ID,
		payment.Version,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.paymentExists(ctx, payment.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrPaymentNotFound
		}
		return domain.ErrVersionConflict
	}

	return nil
}

func (r *paymentRepository) paymentExists(ctx context.Context, id string) (bool, error) {
	var got string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM payments WHERE id = $1`, id).Scan(&got)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check payment exists: %w", err)
}

// nullableTime превращает нулевое время в NULL, чтобы отличать
// "даты оплаты нет" от какой-либо конкретной даты.
func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

var _ domain.PaymentRepository = (*paymentRepository)(nil)
