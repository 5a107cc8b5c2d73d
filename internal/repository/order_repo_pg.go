package repository

import (
	"context"
	"errors"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, orderStatus domain.OrderStatus, paymentStatus domain.PaymentStatus) error
}

type PGOrderRepository struct {
	db Querier
}

func NewOrderRepository(db Querier) OrderRepository {
	return &PGOrderRepository{db: db}
}

func (r *PGOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT id, order_no, user_id, total_amount_cents, currency, order_status, payment_status, contact_name, contact_phone, contact_email, created_at, updated_at FROM orders WHERE id=$1`, id)
	var o domain.Order
	if err := row.Scan(&o.ID, &o.OrderNo, &o.UserID, &o.TotalAmountCents, &o.Currency, &o.OrderStatus, &o.PaymentStatus, &o.ContactName, &o.ContactPhone, &o.ContactEmail, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGOrderRepository) UpdateStatus(ctx context.Context, id int64, orderStatus domain.OrderStatus, paymentStatus domain.PaymentStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE orders SET order_status=$1, payment_status=$2, updated_at=now() WHERE id=$3`, orderStatus, paymentStatus, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

var _ OrderRepository = (*PGOrderRepository)(nil)
