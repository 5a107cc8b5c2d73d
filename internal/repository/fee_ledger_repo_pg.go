package repository

import (
	"context"
	"errors"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/jackc/pgx/v5"
)

type FeeLedgerRepository interface {
	Append(ctx context.Context, entry *domain.FeeLedgerEntry) error
	ListByOrder(ctx context.Context, orderID int64) ([]domain.FeeLedgerEntry, error)
	// TicketPrice returns the recorded fare for one passenger of an order.
	// Absence is domain.ErrFareUnavailable; the engine never substitutes a
	// default fare.
	TicketPrice(ctx context.Context, orderID, passengerID int64) (int64, error)
}

type PGFeeLedgerRepository struct {
	db Querier
}

func NewFeeLedgerRepository(db Querier) FeeLedgerRepository {
	return &PGFeeLedgerRepository{db: db}
}

func (r *PGFeeLedgerRepository) Append(ctx context.Context, entry *domain.FeeLedgerEntry) error {
	return r.db.QueryRow(ctx, `INSERT INTO order_fees (order_id, passenger_id, fee_type, amount_cents, currency, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		entry.OrderID, entry.PassengerID, entry.FeeType, entry.AmountCents, entry.Currency, entry.Description).
		Scan(&entry.ID, &entry.CreatedAt)
}

func (r *PGFeeLedgerRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.FeeLedgerEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, order_id, passenger_id, fee_type, amount_cents, currency, description, created_at
		FROM order_fees WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.FeeLedgerEntry, 0)
	for rows.Next() {
		var e domain.FeeLedgerEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.PassengerID, &e.FeeType, &e.AmountCents, &e.Currency, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PGFeeLedgerRepository) TicketPrice(ctx context.Context, orderID, passengerID int64) (int64, error) {
	var amount int64
	err := r.db.QueryRow(ctx, `SELECT amount_cents FROM order_fees WHERE order_id=$1 AND passenger_id=$2 AND fee_type=$3 ORDER BY id DESC LIMIT 1`,
		orderID, passengerID, domain.FeeTypeTicketPrice).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrFareUnavailable
		}
		return 0, err
	}
	return amount, nil
}

var _ FeeLedgerRepository = (*PGFeeLedgerRepository)(nil)
