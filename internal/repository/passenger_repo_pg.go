package repository

import (
	"context"
	"errors"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/jackc/pgx/v5"
)

type PassengerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	ListByOrder(ctx context.Context, orderID int64) ([]domain.Passenger, error)
}

type PGPassengerRepository struct {
	db Querier
}

func NewPassengerRepository(db Querier) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

func (r *PGPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	row := r.db.QueryRow(ctx, `SELECT id, order_id, full_name, document_type, document_no, phone, created_at FROM passengers WHERE id=$1`, id)
	var p domain.Passenger
	if err := row.Scan(&p.ID, &p.OrderID, &p.FullName, &p.DocumentType, &p.DocumentNo, &p.Phone, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPassengerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGPassengerRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, order_id, full_name, document_type, document_no, phone, created_at FROM passengers WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.OrderID, &p.FullName, &p.DocumentType, &p.DocumentNo, &p.Phone, &p.CreatedAt); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
