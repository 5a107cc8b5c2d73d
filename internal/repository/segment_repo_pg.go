package repository

import (
	"context"
	"errors"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/jackc/pgx/v5"
)

type SegmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.FlightSegment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]domain.FlightSegment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.SegmentStatus) error
	Create(ctx context.Context, segment *domain.FlightSegment) error
}

type PGSegmentRepository struct {
	db Querier
}

func NewSegmentRepository(db Querier) SegmentRepository {
	return &PGSegmentRepository{db: db}
}

const segmentColumns = `id, order_id, passenger_id, airline_code, flight_no, departure_airport_code, arrival_airport_code, departure_time, arrival_time, cabin_class, ticket_no, fare_cents, status, created_at, updated_at`

func scanSegment(row pgx.Row, s *domain.FlightSegment) error {
	return row.Scan(&s.ID, &s.OrderID, &s.PassengerID, &s.AirlineCode, &s.FlightNo, &s.DepartureAirportCode, &s.ArrivalAirportCode, &s.DepartureTime, &s.ArrivalTime, &s.CabinClass, &s.TicketNo, &s.FareCents, &s.Status, &s.CreatedAt, &s.UpdatedAt)
}

func (r *PGSegmentRepository) GetByID(ctx context.Context, id int64) (*domain.FlightSegment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+segmentColumns+` FROM flight_segments WHERE id=$1`, id)
	var s domain.FlightSegment
	if err := scanSegment(row, &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSegmentNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGSegmentRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.FlightSegment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+segmentColumns+` FROM flight_segments WHERE order_id=$1 ORDER BY departure_time`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	segments := make([]domain.FlightSegment, 0)
	for rows.Next() {
		var s domain.FlightSegment
		if err := scanSegment(rows, &s); err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	return segments, rows.Err()
}

func (r *PGSegmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.SegmentStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE flight_segments SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSegmentNotFound
	}
	return nil
}

func (r *PGSegmentRepository) Create(ctx context.Context, segment *domain.FlightSegment) error {
	return r.db.QueryRow(ctx, `INSERT INTO flight_segments (order_id, passenger_id, airline_code, flight_no, departure_airport_code, arrival_airport_code, departure_time, arrival_time, cabin_class, ticket_no, fare_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		segment.OrderID, segment.PassengerID, segment.AirlineCode, segment.FlightNo, segment.DepartureAirportCode, segment.ArrivalAirportCode, segment.DepartureTime, segment.ArrivalTime, segment.CabinClass, segment.TicketNo, segment.FareCents, segment.Status).
		Scan(&segment.ID, &segment.CreatedAt, &segment.UpdatedAt)
}

var _ SegmentRepository = (*PGSegmentRepository)(nil)
