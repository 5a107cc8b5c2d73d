package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/jackc/pgx/v5"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.ChangeApplication) error
	GetByID(ctx context.Context, id int64) (*domain.ChangeApplication, error)
	// HasOpen reports whether a PENDING or APPROVED application already
	// exists for the (order, passenger, segment) triple.
	HasOpen(ctx context.Context, orderID, passengerID, segmentID int64) (bool, error)
	// Decide moves a PENDING application to its decision outcome. The status
	// guard is part of the UPDATE, so a concurrent decision cannot be
	// overwritten; false means no PENDING row matched.
	Decide(ctx context.Context, id int64, status domain.ApplicationStatus, approver string, approvedAt time.Time, remarks string) (bool, error)
	// Transition is a compare-and-set on the status column. False means the
	// row was not in the expected state; the caller re-reads to tell a
	// harmless retry from a conflict.
	Transition(ctx context.Context, id int64, from, to domain.ApplicationStatus, remark string) (bool, error)
	ListByOrder(ctx context.Context, orderID int64) ([]domain.ChangeApplication, error)
}

type PGApplicationRepository struct {
	db Querier
}

func NewApplicationRepository(db Querier) ApplicationRepository {
	return &PGApplicationRepository{db: db}
}

const applicationColumns = `id, app_no, kind, change_kind, order_id, order_no, passenger_id, passenger_name, segment_id, fare_cents, fee_cents, service_fee_cents, fare_difference_cents, net_amount_cents, currency, reason, status, approver, approved_at, remarks, new_flight, created_at, updated_at`

func scanApplication(row pgx.Row) (*domain.ChangeApplication, error) {
	var a domain.ChangeApplication
	var newFlight []byte
	if err := row.Scan(&a.ID, &a.AppNo, &a.Kind, &a.ChangeKind, &a.OrderID, &a.OrderNo, &a.PassengerID, &a.PassengerName, &a.SegmentID,
		&a.FareCents, &a.FeeCents, &a.ServiceFeeCents, &a.FareDifferenceCents, &a.NetAmountCents, &a.Currency,
		&a.Reason, &a.Status, &a.Approver, &a.ApprovedAt, &a.Remarks, &newFlight, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if len(newFlight) > 0 {
		var nf domain.NewFlight
		if err := json.Unmarshal(newFlight, &nf); err != nil {
			return nil, err
		}
		a.NewFlight = &nf
	}
	return &a, nil
}

func (r *PGApplicationRepository) Create(ctx context.Context, app *domain.ChangeApplication) error {
	var newFlight []byte
	if app.NewFlight != nil {
		data, err := json.Marshal(app.NewFlight)
		if err != nil {
			return err
		}
		newFlight = data
	}
	app.Status = domain.ApplicationStatusPending
	return r.db.QueryRow(ctx, `INSERT INTO change_applications (app_no, kind, change_kind, order_id, order_no, passenger_id, passenger_name, segment_id, fare_cents, fee_cents, service_fee_cents, fare_difference_cents, net_amount_cents, currency, reason, status, new_flight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`,
		app.AppNo, app.Kind, app.ChangeKind, app.OrderID, app.OrderNo, app.PassengerID, app.PassengerName, app.SegmentID,
		app.FareCents, app.FeeCents, app.ServiceFeeCents, app.FareDifferenceCents, app.NetAmountCents, app.Currency,
		app.Reason, app.Status, newFlight).
		Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
}

func (r *PGApplicationRepository) GetByID(ctx context.Context, id int64) (*domain.ChangeApplication, error) {
	row := r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM change_applications WHERE id=$1`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *PGApplicationRepository) HasOpen(ctx context.Context, orderID, passengerID, segmentID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM change_applications WHERE order_id=$1 AND passenger_id=$2 AND segment_id=$3 AND status IN ($4, $5))`,
		orderID, passengerID, segmentID, domain.ApplicationStatusPending, domain.ApplicationStatusApproved).Scan(&exists)
	return exists, err
}

func (r *PGApplicationRepository) Decide(ctx context.Context, id int64, status domain.ApplicationStatus, approver string, approvedAt time.Time, remarks string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE change_applications SET status=$1, approver=$2, approved_at=$3, remarks=$4, updated_at=now() WHERE id=$5 AND status=$6`,
		status, approver, approvedAt, remarks, id, domain.ApplicationStatusPending)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGApplicationRepository) Transition(ctx context.Context, id int64, from, to domain.ApplicationStatus, remark string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE change_applications SET status=$1, remarks=COALESCE(NULLIF($2, ''), remarks), updated_at=now() WHERE id=$3 AND status=$4`,
		to, remark, id, from)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGApplicationRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.ChangeApplication, error) {
	rows, err := r.db.Query(ctx, `SELECT `+applicationColumns+` FROM change_applications WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]domain.ChangeApplication, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

var _ ApplicationRepository = (*PGApplicationRepository)(nil)
