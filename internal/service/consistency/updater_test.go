package consistency

import (
	"context"
	"testing"
	"time"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/dkrylova/aftersale/internal/repository"
	"github.com/stretchr/testify/assert"
)

// memStore is an in-memory repository.Store with just enough behavior to
// observe segment flips, the order cascade and ledger appends.
type memStore struct {
	orders   map[int64]*domain.Order
	segments map[int64]*domain.FlightSegment
	ledger   []domain.FeeLedgerEntry
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		orders:   make(map[int64]*domain.Order),
		segments: make(map[int64]*domain.FlightSegment),
		nextID:   1000,
	}
}

type memOrders struct{ s *memStore }

func (r memOrders) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (r memOrders) UpdateStatus(_ context.Context, id int64, orderStatus domain.OrderStatus, paymentStatus domain.PaymentStatus) error {
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.OrderStatus = orderStatus
	o.PaymentStatus = paymentStatus
	return nil
}

type memSegments struct{ s *memStore }

func (r memSegments) GetByID(_ context.Context, id int64) (*domain.FlightSegment, error) {
	seg, ok := r.s.segments[id]
	if !ok {
		return nil, domain.ErrSegmentNotFound
	}
	copied := *seg
	return &copied, nil
}

func (r memSegments) ListByOrder(_ context.Context, orderID int64) ([]domain.FlightSegment, error) {
	out := make([]domain.FlightSegment, 0)
	for _, seg := range r.s.segments {
		if seg.OrderID == orderID {
			out = append(out, *seg)
		}
	}
	return out, nil
}

func (r memSegments) UpdateStatus(_ context.Context, id int64, status domain.SegmentStatus) error {
	seg, ok := r.s.segments[id]
	if !ok {
		return domain.ErrSegmentNotFound
	}
	seg.Status = status
	return nil
}

func (r memSegments) Create(_ context.Context, segment *domain.FlightSegment) error {
	r.s.nextID++
	segment.ID = r.s.nextID
	copied := *segment
	r.s.segments[segment.ID] = &copied
	return nil
}

type memLedger struct{ s *memStore }

func (r memLedger) Append(_ context.Context, entry *domain.FeeLedgerEntry) error {
	r.s.ledger = append(r.s.ledger, *entry)
	return nil
}

func (r memLedger) ListByOrder(_ context.Context, orderID int64) ([]domain.FeeLedgerEntry, error) {
	out := make([]domain.FeeLedgerEntry, 0)
	for _, e := range r.s.ledger {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memLedger) TicketPrice(_ context.Context, orderID, passengerID int64) (int64, error) {
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		e := r.s.ledger[i]
		if e.OrderID == orderID && e.PassengerID == passengerID && e.FeeType == domain.FeeTypeTicketPrice {
			return e.AmountCents, nil
		}
	}
	return 0, domain.ErrFareUnavailable
}

func (s *memStore) Orders() repository.OrderRepository             { return memOrders{s} }
func (s *memStore) Passengers() repository.PassengerRepository     { return nil }
func (s *memStore) Segments() repository.SegmentRepository         { return memSegments{s} }
func (s *memStore) Applications() repository.ApplicationRepository { return nil }
func (s *memStore) Policies() repository.PolicyRepository          { return nil }
func (s *memStore) OperationLogs() repository.OperationLogRepository {
	return nil
}
func (s *memStore) FeeLedger() repository.FeeLedgerRepository { return memLedger{s} }

var _ repository.Store = (*memStore)(nil)

func seedOrderWithTwoSegments(s *memStore) {
	s.orders[1] = &domain.Order{
		ID:            1,
		OrderNo:       "ORD-1",
		OrderStatus:   domain.OrderStatusTicketed,
		PaymentStatus: domain.PaymentStatusPaid,
		Currency:      "CNY",
	}
	s.segments[10] = &domain.FlightSegment{ID: 10, OrderID: 1, PassengerID: 5, Status: domain.SegmentStatusNormal}
	s.segments[11] = &domain.FlightSegment{ID: 11, OrderID: 1, PassengerID: 5, Status: domain.SegmentStatusNormal}
}

func refundApp(segmentID int64) *domain.ChangeApplication {
	return &domain.ChangeApplication{
		ID:             100,
		Kind:           domain.ApplicationKindRefund,
		OrderID:        1,
		PassengerID:    5,
		SegmentID:      segmentID,
		FareCents:      250000,
		FeeCents:       25000,
		NetAmountCents: 225000,
		Currency:       "CNY",
	}
}

func TestUpdater_RefundLeavesOrderUntilAllSegmentsRefunded(t *testing.T) {
	store := newMemStore()
	seedOrderWithTwoSegments(store)
	updater := NewUpdater()
	ctx := context.Background()

	err := updater.OnApplicationCompleted(ctx, store, refundApp(10))

	assert.NoError(t, err)
	assert.Equal(t, domain.SegmentStatusRefunded, store.segments[10].Status)
	assert.Equal(t, domain.SegmentStatusNormal, store.segments[11].Status)
	assert.Equal(t, domain.OrderStatusTicketed, store.orders[1].OrderStatus)
	assert.Equal(t, domain.PaymentStatusPartiallyRefunded, store.orders[1].PaymentStatus)
}

func TestUpdater_LastRefundCancelsOrder(t *testing.T) {
	store := newMemStore()
	seedOrderWithTwoSegments(store)
	updater := NewUpdater()
	ctx := context.Background()

	assert.NoError(t, updater.OnApplicationCompleted(ctx, store, refundApp(10)))
	assert.NoError(t, updater.OnApplicationCompleted(ctx, store, refundApp(11)))

	assert.Equal(t, domain.SegmentStatusRefunded, store.segments[10].Status)
	assert.Equal(t, domain.SegmentStatusRefunded, store.segments[11].Status)
	assert.Equal(t, domain.OrderStatusCancelled, store.orders[1].OrderStatus)
	assert.Equal(t, domain.PaymentStatusFullyRefunded, store.orders[1].PaymentStatus)
}

func TestUpdater_RefundAppendsLedgerRows(t *testing.T) {
	store := newMemStore()
	seedOrderWithTwoSegments(store)
	updater := NewUpdater()

	err := updater.OnApplicationCompleted(context.Background(), store, refundApp(10))

	assert.NoError(t, err)
	assert.Len(t, store.ledger, 2)
	assert.Equal(t, domain.FeeTypeRefundFee, store.ledger[0].FeeType)
	assert.Equal(t, int64(25000), store.ledger[0].AmountCents)
	assert.Equal(t, domain.FeeTypeRefundPayout, store.ledger[1].FeeType)
	assert.Equal(t, int64(225000), store.ledger[1].AmountCents)
}

func TestUpdater_RebookingCreatesReplacementSegment(t *testing.T) {
	store := newMemStore()
	seedOrderWithTwoSegments(store)
	updater := NewUpdater()
	ctx := context.Background()

	departure := time.Date(2026, 10, 1, 10, 30, 0, 0, time.UTC)
	app := &domain.ChangeApplication{
		ID:              101,
		Kind:            domain.ApplicationKindRebooking,
		OrderID:         1,
		PassengerID:     5,
		SegmentID:       10,
		FareCents:       250000,
		FeeCents:        20000,
		ServiceFeeCents: 5000,
		NetAmountCents:  155000,
		Currency:        "CNY",
		NewFlight: &domain.NewFlight{
			AirlineCode:          "CA",
			FlightNo:             "CA987",
			DepartureAirportCode: "PVG",
			ArrivalAirportCode:   "LAX",
			DepartureTime:        departure,
			ArrivalTime:          departure.Add(12 * time.Hour),
			CabinClass:           "ECONOMY",
			FareCents:            380000,
		},
	}

	err := updater.OnApplicationCompleted(ctx, store, app)

	assert.NoError(t, err)
	assert.Equal(t, domain.SegmentStatusRebooked, store.segments[10].Status)

	var created *domain.FlightSegment
	for _, seg := range store.segments {
		if seg.FlightNo == "CA987" {
			created = seg
		}
	}
	if assert.NotNil(t, created) {
		assert.Equal(t, domain.SegmentStatusNormal, created.Status)
		assert.Equal(t, int64(1), created.OrderID)
		assert.Equal(t, int64(5), created.PassengerID)
		assert.Equal(t, int64(380000), created.FareCents)
	}

	// Order itself is untouched by a rebooking.
	assert.Equal(t, domain.OrderStatusTicketed, store.orders[1].OrderStatus)
	assert.Len(t, store.ledger, 3)
}

func TestUpdater_RebookingWithoutNewFlightFails(t *testing.T) {
	store := newMemStore()
	seedOrderWithTwoSegments(store)
	updater := NewUpdater()

	app := refundApp(10)
	app.Kind = domain.ApplicationKindRebooking

	err := updater.OnApplicationCompleted(context.Background(), store, app)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdater_UnknownKindFails(t *testing.T) {
	store := newMemStore()
	seedOrderWithTwoSegments(store)
	updater := NewUpdater()

	app := refundApp(10)
	app.Kind = "EXCHANGE"

	err := updater.OnApplicationCompleted(context.Background(), store, app)

	assert.ErrorIs(t, err, domain.ErrValidation)
}
