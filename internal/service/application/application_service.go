package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/dkrylova/aftersale/internal/kafka"
	"github.com/dkrylova/aftersale/internal/repository"
	"github.com/dkrylova/aftersale/internal/service/fee"
	"github.com/dkrylova/aftersale/internal/service/policy"
	"github.com/google/uuid"
)

// errTransitionApplied aborts the execute transaction when a concurrent call
// already completed the application; the caller reports a no-op success.
var errTransitionApplied = errors.New("transition already applied")

type ApplicationUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*domain.ChangeApplication, error)
	Approve(ctx context.Context, id int64, approved bool, actor domain.Actor, remarks string) error
	Execute(ctx context.Context, id int64, actor domain.Actor) error
	Cancel(ctx context.Context, id int64, actor domain.Actor, reason string) error
	Get(ctx context.Context, id int64) (*domain.ChangeApplication, error)
	QuoteRefund(ctx context.Context, input QuoteRefundInput) (*fee.Breakdown, error)
	QuoteRebooking(ctx context.Context, input QuoteRebookingInput) (*fee.Quote, error)
	RefundableInfo(ctx context.Context, orderID int64) (*RefundableInfo, error)
}

type Locker interface {
	AcquireSubmitLock(ctx context.Context, orderID, passengerID, segmentID int64, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, orderID, passengerID, segmentID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

type PolicyResolver interface {
	Resolve(ctx context.Context, key policy.Key, asOf time.Time) (*domain.FeePolicy, error)
}

type CompletionUpdater interface {
	OnApplicationCompleted(ctx context.Context, st repository.Store, app *domain.ChangeApplication) error
}

type OperationRecorder interface {
	Record(ctx context.Context, applicationID int64, op domain.Operation, before, after *domain.ChangeApplication, actor domain.Actor, remark string)
}

type Service struct {
	store    repository.Store
	tx       repository.Transactor
	locker   Locker
	resolver PolicyResolver
	updater  CompletionUpdater
	recorder OperationRecorder
	producer Producer

	applicationsTopic  string
	notificationsTopic string
	serviceFeeCents    int64
	lockTTL            time.Duration
	now                func() time.Time
}

type SubmitInput struct {
	Kind        domain.ApplicationKind `json:"kind"`
	ChangeKind  domain.ChangeKind      `json:"change_kind"`
	OrderID     int64                  `json:"order_id"`
	PassengerID int64                  `json:"passenger_id"`
	SegmentID   int64                  `json:"segment_id"`
	Reason      string                 `json:"reason"`
	NewFlight   *domain.NewFlight      `json:"new_flight,omitempty"`
	Actor       domain.Actor           `json:"-"`
}

type QuoteRefundInput struct {
	SegmentID   int64             `json:"segment_id"`
	PassengerID int64             `json:"passenger_id"`
	ChangeKind  domain.ChangeKind `json:"change_kind"`
}

type QuoteRebookingInput struct {
	SegmentID    int64             `json:"segment_id"`
	PassengerID  int64             `json:"passenger_id"`
	ChangeKind   domain.ChangeKind `json:"change_kind"`
	NewFareCents int64             `json:"new_fare_cents"`
}

// RefundableInfo lists what an order still allows a post-sale change on.
type RefundableInfo struct {
	Order      *domain.Order
	Passengers []domain.Passenger
	Segments   []domain.FlightSegment
}

type ServiceOption func(*Service)

func WithNotificationsTopic(topic string) ServiceOption {
	return func(s *Service) {
		s.notificationsTopic = topic
	}
}

// WithClock overrides the time source, for deterministic departure checks in
// tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(
	store repository.Store,
	tx repository.Transactor,
	locker Locker,
	resolver PolicyResolver,
	updater CompletionUpdater,
	recorder OperationRecorder,
	producer Producer,
	applicationsTopic string,
	serviceFeeCents int64,
	lockTTL time.Duration,
	opts ...ServiceOption,
) *Service {
	service := &Service{
		store:             store,
		tx:                tx,
		locker:            locker,
		resolver:          resolver,
		updater:           updater,
		recorder:          recorder,
		producer:          producer,
		applicationsTopic: applicationsTopic,
		serviceFeeCents:   serviceFeeCents,
		lockTTL:           lockTTL,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *Service) Submit(ctx context.Context, input SubmitInput) (*domain.ChangeApplication, error) {
	if err := validateSubmit(input); err != nil {
		return nil, err
	}

	order, err := s.store.Orders().GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus != domain.OrderStatusTicketed {
		return nil, fmt.Errorf("%w: order %s is %s", domain.ErrOrderNotRefundable, order.OrderNo, order.OrderStatus)
	}

	passenger, err := s.store.Passengers().GetByID(ctx, input.PassengerID)
	if err != nil {
		return nil, err
	}
	if passenger.OrderID != input.OrderID {
		return nil, fmt.Errorf("%w: passenger %d does not belong to order %d", domain.ErrValidation, input.PassengerID, input.OrderID)
	}

	segment, err := s.store.Segments().GetByID(ctx, input.SegmentID)
	if err != nil {
		return nil, err
	}
	if segment.OrderID != input.OrderID || segment.PassengerID != input.PassengerID {
		return nil, fmt.Errorf("%w: segment %d does not belong to the passenger", domain.ErrValidation, input.SegmentID)
	}

	now := s.now()
	if segment.Status != domain.SegmentStatusNormal {
		return nil, fmt.Errorf("%w: segment %d is %s", domain.ErrSegmentNotActionable, segment.ID, segment.Status)
	}
	if !segment.DepartureTime.After(now) {
		return nil, fmt.Errorf("%w: flight %s departed at %s", domain.ErrAlreadyDeparted, segment.FlightNo, segment.DepartureTime.Format(time.RFC3339))
	}
	if input.Kind == domain.ApplicationKindRebooking && !input.NewFlight.DepartureTime.After(now) {
		return nil, fmt.Errorf("%w: new flight departure is in the past", domain.ErrValidation)
	}

	fareCents, err := s.store.FeeLedger().TicketPrice(ctx, input.OrderID, input.PassengerID)
	if err != nil {
		return nil, err
	}

	// Fees are computed once here and frozen into the application, so a
	// later policy change cannot silently drift them before execution.
	app := &domain.ChangeApplication{
		AppNo:         uuid.NewString(),
		Kind:          input.Kind,
		ChangeKind:    input.ChangeKind,
		OrderID:       order.ID,
		OrderNo:       order.OrderNo,
		PassengerID:   passenger.ID,
		PassengerName: passenger.FullName,
		SegmentID:     segment.ID,
		FareCents:     fareCents,
		Currency:      order.Currency,
		Reason:        input.Reason,
		NewFlight:     input.NewFlight,
	}
	if err := s.price(ctx, app, segment, now); err != nil {
		return nil, err
	}

	locked, err := s.locker.AcquireSubmitLock(ctx, input.OrderID, input.PassengerID, input.SegmentID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, domain.ErrApplicationLocked
	}
	defer func() {
		_ = s.locker.ReleaseSubmitLock(ctx, input.OrderID, input.PassengerID, input.SegmentID)
	}()

	err = s.tx.InTx(ctx, func(st repository.Store) error {
		open, err := st.Applications().HasOpen(ctx, input.OrderID, input.PassengerID, input.SegmentID)
		if err != nil {
			return err
		}
		if open {
			return domain.ErrDuplicateApplication
		}
		return st.Applications().Create(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, app.ID, domain.OperationCreate, nil, app, input.Actor, input.Reason)
	s.publish(ctx, "application_submitted", app, order.ContactEmail)
	return app, nil
}

func (s *Service) Approve(ctx context.Context, id int64, approved bool, actor domain.Actor, remarks string) error {
	app, err := s.store.Applications().GetByID(ctx, id)
	if err != nil {
		return err
	}

	target := domain.ApplicationStatusApproved
	op := domain.OperationApprove
	eventType := "application_approved"
	if !approved {
		target = domain.ApplicationStatusRejected
		op = domain.OperationReject
		eventType = "application_rejected"
	}

	// Retrying an already-applied decision is a no-op success.
	if app.Status == target {
		return nil
	}
	if !app.Status.CanTransition(target) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, app.Status, target)
	}

	decidedAt := s.now()
	applied, err := s.store.Applications().Decide(ctx, id, target, actor.Name, decidedAt, remarks)
	if err != nil {
		return err
	}
	if !applied {
		// Another decision committed between our read and the update. The
		// status guard kept ours out; re-read to tell a harmless retry of
		// the same outcome from a conflicting one.
		current, err := s.store.Applications().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == target {
			return nil
		}
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, current.Status, target)
	}

	after := *app
	after.Status = target
	after.Approver = actor.Name
	after.ApprovedAt = &decidedAt
	after.Remarks = remarks

	s.recorder.Record(ctx, id, op, app, &after, actor, remarks)
	s.publishFor(ctx, eventType, &after)
	return nil
}

func (s *Service) Execute(ctx context.Context, id int64, actor domain.Actor) error {
	app, err := s.store.Applications().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if app.Status == domain.ApplicationStatusCompleted {
		return nil
	}
	if !app.Status.CanTransition(domain.ApplicationStatusCompleted) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, app.Status, domain.ApplicationStatusCompleted)
	}

	// The COMPLETED transition and the order/segment side effects commit as
	// one unit; a failure in either leaves the application APPROVED. The
	// transition is a compare-and-set, so two concurrent executions cannot
	// both run the updater: the loser's UPDATE matches no row and it backs
	// out before touching the order.
	err = s.tx.InTx(ctx, func(st repository.Store) error {
		applied, err := st.Applications().Transition(ctx, id, domain.ApplicationStatusApproved, domain.ApplicationStatusCompleted, "")
		if err != nil {
			return err
		}
		if !applied {
			current, err := st.Applications().GetByID(ctx, id)
			if err != nil {
				return err
			}
			if current.Status == domain.ApplicationStatusCompleted {
				return errTransitionApplied
			}
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, current.Status, domain.ApplicationStatusCompleted)
		}
		return s.updater.OnApplicationCompleted(ctx, st, app)
	})
	if errors.Is(err, errTransitionApplied) {
		return nil
	}
	if err != nil {
		return err
	}

	after := *app
	after.Status = domain.ApplicationStatusCompleted

	s.recorder.Record(ctx, id, domain.OperationExecute, app, &after, actor, "")
	s.publishFor(ctx, "application_executed", &after)
	return nil
}

func (s *Service) Cancel(ctx context.Context, id int64, actor domain.Actor, reason string) error {
	app, err := s.store.Applications().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if app.Status == domain.ApplicationStatusCancelled {
		return nil
	}
	if !app.Status.CanTransition(domain.ApplicationStatusCancelled) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, app.Status, domain.ApplicationStatusCancelled)
	}

	applied, err := s.store.Applications().Transition(ctx, id, domain.ApplicationStatusPending, domain.ApplicationStatusCancelled, reason)
	if err != nil {
		return err
	}
	if !applied {
		current, err := s.store.Applications().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == domain.ApplicationStatusCancelled {
			return nil
		}
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, current.Status, domain.ApplicationStatusCancelled)
	}

	after := *app
	after.Status = domain.ApplicationStatusCancelled

	s.recorder.Record(ctx, id, domain.OperationCancel, app, &after, actor, reason)
	s.publishFor(ctx, "application_cancelled", &after)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.ChangeApplication, error) {
	return s.store.Applications().GetByID(ctx, id)
}

func (s *Service) QuoteRefund(ctx context.Context, input QuoteRefundInput) (*fee.Breakdown, error) {
	segment, err := s.store.Segments().GetByID(ctx, input.SegmentID)
	if err != nil {
		return nil, err
	}

	fareCents, err := s.store.FeeLedger().TicketPrice(ctx, segment.OrderID, input.PassengerID)
	if err != nil {
		return nil, err
	}

	p, err := s.resolver.Resolve(ctx, policyKey(segment, domain.ApplicationKindRefund, input.ChangeKind), s.now())
	if err != nil {
		return nil, err
	}

	breakdown, err := fee.Calculate(fareCents, p)
	if err != nil {
		return nil, err
	}
	return &breakdown, nil
}

func (s *Service) QuoteRebooking(ctx context.Context, input QuoteRebookingInput) (*fee.Quote, error) {
	segment, err := s.store.Segments().GetByID(ctx, input.SegmentID)
	if err != nil {
		return nil, err
	}

	fareCents, err := s.store.FeeLedger().TicketPrice(ctx, segment.OrderID, input.PassengerID)
	if err != nil {
		return nil, err
	}

	p, err := s.resolver.Resolve(ctx, policyKey(segment, domain.ApplicationKindRebooking, input.ChangeKind), s.now())
	if err != nil {
		return nil, err
	}

	breakdown, err := fee.Calculate(fareCents, p)
	if err != nil {
		return nil, err
	}

	quote, err := fee.RebookingQuote(fareCents, input.NewFareCents, breakdown.FeeCents, s.serviceFeeCents)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (s *Service) RefundableInfo(ctx context.Context, orderID int64) (*RefundableInfo, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus != domain.OrderStatusTicketed {
		return nil, fmt.Errorf("%w: order %s is %s", domain.ErrOrderNotRefundable, order.OrderNo, order.OrderStatus)
	}

	passengers, err := s.store.Passengers().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	segments, err := s.store.Segments().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	actionable := make([]domain.FlightSegment, 0, len(segments))
	for _, seg := range segments {
		if seg.Actionable(now) {
			actionable = append(actionable, seg)
		}
	}

	return &RefundableInfo{Order: order, Passengers: passengers, Segments: actionable}, nil
}

// price resolves the policy for the segment and freezes the monetary fields.
func (s *Service) price(ctx context.Context, app *domain.ChangeApplication, segment *domain.FlightSegment, asOf time.Time) error {
	p, err := s.resolver.Resolve(ctx, policyKey(segment, app.Kind, app.ChangeKind), asOf)
	if err != nil {
		return err
	}

	breakdown, err := fee.Calculate(app.FareCents, p)
	if err != nil {
		return err
	}

	switch app.Kind {
	case domain.ApplicationKindRefund:
		app.FeeCents = breakdown.FeeCents
		app.NetAmountCents = breakdown.NetRefundCents
	case domain.ApplicationKindRebooking:
		quote, err := fee.RebookingQuote(app.FareCents, app.NewFlight.FareCents, breakdown.FeeCents, s.serviceFeeCents)
		if err != nil {
			return err
		}
		app.FeeCents = quote.ChangeFeeCents
		app.ServiceFeeCents = quote.ServiceFeeCents
		app.FareDifferenceCents = quote.FareDifferenceCents
		app.NetAmountCents = quote.TotalCents
	}
	return nil
}

// policyKey falls back to the carrier prefix of the flight number when the
// segment row carries no airline code.
func policyKey(segment *domain.FlightSegment, kind domain.ApplicationKind, changeKind domain.ChangeKind) policy.Key {
	airline := segment.AirlineCode
	if airline == "" {
		airline = policy.AirlineFromFlightNo(segment.FlightNo)
	}
	return policy.Key{
		AirlineCode: airline,
		CabinClass:  segment.CabinClass,
		Kind:        kind,
		ChangeKind:  changeKind,
	}
}

func validateSubmit(input SubmitInput) error {
	if input.OrderID <= 0 || input.PassengerID <= 0 || input.SegmentID <= 0 {
		return fmt.Errorf("%w: order, passenger and segment ids are required", domain.ErrValidation)
	}
	if input.Kind != domain.ApplicationKindRefund && input.Kind != domain.ApplicationKindRebooking {
		return fmt.Errorf("%w: unknown application kind %q", domain.ErrValidation, input.Kind)
	}
	if input.ChangeKind != domain.ChangeKindVoluntary && input.ChangeKind != domain.ChangeKindInvoluntary {
		return fmt.Errorf("%w: unknown change kind %q", domain.ErrValidation, input.ChangeKind)
	}
	if input.Reason == "" {
		return fmt.Errorf("%w: reason is required", domain.ErrValidation)
	}
	if input.Kind == domain.ApplicationKindRebooking {
		if input.NewFlight == nil {
			return fmt.Errorf("%w: rebooking requires the new flight", domain.ErrValidation)
		}
		if input.NewFlight.FlightNo == "" || input.NewFlight.FareCents <= 0 {
			return fmt.Errorf("%w: new flight number and fare are required", domain.ErrValidation)
		}
	}
	if input.Kind == domain.ApplicationKindRefund && input.NewFlight != nil {
		return fmt.Errorf("%w: refund does not take a new flight", domain.ErrValidation)
	}
	return nil
}

// publishFor looks up the order contact for the notification; a lookup
// failure downgrades to an event without a recipient.
func (s *Service) publishFor(ctx context.Context, eventType string, app *domain.ChangeApplication) {
	contactEmail := ""
	if order, err := s.store.Orders().GetByID(ctx, app.OrderID); err == nil {
		contactEmail = order.ContactEmail
	}
	s.publish(ctx, eventType, app, contactEmail)
}

func (s *Service) publish(ctx context.Context, eventType string, app *domain.ChangeApplication, contactEmail string) {
	if s.producer == nil || s.applicationsTopic == "" {
		return
	}
	event := kafka.ApplicationEvent{
		Type:           eventType,
		AppNo:          app.AppNo,
		ApplicationID:  app.ID,
		Kind:           string(app.Kind),
		OrderNo:        app.OrderNo,
		PassengerName:  app.PassengerName,
		SegmentID:      app.SegmentID,
		Status:         string(app.Status),
		NetAmountCents: app.NetAmountCents,
		Currency:       app.Currency,
		ContactEmail:   contactEmail,
		OccurredAt:     s.now(),
	}
	if err := s.producer.Publish(ctx, s.applicationsTopic, app.AppNo, event); err != nil {
		log.Printf("WARNING: failed to publish %s for application %s: %v", eventType, app.AppNo, err)
	}
	// Notifications drive customer email; worth a few delivery attempts.
	if s.notificationsTopic != "" {
		if err := s.producer.PublishWithRetry(ctx, s.notificationsTopic, app.AppNo, event, 3); err != nil {
			log.Printf("WARNING: failed to publish notification for application %s: %v", app.AppNo, err)
		}
	}
}

var _ ApplicationUseCase = (*Service)(nil)
