package consistency

import (
	"context"
	"fmt"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/dkrylova/aftersale/internal/repository"
)

// Updater applies the order-level side effects of a completed application.
// It always runs against a transaction-scoped Store, inside the same
// transaction as the COMPLETED transition: any error here aborts both.
type Updater struct{}

func NewUpdater() *Updater {
	return &Updater{}
}

func (u *Updater) OnApplicationCompleted(ctx context.Context, st repository.Store, app *domain.ChangeApplication) error {
	switch app.Kind {
	case domain.ApplicationKindRefund:
		return u.completeRefund(ctx, st, app)
	case domain.ApplicationKindRebooking:
		return u.completeRebooking(ctx, st, app)
	default:
		return fmt.Errorf("%w: unknown application kind %q", domain.ErrValidation, app.Kind)
	}
}

func (u *Updater) completeRefund(ctx context.Context, st repository.Store, app *domain.ChangeApplication) error {
	if err := st.Segments().UpdateStatus(ctx, app.SegmentID, domain.SegmentStatusRefunded); err != nil {
		return err
	}

	// The order flips to cancelled only once every sibling segment is
	// refunded; checked over the whole order, not assumed per segment.
	segments, err := st.Segments().ListByOrder(ctx, app.OrderID)
	if err != nil {
		return err
	}
	allRefunded := true
	for _, s := range segments {
		if s.Status != domain.SegmentStatusRefunded {
			allRefunded = false
			break
		}
	}

	if allRefunded {
		if err := st.Orders().UpdateStatus(ctx, app.OrderID, domain.OrderStatusCancelled, domain.PaymentStatusFullyRefunded); err != nil {
			return err
		}
	} else {
		order, err := st.Orders().GetByID(ctx, app.OrderID)
		if err != nil {
			return err
		}
		if err := st.Orders().UpdateStatus(ctx, app.OrderID, order.OrderStatus, domain.PaymentStatusPartiallyRefunded); err != nil {
			return err
		}
	}

	return appendLedger(ctx, st, app,
		ledgerRow(app, domain.FeeTypeRefundFee, app.FeeCents, "refund fee"),
		ledgerRow(app, domain.FeeTypeRefundPayout, app.NetAmountCents, "refund payout"),
	)
}

func (u *Updater) completeRebooking(ctx context.Context, st repository.Store, app *domain.ChangeApplication) error {
	if app.NewFlight == nil {
		return fmt.Errorf("%w: rebooking application %d has no new flight", domain.ErrValidation, app.ID)
	}

	if err := st.Segments().UpdateStatus(ctx, app.SegmentID, domain.SegmentStatusRebooked); err != nil {
		return err
	}

	nf := app.NewFlight
	segment := &domain.FlightSegment{
		OrderID:              app.OrderID,
		PassengerID:          app.PassengerID,
		AirlineCode:          nf.AirlineCode,
		FlightNo:             nf.FlightNo,
		DepartureAirportCode: nf.DepartureAirportCode,
		ArrivalAirportCode:   nf.ArrivalAirportCode,
		DepartureTime:        nf.DepartureTime,
		ArrivalTime:          nf.ArrivalTime,
		CabinClass:           nf.CabinClass,
		FareCents:            nf.FareCents,
		Status:               domain.SegmentStatusNormal,
	}
	if err := st.Segments().Create(ctx, segment); err != nil {
		return err
	}

	return appendLedger(ctx, st, app,
		ledgerRow(app, domain.FeeTypeChangeFee, app.FeeCents, "rebooking change fee"),
		ledgerRow(app, domain.FeeTypeServiceFee, app.ServiceFeeCents, "rebooking service fee"),
		ledgerRow(app, domain.FeeTypeTicketPrice, nf.FareCents, "rebooked ticket price"),
	)
}

func ledgerRow(app *domain.ChangeApplication, feeType domain.FeeType, amount int64, description string) *domain.FeeLedgerEntry {
	return &domain.FeeLedgerEntry{
		OrderID:     app.OrderID,
		PassengerID: app.PassengerID,
		FeeType:     feeType,
		AmountCents: amount,
		Currency:    app.Currency,
		Description: description,
	}
}

func appendLedger(ctx context.Context, st repository.Store, app *domain.ChangeApplication, entries ...*domain.FeeLedgerEntry) error {
	for _, e := range entries {
		if err := st.FeeLedger().Append(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
