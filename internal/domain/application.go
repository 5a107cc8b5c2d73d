package domain

import "time"

type ApplicationKind string

const (
	ApplicationKindRefund    ApplicationKind = "REFUND"
	ApplicationKindRebooking ApplicationKind = "REBOOKING"
)

// ChangeKind distinguishes voluntary changes from those forced by the carrier
// (schedule change, cancellation); fee policies are keyed by it.
type ChangeKind string

const (
	ChangeKindVoluntary   ChangeKind = "VOLUNTARY"
	ChangeKindInvoluntary ChangeKind = "INVOLUNTARY"
)

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "PENDING"
	ApplicationStatusApproved  ApplicationStatus = "APPROVED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
	ApplicationStatusCompleted ApplicationStatus = "COMPLETED"
	ApplicationStatusCancelled ApplicationStatus = "CANCELLED"
)

// transitions is the single source of truth for the application lifecycle.
var transitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:  {ApplicationStatusApproved, ApplicationStatusRejected, ApplicationStatusCancelled},
	ApplicationStatusApproved: {ApplicationStatusCompleted},
}

func (s ApplicationStatus) CanTransition(to ApplicationStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Open reports whether the application still blocks new applications against
// the same (order, passenger, segment) triple.
func (s ApplicationStatus) Open() bool {
	return s == ApplicationStatusPending || s == ApplicationStatusApproved
}

// Actor identifies who performed an operation. Passed explicitly; the engine
// keeps no ambient session state.
type Actor struct {
	ID   int64
	Name string
}

// NewFlight carries the replacement flight of a rebooking application.
type NewFlight struct {
	AirlineCode          string    `json:"airline_code"`
	FlightNo             string    `json:"flight_no"`
	DepartureAirportCode string    `json:"departure_airport_code"`
	ArrivalAirportCode   string    `json:"arrival_airport_code"`
	DepartureTime        time.Time `json:"departure_time"`
	ArrivalTime          time.Time `json:"arrival_time"`
	CabinClass           string    `json:"cabin_class"`
	FareCents            int64     `json:"fare_cents"`
}

// ChangeApplication is a refund or rebooking request against one ticketed
// segment. Monetary fields are frozen at submission time and never
// recomputed afterwards.
type ChangeApplication struct {
	ID            int64
	AppNo         string
	Kind          ApplicationKind
	ChangeKind    ChangeKind
	OrderID       int64
	OrderNo       string
	PassengerID   int64
	PassengerName string
	SegmentID     int64

	FareCents           int64
	FeeCents            int64
	ServiceFeeCents     int64
	FareDifferenceCents int64
	NetAmountCents      int64
	Currency            string

	Reason     string
	Status     ApplicationStatus
	Approver   string
	ApprovedAt *time.Time
	// Remarks holds the approver's decision note or the cancellation reason,
	// whichever ended the review.
	Remarks string

	NewFlight *NewFlight

	CreatedAt time.Time
	UpdatedAt time.Time
}
