package domain

import "time"

type SegmentStatus string

const (
	SegmentStatusNormal   SegmentStatus = "NORMAL"
	SegmentStatusRebooked SegmentStatus = "REBOOKED"
	SegmentStatusRefunded SegmentStatus = "REFUNDED"
)

type FlightSegment struct {
	ID                   int64
	OrderID              int64
	PassengerID          int64
	AirlineCode          string
	FlightNo             string
	DepartureAirportCode string
	ArrivalAirportCode   string
	DepartureTime        time.Time
	ArrivalTime          time.Time
	CabinClass           string
	TicketNo             string
	FareCents            int64
	Status               SegmentStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Actionable reports whether a post-sale application may still reference the
// segment: it must not have been refunded or rebooked already, and the flight
// must not have departed.
func (s *FlightSegment) Actionable(now time.Time) bool {
	return s.Status == SegmentStatusNormal && s.DepartureTime.After(now)
}
