package domain

import "errors"

// Business rule violations are expected, named outcomes. Callers match them
// with errors.Is; anything not listed here (pgx errors and the like) is a
// transient persistence failure and safe to retry.
var (
	ErrValidation = errors.New("invalid input")

	ErrOrderNotFound       = errors.New("order not found")
	ErrPassengerNotFound   = errors.New("passenger not found")
	ErrSegmentNotFound     = errors.New("flight segment not found")
	ErrApplicationNotFound = errors.New("application not found")

	ErrOrderNotRefundable     = errors.New("order status does not permit the change")
	ErrSegmentNotActionable   = errors.New("segment already refunded or rebooked")
	ErrAlreadyDeparted        = errors.New("flight already departed")
	ErrDuplicateApplication   = errors.New("an open application already exists for this segment")
	ErrApplicationLocked      = errors.New("another submission for this segment is in progress")
	ErrInvalidStateTransition = errors.New("invalid application state transition")

	ErrPolicyNotFound  = errors.New("no fee policy matches")
	ErrPolicyInvalid   = errors.New("fee policy misconfigured")
	ErrFareUnavailable = errors.New("original fare unavailable")
)
