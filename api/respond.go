package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrPassengerNotFound),
		errors.Is(err, domain.ErrSegmentNotFound),
		errors.Is(err, domain.ErrApplicationNotFound),
		errors.Is(err, domain.ErrPolicyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOrderNotRefundable),
		errors.Is(err, domain.ErrSegmentNotActionable),
		errors.Is(err, domain.ErrAlreadyDeparted),
		errors.Is(err, domain.ErrDuplicateApplication),
		errors.Is(err, domain.ErrApplicationLocked),
		errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPolicyInvalid),
		errors.Is(err, domain.ErrFareUnavailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// actorFrom reads the operator identity set by the authentication layer in
// front of this service.
func actorFrom(c *gin.Context) domain.Actor {
	actor := domain.Actor{Name: c.GetHeader("X-Operator-Name")}
	if id, err := strconv.ParseInt(c.GetHeader("X-Operator-Id"), 10, 64); err == nil {
		actor.ID = id
	}
	if actor.Name == "" {
		actor.Name = "system"
	}
	return actor
}

type applicationResponse struct {
	ID                  int64             `json:"id"`
	AppNo               string            `json:"app_no"`
	Kind                string            `json:"kind"`
	ChangeKind          string            `json:"change_kind"`
	OrderNo             string            `json:"order_no"`
	PassengerName       string            `json:"passenger_name"`
	SegmentID           int64             `json:"segment_id"`
	FareCents           int64             `json:"fare_cents"`
	FeeCents            int64             `json:"fee_cents"`
	ServiceFeeCents     int64             `json:"service_fee_cents,omitempty"`
	FareDifferenceCents int64             `json:"fare_difference_cents,omitempty"`
	NetAmountCents      int64             `json:"net_amount_cents"`
	Currency            string            `json:"currency"`
	Reason              string            `json:"reason"`
	Status              string            `json:"status"`
	Approver            string            `json:"approver,omitempty"`
	ApprovedAt          string            `json:"approved_at,omitempty"`
	NewFlight           *domain.NewFlight `json:"new_flight,omitempty"`
	CreatedAt           string            `json:"created_at"`
}

func toApplicationResponse(app *domain.ChangeApplication) applicationResponse {
	resp := applicationResponse{
		ID:                  app.ID,
		AppNo:               app.AppNo,
		Kind:                string(app.Kind),
		ChangeKind:          string(app.ChangeKind),
		OrderNo:             app.OrderNo,
		PassengerName:       app.PassengerName,
		SegmentID:           app.SegmentID,
		FareCents:           app.FareCents,
		FeeCents:            app.FeeCents,
		ServiceFeeCents:     app.ServiceFeeCents,
		FareDifferenceCents: app.FareDifferenceCents,
		NetAmountCents:      app.NetAmountCents,
		Currency:            app.Currency,
		Reason:              app.Reason,
		Status:              string(app.Status),
		Approver:            app.Approver,
		NewFlight:           app.NewFlight,
		CreatedAt:           app.CreatedAt.Format(time.RFC3339),
	}
	if app.ApprovedAt != nil {
		resp.ApprovedAt = app.ApprovedAt.Format(time.RFC3339)
	}
	return resp
}
