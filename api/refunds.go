package api

import (
	"net/http"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/dkrylova/aftersale/internal/service/application"
	"github.com/gin-gonic/gin"
)

type RefundHandler struct {
	service application.ApplicationUseCase
}

type submitRefundRequest struct {
	OrderID     int64  `json:"order_id"`
	PassengerID int64  `json:"passenger_id"`
	SegmentID   int64  `json:"segment_id"`
	ChangeKind  string `json:"change_kind"`
	Reason      string `json:"reason"`
}

type approveRequest struct {
	Approved bool   `json:"approved"`
	Remarks  string `json:"remarks"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type refundQuoteRequest struct {
	SegmentID   int64  `json:"segment_id"`
	PassengerID int64  `json:"passenger_id"`
	ChangeKind  string `json:"change_kind"`
}

type refundQuoteResponse struct {
	FareCents      int64 `json:"fare_cents"`
	FeeCents       int64 `json:"fee_cents"`
	NetRefundCents int64 `json:"net_refund_cents"`
}

func NewRefundHandler(service application.ApplicationUseCase) *RefundHandler {
	return &RefundHandler{service: service}
}

func (h *RefundHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.submit)
	router.GET("/:id", h.get)
	router.POST("/:id/approve", h.approve)
	router.POST("/:id/execute", h.execute)
	router.POST("/:id/cancel", h.cancel)
	router.POST("/quote", h.quote)
	router.GET("/info/:orderId", h.info)
}

func (h *RefundHandler) submit(c *gin.Context) {
	var req submitRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.service.Submit(c.Request.Context(), application.SubmitInput{
		Kind:        domain.ApplicationKindRefund,
		ChangeKind:  domain.ChangeKind(req.ChangeKind),
		OrderID:     req.OrderID,
		PassengerID: req.PassengerID,
		SegmentID:   req.SegmentID,
		Reason:      req.Reason,
		Actor:       actorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toApplicationResponse(app))
}

func (h *RefundHandler) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	app, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toApplicationResponse(app))
}

func (h *RefundHandler) approve(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Approve(c.Request.Context(), id, req.Approved, actorFrom(c), req.Remarks); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RefundHandler) execute(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Execute(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RefundHandler) cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id, actorFrom(c), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RefundHandler) quote(c *gin.Context) {
	var req refundQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	breakdown, err := h.service.QuoteRefund(c.Request.Context(), application.QuoteRefundInput{
		SegmentID:   req.SegmentID,
		PassengerID: req.PassengerID,
		ChangeKind:  domain.ChangeKind(req.ChangeKind),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, refundQuoteResponse{
		FareCents:      breakdown.FareCents,
		FeeCents:       breakdown.FeeCents,
		NetRefundCents: breakdown.NetRefundCents,
	})
}

func (h *RefundHandler) info(c *gin.Context) {
	orderID, ok := idParam(c, "orderId")
	if !ok {
		return
	}

	info, err := h.service.RefundableInfo(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	segments := make([]gin.H, 0, len(info.Segments))
	for _, s := range info.Segments {
		segments = append(segments, gin.H{
			"id":             s.ID,
			"passenger_id":   s.PassengerID,
			"flight_no":      s.FlightNo,
			"airline_code":   s.AirlineCode,
			"departure":      s.DepartureAirportCode,
			"arrival":        s.ArrivalAirportCode,
			"departure_time": s.DepartureTime,
			"cabin_class":    s.CabinClass,
			"fare_cents":     s.FareCents,
		})
	}
	passengers := make([]gin.H, 0, len(info.Passengers))
	for _, p := range info.Passengers {
		passengers = append(passengers, gin.H{
			"id":            p.ID,
			"full_name":     p.FullName,
			"document_type": p.DocumentType,
			"document_no":   p.DocumentNo,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":   info.Order.ID,
		"order_no":   info.Order.OrderNo,
		"segments":   segments,
		"passengers": passengers,
	})
}
