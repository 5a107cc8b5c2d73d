package api

import (
	"net/http"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/dkrylova/aftersale/internal/service/application"
	"github.com/gin-gonic/gin"
)

type RebookingHandler struct {
	service application.ApplicationUseCase
}

type submitRebookingRequest struct {
	OrderID     int64             `json:"order_id"`
	PassengerID int64             `json:"passenger_id"`
	SegmentID   int64             `json:"segment_id"`
	ChangeKind  string            `json:"change_kind"`
	Reason      string            `json:"reason"`
	NewFlight   *domain.NewFlight `json:"new_flight"`
}

type rebookingQuoteRequest struct {
	SegmentID    int64  `json:"segment_id"`
	PassengerID  int64  `json:"passenger_id"`
	ChangeKind   string `json:"change_kind"`
	NewFareCents int64  `json:"new_fare_cents"`
}

type rebookingQuoteResponse struct {
	ChangeFeeCents      int64 `json:"change_fee_cents"`
	FareDifferenceCents int64 `json:"fare_difference_cents"`
	ServiceFeeCents     int64 `json:"service_fee_cents"`
	TotalCents          int64 `json:"total_cents"`
}

func NewRebookingHandler(service application.ApplicationUseCase) *RebookingHandler {
	return &RebookingHandler{service: service}
}

func (h *RebookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.submit)
	router.GET("/:id", h.get)
	router.POST("/:id/approve", h.approve)
	router.POST("/:id/execute", h.execute)
	router.POST("/:id/cancel", h.cancel)
	router.POST("/quote", h.quote)
}

func (h *RebookingHandler) submit(c *gin.Context) {
	var req submitRebookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.service.Submit(c.Request.Context(), application.SubmitInput{
		Kind:        domain.ApplicationKindRebooking,
		ChangeKind:  domain.ChangeKind(req.ChangeKind),
		OrderID:     req.OrderID,
		PassengerID: req.PassengerID,
		SegmentID:   req.SegmentID,
		Reason:      req.Reason,
		NewFlight:   req.NewFlight,
		Actor:       actorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toApplicationResponse(app))
}

func (h *RebookingHandler) get(c *gin.Context) {
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

func (h *RebookingHandler) approve(c *gin.Context) {
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

func (h *RebookingHandler) execute(c *gin.Context) {
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

func (h *RebookingHandler) cancel(c *gin.Context) {
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

func (h *RebookingHandler) quote(c *gin.Context) {
	var req rebookingQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.service.QuoteRebooking(c.Request.Context(), application.QuoteRebookingInput{
		SegmentID:    req.SegmentID,
		PassengerID:  req.PassengerID,
		ChangeKind:   domain.ChangeKind(req.ChangeKind),
		NewFareCents: req.NewFareCents,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rebookingQuoteResponse{
		ChangeFeeCents:      quote.ChangeFeeCents,
		FareDifferenceCents: quote.FareDifferenceCents,
		ServiceFeeCents:     quote.ServiceFeeCents,
		TotalCents:          quote.TotalCents,
	})
}
