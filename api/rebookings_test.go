package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/dkrylova/aftersale/internal/service/application"
	"github.com/dkrylova/aftersale/internal/service/fee"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testNewFlight() *domain.NewFlight {
	departure := time.Date(2026, 10, 1, 10, 30, 0, 0, time.UTC)
	return &domain.NewFlight{
		AirlineCode:          "MU",
		FlightNo:             "MU5104",
		DepartureAirportCode: "SHA",
		ArrivalAirportCode:   "PEK",
		DepartureTime:        departure,
		ArrivalTime:          departure.Add(3 * time.Hour),
		CabinClass:           "ECONOMY",
		FareCents:            280000,
	}
}

func TestRebookingHandler_submit(t *testing.T) {
	mockService := &MockApplicationUseCase{}
	handler := NewRebookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	nf := testNewFlight()
	body, _ := json.Marshal(submitRebookingRequest{
		OrderID:     1,
		PassengerID: 5,
		SegmentID:   10,
		ChangeKind:  "VOLUNTARY",
		Reason:      "earlier meeting",
		NewFlight:   nf,
	})
	c.Request = httptest.NewRequest("POST", "/rebookings/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("X-Operator-Name", "ops")

	created := &domain.ChangeApplication{
		ID:                  78,
		AppNo:               "a81e44d0",
		Kind:                domain.ApplicationKindRebooking,
		ChangeKind:          domain.ChangeKindVoluntary,
		OrderNo:             "ORD-2026-0001",
		PassengerName:       "Wang Li",
		SegmentID:           10,
		FareCents:           250000,
		FeeCents:            25000,
		ServiceFeeCents:     5000,
		FareDifferenceCents: 30000,
		NetAmountCents:      60000,
		Currency:            "CNY",
		Status:              domain.ApplicationStatusPending,
		NewFlight:           nf,
	}

	mockService.On("Submit", c.Request.Context(), mock.MatchedBy(func(in application.SubmitInput) bool {
		return in.Kind == domain.ApplicationKindRebooking && in.NewFlight != nil && in.NewFlight.FlightNo == "MU5104"
	})).Return(created, nil)

	handler.submit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp applicationResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "REBOOKING", resp.Kind)
	assert.Equal(t, int64(60000), resp.NetAmountCents)
	if assert.NotNil(t, resp.NewFlight) {
		assert.Equal(t, "MU5104", resp.NewFlight.FlightNo)
	}
}

func TestRebookingHandler_submit_departed(t *testing.T) {
	mockService := &MockApplicationUseCase{}
	handler := NewRebookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(submitRebookingRequest{
		OrderID:     1,
		PassengerID: 5,
		SegmentID:   10,
		ChangeKind:  "VOLUNTARY",
		Reason:      "x",
		NewFlight:   testNewFlight(),
	})
	c.Request = httptest.NewRequest("POST", "/rebookings/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Submit", c.Request.Context(), mock.Anything).Return(nil, domain.ErrAlreadyDeparted)

	handler.submit(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRebookingHandler_quote(t *testing.T) {
	mockService := &MockApplicationUseCase{}
	handler := NewRebookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(rebookingQuoteRequest{
		SegmentID:    10,
		PassengerID:  5,
		ChangeKind:   "VOLUNTARY",
		NewFareCents: 280000,
	})
	c.Request = httptest.NewRequest("POST", "/rebookings/quote", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("QuoteRebooking", c.Request.Context(), application.QuoteRebookingInput{
		SegmentID:    10,
		PassengerID:  5,
		ChangeKind:   domain.ChangeKindVoluntary,
		NewFareCents: 280000,
	}).Return(&fee.Quote{
		ChangeFeeCents:      25000,
		FareDifferenceCents: 30000,
		ServiceFeeCents:     5000,
		TotalCents:          60000,
	}, nil)

	handler.quote(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp rebookingQuoteResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(60000), resp.TotalCents)
}

func TestRebookingHandler_quote_fareUnavailable(t *testing.T) {
	mockService := &MockApplicationUseCase{}
	handler := NewRebookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(rebookingQuoteRequest{SegmentID: 10, PassengerID: 5, ChangeKind: "VOLUNTARY", NewFareCents: 280000})
	c.Request = httptest.NewRequest("POST", "/rebookings/quote", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("QuoteRebooking", c.Request.Context(), mock.Anything).Return(nil, domain.ErrFareUnavailable)

	handler.quote(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRebookingHandler_approve_badID(t *testing.T) {
	mockService := &MockApplicationUseCase{}
	handler := NewRebookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/rebookings/-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "-1"}}

	handler.approve(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
