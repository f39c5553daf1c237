package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyfare/layby/internal/domain"
	"github.com/skyfare/layby/internal/layby"
)

func newPlanContext(body string) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/payment-plan/calculate", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func fixedPlanHandler() *PaymentPlanHandler {
	h := NewPaymentPlanHandler(layby.NewCalculator(layby.DefaultConfig()))
	h.now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }
	return h
}

func TestPaymentPlanHandler_calculate(t *testing.T) {
	handler := fixedPlanHandler()

	w, c := newPlanContext(`{"baseCost":1000,"travelDate":"2026-08-29","bookingDate":"2026-03-02"}`)
	handler.calculate(c)

	require.Equal(t, http.StatusOK, w.Code)

	var result domain.PlanResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Eligible)
	assert.Equal(t, 180, result.DaysUntilTravel)
	assert.Equal(t, 23, result.InstallmentCount)
	assert.Equal(t, "weekly", result.Cadence)
	assert.Len(t, result.Schedule, 24)
}

func TestPaymentPlanHandler_calculate_ineligible(t *testing.T) {
	handler := fixedPlanHandler()

	w, c := newPlanContext(`{"baseCost":500,"travelDate":"2026-03-12","bookingDate":"2026-03-02"}`)
	handler.calculate(c)

	require.Equal(t, http.StatusOK, w.Code)

	var result domain.PlanResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Eligible)
	assert.Equal(t, layby.IneligibleReason, result.Reason)
	assert.Empty(t, result.Schedule)
	// the full price is still returned for full-payment bookings
	assert.Equal(t, "500", result.FeeBreakdown.FlightPrice.String())
}

func TestPaymentPlanHandler_calculate_defaultsBookingDate(t *testing.T) {
	handler := fixedPlanHandler()

	w, c := newPlanContext(`{"baseCost":300,"travelDate":"2026-06-01"}`)
	handler.calculate(c)

	require.Equal(t, http.StatusOK, w.Code)

	var result domain.PlanResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 91, result.DaysUntilTravel)
}

func TestPaymentPlanHandler_calculate_rejectsBadInput(t *testing.T) {
	handler := fixedPlanHandler()

	for name, body := range map[string]string{
		"negative base cost": `{"baseCost":-10,"travelDate":"2026-06-01"}`,
		"bad travel date":    `{"baseCost":100,"travelDate":"June 1st"}`,
		"bad booking date":   `{"baseCost":100,"travelDate":"2026-06-01","bookingDate":"tomorrow"}`,
		"not json":           `baseCost=100`,
	} {
		w, c := newPlanContext(body)
		handler.calculate(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}
