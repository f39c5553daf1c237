package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/skyfare/layby/internal/layby"
)

// PaymentPlanHandler exposes the lay-by calculator over HTTP. All input
// validation happens here; the calculator assumes well-typed input.
type PaymentPlanHandler struct {
	calculator *layby.Calculator
	now        func() time.Time
}

type calculatePlanRequest struct {
	BaseCost    decimal.Decimal `json:"baseCost"`
	TravelDate  string          `json:"travelDate"`
	BookingDate string          `json:"bookingDate"`
}

func NewPaymentPlanHandler(calculator *layby.Calculator) *PaymentPlanHandler {
	return &PaymentPlanHandler{calculator: calculator, now: time.Now}
}

func (h *PaymentPlanHandler) Register(router *gin.RouterGroup) {
	router.POST("/calculate", h.calculate)
}

func (h *PaymentPlanHandler) calculate(c *gin.Context) {
	var req calculatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.BaseCost.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "baseCost must not be negative"})
		return
	}

	travelDate, err := time.Parse("2006-01-02", req.TravelDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid travelDate, expected YYYY-MM-DD"})
		return
	}

	bookingDate := h.now()
	if req.BookingDate != "" {
		bookingDate, err = time.Parse("2006-01-02", req.BookingDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bookingDate, expected YYYY-MM-DD"})
			return
		}
	}

	result := h.calculator.Calculate(req.BaseCost, travelDate, bookingDate)
	c.JSON(http.StatusOK, result)
}
