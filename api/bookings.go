package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/skyfare/layby/internal/domain"
	"github.com/skyfare/layby/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID    int64  `json:"flight_id"`
	SeatNumber  int    `json:"seat_number"`
	Email       string `json:"email"`
	PaymentMode string `json:"payment_mode"`
}

type planScheduleItemResponse struct {
	PaymentNumber int             `json:"payment_number"`
	DueDate       string          `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

type planResponse struct {
	FlightPrice       decimal.Decimal            `json:"flight_price"`
	DepositAmount     decimal.Decimal            `json:"deposit_amount"`
	InstallmentAmount decimal.Decimal            `json:"installment_amount"`
	InstallmentCount  int                        `json:"installment_count"`
	Cadence           string                     `json:"cadence"`
	Schedule          []planScheduleItemResponse `json:"schedule"`
}

type bookingResponse struct {
	Token       string        `json:"token"`
	Status      string        `json:"status"`
	PaymentMode string        `json:"payment_mode"`
	ExpiresAt   string        `json:"expires_at"`
	FlightID    int64         `json:"flight_id"`
	SeatNumber  int           `json:"seat_number"`
	Email       string        `json:"email"`
	Plan        *planResponse `json:"plan,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.PUT("/:token", h.confirm)
	router.DELETE("/:token", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := domain.PaymentModeFull
	switch req.PaymentMode {
	case "", "full":
	case "lay_by":
		mode = domain.PaymentModeLayBy
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_mode must be full or lay_by"})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightID:    req.FlightID,
		SeatNumber:  req.SeatNumber,
		Email:       req.Email,
		PaymentMode: mode,
	})
	if err != nil {
		if errors.Is(err, booking.ErrPlanIneligible) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	token := c.Param("token")
	b, err := h.service.ConfirmBooking(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	token := c.Param("token")
	b, err := h.service.CancelBooking(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		Token:       b.Token,
		Status:      string(b.Status),
		PaymentMode: string(b.PaymentMode),
		ExpiresAt:   b.ExpiresAt.Format(time.RFC3339),
		FlightID:    b.FlightID,
		SeatNumber:  b.SeatNumber,
		Email:       b.Email,
	}
	if b.Plan != nil {
		plan := &planResponse{
			FlightPrice:       b.Plan.FlightPrice,
			DepositAmount:     b.Plan.DepositAmount,
			InstallmentAmount: b.Plan.InstallmentAmount,
			InstallmentCount:  b.Plan.InstallmentCount,
			Cadence:           b.Plan.Cadence,
		}
		for _, row := range b.Plan.Schedule {
			plan.Schedule = append(plan.Schedule, planScheduleItemResponse{
				PaymentNumber: row.PaymentNumber,
				DueDate:       row.DueDate.Format("2006-01-02"),
				Amount:        row.Amount,
				Description:   row.Description,
			})
		}
		resp.Plan = plan
	}
	return resp
}
