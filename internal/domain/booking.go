package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

type PaymentMode string

const (
	PaymentModeFull  PaymentMode = "FULL"
	PaymentModeLayBy PaymentMode = "LAY_BY"
)

type Booking struct {
	ID          int64
	FlightID    int64
	SeatNumber  int
	Token       string
	Status      BookingStatus
	PaymentMode PaymentMode
	ExpiresAt   time.Time
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Plan is set when the booking pays by instalments.
	Plan *PaymentPlan
}
