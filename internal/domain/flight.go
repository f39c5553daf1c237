package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Flight struct {
	ID             int64
	FromAirport    string
	ToAirport      string
	DepartureTime  time.Time
	ArrivalTime    time.Time
	TotalSeats     int
	AvailableSeats int
	PriceCents     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Price returns the fare in currency units.
func (f *Flight) Price() decimal.Decimal {
	return decimal.New(f.PriceCents, -2)
}
