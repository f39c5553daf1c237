package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ScheduleItemStatusPending = "pending"
	ScheduleItemStatusPaid    = "paid"
)

// FeeBreakdown decomposes the total flight price. FlightPrice is always
// BaseCost + AdminFee + LayByFee.
type FeeBreakdown struct {
	BaseCost    decimal.Decimal `json:"baseCost"`
	AdminFee    decimal.Decimal `json:"adminFee"`
	LayByFee    decimal.Decimal `json:"layByFee"`
	FlightPrice decimal.Decimal `json:"flightPrice"`
}

// PaymentScheduleItem is one line of a payment plan. Item 1 is the deposit,
// due on the booking date; the rest are weekly instalments.
type PaymentScheduleItem struct {
	PaymentNumber int             `json:"paymentNumber"`
	DueDate       time.Time       `json:"dueDate"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

// PlanResult is the calculator's output: the eligibility decision plus, when
// eligible, the full deposit-and-instalments schedule.
type PlanResult struct {
	Eligible          bool                  `json:"eligible"`
	Reason            string                `json:"reason,omitempty"`
	FeeBreakdown      FeeBreakdown          `json:"feeBreakdown"`
	DaysUntilTravel   int                   `json:"daysUntilTravel"`
	DepositAmount     decimal.Decimal       `json:"depositAmount"`
	InstallmentAmount decimal.Decimal       `json:"installmentAmount"`
	InstallmentCount  int                   `json:"installmentCount,omitempty"`
	Cadence           string                `json:"cadence,omitempty"`
	Schedule          []PaymentScheduleItem `json:"schedule,omitempty"`
}

// PaymentPlan is the persisted form of an accepted plan, stored alongside the
// booking it pays for.
type PaymentPlan struct {
	ID                int64
	BookingID         int64
	FlightPrice       decimal.Decimal
	DepositAmount     decimal.Decimal
	InstallmentAmount decimal.Decimal
	InstallmentCount  int
	Cadence           string
	Schedule          []PlanScheduleRow
	CreatedAt         time.Time
}

// PlanScheduleRow is a persisted schedule line with its payment status.
type PlanScheduleRow struct {
	ID            int64
	PlanID        int64
	PaymentNumber int
	DueDate       time.Time
	Amount        decimal.Decimal
	Description   string
	Status        string
}
