package layby

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skyfare/layby/internal/domain"
)

// IneligibleReason is returned on every plan rejected for being too close to
// departure.
const IneligibleReason = "Payment plans not available for flights within 14 days"

// CadenceWeekly is the only cadence the calculator produces today.
const CadenceWeekly = "weekly"

// Config carries the tunable rates and thresholds of the plan calculator.
// Rates are fractions of the base cost, not percentages.
type Config struct {
	AdminFeeRate           decimal.Decimal
	LayByFeeRate           decimal.Decimal
	DepositPercentage      decimal.Decimal
	MinimumAdvanceDays     int
	MaxInstallmentWeeks    int
	MinGapBeforeTravelDays int
}

// DefaultConfig returns the currently configured rates. Both fee rates are
// zero but stay in the model so they can be tuned without touching the
// algorithm.
func DefaultConfig() Config {
	return Config{
		AdminFeeRate:           decimal.Zero,
		LayByFeeRate:           decimal.Zero,
		DepositPercentage:      decimal.NewFromFloat(0.20),
		MinimumAdvanceDays:     14,
		MaxInstallmentWeeks:    26,
		MinGapBeforeTravelDays: 14,
	}
}

// Calculator derives eligibility, fees and the instalment schedule for a
// priced flight. It is pure: the current time is never read inside, callers
// inject today/bookingDate at the boundary.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Fees computes the fee breakdown and the calendar-day distance to travel.
// daysUntilTravel may be negative for past-dated flights; that is valid
// output and simply makes the plan ineligible.
func (c *Calculator) Fees(baseCost decimal.Decimal, travelDate, today time.Time) (domain.FeeBreakdown, int) {
	days := daysBetween(today, travelDate)

	adminFee := baseCost.Mul(c.cfg.AdminFeeRate).Round(2)

	// Lay-by fee applies only when the booking clears the advance window.
	layByFee := decimal.Zero
	if days > c.cfg.MinimumAdvanceDays {
		layByFee = baseCost.Mul(c.cfg.LayByFeeRate).Round(2)
	}

	fees := domain.FeeBreakdown{
		BaseCost:    baseCost,
		AdminFee:    adminFee,
		LayByFee:    layByFee,
		FlightPrice: baseCost.Add(adminFee).Add(layByFee),
	}
	return fees, days
}

// Eligible reports whether a flight this many days out qualifies for a plan.
// The threshold is strict: exactly MinimumAdvanceDays out does not qualify.
func (c *Calculator) Eligible(daysUntilTravel int) bool {
	return daysUntilTravel > c.cfg.MinimumAdvanceDays
}

// Calculate produces the full plan decision for a flight priced at baseCost
// departing on travelDate, booked on bookingDate. An ineligible result still
// carries the fee breakdown: callers need the total price for
// full-payment-only bookings.
func (c *Calculator) Calculate(baseCost decimal.Decimal, travelDate, bookingDate time.Time) domain.PlanResult {
	fees, days := c.Fees(baseCost, travelDate, bookingDate)

	result := domain.PlanResult{
		FeeBreakdown:    fees,
		DaysUntilTravel: days,
	}
	if !c.Eligible(days) {
		result.Reason = IneligibleReason
		return result
	}

	result.Eligible = true
	result.Cadence = CadenceWeekly
	c.buildSchedule(&result, travelDate, bookingDate)
	return result
}

// buildSchedule fills in deposit, instalment amounts and due dates for an
// eligible result.
func (c *Calculator) buildSchedule(r *domain.PlanResult, travelDate, bookingDate time.Time) {
	price := r.FeeBreakdown.FlightPrice

	weeksUntilTravel := r.DaysUntilTravel / 7
	weeksAvailable := weeksUntilTravel - 2
	if weeksAvailable < 0 {
		weeksAvailable = 0
	}
	count := weeksAvailable
	if count > c.cfg.MaxInstallmentWeeks {
		count = c.cfg.MaxInstallmentWeeks
	}

	deposit := price.Mul(c.cfg.DepositPercentage).Round(2)
	remaining := price.Sub(deposit)

	// Bookings eligible but inside the three-week window would compute zero
	// instalments. The remaining balance is never dropped: it becomes a
	// single final payment on the cutoff date.
	if count == 0 {
		count = 1
	}

	weekly := remaining.DivRound(decimal.NewFromInt(int64(count)), 2)

	r.DepositAmount = deposit
	r.InstallmentAmount = weekly
	r.InstallmentCount = count

	cutoff := travelDate.AddDate(0, 0, -c.cfg.MinGapBeforeTravelDays)

	schedule := make([]domain.PaymentScheduleItem, 0, count+1)
	schedule = append(schedule, domain.PaymentScheduleItem{
		PaymentNumber: 1,
		DueDate:       bookingDate,
		Amount:        deposit,
		Description:   "Deposit - Due immediately",
	})

	paid := decimal.Zero
	for i := 1; i <= count; i++ {
		due := bookingDate.AddDate(0, 0, 7*i)
		if due.After(cutoff) {
			// Trailing instalments collapse onto the cutoff date rather than
			// spill into the final two weeks before travel.
			due = cutoff
		}

		amount := weekly
		if i == count {
			// The last instalment absorbs the rounding residual so that
			// deposit + instalments equals the flight price exactly.
			amount = remaining.Sub(paid)
		}
		paid = paid.Add(amount)

		desc := fmt.Sprintf("Weekly Payment %d - Due %s", i, due.Format("02 Jan 2006"))
		if i == count {
			desc = fmt.Sprintf("Final Payment - Due %s", due.Format("02 Jan 2006"))
		}

		schedule = append(schedule, domain.PaymentScheduleItem{
			PaymentNumber: i + 1,
			DueDate:       due,
			Amount:        amount,
			Description:   desc,
		})
	}

	r.Schedule = schedule
}

// daysBetween counts calendar days from a to b, rounding partial days up. Both
// instants are reduced to UTC dates first so time-of-day never shifts the
// eligibility window.
func daysBetween(a, b time.Time) int {
	from := truncateToDay(a)
	to := truncateToDay(b)
	diff := to.Sub(from)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
