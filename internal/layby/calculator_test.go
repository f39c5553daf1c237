package layby

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyfare/layby/internal/domain"
)

var bookedOn = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func travelIn(days int) time.Time {
	return bookedOn.AddDate(0, 0, days)
}

func scheduleSum(r domain.PlanResult) decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Schedule {
		total = total.Add(item.Amount)
	}
	return total
}

func TestCalculate_LongHorizon(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	result := calc.Calculate(decimal.NewFromInt(1000), travelIn(180), bookedOn)

	require.True(t, result.Eligible)
	assert.Empty(t, result.Reason)
	assert.Equal(t, 180, result.DaysUntilTravel)
	assert.True(t, result.DepositAmount.Equal(decimal.NewFromFloat(200.00)), "deposit %s", result.DepositAmount)
	// floor(180/7) = 25 weeks, minus the two-week buffer
	assert.Equal(t, 23, result.InstallmentCount)
	assert.True(t, result.InstallmentAmount.Equal(decimal.NewFromFloat(34.78)), "weekly %s", result.InstallmentAmount)
	assert.Equal(t, "weekly", result.Cadence)

	// deposit + instalments covers the flight price exactly; the final
	// instalment absorbs the rounding residual
	assert.True(t, scheduleSum(result).Equal(decimal.NewFromInt(1000)), "sum %s", scheduleSum(result))
	last := result.Schedule[len(result.Schedule)-1]
	assert.True(t, last.Amount.Equal(decimal.NewFromFloat(34.84)), "last %s", last.Amount)
}

func TestCalculate_TooCloseToTravel(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	result := calc.Calculate(decimal.NewFromInt(500), travelIn(10), bookedOn)

	assert.False(t, result.Eligible)
	assert.Equal(t, IneligibleReason, result.Reason)
	assert.Empty(t, result.Schedule)
	assert.Equal(t, 10, result.DaysUntilTravel)
	// fee breakdown is still returned for full-payment bookings
	assert.True(t, result.FeeBreakdown.FlightPrice.Equal(decimal.NewFromInt(500)))
}

func TestCalculate_AdvanceWindowBoundary(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	// exactly 14 days out: the threshold is strict
	atThreshold := calc.Calculate(decimal.NewFromInt(500), travelIn(14), bookedOn)
	assert.False(t, atThreshold.Eligible)
	assert.Equal(t, IneligibleReason, atThreshold.Reason)

	pastThreshold := calc.Calculate(decimal.NewFromInt(500), travelIn(15), bookedOn)
	assert.True(t, pastThreshold.Eligible)
}

func TestCalculate_InstallmentCountCapped(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	result := calc.Calculate(decimal.NewFromInt(300), travelIn(400), bookedOn)

	require.True(t, result.Eligible)
	assert.Equal(t, 26, result.InstallmentCount)
	assert.Len(t, result.Schedule, 27)
	assert.True(t, scheduleSum(result).Equal(decimal.NewFromInt(300)))
}

func TestCalculate_DepositRounding(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	result := calc.Calculate(decimal.NewFromFloat(333.33), travelIn(90), bookedOn)

	require.True(t, result.Eligible)
	assert.True(t, result.DepositAmount.Equal(decimal.NewFromFloat(66.67)), "deposit %s", result.DepositAmount)

	instalments := decimal.Zero
	for _, item := range result.Schedule[1:] {
		instalments = instalments.Add(item.Amount)
	}
	assert.True(t, instalments.Equal(decimal.NewFromFloat(266.66)), "instalments %s", instalments)
}

func TestCalculate_ScheduleDatesMonotonicAndBounded(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	for _, days := range []int{15, 20, 30, 50, 90, 179, 500} {
		travel := travelIn(days)
		result := calc.Calculate(decimal.NewFromFloat(847.20), travel, bookedOn)
		require.True(t, result.Eligible, "days=%d", days)

		cutoff := travel.AddDate(0, 0, -14)
		prev := result.Schedule[0].DueDate
		assert.True(t, prev.Equal(bookedOn), "deposit due on booking date")
		for _, item := range result.Schedule[1:] {
			assert.False(t, item.DueDate.Before(prev), "days=%d item=%d", days, item.PaymentNumber)
			assert.False(t, item.DueDate.After(cutoff), "days=%d item=%d past cutoff", days, item.PaymentNumber)
			prev = item.DueDate
		}

		assert.LessOrEqual(t, result.InstallmentCount, 26)
		assert.True(t, scheduleSum(result).Equal(result.FeeBreakdown.FlightPrice), "days=%d", days)
	}
}

// Bookings between 15 and 20 days out clear the advance window but leave no
// whole instalment weeks. The remainder folds into a single final payment on
// the cutoff date instead of being dropped.
func TestCalculate_ShortWindowFoldsIntoFinalPayment(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	result := calc.Calculate(decimal.NewFromInt(600), travelIn(15), bookedOn)

	require.True(t, result.Eligible)
	require.Equal(t, 1, result.InstallmentCount)
	require.Len(t, result.Schedule, 2)

	final := result.Schedule[1]
	assert.True(t, final.Amount.Equal(decimal.NewFromInt(480)), "final %s", final.Amount)
	assert.True(t, final.DueDate.Equal(travelIn(15).AddDate(0, 0, -14)))
	assert.Contains(t, final.Description, "Final Payment")
	assert.True(t, scheduleSum(result).Equal(decimal.NewFromInt(600)))
}

// When the naive weekly cadence would overshoot the cutoff, the due date is
// clamped down to exactly travelDate - 14 days. Current behavior, kept
// deliberately.
func TestCalculate_OvershootingDueDatesClampToCutoff(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	for days := 15; days <= 20; days++ {
		travel := travelIn(days)
		result := calc.Calculate(decimal.NewFromInt(400), travel, bookedOn)
		require.True(t, result.Eligible, "days=%d", days)
		require.Equal(t, 1, result.InstallmentCount, "days=%d", days)

		// a naive booking date + 7 would land inside the buffer
		cutoff := travel.AddDate(0, 0, -14)
		assert.True(t, result.Schedule[1].DueDate.Equal(cutoff), "days=%d", days)
	}
}

func TestCalculate_PastTravelDate(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	result := calc.Calculate(decimal.NewFromInt(250), travelIn(-3), bookedOn)

	assert.False(t, result.Eligible)
	assert.Equal(t, -3, result.DaysUntilTravel)
	assert.Empty(t, result.Schedule)
}

func TestCalculate_Deterministic(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	a := calc.Calculate(decimal.NewFromFloat(1234.56), travelIn(100), bookedOn)
	b := calc.Calculate(decimal.NewFromFloat(1234.56), travelIn(100), bookedOn)

	assert.Equal(t, a, b)
}

func TestFees_RatesApplied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdminFeeRate = decimal.NewFromFloat(0.02)
	cfg.LayByFeeRate = decimal.NewFromFloat(0.03)
	calc := NewCalculator(cfg)

	fees, days := calc.Fees(decimal.NewFromInt(1000), travelIn(60), bookedOn)
	assert.Equal(t, 60, days)
	assert.True(t, fees.AdminFee.Equal(decimal.NewFromInt(20)))
	assert.True(t, fees.LayByFee.Equal(decimal.NewFromInt(30)))
	assert.True(t, fees.FlightPrice.Equal(decimal.NewFromInt(1050)))
}

// The lay-by fee is waived when the booking is inside the advance window; the
// admin fee is not.
func TestFees_LayByFeeWaivedInsideWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdminFeeRate = decimal.NewFromFloat(0.02)
	cfg.LayByFeeRate = decimal.NewFromFloat(0.03)
	calc := NewCalculator(cfg)

	fees, days := calc.Fees(decimal.NewFromInt(1000), travelIn(10), bookedOn)
	assert.Equal(t, 10, days)
	assert.True(t, fees.AdminFee.Equal(decimal.NewFromInt(20)))
	assert.True(t, fees.LayByFee.IsZero())
	assert.True(t, fees.FlightPrice.Equal(decimal.NewFromInt(1020)))
}

func TestDaysBetween_PartialDaysRoundUp(t *testing.T) {
	today := time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)
	travel := time.Date(2026, 3, 17, 1, 0, 0, 0, time.UTC)

	// both instants reduce to UTC dates before counting
	assert.Equal(t, 15, daysBetween(today, travel))
	assert.Equal(t, 0, daysBetween(today, today))
	assert.Equal(t, -2, daysBetween(travel, travel.AddDate(0, 0, -2)))
}
