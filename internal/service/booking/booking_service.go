package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skyfare/layby/internal/domain"
	"github.com/skyfare/layby/internal/kafka"
	"github.com/skyfare/layby/internal/layby"
	"github.com/skyfare/layby/internal/repository"
)

// ErrPlanIneligible is returned when a lay-by booking is requested for a
// flight too close to departure. Callers surface the calculator's reason and
// re-offer full payment.
var ErrPlanIneligible = errors.New(layby.IneligibleReason)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, token string) (*domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
	PublishPaymentReminders(ctx context.Context) (int, error)
}

type Cache interface {
	AcquireSeatLock(ctx context.Context, flightID int64, seatNumber int, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, flightID int64, seatNumber int) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	cache              Cache
	producer           Producer
	calculator         *layby.Calculator
	log                *zap.Logger
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
	confirmationTTL    time.Duration
	now                func() time.Time
}

type CreateBookingInput struct {
	FlightID    int64              `json:"flight_id"`
	SeatNumber  int                `json:"seat_number"`
	Email       string             `json:"email"`
	PaymentMode domain.PaymentMode `json:"payment_mode"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithClock overrides the service's time source. Tests use it to pin the
// booking date the calculator sees.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	cache Cache,
	producer Producer,
	calculator *layby.Calculator,
	log *zap.Logger,
	bookingTopic string,
	holdTTL, confirmationTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		flights:         flights,
		cache:           cache,
		producer:        producer,
		calculator:      calculator,
		log:             log,
		bookingTopic:    bookingTopic,
		holdTTL:         holdTTL,
		confirmationTTL: confirmationTTL,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.SeatNumber <= 0 {
		return nil, errors.New("seat number must be positive")
	}
	if input.Email == "" {
		return nil, errors.New("email is required")
	}
	if input.PaymentMode == "" {
		input.PaymentMode = domain.PaymentModeFull
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSeatLock(ctx, input.FlightID, input.SeatNumber, s.holdTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("seat is already locked")
		}
		locked = true
	}

	releaseLock := func() {
		if locked {
			_ = s.cache.ReleaseSeatLock(ctx, input.FlightID, input.SeatNumber)
		}
	}

	expiresIn := s.confirmationTTL
	if expiresIn == 0 {
		expiresIn = s.holdTTL
	}

	booking := &domain.Booking{
		FlightID:    input.FlightID,
		SeatNumber:  input.SeatNumber,
		Token:       uuid.NewString(),
		PaymentMode: input.PaymentMode,
		ExpiresAt:   s.now().Add(expiresIn),
		Email:       input.Email,
	}

	if input.PaymentMode == domain.PaymentModeLayBy {
		plan, err := s.buildPlan(ctx, input.FlightID)
		if err != nil {
			releaseLock()
			return nil, err
		}
		booking.Plan = plan
	}

	if err := s.bookings.CreatePending(ctx, booking); err != nil {
		releaseLock()
		return nil, err
	}

	booking.Status = domain.BookingStatusPending
	if err := s.publish(ctx, "booking_created", booking); err != nil {
		s.log.Warn("publish booking_created failed", zap.String("token", booking.Token), zap.Error(err))
	}
	return booking, nil
}

// buildPlan prices the flight's payment plan for a booking made now. The
// calculator stays pure: the booking date is resolved here, at the boundary.
func (s *BookingService) buildPlan(ctx context.Context, flightID int64) (*domain.PaymentPlan, error) {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}

	result := s.calculator.Calculate(flight.Price(), flight.DepartureTime, s.now())
	if !result.Eligible {
		return nil, ErrPlanIneligible
	}

	plan := &domain.PaymentPlan{
		FlightPrice:       result.FeeBreakdown.FlightPrice,
		DepositAmount:     result.DepositAmount,
		InstallmentAmount: result.InstallmentAmount,
		InstallmentCount:  result.InstallmentCount,
		Cadence:           result.Cadence,
	}
	for _, item := range result.Schedule {
		plan.Schedule = append(plan.Schedule, domain.PlanScheduleRow{
			PaymentNumber: item.PaymentNumber,
			DueDate:       item.DueDate,
			Amount:        item.Amount,
			Description:   item.Description,
			Status:        domain.ScheduleItemStatusPending,
		})
	}
	return plan, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error) {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, errors.New("booking is not pending")
	}

	updated, err := s.bookings.UpdateStatus(ctx, token, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_confirmed", updated); err != nil {
		s.log.Warn("publish booking_confirmed failed", zap.String("token", updated.Token), zap.Error(err))
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSeatLock(ctx, updated.FlightID, updated.SeatNumber)
	}
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, token string) (*domain.Booking, error) {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled || current.Status == domain.BookingStatusExpired {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, token, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	_ = s.bookings.ReleaseSeat(ctx, updated.FlightID)
	if err := s.publish(ctx, "booking_cancelled", updated); err != nil {
		s.log.Warn("publish booking_cancelled failed", zap.String("token", updated.Token), zap.Error(err))
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSeatLock(ctx, updated.FlightID, updated.SeatNumber)
	}
	return updated, nil
}

func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	deadline := s.now()
	expired, err := s.bookings.ExpirePendingBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for _, b := range expired {
		_ = s.bookings.ReleaseSeat(ctx, b.FlightID)
		_ = s.publish(ctx, "booking_expired", &b)
		if s.cache != nil {
			_ = s.cache.ReleaseSeatLock(ctx, b.FlightID, b.SeatNumber)
		}
	}
	return expired, nil
}

// PublishPaymentReminders emits a payment_due event for every pending schedule
// item due today. Returns the number of reminders published.
func (s *BookingService) PublishPaymentReminders(ctx context.Context) (int, error) {
	if s.producer == nil || s.notificationsTopic == "" {
		return 0, nil
	}

	items, err := s.bookings.DueScheduleItems(ctx, s.now())
	if err != nil {
		return 0, err
	}

	published := 0
	for _, item := range items {
		event := kafka.BookingEvent{
			Type:          "payment_due",
			NextDueDate:   item.DueDate.Format("2006-01-02"),
			NextDueAmount: item.Amount.StringFixed(2),
		}
		key := fmt.Sprintf("plan:%d:payment:%d", item.PlanID, item.PaymentNumber)
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.log.Warn("publish payment_due failed", zap.Int64("item_id", item.ID), zap.Error(err))
			continue
		}
		published++
	}
	return published, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		Token:       booking.Token,
		FlightID:    booking.FlightID,
		SeatNumber:  booking.SeatNumber,
		Email:       booking.Email,
		Status:      string(booking.Status),
		PaymentMode: string(booking.PaymentMode),
		ExpiresAt:   booking.ExpiresAt,
	}
	if plan := booking.Plan; plan != nil {
		event.DepositAmount = plan.DepositAmount.StringFixed(2)
		event.InstallmentCount = plan.InstallmentCount
		if len(plan.Schedule) > 1 {
			event.NextDueDate = plan.Schedule[1].DueDate.Format("2006-01-02")
			event.NextDueAmount = plan.Schedule[1].Amount.StringFixed(2)
		}
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Token, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.Token, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
