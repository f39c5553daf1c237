package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skyfare/layby/internal/kafka"
)

// Sender delivers booking and payment-plan notifications. Delivery is a stub:
// the message is logged where a mail provider call would go.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject := subjectFor(event)
	s.log.Info("send email",
		zap.String("to", event.Email),
		zap.String("subject", subject),
		zap.String("type", event.Type),
	)
	return nil
}

func subjectFor(event kafka.BookingEvent) string {
	switch event.Type {
	case "payment_due":
		return fmt.Sprintf("Payment of %s due %s", event.NextDueAmount, event.NextDueDate)
	case "booking_created":
		if event.PaymentMode == "LAY_BY" {
			return fmt.Sprintf("Booking held - deposit %s due now, %d weekly payments to follow", event.DepositAmount, event.InstallmentCount)
		}
		return "Booking held - awaiting confirmation"
	case "booking_confirmed":
		return "Booking confirmed"
	case "booking_cancelled":
		return "Booking cancelled"
	case "booking_expired":
		return "Booking expired"
	default:
		return "Booking update"
	}
}
