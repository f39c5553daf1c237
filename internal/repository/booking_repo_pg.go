package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skyfare/layby/internal/domain"
)

type BookingRepository interface {
	CreatePending(ctx context.Context, booking *domain.Booking) error
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
	ReleaseSeat(ctx context.Context, flightID int64) error
	GetPlanByBookingID(ctx context.Context, bookingID int64) (*domain.PaymentPlan, error)
	DueScheduleItems(ctx context.Context, on time.Time) ([]domain.PlanScheduleRow, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, flight_id, seat_number, token, status, payment_mode, expires_at, email, created_at, updated_at`

// CreatePending reserves a seat and inserts the booking, and when the booking
// carries a payment plan, the plan and its schedule rows, all in one
// transaction.
func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var available int
	if err := tx.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats - 1, updated_at = now() WHERE id=$1 AND available_seats > 0 RETURNING available_seats`, booking.FlightID).Scan(&available); err != nil {
		return err
	}
	if available < 0 {
		return errors.New("no available seats")
	}

	booking.Status = domain.BookingStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (flight_id, seat_number, token, status, payment_mode, expires_at, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`, booking.FlightID, booking.SeatNumber, booking.Token, booking.Status, booking.PaymentMode, booking.ExpiresAt, booking.Email).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	if booking.Plan != nil {
		plan := booking.Plan
		plan.BookingID = booking.ID
		if err := tx.QueryRow(ctx, `INSERT INTO payment_plans (booking_id, flight_price, deposit_amount, installment_amount, installment_count, cadence)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at`, plan.BookingID, plan.FlightPrice, plan.DepositAmount, plan.InstallmentAmount, plan.InstallmentCount, plan.Cadence).
			Scan(&plan.ID, &plan.CreatedAt); err != nil {
			return err
		}
		for i := range plan.Schedule {
			row := &plan.Schedule[i]
			row.PlanID = plan.ID
			if row.Status == "" {
				row.Status = domain.ScheduleItemStatusPending
			}
			if err := tx.QueryRow(ctx, `INSERT INTO payment_schedule_items (plan_id, payment_number, due_date, amount, description, status)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id`, row.PlanID, row.PaymentNumber, row.DueDate, row.Amount, row.Description, row.Status).
				Scan(&row.ID); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE token=$1`, token)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.FlightID, &b.SeatNumber, &b.Token, &b.Status, &b.PaymentMode, &b.ExpiresAt, &b.Email, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE token=$2 RETURNING `+bookingColumns, status, token)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.FlightID, &b.SeatNumber, &b.Token, &b.Status, &b.PaymentMode, &b.ExpiresAt, &b.Email, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE status=$2 AND expires_at <= $3 RETURNING `+bookingColumns, domain.BookingStatusExpired, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.FlightID, &b.SeatNumber, &b.Token, &b.Status, &b.PaymentMode, &b.ExpiresAt, &b.Email, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		expired = append(expired, b)
	}
	return expired, rows.Err()
}

func (r *PGBookingRepository) ReleaseSeat(ctx context.Context, flightID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE flights SET available_seats = available_seats + 1, updated_at = now() WHERE id = $1`, flightID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("flight not found")
	}
	return nil
}

func (r *PGBookingRepository) GetPlanByBookingID(ctx context.Context, bookingID int64) (*domain.PaymentPlan, error) {
	row := r.db.QueryRow(ctx, `SELECT id, booking_id, flight_price, deposit_amount, installment_amount, installment_count, cadence, created_at
		FROM payment_plans WHERE booking_id=$1`, bookingID)
	var p domain.PaymentPlan
	if err := row.Scan(&p.ID, &p.BookingID, &p.FlightPrice, &p.DepositAmount, &p.InstallmentAmount, &p.InstallmentCount, &p.Cadence, &p.CreatedAt); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT id, plan_id, payment_number, due_date, amount, description, status
		FROM payment_schedule_items WHERE plan_id=$1 ORDER BY payment_number`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.PlanScheduleRow
		if err := rows.Scan(&item.ID, &item.PlanID, &item.PaymentNumber, &item.DueDate, &item.Amount, &item.Description, &item.Status); err != nil {
			return nil, err
		}
		p.Schedule = append(p.Schedule, item)
	}
	return &p, rows.Err()
}

// DueScheduleItems lists pending schedule items due on the given calendar day,
// for the reminder sweep.
func (r *PGBookingRepository) DueScheduleItems(ctx context.Context, on time.Time) ([]domain.PlanScheduleRow, error) {
	rows, err := r.db.Query(ctx, `SELECT id, plan_id, payment_number, due_date, amount, description, status
		FROM payment_schedule_items
		WHERE status=$1 AND due_date >= $2 AND due_date < $2 + interval '1 day'
		ORDER BY plan_id, payment_number`, domain.ScheduleItemStatusPending, on)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.PlanScheduleRow
	for rows.Next() {
		var item domain.PlanScheduleRow
		if err := rows.Scan(&item.ID, &item.PlanID, &item.PaymentNumber, &item.DueDate, &item.Amount, &item.Description, &item.Status); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
