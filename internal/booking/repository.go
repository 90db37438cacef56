package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Create inserts a new booking row. Slot exclusivity is enforced by the
	// database itself (partial unique index over non-cancelled rows), so a
	// losing racer gets ErrSlotTaken, never a double insert.
	Create(ctx context.Context, b *Booking) error

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// SetPaymentOutcome applies one oracle result to the booking row,
	// guarded by the payment status the caller observed. A guard miss
	// (status moved concurrently, or the booking was cancelled) returns
	// ErrStateConflict and changes nothing.
	SetPaymentOutcome(ctx context.Context, id string, expected PaymentStatus, succeeded bool, paymentID string) error

	// Cancel marks the booking cancelled, releasing its slot for future
	// reservations. Guarded against concurrent cancellation.
	Cancel(ctx context.Context, id string, at time.Time) error

	// Stats recomputes the dashboard aggregates over all booking rows.
	Stats(ctx context.Context) (*Stats, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// The schema carries:
//   CREATE UNIQUE INDEX bookings_slot_key
//   ON public.bookings (service_id, booking_date, time_slot)
//   WHERE status <> 'cancelled';
// which is what makes Create the single atomic reservation step.

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("user_id", "service_id", "booking_date", "time_slot", "status", "payment_status", "total_amount", "notes").
		Values(b.UserID, b.ServiceID, b.BookingDate, b.TimeSlot, b.Status, b.PaymentStatus, b.TotalAmount, b.Notes).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"b.id", "b.user_id", "u.email", "b.service_id", "s.title",
		"b.booking_date", "b.time_slot", "b.status", "b.payment_status",
		"b.payment_id", "b.total_amount", "b.notes", "b.created_at", "b.cancelled_at",
	).
		From("public.bookings b").
		Join("public.users u ON b.user_id = u.id").
		Join("public.services s ON b.service_id = s.id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)

	var b Booking
	if err := row.Scan(
		&b.ID, &b.UserID, &b.UserEmail, &b.ServiceID, &b.ServiceTitle,
		&b.BookingDate, &b.TimeSlot, &b.Status, &b.PaymentStatus,
		&b.PaymentID, &b.TotalAmount, &b.Notes, &b.CreatedAt, &b.CancelledAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"b.id", "b.user_id", "u.email", "b.service_id", "s.title",
		"b.booking_date", "b.time_slot", "b.status", "b.payment_status",
		"b.payment_id", "b.total_amount", "b.notes", "b.created_at", "b.cancelled_at",
		"count(*) OVER() as total_count",
	).
		From("public.bookings b").
		Join("public.users u ON b.user_id = u.id").
		Join("public.services s ON b.service_id = s.id")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.ServiceID != "" {
		query = query.Where(squirrel.Eq{"b.service_id": filter.ServiceID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.PaymentStatus != "" {
		query = query.Where(squirrel.Eq{"b.payment_status": filter.PaymentStatus})
	}
	if filter.DateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"b.booking_date": filter.DateFrom})
	}
	if filter.DateTo != nil {
		query = query.Where(squirrel.LtOrEq{"b.booking_date": filter.DateTo})
	}

	query = query.OrderBy("b.created_at DESC")

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.UserEmail, &b.ServiceID, &b.ServiceTitle,
			&b.BookingDate, &b.TimeSlot, &b.Status, &b.PaymentStatus,
			&b.PaymentID, &b.TotalAmount, &b.Notes, &b.CreatedAt, &b.CancelledAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) SetPaymentOutcome(ctx context.Context, id string, expected PaymentStatus, succeeded bool, paymentID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	newPayment := PaymentFailed
	if succeeded {
		newPayment = PaymentSuccess
	}

	update := psql.Update("public.bookings").
		Set("payment_status", newPayment).
		Where(squirrel.Eq{"id": id, "payment_status": expected}).
		Where(squirrel.NotEq{"status": StatusCancelled})

	if paymentID != "" {
		update = update.Set("payment_id", paymentID)
	}
	// Status follows the payment outcome: a successful charge confirms the
	// booking, a failed one leaves it pending/retryable.
	if succeeded {
		update = update.Set("status", StatusConfirmed)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build payment outcome query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("apply payment outcome failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *pgxRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", StatusCancelled).
		Set("cancelled_at", at).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build cancel booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("cancel booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *pgxRepository) Stats(ctx context.Context) (*Stats, error) {
	const query = `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'pending'),
			count(*) FILTER (WHERE status = 'confirmed'),
			count(*) FILTER (WHERE status = 'cancelled'),
			COALESCE(sum(total_amount) FILTER (WHERE payment_status = 'success'), 0)
		FROM public.bookings
	`

	var s Stats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&s.TotalBookings,
		&s.PendingBookings,
		&s.ConfirmedBookings,
		&s.CancelledBookings,
		&s.TotalRevenue,
	); err != nil {
		return nil, fmt.Errorf("compute booking stats failed: %w", err)
	}
	return &s, nil
}
