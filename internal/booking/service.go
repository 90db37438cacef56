package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/calmora/wellness-booking-backend/internal/catalog"
	"github.com/calmora/wellness-booking-backend/internal/mail"
	"github.com/calmora/wellness-booking-backend/internal/payment"
)

// CreateRequest carries the inputs for reserving a slot.
type CreateRequest struct {
	UserID      string
	ServiceID   string
	BookingDate time.Time
	TimeSlot    string
	Notes       string
}

type Service interface {
	// Create reserves the slot, snapshots the service price and immediately
	// attempts payment. The returned booking reflects the payment outcome,
	// so callers never need a follow-up read.
	Create(ctx context.Context, req CreateRequest) (*Booking, error)

	// RetryPayment re-invokes the payment gateway for a booking whose last
	// charge failed. Owner only.
	RetryPayment(ctx context.Context, id string, actor Actor) (*Booking, error)

	// Cancel cancels a booking, subject to the cancellation policy, and
	// releases its slot. Owner or admin.
	Cancel(ctx context.Context, id string, actor Actor) (*Booking, error)

	GetByID(ctx context.Context, id string, actor Actor) (*Booking, error)
	ListMine(ctx context.Context, userID string, page, pageSize int) ([]*Booking, int, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo    Repository
	catalog catalog.Manager
	oracle  payment.Oracle
	mailer  mail.Mailer
	policy  CancellationPolicy
	logger  *zap.Logger

	paymentTimeout time.Duration
	now            func() time.Time
}

// NewService creates the booking Service.
func NewService(
	repo Repository,
	cat catalog.Manager,
	oracle payment.Oracle,
	mailer mail.Mailer,
	policy CancellationPolicy,
	paymentTimeout time.Duration,
	logger *zap.Logger,
) Service {
	return &service{
		repo:           repo,
		catalog:        cat,
		oracle:         oracle,
		mailer:         mailer,
		policy:         policy,
		logger:         logger,
		paymentTimeout: paymentTimeout,
		now:            time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if !IsValidSlot(req.TimeSlot) {
		return nil, ErrInvalidSlot
	}

	date := normalizeDate(req.BookingDate)
	start, err := SlotStart(date, req.TimeSlot)
	if err != nil {
		return nil, err
	}
	if start.Before(s.now().UTC()) {
		return nil, ErrDatePast
	}

	svc, err := s.catalog.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceUnavailable
	}

	b := &Booking{
		UserID:        req.UserID,
		ServiceID:     svc.ID,
		BookingDate:   date,
		TimeSlot:      req.TimeSlot,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		// Price snapshot: later catalog edits never touch this booking.
		TotalAmount: svc.Price,
		Notes:       optionalText(req.Notes),
	}

	// Single atomic reservation step; a concurrent create for the same
	// (service, date, slot) loses here with ErrSlotTaken.
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	if err := s.chargeAndApply(ctx, b.ID, b.TotalAmount, PaymentPending); err != nil {
		return nil, err
	}

	out, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	s.notifyPaymentOutcome(ctx, out)
	return out, nil
}

func (s *service) RetryPayment(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Retry is strictly owner-only; admins manage via cancellation instead.
	if actor.UserID != b.UserID {
		return nil, ErrPermissionDenied
	}

	if b.Status == StatusCancelled || b.PaymentStatus != PaymentFailed {
		return nil, ErrNotRetryable
	}

	if err := s.chargeAndApply(ctx, b.ID, b.TotalAmount, PaymentFailed); err != nil {
		return nil, err
	}

	out, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	if out.PaymentStatus == PaymentSuccess {
		s.sendMail(ctx, out.UserEmail, "Payment Successful!",
			fmt.Sprintf("Your payment for booking %s is now confirmed! Payment ID: %s",
				out.ID, derefOr(out.PaymentID, "")))
	}
	return out, nil
}

func (s *service) Cancel(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin && actor.UserID != b.UserID {
		return nil, ErrPermissionDenied
	}

	now := s.now().UTC()
	if err := s.policy.CanCancel(b, now); err != nil {
		return nil, err
	}

	if err := s.repo.Cancel(ctx, b.ID, now); err != nil {
		// A guard miss here means another cancel won the race.
		if errors.Is(err, ErrStateConflict) {
			return nil, ErrAlreadyCancelled
		}
		return nil, err
	}

	out, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	s.sendMail(ctx, out.UserEmail, "Booking Cancelled",
		fmt.Sprintf("Your booking for %s on %s at %s has been cancelled successfully.",
			out.ServiceTitle, out.BookingDate.Format("2006-01-02"), out.TimeSlot))

	return out, nil
}

func (s *service) GetByID(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && actor.UserID != b.UserID {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) ListMine(ctx context.Context, userID string, page, pageSize int) ([]*Booking, int, error) {
	return s.repo.List(ctx, Filter{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// chargeAndApply invokes the payment gateway under a bounded timeout and
// applies the outcome to the booking row as one guarded write. A gateway
// error or timeout counts as a failed charge, leaving the booking
// retryable; it never aborts the operation.
func (s *service) chargeAndApply(ctx context.Context, id string, amount float64, expected PaymentStatus) error {
	chargeCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	res, err := s.oracle.Charge(chargeCtx, amount)
	if err != nil {
		s.logger.Warn("payment charge failed",
			zap.String("booking_id", id),
			zap.Error(err),
		)
		res = payment.Result{Succeeded: false}
	}

	return s.repo.SetPaymentOutcome(ctx, id, expected, res.Succeeded, res.PaymentID)
}

// notifyPaymentOutcome sends the post-creation email for either outcome.
func (s *service) notifyPaymentOutcome(ctx context.Context, b *Booking) {
	if b.PaymentStatus == PaymentSuccess {
		s.sendMail(ctx, b.UserEmail, "Booking Confirmed!",
			fmt.Sprintf("Your booking for %s on %s at %s is confirmed! Payment ID: %s",
				b.ServiceTitle, b.BookingDate.Format("2006-01-02"), b.TimeSlot,
				derefOr(b.PaymentID, "")))
		return
	}
	s.sendMail(ctx, b.UserEmail, "Payment Failed",
		fmt.Sprintf("Payment for %s failed. Please retry from your bookings page.", b.ServiceTitle))
}

// sendMail is best-effort: notification failures are logged, never returned.
func (s *service) sendMail(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.logger.Warn("notification email failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

// normalizeDate truncates an instant to its calendar date at midnight UTC.
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
