package booking

import (
	"net/http"
	"time"

	"github.com/calmora/wellness-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "booking not found")
	ErrSlotTaken          = apperror.New(http.StatusConflict, "time slot already booked")
	ErrInvalidSlot        = apperror.New(http.StatusBadRequest, "invalid time slot")
	ErrDatePast           = apperror.New(http.StatusBadRequest, "cannot create booking in the past")
	ErrServiceUnavailable = apperror.New(http.StatusNotFound, "service not found or not bookable")
	ErrNotRetryable       = apperror.New(http.StatusBadRequest, "payment is not retryable for this booking")
	ErrAlreadyCancelled   = apperror.New(http.StatusBadRequest, "booking already cancelled")
	ErrWindowClosed       = apperror.New(http.StatusBadRequest, "cannot cancel within 24 hours of the booking start")
	ErrPermissionDenied   = apperror.New(http.StatusForbidden, "permission denied")
	ErrStateConflict      = apperror.New(http.StatusConflict, "booking was modified concurrently, please retry")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// Booking is one reserved (service, date, time slot) appointment.
//
// Invariants maintained by the engine:
//   - at most one non-cancelled booking per (service_id, booking_date, time_slot)
//   - status confirmed if and only if payment_status success
//   - cancelled is terminal
//   - TotalAmount is the service price at creation time and never changes
type Booking struct {
	ID            string
	UserID        string
	UserEmail     string
	ServiceID     string
	ServiceTitle  string
	BookingDate   time.Time // calendar date, midnight UTC
	TimeSlot      string
	Status        Status
	PaymentStatus PaymentStatus
	PaymentID     *string
	TotalAmount   float64
	Notes         *string
	CreatedAt     time.Time
	CancelledAt   *time.Time
}

// Actor identifies the authenticated principal performing an operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

type Filter struct {
	UserID        string
	ServiceID     string
	Status        string
	PaymentStatus string
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	PageSize      int
}
