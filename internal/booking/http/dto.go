package http

import (
	"time"

	"github.com/calmora/wellness-booking-backend/internal/booking"
	catalogHttp "github.com/calmora/wellness-booking-backend/internal/catalog/http"
	"github.com/calmora/wellness-booking-backend/internal/pkg/request"
	userHttp "github.com/calmora/wellness-booking-backend/internal/user/http"
)

// CreateBookingRequest is the payload for POST /v1/bookings.
// booking_date uses the calendar date format 2006-01-02.
type CreateBookingRequest struct {
	ServiceID   string `json:"service_id" binding:"required,uuid"`
	BookingDate string `json:"booking_date" binding:"required"`
	TimeSlot    string `json:"time_slot" binding:"required"`
	Notes       string `json:"notes"`
}

// ParseDate parses the booking_date field.
func (r *CreateBookingRequest) ParseDate() (time.Time, error) {
	return time.Parse("2006-01-02", r.BookingDate)
}

// ListBookingsRequest defines query parameters for the admin booking list.
type ListBookingsRequest struct {
	request.ListParams
	UserID        string     `form:"user_id" binding:"omitempty,uuid"`
	ServiceID     string     `form:"service_id" binding:"omitempty,uuid"`
	Status        string     `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=pending success failed"`
	DateFrom      *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo        *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.DateFrom != nil && r.DateTo != nil && r.DateFrom.After(*r.DateTo) {
		return booking.ErrInvalidSlot
	}
	return nil
}

type BookingResponse struct {
	ID            string                 `json:"id"`
	User          userHttp.UserTag       `json:"user"`
	Service       catalogHttp.ServiceTag `json:"service"`
	BookingDate   string                 `json:"booking_date"`
	TimeSlot      string                 `json:"time_slot"`
	Status        string                 `json:"status"`
	PaymentStatus string                 `json:"payment_status"`
	PaymentID     *string                `json:"payment_id"`
	TotalAmount   float64                `json:"total_amount"`
	Notes         *string                `json:"notes"`
	CreatedAt     time.Time              `json:"created_at"`
	CancelledAt   *time.Time             `json:"cancelled_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		User:          userHttp.UserTag{ID: b.UserID, Email: b.UserEmail},
		Service:       catalogHttp.ServiceTag{ID: b.ServiceID, Title: b.ServiceTitle},
		BookingDate:   b.BookingDate.Format("2006-01-02"),
		TimeSlot:      b.TimeSlot,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		PaymentID:     b.PaymentID,
		TotalAmount:   b.TotalAmount,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
		CancelledAt:   b.CancelledAt,
	}
}

// SlotsResponse lists the fixed bookable slot labels.
type SlotsResponse struct {
	Slots []string `json:"slots"`
}

// DashboardResponse is the operator dashboard snapshot.
type DashboardResponse struct {
	TotalUsers        int     `json:"total_users"`
	TotalBookings     int     `json:"total_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
}
