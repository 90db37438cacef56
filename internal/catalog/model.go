package catalog

import (
	"net/http"
	"time"

	"github.com/calmora/wellness-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "service not found")
	ErrInvalidPrice = apperror.New(http.StatusBadRequest, "price must not be negative")
	ErrInvalidInput = apperror.New(http.StatusBadRequest, "invalid input parameters")
)

// Service is a bookable catalog entry.
// Price is snapshotted into each booking at creation time, so later edits
// here never change already-created bookings.
type Service struct {
	ID              string
	Title           string
	Category        string
	Description     *string
	Price           float64
	DurationMinutes int
	ExpertName      *string
	ImageURL        *string
	IsActive        bool
	CreatedAt       time.Time
}

// Filter defines filter options for listing services.
type Filter struct {
	Category   string
	ActiveOnly bool
	Page       int
	PageSize   int
}
