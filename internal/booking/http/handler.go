package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calmora/wellness-booking-backend/internal/auth"
	"github.com/calmora/wellness-booking-backend/internal/booking"
	"github.com/calmora/wellness-booking-backend/internal/pkg/response"
	"github.com/calmora/wellness-booking-backend/internal/user"
)

type Handler struct {
	service     booking.Service
	userService user.Service
}

func NewHandler(service booking.Service, userService user.Service) *Handler {
	return &Handler{
		service:     service,
		userService: userService,
	}
}

// actor builds the engine principal from the authenticated request context.
func actor(c *gin.Context) booking.Actor {
	return booking.Actor{
		UserID:  auth.GetUserID(c),
		IsAdmin: auth.GetUserRole(c) == string(user.RoleAdmin),
	}
}

// Create reserves a slot and immediately attempts payment.
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := req.ParseDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_date must be formatted as 2006-01-02"})
		return
	}

	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:      userID,
		ServiceID:   req.ServiceID,
		BookingDate: date,
		TimeSlot:    req.TimeSlot,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// ListMine returns the authenticated user's bookings, newest first.
func (h *Handler) ListMine(c *gin.Context) {
	var params ListBookingsRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	params.Normalize()

	bookings, total, err := h.service.ListMine(c.Request.Context(), auth.GetUserID(c), params.Page, params.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, params.Page, params.PageSize, total))
}

// Get returns one booking. Owner or admin.
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// RetryPayment re-attempts a failed payment. Owner only.
func (h *Handler) RetryPayment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.RetryPayment(c.Request.Context(), id, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Cancel cancels a booking within the allowed window. Owner or admin.
func (h *Handler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), id, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Slots returns the fixed set of bookable time slots.
func (h *Handler) Slots(c *gin.Context) {
	c.JSON(http.StatusOK, SlotsResponse{Slots: booking.SlotLabels()})
}

// ListAll returns bookings across all users with filters. Admin only.
func (h *Handler) ListAll(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	req.Normalize()

	filter := booking.Filter{
		UserID:        req.UserID,
		ServiceID:     req.ServiceID,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		DateFrom:      req.DateFrom,
		DateTo:        req.DateTo,
		Page:          req.Page,
		PageSize:      req.PageSize,
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// Dashboard returns the aggregate snapshot for the operator dashboard.
// Aggregates are recomputed from booking rows on every call.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute dashboard stats"})
		return
	}

	totalUsers, err := h.userService.CountCustomers(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count users"})
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		TotalUsers:        totalUsers,
		TotalBookings:     stats.TotalBookings,
		PendingBookings:   stats.PendingBookings,
		ConfirmedBookings: stats.ConfirmedBookings,
		CancelledBookings: stats.CancelledBookings,
		TotalRevenue:      stats.TotalRevenue,
	})
}
