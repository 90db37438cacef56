package booking

// Stats are the aggregate figures shown on the operator dashboard.
// They are recomputed from booking rows on every query; nothing is cached.
type Stats struct {
	TotalBookings     int
	PendingBookings   int
	ConfirmedBookings int
	CancelledBookings int
	TotalRevenue      float64
}

// ComputeStats folds a booking collection into aggregate figures.
// It is the reference implementation the SQL aggregate must agree with:
// total always equals pending + confirmed + cancelled, and revenue sums
// TotalAmount over exactly the bookings with a successful payment.
func ComputeStats(bookings []*Booking) Stats {
	var s Stats
	for _, b := range bookings {
		s.TotalBookings++
		switch b.Status {
		case StatusPending:
			s.PendingBookings++
		case StatusConfirmed:
			s.ConfirmedBookings++
		case StatusCancelled:
			s.CancelledBookings++
		}
		if b.PaymentStatus == PaymentSuccess {
			s.TotalRevenue += b.TotalAmount
		}
	}
	return s
}
