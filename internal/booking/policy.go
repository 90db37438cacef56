package booking

import "time"

// CancellationPolicy gates booking cancellation by a minimum advance notice
// before the appointment start.
type CancellationPolicy struct {
	MinNotice time.Duration
}

// DefaultCancellationPolicy requires cancellation at least 24 hours before
// the slot starts. Admins get no exemption from the window.
func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{MinNotice: 24 * time.Hour}
}

// CanCancel returns nil if the booking may be cancelled at instant now.
func (p CancellationPolicy) CanCancel(b *Booking, now time.Time) error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}

	start, err := SlotStart(b.BookingDate, b.TimeSlot)
	if err != nil {
		return err
	}

	if now.After(start.Add(-p.MinNotice)) {
		return ErrWindowClosed
	}
	return nil
}
