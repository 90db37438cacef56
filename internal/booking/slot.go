package booking

import (
	"time"
)

// slotLabels is the fixed set of bookable time slots. Every booking claims
// exactly one label on one calendar date.
var slotLabels = []string{
	"09:00", "10:00", "11:00", "12:00",
	"13:00", "14:00", "15:00", "16:00", "17:00", "18:00",
}

// SlotLabels returns a copy of the bookable slot labels in order.
func SlotLabels() []string {
	out := make([]string, len(slotLabels))
	copy(out, slotLabels)
	return out
}

// IsValidSlot reports whether label belongs to the fixed slot set.
func IsValidSlot(label string) bool {
	for _, s := range slotLabels {
		if s == label {
			return true
		}
	}
	return false
}

// SlotStart combines a calendar date with a slot label into the UTC instant
// the appointment starts.
func SlotStart(date time.Time, label string) (time.Time, error) {
	t, err := time.Parse("15:04", label)
	if err != nil {
		return time.Time{}, ErrInvalidSlot
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, time.UTC,
	), nil
}
