package enums

import "strings"

// BookingStatus is the lifecycle state reported by the bookings API.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// NormalizeBookingStatus lower-cases whatever the API sent ("CONFIRMED", "Completed").
func NormalizeBookingStatus(value string) BookingStatus {
	return BookingStatus(strings.ToLower(strings.TrimSpace(value)))
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// CanModify reports whether the booking may still be cancelled or rescheduled.
func (b BookingStatus) CanModify() bool {
	return b == BookingStatusPending || b == BookingStatusConfirmed
}

// CanRate reports whether the customer may leave a rating.
func (b BookingStatus) CanRate() bool {
	return b == BookingStatusCompleted
}
