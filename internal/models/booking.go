package models

import "time"

// Booking statuses.
const (
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
)

// Booking reserves one slot at one station for a time window. A booking is
// created only against a slot that was "available" at that moment; its slot
// is released back to "available" when the booking is cancelled.
type Booking struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	StationID     int64     `json:"stationId"`
	SlotID        int64     `json:"slotId"`
	BookingDate   time.Time `json:"bookingDate"`
	StartTime     time.Time `json:"startTime"`
	Duration      int       `json:"duration"`
	Status        string    `json:"status"`
	Vehicle       string    `json:"vehicle,omitempty"`
	ConnectorType string    `json:"connectorType"`
	EstimatedCost float64   `json:"estimatedCost"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Active reports whether the booking still holds its slot.
func (b *Booking) Active() bool {
	return b.Status == BookingConfirmed || b.Status == BookingInProgress
}

// ValidBookingStatus reports whether the given value is a known booking status.
func ValidBookingStatus(status string) bool {
	switch status {
	case BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}
