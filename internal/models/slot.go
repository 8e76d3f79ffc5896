package models

// Slot statuses.
const (
	SlotAvailable = "available"
	SlotInUse     = "in_use"
	SlotBooked    = "booked"
)

// Slot is a single charging bay owned by a station. SlotNumber is unique
// within the station (1..TotalSlots) and ConnectorType must be one of the
// owning station's connector types.
type Slot struct {
	ID            int64  `json:"id"`
	StationID     int64  `json:"stationId"`
	SlotNumber    int    `json:"slotNumber"`
	Status        string `json:"status"`
	ConnectorType string `json:"connectorType"`
}

// ValidSlotStatus reports whether the given value is a known slot status.
func ValidSlotStatus(status string) bool {
	switch status {
	case SlotAvailable, SlotInUse, SlotBooked:
		return true
	}
	return false
}
