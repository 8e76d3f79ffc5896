package models

import "time"

// Station operating statuses.
const (
	StationOperational = "operational"
	StationMaintenance = "maintenance"
	StationOffline     = "offline"
)

// DefaultOperatingHours is applied when a station is created without one.
const DefaultOperatingHours = "24 hours, 7 days a week"

// Station is a physical charging location. AvailableSlots is derived state:
// it must always equal the number of owned slots whose status is "available"
// and is recomputed after every slot-status mutation, never written directly.
type Station struct {
	ID                    int64     `json:"id"`
	Name                  string    `json:"name"`
	Address               string    `json:"address"`
	City                  string    `json:"city"`
	State                 string    `json:"state"`
	ZipCode               string    `json:"zipCode"`
	Latitude              float64   `json:"latitude"`
	Longitude             float64   `json:"longitude"`
	TotalSlots            int       `json:"totalSlots"`
	AvailableSlots        int       `json:"availableSlots"`
	PricePerKwh           float64   `json:"pricePerKwh"`
	FastChargingAvailable bool      `json:"fastChargingAvailable"`
	Amenities             []string  `json:"amenities"`
	ConnectorTypes        []string  `json:"connectorTypes"`
	ImageURL              string    `json:"imageUrl,omitempty"`
	ContactPhone          string    `json:"contactPhone,omitempty"`
	ContactEmail          string    `json:"contactEmail,omitempty"`
	OperatingHours        string    `json:"operatingHours"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"createdAt"`
}

// HasConnectorType reports whether the station offers the given connector.
func (s *Station) HasConnectorType(connector string) bool {
	for _, c := range s.ConnectorTypes {
		if c == connector {
			return true
		}
	}
	return false
}
