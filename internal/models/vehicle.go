package models

// Vehicle is reference data a user can attach to a booking. It has no
// lifecycle coupling with slots or bookings.
type Vehicle struct {
	ID             int64    `json:"id"`
	UserID         int64    `json:"userId"`
	Make           string   `json:"make"`
	Model          string   `json:"model"`
	Year           string   `json:"year"`
	ConnectorTypes []string `json:"connectorTypes"`
}
