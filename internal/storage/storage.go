// Package storage defines the entity store contract shared by the in-memory
// and Postgres implementations. The store handles identity and persistence
// only; all business rules (slot/booking consistency in particular) live in
// the service layer, which is the sole writer of slot status and station
// availability.
package storage

import (
	"context"
	"errors"
	"time"

	"chargehub/internal/models"
)

// ErrNotFound is returned by every Get/Update when the id is unknown.
var ErrNotFound = errors.New("storage: record not found")

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// StationStore persists charging stations.
type StationStore interface {
	ListStations(ctx context.Context) ([]models.Station, error)
	GetStation(ctx context.Context, id int64) (*models.Station, error)
	CreateStation(ctx context.Context, station *models.Station) error
	UpdateStation(ctx context.Context, id int64, patch StationPatch) (*models.Station, error)
	DeleteStation(ctx context.Context, id int64) (bool, error)
}

// SlotStore persists charging bays.
type SlotStore interface {
	ListSlotsByStation(ctx context.Context, stationID int64) ([]models.Slot, error)
	GetSlot(ctx context.Context, id int64) (*models.Slot, error)
	CreateSlot(ctx context.Context, slot *models.Slot) error
	UpdateSlot(ctx context.Context, id int64, patch SlotPatch) (*models.Slot, error)
	DeleteSlotsByStation(ctx context.Context, stationID int64) (int, error)
}

// BookingStore persists bookings.
type BookingStore interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error)
	ListBookingsByStation(ctx context.Context, stationID int64) ([]models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBooking(ctx context.Context, id int64, patch BookingPatch) (*models.Booking, error)
}

// VehicleStore persists vehicles.
type VehicleStore interface {
	ListVehiclesByUser(ctx context.Context, userID int64) ([]models.Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error)
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error
	UpdateVehicle(ctx context.Context, id int64, patch VehiclePatch) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id int64) (bool, error)
}

// Store aggregates all entity collections behind one handle.
type Store interface {
	UserStore
	StationStore
	SlotStore
	BookingStore
	VehicleStore
}

// Patch types carry partial updates: nil fields are left untouched, non-nil
// fields replace the stored value. Slice fields are replaced wholesale, never
// merged.

// StationPatch is a partial station update. AvailableSlots is present so the
// service layer can write recount results; HTTP callers never set it.
type StationPatch struct {
	Name                  *string
	Address               *string
	City                  *string
	State                 *string
	ZipCode               *string
	Latitude              *float64
	Longitude             *float64
	TotalSlots            *int
	AvailableSlots        *int
	PricePerKwh           *float64
	FastChargingAvailable *bool
	Amenities             []string
	ConnectorTypes        []string
	ImageURL              *string
	ContactPhone          *string
	ContactEmail          *string
	OperatingHours        *string
	Status                *string
}

// SlotPatch is a partial slot update.
type SlotPatch struct {
	SlotNumber    *int
	Status        *string
	ConnectorType *string
}

// BookingPatch is a partial booking update.
type BookingPatch struct {
	BookingDate   *time.Time
	StartTime     *time.Time
	Duration      *int
	Status        *string
	Vehicle       *string
	ConnectorType *string
	EstimatedCost *float64
}

// VehiclePatch is a partial vehicle update.
type VehiclePatch struct {
	Make           *string
	Model          *string
	Year           *string
	ConnectorTypes []string
}
