// Package memory implements the entity store on plain maps. It is the
// reference backend: goroutine-safe, monotonically increasing ids per entity
// type, copy-on-read so callers never alias stored records.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"chargehub/internal/models"
	"chargehub/internal/storage"
)

// Store holds all five entity collections behind one RWMutex.
type Store struct {
	mu sync.RWMutex

	users    map[int64]*models.User
	stations map[int64]*models.Station
	slots    map[int64]*models.Slot
	bookings map[int64]*models.Booking
	vehicles map[int64]*models.Vehicle

	nextUserID    int64
	nextStationID int64
	nextSlotID    int64
	nextBookingID int64
	nextVehicleID int64

	now func() time.Time
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		users:         make(map[int64]*models.User),
		stations:      make(map[int64]*models.Station),
		slots:         make(map[int64]*models.Slot),
		bookings:      make(map[int64]*models.Booking),
		vehicles:      make(map[int64]*models.Vehicle),
		nextUserID:    1,
		nextStationID: 1,
		nextSlotID:    1,
		nextBookingID: 1,
		nextVehicleID: 1,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var _ storage.Store = (*Store)(nil)

// CreateUser assigns the next user id, stamps CreatedAt and inserts.
func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.nextUserID
	s.nextUserID++
	user.CreatedAt = s.now()

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// GetUserByUsername fetches a user by exact username.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetUserByEmail fetches a user by email, case-insensitively.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range s.users {
		if strings.ToLower(user.Email) == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListStations returns all stations.
func (s *Store) ListStations(_ context.Context) ([]models.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stations := make([]models.Station, 0, len(s.stations))
	for _, station := range s.stations {
		stations = append(stations, *copyStation(station))
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })
	return stations, nil
}

// GetStation fetches a station by id.
func (s *Store) GetStation(_ context.Context, id int64) (*models.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	station, ok := s.stations[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyStation(station), nil
}

// CreateStation assigns the next station id, stamps CreatedAt and inserts.
func (s *Store) CreateStation(_ context.Context, station *models.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	station.ID = s.nextStationID
	s.nextStationID++
	station.CreatedAt = s.now()

	s.stations[station.ID] = copyStation(station)
	return nil
}

// UpdateStation merges non-nil patch fields into the stored station.
// Slice fields replace the stored value wholesale.
func (s *Store) UpdateStation(_ context.Context, id int64, patch storage.StationPatch) (*models.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	station, ok := s.stations[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if patch.Name != nil {
		station.Name = *patch.Name
	}
	if patch.Address != nil {
		station.Address = *patch.Address
	}
	if patch.City != nil {
		station.City = *patch.City
	}
	if patch.State != nil {
		station.State = *patch.State
	}
	if patch.ZipCode != nil {
		station.ZipCode = *patch.ZipCode
	}
	if patch.Latitude != nil {
		station.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		station.Longitude = *patch.Longitude
	}
	if patch.TotalSlots != nil {
		station.TotalSlots = *patch.TotalSlots
	}
	if patch.AvailableSlots != nil {
		station.AvailableSlots = *patch.AvailableSlots
	}
	if patch.PricePerKwh != nil {
		station.PricePerKwh = *patch.PricePerKwh
	}
	if patch.FastChargingAvailable != nil {
		station.FastChargingAvailable = *patch.FastChargingAvailable
	}
	if patch.Amenities != nil {
		station.Amenities = append([]string(nil), patch.Amenities...)
	}
	if patch.ConnectorTypes != nil {
		station.ConnectorTypes = append([]string(nil), patch.ConnectorTypes...)
	}
	if patch.ImageURL != nil {
		station.ImageURL = *patch.ImageURL
	}
	if patch.ContactPhone != nil {
		station.ContactPhone = *patch.ContactPhone
	}
	if patch.ContactEmail != nil {
		station.ContactEmail = *patch.ContactEmail
	}
	if patch.OperatingHours != nil {
		station.OperatingHours = *patch.OperatingHours
	}
	if patch.Status != nil {
		station.Status = *patch.Status
	}

	return copyStation(station), nil
}

// DeleteStation removes the station, reporting whether it existed.
func (s *Store) DeleteStation(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stations[id]; !ok {
		return false, nil
	}
	delete(s.stations, id)
	return true, nil
}

// ListSlotsByStation returns the station's slots ordered by slot number.
func (s *Store) ListSlotsByStation(_ context.Context, stationID int64) ([]models.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var slots []models.Slot
	for _, slot := range s.slots {
		if slot.StationID == stationID {
			slots = append(slots, *slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].SlotNumber < slots[j].SlotNumber })
	return slots, nil
}

// GetSlot fetches a slot by id.
func (s *Store) GetSlot(_ context.Context, id int64) (*models.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *slot
	return &copied, nil
}

// CreateSlot assigns the next slot id and inserts.
func (s *Store) CreateSlot(_ context.Context, slot *models.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot.ID = s.nextSlotID
	s.nextSlotID++

	stored := *slot
	s.slots[slot.ID] = &stored
	return nil
}

// UpdateSlot merges non-nil patch fields into the stored slot.
func (s *Store) UpdateSlot(_ context.Context, id int64, patch storage.SlotPatch) (*models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if patch.SlotNumber != nil {
		slot.SlotNumber = *patch.SlotNumber
	}
	if patch.Status != nil {
		slot.Status = *patch.Status
	}
	if patch.ConnectorType != nil {
		slot.ConnectorType = *patch.ConnectorType
	}

	copied := *slot
	return &copied, nil
}

// DeleteSlotsByStation removes every slot owned by the station and returns
// how many were removed.
func (s *Store) DeleteSlotsByStation(_ context.Context, stationID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, slot := range s.slots {
		if slot.StationID == stationID {
			delete(s.slots, id)
			removed++
		}
	}
	return removed, nil
}

// ListBookings returns every booking.
func (s *Store) ListBookings(_ context.Context) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]models.Booking, 0, len(s.bookings))
	for _, booking := range s.bookings {
		bookings = append(bookings, *booking)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

// GetBooking fetches a booking by id.
func (s *Store) GetBooking(_ context.Context, id int64) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

// ListBookingsByUser returns bookings owned by the user.
func (s *Store) ListBookingsByUser(_ context.Context, userID int64) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []models.Booking
	for _, booking := range s.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, *booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

// ListBookingsByStation returns bookings referencing the station.
func (s *Store) ListBookingsByStation(_ context.Context, stationID int64) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []models.Booking
	for _, booking := range s.bookings {
		if booking.StationID == stationID {
			bookings = append(bookings, *booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

// CreateBooking assigns the next booking id, stamps CreatedAt and inserts.
func (s *Store) CreateBooking(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking.ID = s.nextBookingID
	s.nextBookingID++
	booking.CreatedAt = s.now()

	stored := *booking
	s.bookings[booking.ID] = &stored
	return nil
}

// UpdateBooking merges non-nil patch fields into the stored booking.
func (s *Store) UpdateBooking(_ context.Context, id int64, patch storage.BookingPatch) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if patch.BookingDate != nil {
		booking.BookingDate = *patch.BookingDate
	}
	if patch.StartTime != nil {
		booking.StartTime = *patch.StartTime
	}
	if patch.Duration != nil {
		booking.Duration = *patch.Duration
	}
	if patch.Status != nil {
		booking.Status = *patch.Status
	}
	if patch.Vehicle != nil {
		booking.Vehicle = *patch.Vehicle
	}
	if patch.ConnectorType != nil {
		booking.ConnectorType = *patch.ConnectorType
	}
	if patch.EstimatedCost != nil {
		booking.EstimatedCost = *patch.EstimatedCost
	}

	copied := *booking
	return &copied, nil
}

// ListVehiclesByUser returns vehicles owned by the user.
func (s *Store) ListVehiclesByUser(_ context.Context, userID int64) ([]models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var vehicles []models.Vehicle
	for _, vehicle := range s.vehicles {
		if vehicle.UserID == userID {
			vehicles = append(vehicles, *copyVehicle(vehicle))
		}
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	return vehicles, nil
}

// GetVehicle fetches a vehicle by id.
func (s *Store) GetVehicle(_ context.Context, id int64) (*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyVehicle(vehicle), nil
}

// CreateVehicle assigns the next vehicle id and inserts.
func (s *Store) CreateVehicle(_ context.Context, vehicle *models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle.ID = s.nextVehicleID
	s.nextVehicleID++

	s.vehicles[vehicle.ID] = copyVehicle(vehicle)
	return nil
}

// UpdateVehicle merges non-nil patch fields into the stored vehicle.
func (s *Store) UpdateVehicle(_ context.Context, id int64, patch storage.VehiclePatch) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if patch.Make != nil {
		vehicle.Make = *patch.Make
	}
	if patch.Model != nil {
		vehicle.Model = *patch.Model
	}
	if patch.Year != nil {
		vehicle.Year = *patch.Year
	}
	if patch.ConnectorTypes != nil {
		vehicle.ConnectorTypes = append([]string(nil), patch.ConnectorTypes...)
	}

	return copyVehicle(vehicle), nil
}

// DeleteVehicle removes the vehicle, reporting whether it existed.
func (s *Store) DeleteVehicle(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[id]; !ok {
		return false, nil
	}
	delete(s.vehicles, id)
	return true, nil
}

func copyStation(station *models.Station) *models.Station {
	copied := *station
	copied.Amenities = append([]string(nil), station.Amenities...)
	copied.ConnectorTypes = append([]string(nil), station.ConnectorTypes...)
	return &copied
}

func copyVehicle(vehicle *models.Vehicle) *models.Vehicle {
	copied := *vehicle
	copied.ConnectorTypes = append([]string(nil), vehicle.ConnectorTypes...)
	return &copied
}
