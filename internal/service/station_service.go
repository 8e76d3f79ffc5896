package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"chargehub/internal/cache"
	"chargehub/internal/geo"
	"chargehub/internal/models"
	"chargehub/internal/storage"
)

// DefaultSearchRadiusKm applies when the nearby query omits the radius.
const DefaultSearchRadiusKm = 10.0

// StationService manages station inventory and slot provisioning. Slot
// status changes on the admin path go through the shared AvailabilityKeeper
// under the same station lock the booking path uses.
type StationService struct {
	store  storage.Store
	keeper *AvailabilityKeeper
	logger *zap.Logger
}

// NewStationService builds StationService.
func NewStationService(store storage.Store, keeper *AvailabilityKeeper, logger *zap.Logger) *StationService {
	return &StationService{
		store:  store,
		keeper: keeper,
		logger: logger,
	}
}

// List returns all stations.
func (s *StationService) List(ctx context.Context) ([]models.Station, error) {
	return s.store.ListStations(ctx)
}

// Get fetches one station.
func (s *StationService) Get(ctx context.Context, id int64) (*models.Station, error) {
	station, err := s.store.GetStation(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return station, nil
}

// Nearby returns stations within radiusKm of the origin. The scan is linear
// with a Haversine check per station; fine at catalogue scale.
func (s *StationService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.Station, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultSearchRadiusKm
	}

	stations, err := s.store.ListStations(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]models.Station, 0, len(stations))
	for _, station := range stations {
		if geo.WithinRadius(lat, lng, station.Latitude, station.Longitude, radiusKm) {
			nearby = append(nearby, station)
		}
	}
	return nearby, nil
}

// Create registers a station and provisions one slot per bay, connectors
// assigned round-robin from the station's connector list. All bays start
// "available", so the recount lands on TotalSlots.
func (s *StationService) Create(ctx context.Context, station *models.Station) (*models.Station, error) {
	if len(station.ConnectorTypes) == 0 {
		return nil, ErrConnectorInvalid
	}
	if station.OperatingHours == "" {
		station.OperatingHours = models.DefaultOperatingHours
	}
	if station.Status == "" {
		station.Status = models.StationOperational
	}
	station.AvailableSlots = 0

	if err := s.store.CreateStation(ctx, station); err != nil {
		return nil, err
	}

	lock := s.keeper.LockStation(station.ID)
	lock.Lock()
	defer lock.Unlock()

	for n := 1; n <= station.TotalSlots; n++ {
		slot := &models.Slot{
			StationID:     station.ID,
			SlotNumber:    n,
			Status:        models.SlotAvailable,
			ConnectorType: station.ConnectorTypes[n%len(station.ConnectorTypes)],
		}
		if err := s.store.CreateSlot(ctx, slot); err != nil {
			return nil, err
		}
	}

	station, err := s.keeper.Recount(ctx, station.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("station created",
		zap.Int64("station_id", station.ID),
		zap.String("name", station.Name),
		zap.Int("total_slots", station.TotalSlots),
	)
	return station, nil
}

// Update applies a partial station update. AvailableSlots is derived state
// and is dropped from the patch; only recounts write it.
func (s *StationService) Update(ctx context.Context, id int64, patch storage.StationPatch) (*models.Station, error) {
	patch.AvailableSlots = nil

	station, err := s.store.UpdateStation(ctx, id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return station, nil
}

// Delete removes a station together with its slots. Deletion is refused
// while any confirmed or in-progress booking references the station, so no
// booking is ever left pointing at a vanished slot.
func (s *StationService) Delete(ctx context.Context, id int64) error {
	lock := s.keeper.LockStation(id)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.store.GetStation(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrStationNotFound
		}
		return err
	}

	bookings, err := s.store.ListBookingsByStation(ctx, id)
	if err != nil {
		return err
	}
	for i := range bookings {
		if bookings[i].Active() {
			return ErrStationInUse
		}
	}

	removed, err := s.store.DeleteSlotsByStation(ctx, id)
	if err != nil {
		return err
	}

	existed, err := s.store.DeleteStation(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		return ErrStationNotFound
	}

	s.keeper.DropCache(ctx, id)
	s.logger.Info("station deleted",
		zap.Int64("station_id", id),
		zap.Int("slots_removed", removed),
	)
	return nil
}

// Slots lists the station's slots.
func (s *StationService) Slots(ctx context.Context, stationID int64) ([]models.Slot, error) {
	if _, err := s.store.GetStation(ctx, stationID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return s.store.ListSlotsByStation(ctx, stationID)
}

// CreateSlot adds a bay to an existing station. The slot number must be
// unique within the station and inside 1..TotalSlots, and the connector must
// be one the station offers.
func (s *StationService) CreateSlot(ctx context.Context, slot *models.Slot) (*models.Slot, error) {
	station, err := s.store.GetStation(ctx, slot.StationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}

	if slot.SlotNumber < 1 || slot.SlotNumber > station.TotalSlots {
		return nil, ErrSlotNumberInvalid
	}
	if !station.HasConnectorType(slot.ConnectorType) {
		return nil, ErrConnectorInvalid
	}
	if slot.Status == "" {
		slot.Status = models.SlotAvailable
	}
	if !models.ValidSlotStatus(slot.Status) {
		return nil, ErrInvalidSlotStatus
	}

	lock := s.keeper.LockStation(slot.StationID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.store.ListSlotsByStation(ctx, slot.StationID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].SlotNumber == slot.SlotNumber {
			return nil, ErrSlotNumberTaken
		}
	}

	if err := s.store.CreateSlot(ctx, slot); err != nil {
		return nil, err
	}
	if _, err := s.keeper.Recount(ctx, slot.StationID); err != nil {
		return nil, err
	}
	return slot, nil
}

// UpdateSlot applies a partial slot update on the admin path. A status
// change triggers the availability recount under the station lock.
func (s *StationService) UpdateSlot(ctx context.Context, id int64, patch storage.SlotPatch) (*models.Slot, error) {
	current, err := s.store.GetSlot(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	if patch.Status != nil && !models.ValidSlotStatus(*patch.Status) {
		return nil, ErrInvalidSlotStatus
	}
	if patch.ConnectorType != nil {
		station, err := s.store.GetStation(ctx, current.StationID)
		if err != nil {
			return nil, err
		}
		if !station.HasConnectorType(*patch.ConnectorType) {
			return nil, ErrConnectorInvalid
		}
	}

	lock := s.keeper.LockStation(current.StationID)
	lock.Lock()
	defer lock.Unlock()

	slot, err := s.store.UpdateSlot(ctx, id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	if patch.Status != nil && *patch.Status != current.Status {
		if _, err := s.keeper.Recount(ctx, slot.StationID); err != nil {
			return nil, err
		}
	}
	return slot, nil
}

// Availability serves the polling endpoint from the cache when possible.
func (s *StationService) Availability(ctx context.Context, stationID int64) (*cache.AvailabilitySnapshot, error) {
	snapshot, err := s.keeper.CachedAvailability(ctx, stationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return snapshot, nil
}
