package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"chargehub/internal/models"
	"chargehub/internal/storage"
)

// assumedDrawKw is the charging power assumed when estimating booking cost.
// The estimate is informational only; no charge is ever made.
const assumedDrawKw = 7.2

// BookingService is the only writer of booking records and, together with
// the slot-admin path in StationService, the only component allowed to flip
// slot status. Each reserve/cancel runs its whole check-then-mutate sequence
// under the owning station's lock.
type BookingService struct {
	store  storage.Store
	keeper *AvailabilityKeeper
	logger *zap.Logger
}

// NewBookingService builds BookingService.
func NewBookingService(store storage.Store, keeper *AvailabilityKeeper, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:  store,
		keeper: keeper,
		logger: logger,
	}
}

// ReserveInput is the payload for Reserve.
type ReserveInput struct {
	UserID        int64
	StationID     int64
	SlotID        int64
	BookingDate   time.Time
	StartTime     time.Time
	Duration      int
	ConnectorType string
	Vehicle       string
}

// Reserve books a slot. Preconditions, in order: the slot exists and belongs
// to the given station, its connector matches the request, and its status is
// exactly "available". On success the booking is created as "confirmed", the
// slot moves to "booked" and the station's availability is recounted, all
// under the station lock, so concurrent reserves for the same slot cannot
// both succeed.
func (s *BookingService) Reserve(ctx context.Context, input ReserveInput) (*models.Booking, error) {
	if input.Duration <= 0 {
		return nil, ErrInvalidDuration
	}

	// First read locates the owning station so we know which lock to take.
	slot, err := s.store.GetSlot(ctx, input.SlotID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if slot.StationID != input.StationID {
		return nil, ErrSlotNotFound
	}

	lock := s.keeper.LockStation(slot.StationID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: the slot may have been taken in the window
	// between the first read and lock acquisition.
	slot, err = s.store.GetSlot(ctx, input.SlotID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if slot.ConnectorType != input.ConnectorType {
		return nil, ErrConnectorMismatch
	}
	if slot.Status != models.SlotAvailable {
		return nil, ErrSlotUnavailable
	}

	station, err := s.store.GetStation(ctx, slot.StationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}

	bookingDate := input.BookingDate
	if bookingDate.IsZero() {
		bookingDate = time.Now().UTC()
	}

	booking := &models.Booking{
		UserID:        input.UserID,
		StationID:     slot.StationID,
		SlotID:        slot.ID,
		BookingDate:   bookingDate,
		StartTime:     input.StartTime,
		Duration:      input.Duration,
		Status:        models.BookingConfirmed,
		Vehicle:       input.Vehicle,
		ConnectorType: input.ConnectorType,
		EstimatedCost: estimateCost(station.PricePerKwh, input.Duration),
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	booked := models.SlotBooked
	if _, err := s.store.UpdateSlot(ctx, slot.ID, storage.SlotPatch{Status: &booked}); err != nil {
		// Roll the booking back so rejection leaves no partial state.
		cancelled := models.BookingCancelled
		if _, rbErr := s.store.UpdateBooking(ctx, booking.ID, storage.BookingPatch{Status: &cancelled}); rbErr != nil {
			s.logger.Error("failed to roll back booking after slot update failure",
				zap.Int64("booking_id", booking.ID), zap.Error(rbErr))
		}
		return nil, err
	}

	if _, err := s.keeper.Recount(ctx, slot.StationID); err != nil {
		// Undo both earlier steps so a failed reserve commits nothing.
		available := models.SlotAvailable
		if _, rbErr := s.store.UpdateSlot(ctx, slot.ID, storage.SlotPatch{Status: &available}); rbErr != nil {
			s.logger.Error("failed to roll back slot after recount failure",
				zap.Int64("slot_id", slot.ID), zap.Error(rbErr))
		}
		cancelled := models.BookingCancelled
		if _, rbErr := s.store.UpdateBooking(ctx, booking.ID, storage.BookingPatch{Status: &cancelled}); rbErr != nil {
			s.logger.Error("failed to roll back booking after recount failure",
				zap.Int64("booking_id", booking.ID), zap.Error(rbErr))
		}
		return nil, err
	}

	s.logger.Info("slot reserved",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("station_id", slot.StationID),
		zap.Int64("slot_id", slot.ID),
		zap.Int64("user_id", input.UserID),
	)
	return booking, nil
}

// Cancel releases a booking's slot. Cancelling an already-cancelled booking
// is an idempotent no-op returning the unchanged record.
func (s *BookingService) Cancel(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if booking.Status == models.BookingCancelled {
		return booking, nil
	}

	lock := s.keeper.LockStation(booking.StationID)
	lock.Lock()
	defer lock.Unlock()

	priorStatus := booking.Status
	cancelled := models.BookingCancelled
	booking, err = s.store.UpdateBooking(ctx, bookingID, storage.BookingPatch{Status: &cancelled})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if err := s.releaseSlot(ctx, booking); err != nil {
		// The slot is still booked, so the booking must not read cancelled.
		if _, rbErr := s.store.UpdateBooking(ctx, bookingID, storage.BookingPatch{Status: &priorStatus}); rbErr != nil {
			s.logger.Error("failed to restore booking after slot release failure",
				zap.Int64("booking_id", bookingID), zap.Error(rbErr))
		}
		return nil, err
	}

	s.logger.Info("booking cancelled",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("slot_id", booking.SlotID),
	)
	return booking, nil
}

// Update applies a partial booking update. Patching status to "cancelled"
// triggers the same slot-release side effect as Cancel; every other status
// transition leaves slot state alone.
func (s *BookingService) Update(ctx context.Context, bookingID int64, patch storage.BookingPatch) (*models.Booking, error) {
	if patch.Duration != nil && *patch.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if patch.Status != nil && !models.ValidBookingStatus(*patch.Status) {
		return nil, ErrInvalidBookingStatus
	}

	current, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	lock := s.keeper.LockStation(current.StationID)
	lock.Lock()
	defer lock.Unlock()

	booking, err := s.store.UpdateBooking(ctx, bookingID, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	becameCancelled := patch.Status != nil &&
		*patch.Status == models.BookingCancelled &&
		current.Status != models.BookingCancelled
	if becameCancelled {
		if err := s.releaseSlot(ctx, booking); err != nil {
			if _, rbErr := s.store.UpdateBooking(ctx, bookingID, storage.BookingPatch{Status: &current.Status}); rbErr != nil {
				s.logger.Error("failed to restore booking after slot release failure",
					zap.Int64("booking_id", bookingID), zap.Error(rbErr))
			}
			return nil, err
		}
		s.logger.Info("booking cancelled via update", zap.Int64("booking_id", booking.ID))
	}

	return booking, nil
}

// Get fetches one booking.
func (s *BookingService) Get(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// List returns every booking.
func (s *BookingService) List(ctx context.Context) ([]models.Booking, error) {
	return s.store.ListBookings(ctx)
}

// ListByUser returns the user's bookings.
func (s *BookingService) ListByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	return s.store.ListBookingsByUser(ctx, userID)
}

// ListByStation returns the station's bookings.
func (s *BookingService) ListByStation(ctx context.Context, stationID int64) ([]models.Booking, error) {
	return s.store.ListBookingsByStation(ctx, stationID)
}

// releaseSlot returns the booking's slot to "available" and recounts.
// Callers must hold the station lock.
func (s *BookingService) releaseSlot(ctx context.Context, booking *models.Booking) error {
	available := models.SlotAvailable
	if _, err := s.store.UpdateSlot(ctx, booking.SlotID, storage.SlotPatch{Status: &available}); err != nil {
		return err
	}
	if _, err := s.keeper.Recount(ctx, booking.StationID); err != nil {
		booked := models.SlotBooked
		if _, rbErr := s.store.UpdateSlot(ctx, booking.SlotID, storage.SlotPatch{Status: &booked}); rbErr != nil {
			s.logger.Error("failed to roll back slot after recount failure",
				zap.Int64("slot_id", booking.SlotID), zap.Error(rbErr))
		}
		return err
	}
	return nil
}

// estimateCost projects energy cost for the window assuming a steady draw.
func estimateCost(pricePerKwh float64, durationMinutes int) float64 {
	hours := float64(durationMinutes) / 60
	return pricePerKwh * assumedDrawKw * hours
}
