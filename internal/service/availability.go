package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"chargehub/internal/cache"
	"chargehub/internal/models"
	"chargehub/internal/storage"
)

// AvailabilityNotifier receives every change of a station's available-slot
// count. Implemented by the websocket hub; nil disables push.
type AvailabilityNotifier interface {
	NotifyAvailability(stationID int64, availableSlots, totalSlots int)
}

// AvailabilityKeeper owns the one rule that keeps Station and Slot data
// consistent: a station's availableSlots always equals the live count of its
// slots in "available" status. Every slot-status mutation anywhere in the
// service layer runs under the station's lock and ends with Recount.
type AvailabilityKeeper struct {
	store    storage.Store
	cache    *cache.AvailabilityCache
	notifier AvailabilityNotifier
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewAvailabilityKeeper builds the keeper. Cache and notifier may be nil.
func NewAvailabilityKeeper(store storage.Store, availCache *cache.AvailabilityCache, notifier AvailabilityNotifier, logger *zap.Logger) *AvailabilityKeeper {
	return &AvailabilityKeeper{
		store:    store,
		cache:    availCache,
		notifier: notifier,
		logger:   logger,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// LockStation serializes check-then-mutate sequences per station. Two
// concurrent reserves for slots of the same station take the same mutex, so
// at most one can move a given slot out of "available".
func (k *AvailabilityKeeper) LockStation(stationID int64) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	lock, ok := k.locks[stationID]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[stationID] = lock
	}
	return lock
}

// Recount recomputes the station's availableSlots from slot truth, writes it
// through to the station record, refreshes the cache and notifies
// subscribers. Callers must hold the station lock.
func (k *AvailabilityKeeper) Recount(ctx context.Context, stationID int64) (*models.Station, error) {
	slots, err := k.store.ListSlotsByStation(ctx, stationID)
	if err != nil {
		return nil, err
	}

	available := 0
	for _, slot := range slots {
		if slot.Status == models.SlotAvailable {
			available++
		}
	}

	station, err := k.store.UpdateStation(ctx, stationID, storage.StationPatch{
		AvailableSlots: &available,
	})
	if err != nil {
		return nil, err
	}

	if k.cache != nil {
		snapshot := cache.AvailabilitySnapshot{
			StationID:      stationID,
			AvailableSlots: station.AvailableSlots,
			TotalSlots:     station.TotalSlots,
			UpdatedAt:      time.Now().UTC(),
		}
		if err := k.cache.Put(ctx, snapshot); err != nil {
			k.logger.Warn("failed to refresh availability cache",
				zap.Int64("station_id", stationID), zap.Error(err))
		}
	}

	if k.notifier != nil {
		k.notifier.NotifyAvailability(stationID, station.AvailableSlots, station.TotalSlots)
	}

	return station, nil
}

// DropCache removes the station's cached snapshot, e.g. after deletion.
func (k *AvailabilityKeeper) DropCache(ctx context.Context, stationID int64) {
	if k.cache == nil {
		return
	}
	if err := k.cache.Invalidate(ctx, stationID); err != nil {
		k.logger.Warn("failed to invalidate availability cache",
			zap.Int64("station_id", stationID), zap.Error(err))
	}
}

// CachedAvailability returns the cached snapshot when present, falling back
// to the station record (which the invariant keeps equal to slot truth).
func (k *AvailabilityKeeper) CachedAvailability(ctx context.Context, stationID int64) (*cache.AvailabilitySnapshot, error) {
	if k.cache != nil {
		snapshot, err := k.cache.Get(ctx, stationID)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			k.logger.Warn("availability cache read failed",
				zap.Int64("station_id", stationID), zap.Error(err))
		}
	}

	station, err := k.store.GetStation(ctx, stationID)
	if err != nil {
		return nil, err
	}

	snapshot := &cache.AvailabilitySnapshot{
		StationID:      stationID,
		AvailableSlots: station.AvailableSlots,
		TotalSlots:     station.TotalSlots,
		UpdatedAt:      time.Now().UTC(),
	}
	if k.cache != nil {
		if err := k.cache.Put(ctx, *snapshot); err != nil {
			k.logger.Warn("failed to refresh availability cache",
				zap.Int64("station_id", stationID), zap.Error(err))
		}
	}
	return snapshot, nil
}
