package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"chargehub/internal/models"
	"chargehub/internal/storage"
	"chargehub/internal/storage/memory"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []models.Station
}

func (f *fakeNotifier) NotifyAvailability(stationID int64, availableSlots, totalSlots int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, models.Station{ID: stationID, AvailableSlots: availableSlots, TotalSlots: totalSlots})
}

func (f *fakeNotifier) last() (models.Station, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return models.Station{}, false
	}
	return f.events[len(f.events)-1], true
}

type bookingFixture struct {
	store    *memory.Store
	keeper   *AvailabilityKeeper
	bookings *BookingService
	stations *StationService
	notifier *fakeNotifier
	station  *models.Station
	slots    []models.Slot
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	notifier := &fakeNotifier{}
	logger := zap.NewNop()
	keeper := NewAvailabilityKeeper(store, nil, notifier, logger)
	stations := NewStationService(store, keeper, logger)

	station, err := stations.Create(ctx, &models.Station{
		Name:           "Test Hub",
		City:           "Bengaluru",
		Latitude:       12.97,
		Longitude:      77.59,
		TotalSlots:     3,
		PricePerKwh:    15,
		ConnectorTypes: []string{"Type 2", "CCS"},
	})
	if err != nil {
		t.Fatalf("station create: %v", err)
	}

	slots, err := stations.Slots(ctx, station.ID)
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}

	return &bookingFixture{
		store:    store,
		keeper:   keeper,
		bookings: NewBookingService(store, keeper, logger),
		stations: stations,
		notifier: notifier,
		station:  station,
		slots:    slots,
	}
}

func (f *bookingFixture) availableSlots(t *testing.T) int {
	t.Helper()
	station, err := f.store.GetStation(context.Background(), f.station.ID)
	if err != nil {
		t.Fatalf("get station: %v", err)
	}
	return station.AvailableSlots
}

func (f *bookingFixture) reserveInput(slot models.Slot) ReserveInput {
	return ReserveInput{
		UserID:        1,
		StationID:     f.station.ID,
		SlotID:        slot.ID,
		StartTime:     time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		Duration:      60,
		ConnectorType: slot.ConnectorType,
		Vehicle:       "Tata Nexon EV",
	}
}

func TestReserveHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	slot := f.slots[0]

	before := f.availableSlots(t)

	booking, err := f.bookings.Reserve(ctx, f.reserveInput(slot))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if booking.Status != models.BookingConfirmed {
		t.Fatalf("Status = %q, want confirmed", booking.Status)
	}
	if booking.StationID != f.station.ID || booking.SlotID != slot.ID {
		t.Fatalf("booking references wrong slot: %+v", booking)
	}
	// 15 INR/kWh * 7.2 kW * 1h.
	if booking.EstimatedCost != 108 {
		t.Fatalf("EstimatedCost = %v, want 108", booking.EstimatedCost)
	}
	if booking.BookingDate.IsZero() {
		t.Fatalf("expected BookingDate default")
	}

	got, err := f.store.GetSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if got.Status != models.SlotBooked {
		t.Fatalf("slot status = %q, want booked", got.Status)
	}

	if after := f.availableSlots(t); after != before-1 {
		t.Fatalf("availableSlots = %d, want %d", after, before-1)
	}
	if event, ok := f.notifier.last(); !ok || event.AvailableSlots != before-1 {
		t.Fatalf("notifier event = %+v, %v; want available=%d", event, ok, before-1)
	}
}

func TestReserveRejections(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	slot := f.slots[0]

	taken := f.reserveInput(slot)
	if _, err := f.bookings.Reserve(ctx, taken); err != nil {
		t.Fatalf("priming reserve: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*ReserveInput)
		wantErr error
	}{
		{
			name:    "slot already booked",
			mutate:  func(in *ReserveInput) { *in = f.reserveInput(slot) },
			wantErr: ErrSlotUnavailable,
		},
		{
			name:    "unknown slot",
			mutate:  func(in *ReserveInput) { in.SlotID = 999 },
			wantErr: ErrSlotNotFound,
		},
		{
			name: "slot from another station",
			mutate: func(in *ReserveInput) {
				in.SlotID = f.slots[1].ID
				in.StationID = f.station.ID + 1
			},
			wantErr: ErrSlotNotFound,
		},
		{
			name: "connector mismatch",
			mutate: func(in *ReserveInput) {
				in.SlotID = f.slots[1].ID
				in.ConnectorType = "CHAdeMO"
			},
			wantErr: ErrConnectorMismatch,
		},
		{
			name: "zero duration",
			mutate: func(in *ReserveInput) {
				in.SlotID = f.slots[1].ID
				in.Duration = 0
			},
			wantErr: ErrInvalidDuration,
		},
		{
			name: "negative duration",
			mutate: func(in *ReserveInput) {
				in.SlotID = f.slots[1].ID
				in.Duration = -30
			},
			wantErr: ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.reserveInput(f.slots[1])
			tt.mutate(&in)
			if _, err := f.bookings.Reserve(ctx, in); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Reserve = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Rejections leave no partial state: one priming booking, two free slots.
	all, err := f.bookings.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d bookings after rejections, want 1", len(all))
	}
	if got := f.availableSlots(t); got != 2 {
		t.Fatalf("availableSlots = %d, want 2", got)
	}
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	slot := f.slots[0]

	const contenders = 16
	var wg sync.WaitGroup
	results := make([]error, contenders)

	start := make(chan struct{})
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			in := f.reserveInput(slot)
			in.UserID = int64(i + 1)
			_, results[i] = f.bookings.Reserve(ctx, in)
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for _, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrSlotUnavailable):
		default:
			t.Fatalf("unexpected reserve error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("%d reserves succeeded for one slot, want exactly 1", winners)
	}
	if got := f.availableSlots(t); got != 2 {
		t.Fatalf("availableSlots = %d, want 2", got)
	}
}

func TestCancelReleasesSlot(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	slot := f.slots[0]

	booking, err := f.bookings.Reserve(ctx, f.reserveInput(slot))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	cancelled, err := f.bookings.Cancel(ctx, booking.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != models.BookingCancelled {
		t.Fatalf("Status = %q, want cancelled", cancelled.Status)
	}

	got, err := f.store.GetSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if got.Status != models.SlotAvailable {
		t.Fatalf("slot status after cancel = %q, want available", got.Status)
	}
	if avail := f.availableSlots(t); avail != f.station.TotalSlots {
		t.Fatalf("availableSlots = %d, want %d", avail, f.station.TotalSlots)
	}

	// Round trip: the slot is reservable again.
	if _, err := f.bookings.Reserve(ctx, f.reserveInput(slot)); err != nil {
		t.Fatalf("re-reserve after cancel: %v", err)
	}
}

func TestCancelIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	slot := f.slots[0]

	booking, err := f.bookings.Reserve(ctx, f.reserveInput(slot))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := f.bookings.Cancel(ctx, booking.ID); err != nil {
		t.Fatalf("first Cancel: %v", err)
	}

	// Reserve the freed slot with a second booking, then cancel the first
	// booking again. The second cancel must not free the slot out from under
	// the new booking.
	if _, err := f.bookings.Reserve(ctx, f.reserveInput(slot)); err != nil {
		t.Fatalf("re-reserve: %v", err)
	}

	again, err := f.bookings.Cancel(ctx, booking.ID)
	if err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if again.Status != models.BookingCancelled {
		t.Fatalf("Status = %q, want cancelled", again.Status)
	}

	got, err := f.store.GetSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if got.Status != models.SlotBooked {
		t.Fatalf("slot status = %q, want booked (second cancel must be a no-op)", got.Status)
	}
}

func TestCancelUnknownBooking(t *testing.T) {
	f := newBookingFixture(t)
	if _, err := f.bookings.Cancel(context.Background(), 999); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("Cancel(999) = %v, want ErrBookingNotFound", err)
	}
}

func TestUpdateStatusCancelledReleasesSlot(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	slot := f.slots[0]

	booking, err := f.bookings.Reserve(ctx, f.reserveInput(slot))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	cancelled := models.BookingCancelled
	updated, err := f.bookings.Update(ctx, booking.ID, storage.BookingPatch{Status: &cancelled})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != models.BookingCancelled {
		t.Fatalf("Status = %q, want cancelled", updated.Status)
	}

	got, err := f.store.GetSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if got.Status != models.SlotAvailable {
		t.Fatalf("slot status = %q, want available after cancel-via-update", got.Status)
	}
}

func TestUpdateValidation(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)

	booking, err := f.bookings.Reserve(ctx, f.reserveInput(f.slots[0]))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	badDuration := -5
	if _, err := f.bookings.Update(ctx, booking.ID, storage.BookingPatch{Duration: &badDuration}); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("Update(bad duration) = %v, want ErrInvalidDuration", err)
	}

	badStatus := "parked"
	if _, err := f.bookings.Update(ctx, booking.ID, storage.BookingPatch{Status: &badStatus}); !errors.Is(err, ErrInvalidBookingStatus) {
		t.Fatalf("Update(bad status) = %v, want ErrInvalidBookingStatus", err)
	}

	// Non-cancelling status transitions leave the slot alone.
	inProgress := models.BookingInProgress
	if _, err := f.bookings.Update(ctx, booking.ID, storage.BookingPatch{Status: &inProgress}); err != nil {
		t.Fatalf("Update(in_progress): %v", err)
	}
	got, err := f.store.GetSlot(ctx, f.slots[0].ID)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if got.Status != models.SlotBooked {
		t.Fatalf("slot status = %q, want booked", got.Status)
	}
}

// flakyStore wraps the memory store and fails selected writes a limited
// number of times so the compensation paths in BookingService are reachable.
type flakyStore struct {
	storage.Store
	mu              sync.Mutex
	stationFailures int
	slotFailures    int
}

var errStoreDown = errors.New("store down")

func (f *flakyStore) UpdateStation(ctx context.Context, id int64, patch storage.StationPatch) (*models.Station, error) {
	f.mu.Lock()
	fail := f.stationFailures > 0
	if fail {
		f.stationFailures--
	}
	f.mu.Unlock()
	if fail {
		return nil, errStoreDown
	}
	return f.Store.UpdateStation(ctx, id, patch)
}

func (f *flakyStore) UpdateSlot(ctx context.Context, id int64, patch storage.SlotPatch) (*models.Slot, error) {
	f.mu.Lock()
	fail := f.slotFailures > 0
	if fail {
		f.slotFailures--
	}
	f.mu.Unlock()
	if fail {
		return nil, errStoreDown
	}
	return f.Store.UpdateSlot(ctx, id, patch)
}

func newFlakyBookingFixture(t *testing.T) (*bookingFixture, *flakyStore) {
	t.Helper()
	ctx := context.Background()
	mem := memory.New()
	flaky := &flakyStore{Store: mem}
	notifier := &fakeNotifier{}
	logger := zap.NewNop()
	keeper := NewAvailabilityKeeper(flaky, nil, notifier, logger)
	stations := NewStationService(flaky, keeper, logger)

	station, err := stations.Create(ctx, &models.Station{
		Name:           "Test Hub",
		City:           "Bengaluru",
		Latitude:       12.97,
		Longitude:      77.59,
		TotalSlots:     3,
		PricePerKwh:    15,
		ConnectorTypes: []string{"Type 2", "CCS"},
	})
	if err != nil {
		t.Fatalf("station create: %v", err)
	}
	slots, err := stations.Slots(ctx, station.ID)
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}

	return &bookingFixture{
		store:    mem,
		keeper:   keeper,
		bookings: NewBookingService(flaky, keeper, logger),
		stations: stations,
		notifier: notifier,
		station:  station,
		slots:    slots,
	}, flaky
}

func TestReserveRollsBackOnRecountFailure(t *testing.T) {
	ctx := context.Background()
	f, flaky := newFlakyBookingFixture(t)
	slot := f.slots[0]

	// Recount persists the derived count via UpdateStation; fail that write.
	flaky.stationFailures = 1

	if _, err := f.bookings.Reserve(ctx, f.reserveInput(slot)); !errors.Is(err, errStoreDown) {
		t.Fatalf("Reserve = %v, want errStoreDown", err)
	}

	got, err := f.store.GetSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if got.Status != models.SlotAvailable {
		t.Fatalf("slot status after failed reserve = %q, want available", got.Status)
	}
	all, err := f.bookings.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, b := range all {
		if b.Status != models.BookingCancelled {
			t.Fatalf("booking %d status = %q after failed reserve, want cancelled", b.ID, b.Status)
		}
	}
	if avail := f.availableSlots(t); avail != f.station.TotalSlots {
		t.Fatalf("availableSlots = %d, want %d", avail, f.station.TotalSlots)
	}

	// Once the store recovers, the same slot is reservable.
	if _, err := f.bookings.Reserve(ctx, f.reserveInput(slot)); err != nil {
		t.Fatalf("Reserve after recovery: %v", err)
	}
}

func TestCancelKeepsBookingOnSlotReleaseFailure(t *testing.T) {
	ctx := context.Background()
	f, flaky := newFlakyBookingFixture(t)
	slot := f.slots[0]

	booking, err := f.bookings.Reserve(ctx, f.reserveInput(slot))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	flaky.slotFailures = 1
	if _, err := f.bookings.Cancel(ctx, booking.ID); !errors.Is(err, errStoreDown) {
		t.Fatalf("Cancel = %v, want errStoreDown", err)
	}

	kept, err := f.bookings.Get(ctx, booking.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if kept.Status != models.BookingConfirmed {
		t.Fatalf("booking status after failed cancel = %q, want confirmed", kept.Status)
	}
	got, err := f.store.GetSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if got.Status != models.SlotBooked {
		t.Fatalf("slot status after failed cancel = %q, want booked", got.Status)
	}

	// Retrying once the store recovers completes the cancel.
	if _, err := f.bookings.Cancel(ctx, booking.ID); err != nil {
		t.Fatalf("Cancel after recovery: %v", err)
	}
	if avail := f.availableSlots(t); avail != f.station.TotalSlots {
		t.Fatalf("availableSlots = %d, want %d", avail, f.station.TotalSlots)
	}
}

func TestCancelRollsBackSlotOnRecountFailure(t *testing.T) {
	ctx := context.Background()
	f, flaky := newFlakyBookingFixture(t)
	slot := f.slots[0]

	booking, err := f.bookings.Reserve(ctx, f.reserveInput(slot))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	// The slot flips to available first; the recount write then fails.
	flaky.stationFailures = 1
	if _, err := f.bookings.Cancel(ctx, booking.ID); !errors.Is(err, errStoreDown) {
		t.Fatalf("Cancel = %v, want errStoreDown", err)
	}

	got, err := f.store.GetSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if got.Status != models.SlotBooked {
		t.Fatalf("slot status after failed cancel = %q, want booked", got.Status)
	}
	kept, err := f.bookings.Get(ctx, booking.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if kept.Status != models.BookingConfirmed {
		t.Fatalf("booking status after failed cancel = %q, want confirmed", kept.Status)
	}
}

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name        string
		pricePerKwh float64
		duration    int
		want        float64
	}{
		{"one hour at 15", 15, 60, 108},
		{"half hour at 12", 12, 30, 43.2},
		{"free station", 0, 120, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateCost(tt.pricePerKwh, tt.duration)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("estimateCost = %v, want %v", got, tt.want)
			}
		})
	}
}
