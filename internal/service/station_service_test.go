package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"chargehub/internal/models"
	"chargehub/internal/storage"
	"chargehub/internal/storage/memory"
)

func ptr[T any](v T) *T { return &v }

func newStationFixture(t *testing.T) (*memory.Store, *StationService, *AvailabilityKeeper) {
	t.Helper()
	store := memory.New()
	logger := zap.NewNop()
	keeper := NewAvailabilityKeeper(store, nil, nil, logger)
	return store, NewStationService(store, keeper, logger), keeper
}

func TestCreateProvisionsSlots(t *testing.T) {
	ctx := context.Background()
	_, stations, _ := newStationFixture(t)

	station, err := stations.Create(ctx, &models.Station{
		Name:           "Hub",
		TotalSlots:     4,
		ConnectorTypes: []string{"Type 2", "CCS"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if station.AvailableSlots != 4 {
		t.Fatalf("AvailableSlots = %d, want 4 (all bays start available)", station.AvailableSlots)
	}
	if station.Status != models.StationOperational {
		t.Fatalf("Status = %q, want operational default", station.Status)
	}
	if station.OperatingHours != models.DefaultOperatingHours {
		t.Fatalf("OperatingHours = %q, want default", station.OperatingHours)
	}

	slots, err := stations.Slots(ctx, station.ID)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("got %d slots, want 4", len(slots))
	}
	for i, slot := range slots {
		if slot.SlotNumber != i+1 {
			t.Fatalf("slot %d has number %d", i, slot.SlotNumber)
		}
		if slot.Status != models.SlotAvailable {
			t.Fatalf("slot %d status = %q, want available", slot.SlotNumber, slot.Status)
		}
		if !station.HasConnectorType(slot.ConnectorType) {
			t.Fatalf("slot %d has foreign connector %q", slot.SlotNumber, slot.ConnectorType)
		}
	}
}

func TestCreateRequiresConnectorTypes(t *testing.T) {
	ctx := context.Background()
	store, stations, _ := newStationFixture(t)

	if _, err := stations.Create(ctx, &models.Station{
		Name:       "Hub",
		TotalSlots: 2,
	}); !errors.Is(err, ErrConnectorInvalid) {
		t.Fatalf("Create(no connectors) = %v, want ErrConnectorInvalid", err)
	}

	all, err := store.ListStations(ctx)
	if err != nil {
		t.Fatalf("ListStations: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("got %d stations after rejected create, want 0", len(all))
	}
}

func TestNearbyFiltersByRadius(t *testing.T) {
	ctx := context.Background()
	_, stations, _ := newStationFixture(t)

	seed := []struct {
		name     string
		lat, lng float64
	}{
		{"Jayanagar", 12.9257, 77.5960},
		{"Indiranagar", 12.9781, 77.6408},
		{"Nagasandra", 13.0359, 77.5085}, // ~15km from the origin below
	}
	for _, s := range seed {
		if _, err := stations.Create(ctx, &models.Station{
			Name:           s.name,
			Latitude:       s.lat,
			Longitude:      s.lng,
			TotalSlots:     2,
			ConnectorTypes: []string{"Type 2"},
		}); err != nil {
			t.Fatalf("Create(%s): %v", s.name, err)
		}
	}

	// Origin near Jayanagar.
	got, err := stations.Nearby(ctx, 12.9300, 77.5900, 5)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Jayanagar" {
		t.Fatalf("Nearby(5km) = %v, want only Jayanagar", names(got))
	}

	// Zero radius falls back to the 10km default, pulling in Indiranagar.
	got, err = stations.Nearby(ctx, 12.9300, 77.5900, 0)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Nearby(default) = %v, want 2 stations", names(got))
	}

	got, err = stations.Nearby(ctx, 12.9300, 77.5900, 50)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Nearby(50km) = %v, want all 3", names(got))
	}
}

func names(stations []models.Station) []string {
	out := make([]string, len(stations))
	for i := range stations {
		out[i] = stations[i].Name
	}
	return out
}

func TestUpdateDropsDerivedCount(t *testing.T) {
	ctx := context.Background()
	_, stations, _ := newStationFixture(t)

	station, err := stations.Create(ctx, &models.Station{
		Name:           "Hub",
		TotalSlots:     3,
		ConnectorTypes: []string{"Type 2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := stations.Update(ctx, station.ID, storage.StationPatch{
		Name:           ptr("Renamed Hub"),
		AvailableSlots: ptr(0),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed Hub" {
		t.Fatalf("Name = %q, want Renamed Hub", updated.Name)
	}
	// availableSlots is derived from slot truth; the client value is ignored.
	if updated.AvailableSlots != 3 {
		t.Fatalf("AvailableSlots = %d, want 3", updated.AvailableSlots)
	}

	if _, err := stations.Update(ctx, 999, storage.StationPatch{Name: ptr("x")}); !errors.Is(err, ErrStationNotFound) {
		t.Fatalf("Update(999) = %v, want ErrStationNotFound", err)
	}
}

func TestDeleteStationPolicy(t *testing.T) {
	ctx := context.Background()
	store, stations, keeper := newStationFixture(t)
	bookings := NewBookingService(store, keeper, zap.NewNop())

	station, err := stations.Create(ctx, &models.Station{
		Name:           "Hub",
		TotalSlots:     2,
		PricePerKwh:    10,
		ConnectorTypes: []string{"Type 2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	slots, err := stations.Slots(ctx, station.ID)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}

	booking, err := bookings.Reserve(ctx, ReserveInput{
		UserID:        1,
		StationID:     station.ID,
		SlotID:        slots[0].ID,
		Duration:      30,
		ConnectorType: slots[0].ConnectorType,
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	// Deletion is refused while an active booking references the station.
	if err := stations.Delete(ctx, station.ID); !errors.Is(err, ErrStationInUse) {
		t.Fatalf("Delete = %v, want ErrStationInUse", err)
	}

	if _, err := bookings.Cancel(ctx, booking.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := stations.Delete(ctx, station.ID); err != nil {
		t.Fatalf("Delete after cancel: %v", err)
	}

	if _, err := stations.Get(ctx, station.ID); !errors.Is(err, ErrStationNotFound) {
		t.Fatalf("Get after delete = %v, want ErrStationNotFound", err)
	}
	remaining, err := store.ListSlotsByStation(ctx, station.ID)
	if err != nil || len(remaining) != 0 {
		t.Fatalf("slots after delete = %d (%v), want 0", len(remaining), err)
	}

	if err := stations.Delete(ctx, station.ID); !errors.Is(err, ErrStationNotFound) {
		t.Fatalf("second Delete = %v, want ErrStationNotFound", err)
	}
}

func TestCreateSlotValidation(t *testing.T) {
	ctx := context.Background()
	_, stations, _ := newStationFixture(t)

	station, err := stations.Create(ctx, &models.Station{
		Name:           "Hub",
		TotalSlots:     2,
		ConnectorTypes: []string{"Type 2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name    string
		slot    models.Slot
		wantErr error
	}{
		{
			name:    "unknown station",
			slot:    models.Slot{StationID: 999, SlotNumber: 1, ConnectorType: "Type 2"},
			wantErr: ErrStationNotFound,
		},
		{
			name:    "slot number above capacity",
			slot:    models.Slot{StationID: station.ID, SlotNumber: 3, ConnectorType: "Type 2"},
			wantErr: ErrSlotNumberInvalid,
		},
		{
			name:    "slot number zero",
			slot:    models.Slot{StationID: station.ID, SlotNumber: 0, ConnectorType: "Type 2"},
			wantErr: ErrSlotNumberInvalid,
		},
		{
			name:    "connector the station does not offer",
			slot:    models.Slot{StationID: station.ID, SlotNumber: 1, ConnectorType: "CHAdeMO"},
			wantErr: ErrConnectorInvalid,
		},
		{
			name:    "duplicate slot number",
			slot:    models.Slot{StationID: station.ID, SlotNumber: 1, ConnectorType: "Type 2"},
			wantErr: ErrSlotNumberTaken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := tt.slot
			if _, err := stations.CreateSlot(ctx, &slot); !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateSlot = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateSlotRecountsOnStatusChange(t *testing.T) {
	ctx := context.Background()
	store, stations, _ := newStationFixture(t)

	station, err := stations.Create(ctx, &models.Station{
		Name:           "Hub",
		TotalSlots:     2,
		ConnectorTypes: []string{"Type 2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	slots, err := stations.Slots(ctx, station.ID)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}

	inUse := models.SlotInUse
	if _, err := stations.UpdateSlot(ctx, slots[0].ID, storage.SlotPatch{Status: &inUse}); err != nil {
		t.Fatalf("UpdateSlot: %v", err)
	}

	fresh, err := store.GetStation(ctx, station.ID)
	if err != nil {
		t.Fatalf("GetStation: %v", err)
	}
	if fresh.AvailableSlots != 1 {
		t.Fatalf("AvailableSlots = %d after taking a bay, want 1", fresh.AvailableSlots)
	}

	bad := "charging"
	if _, err := stations.UpdateSlot(ctx, slots[0].ID, storage.SlotPatch{Status: &bad}); !errors.Is(err, ErrInvalidSlotStatus) {
		t.Fatalf("UpdateSlot(bad status) = %v, want ErrInvalidSlotStatus", err)
	}
}

func TestAvailabilityFallsBackToStation(t *testing.T) {
	ctx := context.Background()
	_, stations, _ := newStationFixture(t)

	station, err := stations.Create(ctx, &models.Station{
		Name:           "Hub",
		TotalSlots:     3,
		ConnectorTypes: []string{"Type 2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	snapshot, err := stations.Availability(ctx, station.ID)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if snapshot.AvailableSlots != 3 || snapshot.TotalSlots != 3 {
		t.Fatalf("snapshot = %+v, want 3/3", snapshot)
	}

	if _, err := stations.Availability(ctx, 999); !errors.Is(err, ErrStationNotFound) {
		t.Fatalf("Availability(999) = %v, want ErrStationNotFound", err)
	}
}
