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

func TestVehicleLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	vehicles := NewVehicleService(store, zap.NewNop())

	owner := &models.User{Username: "asha", Email: "asha@example.com", PasswordHash: "hash", Name: "Asha", Role: models.RoleUser}
	if err := store.CreateUser(ctx, owner); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Vehicles require an existing owner.
	if _, err := vehicles.Create(ctx, &models.Vehicle{UserID: 999, Make: "Tata"}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Create(orphan) = %v, want ErrUserNotFound", err)
	}

	vehicle, err := vehicles.Create(ctx, &models.Vehicle{
		UserID:         owner.ID,
		Make:           "Tata",
		Model:          "Nexon EV",
		Year:           "2024",
		ConnectorTypes: []string{"CCS"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	listed, err := vehicles.ListByUser(ctx, owner.ID)
	if err != nil || len(listed) != 1 {
		t.Fatalf("ListByUser = %d, %v; want 1", len(listed), err)
	}

	updated, err := vehicles.Update(ctx, vehicle.ID, storage.VehiclePatch{
		Model:          ptr("Nexon EV Max"),
		ConnectorTypes: []string{"CCS", "Type 2"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Model != "Nexon EV Max" || updated.Make != "Tata" {
		t.Fatalf("Update merged badly: %+v", updated)
	}
	if len(updated.ConnectorTypes) != 2 {
		t.Fatalf("ConnectorTypes = %v, want replaced wholesale", updated.ConnectorTypes)
	}

	if err := vehicles.Delete(ctx, vehicle.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := vehicles.Delete(ctx, vehicle.ID); !errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("second Delete = %v, want ErrVehicleNotFound", err)
	}
	if _, err := vehicles.Get(ctx, vehicle.ID); !errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("Get after delete = %v, want ErrVehicleNotFound", err)
	}
}
