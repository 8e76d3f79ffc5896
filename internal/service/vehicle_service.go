package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"chargehub/internal/models"
	"chargehub/internal/storage"
)

// VehicleService manages the user's vehicle reference data.
type VehicleService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewVehicleService builds VehicleService.
func NewVehicleService(store storage.Store, logger *zap.Logger) *VehicleService {
	return &VehicleService{store: store, logger: logger}
}

// ListByUser returns the user's vehicles.
func (s *VehicleService) ListByUser(ctx context.Context, userID int64) ([]models.Vehicle, error) {
	return s.store.ListVehiclesByUser(ctx, userID)
}

// Get fetches one vehicle.
func (s *VehicleService) Get(ctx context.Context, id int64) (*models.Vehicle, error) {
	vehicle, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

// Create registers a vehicle for an existing user.
func (s *VehicleService) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if _, err := s.store.GetUser(ctx, vehicle.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.store.CreateVehicle(ctx, vehicle); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle registered",
		zap.Int64("vehicle_id", vehicle.ID),
		zap.Int64("user_id", vehicle.UserID),
	)
	return vehicle, nil
}

// Update applies a partial vehicle update.
func (s *VehicleService) Update(ctx context.Context, id int64, patch storage.VehiclePatch) (*models.Vehicle, error) {
	vehicle, err := s.store.UpdateVehicle(ctx, id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

// Delete removes a vehicle.
func (s *VehicleService) Delete(ctx context.Context, id int64) error {
	existed, err := s.store.DeleteVehicle(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		return ErrVehicleNotFound
	}
	return nil
}
