package handlers

import (
	"net/http"
	"strings"

	"chargehub/internal/models"
	"chargehub/internal/service"
	"chargehub/internal/storage"
)

// VehicleHandlers serves vehicle CRUD.
type VehicleHandlers struct {
	vehicles *service.VehicleService
}

// NewVehicleHandlers builds VehicleHandlers.
func NewVehicleHandlers(vehicles *service.VehicleService) *VehicleHandlers {
	return &VehicleHandlers{vehicles: vehicles}
}

// ListByUser handles GET /api/users/{userId}/vehicles.
func (h *VehicleHandlers) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicles, err := h.vehicles.ListByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Get handles GET /api/vehicles/{id}.
func (h *VehicleHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicle, err := h.vehicles.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Create handles POST /api/vehicles.
func (h *VehicleHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID         int64    `json:"userId"`
		Make           string   `json:"make"`
		Model          string   `json:"model"`
		Year           string   `json:"year"`
		ConnectorTypes []string `json:"connectorTypes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var problems []string
	if req.UserID <= 0 {
		problems = append(problems, "userId is required")
	}
	if strings.TrimSpace(req.Make) == "" {
		problems = append(problems, "make is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		problems = append(problems, "model is required")
	}
	if strings.TrimSpace(req.Year) == "" {
		problems = append(problems, "year is required")
	}
	if len(req.ConnectorTypes) == 0 {
		problems = append(problems, "at least one connector type is required")
	}
	if len(problems) > 0 {
		writeValidationErrors(w, problems)
		return
	}

	vehicle, err := h.vehicles.Create(r.Context(), &models.Vehicle{
		UserID:         req.UserID,
		Make:           req.Make,
		Model:          req.Model,
		Year:           req.Year,
		ConnectorTypes: req.ConnectorTypes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

// Update handles PUT /api/vehicles/{id}.
func (h *VehicleHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Make           *string  `json:"make"`
		Model          *string  `json:"model"`
		Year           *string  `json:"year"`
		ConnectorTypes []string `json:"connectorTypes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicle, err := h.vehicles.Update(r.Context(), id, storage.VehiclePatch{
		Make:           req.Make,
		Model:          req.Model,
		Year:           req.Year,
		ConnectorTypes: req.ConnectorTypes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Delete handles DELETE /api/vehicles/{id}.
func (h *VehicleHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.vehicles.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
