package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"chargehub/internal/models"
	"chargehub/internal/service"
	"chargehub/internal/storage"
)

// StationHandlers serves the station inventory surface.
type StationHandlers struct {
	stations *service.StationService
}

// NewStationHandlers builds StationHandlers.
func NewStationHandlers(stations *service.StationService) *StationHandlers {
	return &StationHandlers{stations: stations}
}

// List handles GET /api/stations.
func (h *StationHandlers) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stations.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

// Nearby handles GET /api/stations/nearby?lat&lng&radius.
func (h *StationHandlers) Nearby(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lat, latErr := strconv.ParseFloat(query.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(query.Get("lng"), 64)
	if latErr != nil || lngErr != nil || !validCoordinates(lat, lng) {
		writeError(w, http.StatusBadRequest, "Valid latitude and longitude required")
		return
	}

	radius := service.DefaultSearchRadiusKm
	if raw := query.Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || math.IsNaN(parsed) {
			writeError(w, http.StatusBadRequest, "Radius must be a positive number")
			return
		}
		radius = parsed
	}

	stations, err := h.stations.Nearby(r.Context(), lat, lng, radius)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

// Get handles GET /api/stations/{id}.
func (h *StationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	station, err := h.stations.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
}

// Availability handles GET /api/stations/{id}/availability.
func (h *StationHandlers) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.stations.Availability(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stationId":      snapshot.StationID,
		"availableSlots": snapshot.AvailableSlots,
		"totalSlots":     snapshot.TotalSlots,
		"updatedAt":      snapshot.UpdatedAt,
	})
}

type stationRequest struct {
	Name                  string   `json:"name"`
	Address               string   `json:"address"`
	City                  string   `json:"city"`
	State                 string   `json:"state"`
	ZipCode               string   `json:"zipCode"`
	Latitude              float64  `json:"latitude"`
	Longitude             float64  `json:"longitude"`
	TotalSlots            int      `json:"totalSlots"`
	PricePerKwh           float64  `json:"pricePerKwh"`
	FastChargingAvailable bool     `json:"fastChargingAvailable"`
	Amenities             []string `json:"amenities"`
	ConnectorTypes        []string `json:"connectorTypes"`
	ImageURL              string   `json:"imageUrl"`
	ContactPhone          string   `json:"contactPhone"`
	ContactEmail          string   `json:"contactEmail"`
	OperatingHours        string   `json:"operatingHours"`
	Status                string   `json:"status"`
}

func (req *stationRequest) validate() []string {
	var problems []string
	if strings.TrimSpace(req.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(req.Address) == "" {
		problems = append(problems, "address is required")
	}
	if strings.TrimSpace(req.City) == "" {
		problems = append(problems, "city is required")
	}
	if !validCoordinates(req.Latitude, req.Longitude) {
		problems = append(problems, "latitude/longitude out of range")
	}
	if req.TotalSlots <= 0 {
		problems = append(problems, "totalSlots must be positive")
	}
	if req.PricePerKwh < 0 {
		problems = append(problems, "pricePerKwh must not be negative")
	}
	if len(req.ConnectorTypes) == 0 {
		problems = append(problems, "at least one connector type is required")
	}
	if req.Status != "" && !validStationStatus(req.Status) {
		problems = append(problems, "status must be operational, maintenance or offline")
	}
	return problems
}

// Create handles POST /api/stations.
func (h *StationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req stationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if problems := req.validate(); len(problems) > 0 {
		writeValidationErrors(w, problems)
		return
	}

	station, err := h.stations.Create(r.Context(), &models.Station{
		Name:                  req.Name,
		Address:               req.Address,
		City:                  req.City,
		State:                 req.State,
		ZipCode:               req.ZipCode,
		Latitude:              req.Latitude,
		Longitude:             req.Longitude,
		TotalSlots:            req.TotalSlots,
		PricePerKwh:           req.PricePerKwh,
		FastChargingAvailable: req.FastChargingAvailable,
		Amenities:             req.Amenities,
		ConnectorTypes:        req.ConnectorTypes,
		ImageURL:              req.ImageURL,
		ContactPhone:          req.ContactPhone,
		ContactEmail:          req.ContactEmail,
		OperatingHours:        req.OperatingHours,
		Status:                req.Status,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, station)
}

type stationUpdateRequest struct {
	Name                  *string  `json:"name"`
	Address               *string  `json:"address"`
	City                  *string  `json:"city"`
	State                 *string  `json:"state"`
	ZipCode               *string  `json:"zipCode"`
	Latitude              *float64 `json:"latitude"`
	Longitude             *float64 `json:"longitude"`
	TotalSlots            *int     `json:"totalSlots"`
	PricePerKwh           *float64 `json:"pricePerKwh"`
	FastChargingAvailable *bool    `json:"fastChargingAvailable"`
	Amenities             []string `json:"amenities"`
	ConnectorTypes        []string `json:"connectorTypes"`
	ImageURL              *string  `json:"imageUrl"`
	ContactPhone          *string  `json:"contactPhone"`
	ContactEmail          *string  `json:"contactEmail"`
	OperatingHours        *string  `json:"operatingHours"`
	Status                *string  `json:"status"`
}

func (req *stationUpdateRequest) validate() []string {
	var problems []string
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		problems = append(problems, "name must not be empty")
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		problems = append(problems, "latitude out of range")
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		problems = append(problems, "longitude out of range")
	}
	if req.TotalSlots != nil && *req.TotalSlots <= 0 {
		problems = append(problems, "totalSlots must be positive")
	}
	if req.PricePerKwh != nil && *req.PricePerKwh < 0 {
		problems = append(problems, "pricePerKwh must not be negative")
	}
	if req.ConnectorTypes != nil && len(req.ConnectorTypes) == 0 {
		problems = append(problems, "connectorTypes must not be empty")
	}
	if req.Status != nil && !validStationStatus(*req.Status) {
		problems = append(problems, "status must be operational, maintenance or offline")
	}
	return problems
}

// Update handles PUT /api/stations/{id}.
func (h *StationHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req stationUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if problems := req.validate(); len(problems) > 0 {
		writeValidationErrors(w, problems)
		return
	}

	station, err := h.stations.Update(r.Context(), id, storage.StationPatch{
		Name:                  req.Name,
		Address:               req.Address,
		City:                  req.City,
		State:                 req.State,
		ZipCode:               req.ZipCode,
		Latitude:              req.Latitude,
		Longitude:             req.Longitude,
		TotalSlots:            req.TotalSlots,
		PricePerKwh:           req.PricePerKwh,
		FastChargingAvailable: req.FastChargingAvailable,
		Amenities:             req.Amenities,
		ConnectorTypes:        req.ConnectorTypes,
		ImageURL:              req.ImageURL,
		ContactPhone:          req.ContactPhone,
		ContactEmail:          req.ContactEmail,
		OperatingHours:        req.OperatingHours,
		Status:                req.Status,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
}

// Delete handles DELETE /api/stations/{id}.
func (h *StationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.stations.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func validStationStatus(status string) bool {
	switch status {
	case models.StationOperational, models.StationMaintenance, models.StationOffline:
		return true
	}
	return false
}
