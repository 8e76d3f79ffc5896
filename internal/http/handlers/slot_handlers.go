package handlers

import (
	"net/http"

	"chargehub/internal/models"
	"chargehub/internal/service"
	"chargehub/internal/storage"
)

// SlotHandlers serves the slot admin surface.
type SlotHandlers struct {
	stations *service.StationService
}

// NewSlotHandlers builds SlotHandlers.
func NewSlotHandlers(stations *service.StationService) *SlotHandlers {
	return &SlotHandlers{stations: stations}
}

// ListByStation handles GET /api/stations/{stationId}/slots.
func (h *SlotHandlers) ListByStation(w http.ResponseWriter, r *http.Request) {
	stationID, err := pathID(r, "stationId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	slots, err := h.stations.Slots(r.Context(), stationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

// Create handles POST /api/slots.
func (h *SlotHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StationID     int64  `json:"stationId"`
		SlotNumber    int    `json:"slotNumber"`
		Status        string `json:"status"`
		ConnectorType string `json:"connectorType"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var problems []string
	if req.StationID <= 0 {
		problems = append(problems, "stationId is required")
	}
	if req.SlotNumber <= 0 {
		problems = append(problems, "slotNumber must be positive")
	}
	if req.ConnectorType == "" {
		problems = append(problems, "connectorType is required")
	}
	if len(problems) > 0 {
		writeValidationErrors(w, problems)
		return
	}

	slot, err := h.stations.CreateSlot(r.Context(), &models.Slot{
		StationID:     req.StationID,
		SlotNumber:    req.SlotNumber,
		Status:        req.Status,
		ConnectorType: req.ConnectorType,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

// Update handles PUT /api/slots/{id}. A status change triggers the owning
// station's availability recount.
func (h *SlotHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		SlotNumber    *int    `json:"slotNumber"`
		Status        *string `json:"status"`
		ConnectorType *string `json:"connectorType"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SlotNumber != nil && *req.SlotNumber <= 0 {
		writeValidationErrors(w, []string{"slotNumber must be positive"})
		return
	}

	slot, err := h.stations.UpdateSlot(r.Context(), id, storage.SlotPatch{
		SlotNumber:    req.SlotNumber,
		Status:        req.Status,
		ConnectorType: req.ConnectorType,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}
