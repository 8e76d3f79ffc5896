package handlers

import (
	"net/http"
	"time"

	"chargehub/internal/service"
	"chargehub/internal/storage"
)

// BookingHandlers serves the booking surface over the consistency core.
type BookingHandlers struct {
	bookings *service.BookingService
}

// NewBookingHandlers builds BookingHandlers.
func NewBookingHandlers(bookings *service.BookingService) *BookingHandlers {
	return &BookingHandlers{bookings: bookings}
}

// List handles GET /api/bookings.
func (h *BookingHandlers) List(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// Get handles GET /api/bookings/{id}.
func (h *BookingHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// ListByUser handles GET /api/users/{userId}/bookings.
func (h *BookingHandlers) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := h.bookings.ListByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// ListByStation handles GET /api/stations/{stationId}/bookings.
func (h *BookingHandlers) ListByStation(w http.ResponseWriter, r *http.Request) {
	stationID, err := pathID(r, "stationId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := h.bookings.ListByStation(r.Context(), stationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// Create handles POST /api/bookings: the reserve operation. Status and cost
// are server-derived, so the request shape excludes them.
func (h *BookingHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        int64     `json:"userId"`
		StationID     int64     `json:"stationId"`
		SlotID        int64     `json:"slotId"`
		BookingDate   time.Time `json:"bookingDate"`
		StartTime     time.Time `json:"startTime"`
		Duration      int       `json:"duration"`
		ConnectorType string    `json:"connectorType"`
		Vehicle       string    `json:"vehicle"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var problems []string
	if req.UserID <= 0 {
		problems = append(problems, "userId is required")
	}
	if req.StationID <= 0 {
		problems = append(problems, "stationId is required")
	}
	if req.SlotID <= 0 {
		problems = append(problems, "slotId is required")
	}
	if req.StartTime.IsZero() {
		problems = append(problems, "startTime is required")
	}
	if req.Duration <= 0 {
		problems = append(problems, "duration must be positive")
	}
	if req.ConnectorType == "" {
		problems = append(problems, "connectorType is required")
	}
	if len(problems) > 0 {
		writeValidationErrors(w, problems)
		return
	}

	booking, err := h.bookings.Reserve(r.Context(), service.ReserveInput{
		UserID:        req.UserID,
		StationID:     req.StationID,
		SlotID:        req.SlotID,
		BookingDate:   req.BookingDate,
		StartTime:     req.StartTime,
		Duration:      req.Duration,
		ConnectorType: req.ConnectorType,
		Vehicle:       req.Vehicle,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// Update handles PUT /api/bookings/{id}. Patching status to "cancelled"
// releases the slot exactly like a cancel.
func (h *BookingHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		BookingDate   *time.Time `json:"bookingDate"`
		StartTime     *time.Time `json:"startTime"`
		Duration      *int       `json:"duration"`
		Status        *string    `json:"status"`
		Vehicle       *string    `json:"vehicle"`
		ConnectorType *string    `json:"connectorType"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.bookings.Update(r.Context(), id, storage.BookingPatch{
		BookingDate:   req.BookingDate,
		StartTime:     req.StartTime,
		Duration:      req.Duration,
		Status:        req.Status,
		Vehicle:       req.Vehicle,
		ConnectorType: req.ConnectorType,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
