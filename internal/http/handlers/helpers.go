package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"chargehub/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeValidationErrors reports field-level failures the UI can branch on.
func writeValidationErrors(w http.ResponseWriter, problems []string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"message": "Invalid input data",
		"errors":  problems,
	})
}

// decodeJSON parses a request body into a closed struct; unknown fields are
// rejected rather than silently dropped.
func decodeJSON(r *http.Request, target interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// pathID extracts a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// writeDomainError translates service-layer errors into status codes. The
// booking failure reasons stay distinguishable so the UI can guide the user
// back to slot selection.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username already exists")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrStationNotFound):
		writeError(w, http.StatusNotFound, "Station not found")
	case errors.Is(err, service.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "Slot not found")
	case errors.Is(err, service.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "Booking not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrVehicleNotFound):
		writeError(w, http.StatusNotFound, "Vehicle not found")
	case errors.Is(err, service.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "Slot is not available for booking")
	case errors.Is(err, service.ErrConnectorMismatch):
		writeError(w, http.StatusConflict, "Requested connector does not match slot")
	case errors.Is(err, service.ErrStationInUse):
		writeError(w, http.StatusConflict, "Station has active bookings")
	case errors.Is(err, service.ErrSlotNumberTaken):
		writeError(w, http.StatusConflict, "Slot number already exists for station")
	case errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidBookingStatus),
		errors.Is(err, service.ErrInvalidSlotStatus),
		errors.Is(err, service.ErrSlotNumberInvalid),
		errors.Is(err, service.ErrConnectorInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
