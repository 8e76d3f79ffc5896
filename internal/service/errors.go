package service

import "errors"

// Domain errors raised by the service layer. The HTTP boundary maps each to
// a status code; nothing else crosses it except wrapped storage failures.
var (
	ErrUsernameTaken      = errors.New("auth: username already exists")
	ErrEmailTaken         = errors.New("auth: email already exists")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	ErrStationNotFound = errors.New("station: not found")
	ErrStationInUse    = errors.New("station: active bookings reference this station")

	ErrSlotNotFound      = errors.New("slot: not found")
	ErrSlotUnavailable   = errors.New("slot: not available for booking")
	ErrSlotNumberTaken   = errors.New("slot: slot number already exists for station")
	ErrSlotNumberInvalid = errors.New("slot: slot number outside station capacity")
	ErrConnectorInvalid  = errors.New("slot: connector type not offered by station")
	ErrInvalidSlotStatus = errors.New("slot: unknown status")

	ErrBookingNotFound      = errors.New("booking: not found")
	ErrConnectorMismatch    = errors.New("booking: requested connector does not match slot")
	ErrInvalidDuration      = errors.New("booking: duration must be positive")
	ErrInvalidBookingStatus = errors.New("booking: unknown status")

	ErrUserNotFound    = errors.New("user: not found")
	ErrVehicleNotFound = errors.New("vehicle: not found")
)
