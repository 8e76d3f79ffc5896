// Package postgres implements the entity store on PostgreSQL via the
// pgx stdlib driver. Schema lives in schema.sql. List-typed columns
// (amenities, connector types) are stored as JSONB.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"chargehub/internal/models"
	"chargehub/internal/storage"
)

// Store is the Postgres-backed entity store.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ storage.Store = (*Store)(nil)

// CreateUser inserts a user and reads back the assigned id and timestamp.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	const query = `
		INSERT INTO users (username, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return s.db.QueryRowContext(ctx, query,
		user.Username, strings.ToLower(user.Email), user.PasswordHash, user.Name, user.Role).
		Scan(&user.ID, &user.CreatedAt)
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const query = userSelect + ` WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername fetches a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = userSelect + ` WHERE username = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, username))
}

// GetUserByEmail fetches a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = userSelect + ` WHERE email = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, strings.ToLower(email)))
}

const userSelect = `
	SELECT id, username, email, password_hash, name, role, created_at
	FROM users
`

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Name, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

const stationColumns = `
	id, name, address, city, state, zip_code, latitude, longitude,
	total_slots, available_slots, price_per_kwh, fast_charging_available,
	amenities, connector_types, image_url, contact_phone, contact_email,
	operating_hours, status, created_at
`

// ListStations returns all stations ordered by id.
func (s *Store) ListStations(ctx context.Context) ([]models.Station, error) {
	query := `SELECT ` + stationColumns + ` FROM stations ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, *station)
	}
	return stations, rows.Err()
}

// GetStation fetches a station by id.
func (s *Store) GetStation(ctx context.Context, id int64) (*models.Station, error) {
	query := `SELECT ` + stationColumns + ` FROM stations WHERE id = $1`
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, storage.ErrNotFound
	}
	return scanStation(rows)
}

// CreateStation inserts a station and reads back id and created_at.
func (s *Store) CreateStation(ctx context.Context, station *models.Station) error {
	const query = `
		INSERT INTO stations (
			name, address, city, state, zip_code, latitude, longitude,
			total_slots, available_slots, price_per_kwh, fast_charging_available,
			amenities, connector_types, image_url, contact_phone, contact_email,
			operating_hours, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id, created_at
	`
	return s.db.QueryRowContext(ctx, query,
		station.Name, station.Address, station.City, station.State, station.ZipCode,
		station.Latitude, station.Longitude, station.TotalSlots, station.AvailableSlots,
		station.PricePerKwh, station.FastChargingAvailable,
		jsonList(station.Amenities), jsonList(station.ConnectorTypes),
		station.ImageURL, station.ContactPhone, station.ContactEmail,
		station.OperatingHours, station.Status).
		Scan(&station.ID, &station.CreatedAt)
}

// UpdateStation applies the non-nil patch fields in a single UPDATE.
func (s *Store) UpdateStation(ctx context.Context, id int64, patch storage.StationPatch) (*models.Station, error) {
	set := newSetBuilder()
	set.add("name", patch.Name)
	set.add("address", patch.Address)
	set.add("city", patch.City)
	set.add("state", patch.State)
	set.add("zip_code", patch.ZipCode)
	set.add("latitude", patch.Latitude)
	set.add("longitude", patch.Longitude)
	set.add("total_slots", patch.TotalSlots)
	set.add("available_slots", patch.AvailableSlots)
	set.add("price_per_kwh", patch.PricePerKwh)
	set.add("fast_charging_available", patch.FastChargingAvailable)
	if patch.Amenities != nil {
		set.addValue("amenities", jsonList(patch.Amenities))
	}
	if patch.ConnectorTypes != nil {
		set.addValue("connector_types", jsonList(patch.ConnectorTypes))
	}
	set.add("image_url", patch.ImageURL)
	set.add("contact_phone", patch.ContactPhone)
	set.add("contact_email", patch.ContactEmail)
	set.add("operating_hours", patch.OperatingHours)
	set.add("status", patch.Status)

	if set.empty() {
		return s.GetStation(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE stations SET %s WHERE id = $%d RETURNING `+stationColumns,
		set.clause(), set.next())
	rows, err := s.db.QueryContext(ctx, query, append(set.args, id)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, storage.ErrNotFound
	}
	return scanStation(rows)
}

// DeleteStation removes the station row, reporting whether it existed.
func (s *Store) DeleteStation(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanStation(rows *sql.Rows) (*models.Station, error) {
	var (
		station                   models.Station
		amenities, connectorTypes jsonList
		imageURL, phone, email    sql.NullString
	)
	err := rows.Scan(&station.ID, &station.Name, &station.Address, &station.City,
		&station.State, &station.ZipCode, &station.Latitude, &station.Longitude,
		&station.TotalSlots, &station.AvailableSlots, &station.PricePerKwh,
		&station.FastChargingAvailable, &amenities, &connectorTypes,
		&imageURL, &phone, &email, &station.OperatingHours, &station.Status,
		&station.CreatedAt)
	if err != nil {
		return nil, err
	}
	station.Amenities = amenities
	station.ConnectorTypes = connectorTypes
	station.ImageURL = imageURL.String
	station.ContactPhone = phone.String
	station.ContactEmail = email.String
	return &station, nil
}

const slotSelect = `
	SELECT id, station_id, slot_number, status, connector_type
	FROM slots
`

// ListSlotsByStation returns the station's slots ordered by slot number.
func (s *Store) ListSlotsByStation(ctx context.Context, stationID int64) ([]models.Slot, error) {
	const query = slotSelect + ` WHERE station_id = $1 ORDER BY slot_number`
	rows, err := s.db.QueryContext(ctx, query, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []models.Slot
	for rows.Next() {
		var slot models.Slot
		if err := rows.Scan(&slot.ID, &slot.StationID, &slot.SlotNumber,
			&slot.Status, &slot.ConnectorType); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// GetSlot fetches a slot by id.
func (s *Store) GetSlot(ctx context.Context, id int64) (*models.Slot, error) {
	const query = slotSelect + ` WHERE id = $1`
	var slot models.Slot
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&slot.ID, &slot.StationID, &slot.SlotNumber, &slot.Status, &slot.ConnectorType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// CreateSlot inserts a slot and reads back the assigned id.
func (s *Store) CreateSlot(ctx context.Context, slot *models.Slot) error {
	const query = `
		INSERT INTO slots (station_id, slot_number, status, connector_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return s.db.QueryRowContext(ctx, query,
		slot.StationID, slot.SlotNumber, slot.Status, slot.ConnectorType).
		Scan(&slot.ID)
}

// UpdateSlot applies the non-nil patch fields.
func (s *Store) UpdateSlot(ctx context.Context, id int64, patch storage.SlotPatch) (*models.Slot, error) {
	set := newSetBuilder()
	set.add("slot_number", patch.SlotNumber)
	set.add("status", patch.Status)
	set.add("connector_type", patch.ConnectorType)

	if set.empty() {
		return s.GetSlot(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE slots SET %s WHERE id = $%d
		RETURNING id, station_id, slot_number, status, connector_type`,
		set.clause(), set.next())
	var slot models.Slot
	err := s.db.QueryRowContext(ctx, query, append(set.args, id)...).
		Scan(&slot.ID, &slot.StationID, &slot.SlotNumber, &slot.Status, &slot.ConnectorType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// DeleteSlotsByStation removes every slot owned by the station.
func (s *Store) DeleteSlotsByStation(ctx context.Context, stationID int64) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE station_id = $1`, stationID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

const bookingSelect = `
	SELECT id, user_id, station_id, slot_id, booking_date, start_time,
	       duration, status, vehicle, connector_type, estimated_cost, created_at
	FROM bookings
`

// ListBookings returns every booking ordered by id.
func (s *Store) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return s.queryBookings(ctx, bookingSelect+` ORDER BY id`)
}

// ListBookingsByUser returns bookings owned by the user.
func (s *Store) ListBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	return s.queryBookings(ctx, bookingSelect+` WHERE user_id = $1 ORDER BY id`, userID)
}

// ListBookingsByStation returns bookings referencing the station.
func (s *Store) ListBookingsByStation(ctx context.Context, stationID int64) ([]models.Booking, error) {
	return s.queryBookings(ctx, bookingSelect+` WHERE station_id = $1 ORDER BY id`, stationID)
}

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

// GetBooking fetches a booking by id.
func (s *Store) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	rows, err := s.db.QueryContext(ctx, bookingSelect+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, storage.ErrNotFound
	}
	return scanBooking(rows)
}

// CreateBooking inserts a booking and reads back id and created_at.
func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) error {
	const query = `
		INSERT INTO bookings (
			user_id, station_id, slot_id, booking_date, start_time,
			duration, status, vehicle, connector_type, estimated_cost
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at
	`
	return s.db.QueryRowContext(ctx, query,
		booking.UserID, booking.StationID, booking.SlotID, booking.BookingDate,
		booking.StartTime, booking.Duration, booking.Status, booking.Vehicle,
		booking.ConnectorType, booking.EstimatedCost).
		Scan(&booking.ID, &booking.CreatedAt)
}

// UpdateBooking applies the non-nil patch fields.
func (s *Store) UpdateBooking(ctx context.Context, id int64, patch storage.BookingPatch) (*models.Booking, error) {
	set := newSetBuilder()
	set.add("booking_date", patch.BookingDate)
	set.add("start_time", patch.StartTime)
	set.add("duration", patch.Duration)
	set.add("status", patch.Status)
	set.add("vehicle", patch.Vehicle)
	set.add("connector_type", patch.ConnectorType)
	set.add("estimated_cost", patch.EstimatedCost)

	if set.empty() {
		return s.GetBooking(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE bookings SET %s WHERE id = $%d RETURNING id`,
		set.clause(), set.next())
	var updatedID int64
	if err := s.db.QueryRowContext(ctx, query, append(set.args, id)...).Scan(&updatedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return s.GetBooking(ctx, updatedID)
}

func scanBooking(rows *sql.Rows) (*models.Booking, error) {
	var (
		booking models.Booking
		vehicle sql.NullString
	)
	err := rows.Scan(&booking.ID, &booking.UserID, &booking.StationID, &booking.SlotID,
		&booking.BookingDate, &booking.StartTime, &booking.Duration, &booking.Status,
		&vehicle, &booking.ConnectorType, &booking.EstimatedCost, &booking.CreatedAt)
	if err != nil {
		return nil, err
	}
	booking.Vehicle = vehicle.String
	return &booking, nil
}

const vehicleSelect = `
	SELECT id, user_id, make, model, year, connector_types
	FROM vehicles
`

// ListVehiclesByUser returns vehicles owned by the user.
func (s *Store) ListVehiclesByUser(ctx context.Context, userID int64) ([]models.Vehicle, error) {
	const query = vehicleSelect + ` WHERE user_id = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *vehicle)
	}
	return vehicles, rows.Err()
}

// GetVehicle fetches a vehicle by id.
func (s *Store) GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx, vehicleSelect+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, storage.ErrNotFound
	}
	return scanVehicle(rows)
}

// CreateVehicle inserts a vehicle and reads back the assigned id.
func (s *Store) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	const query = `
		INSERT INTO vehicles (user_id, make, model, year, connector_types)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return s.db.QueryRowContext(ctx, query,
		vehicle.UserID, vehicle.Make, vehicle.Model, vehicle.Year,
		jsonList(vehicle.ConnectorTypes)).
		Scan(&vehicle.ID)
}

// UpdateVehicle applies the non-nil patch fields.
func (s *Store) UpdateVehicle(ctx context.Context, id int64, patch storage.VehiclePatch) (*models.Vehicle, error) {
	set := newSetBuilder()
	set.add("make", patch.Make)
	set.add("model", patch.Model)
	set.add("year", patch.Year)
	if patch.ConnectorTypes != nil {
		set.addValue("connector_types", jsonList(patch.ConnectorTypes))
	}

	if set.empty() {
		return s.GetVehicle(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE vehicles SET %s WHERE id = $%d
		RETURNING id, user_id, make, model, year, connector_types`,
		set.clause(), set.next())
	rows, err := s.db.QueryContext(ctx, query, append(set.args, id)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, storage.ErrNotFound
	}
	return scanVehicle(rows)
}

// DeleteVehicle removes the vehicle row, reporting whether it existed.
func (s *Store) DeleteVehicle(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanVehicle(rows *sql.Rows) (*models.Vehicle, error) {
	var (
		vehicle    models.Vehicle
		connectors jsonList
	)
	err := rows.Scan(&vehicle.ID, &vehicle.UserID, &vehicle.Make, &vehicle.Model,
		&vehicle.Year, &connectors)
	if err != nil {
		return nil, err
	}
	vehicle.ConnectorTypes = connectors
	return &vehicle, nil
}
