package httpserver

import (
	"net/http"

	"chargehub/internal/http/handlers"
	"chargehub/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Auth         *handlers.AuthHandlers
	Stations     *handlers.StationHandlers
	Slots        *handlers.SlotHandlers
	Bookings     *handlers.BookingHandlers
	Vehicles     *handlers.VehicleHandlers
	Health       http.HandlerFunc
	Availability http.HandlerFunc
	AuthRequired func(http.Handler) http.Handler
}

// NewRouter wires all HTTP routes. Station discovery is public, station and
// slot administration requires the admin role, booking and vehicle traffic
// requires a valid token.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	authed := func(handler http.HandlerFunc) http.Handler {
		return middleware.Chain(handler, deps.AuthRequired)
	}
	admin := func(handler http.HandlerFunc) http.Handler {
		return middleware.Chain(middleware.RequireAdmin(handler), deps.AuthRequired)
	}

	mux.Handle("GET /health", deps.Health)

	mux.Handle("POST /api/auth/register", http.HandlerFunc(deps.Auth.Register))
	mux.Handle("POST /api/auth/login", http.HandlerFunc(deps.Auth.Login))

	mux.Handle("GET /api/stations", http.HandlerFunc(deps.Stations.List))
	mux.Handle("GET /api/stations/nearby", http.HandlerFunc(deps.Stations.Nearby))
	mux.Handle("GET /api/stations/{id}", http.HandlerFunc(deps.Stations.Get))
	mux.Handle("GET /api/stations/{id}/availability", http.HandlerFunc(deps.Stations.Availability))
	mux.Handle("POST /api/stations", admin(deps.Stations.Create))
	mux.Handle("PUT /api/stations/{id}", admin(deps.Stations.Update))
	mux.Handle("DELETE /api/stations/{id}", admin(deps.Stations.Delete))

	mux.Handle("GET /api/stations/{stationId}/slots", http.HandlerFunc(deps.Slots.ListByStation))
	mux.Handle("POST /api/slots", admin(deps.Slots.Create))
	mux.Handle("PUT /api/slots/{id}", admin(deps.Slots.Update))

	mux.Handle("GET /api/bookings", admin(deps.Bookings.List))
	mux.Handle("GET /api/bookings/{id}", authed(deps.Bookings.Get))
	mux.Handle("GET /api/users/{userId}/bookings", authed(deps.Bookings.ListByUser))
	mux.Handle("GET /api/stations/{stationId}/bookings", authed(deps.Bookings.ListByStation))
	mux.Handle("POST /api/bookings", authed(deps.Bookings.Create))
	mux.Handle("PUT /api/bookings/{id}", authed(deps.Bookings.Update))

	mux.Handle("GET /api/users/{userId}/vehicles", authed(deps.Vehicles.ListByUser))
	mux.Handle("GET /api/vehicles/{id}", authed(deps.Vehicles.Get))
	mux.Handle("POST /api/vehicles", authed(deps.Vehicles.Create))
	mux.Handle("PUT /api/vehicles/{id}", authed(deps.Vehicles.Update))
	mux.Handle("DELETE /api/vehicles/{id}", authed(deps.Vehicles.Delete))

	if deps.Availability != nil {
		mux.Handle("GET /api/ws/availability", deps.Availability)
	}

	return mux
}
