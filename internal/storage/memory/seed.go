package memory

import (
	"context"
	"fmt"

	"chargehub/internal/models"
)

// Seed loads the built-in Bengaluru station catalogue and provisions one
// slot per bay. Per station, the first availableSlots bays start "available"
// and the rest start "in_use", so the derived count is consistent from the
// first read. Intended for development and tests.
func (s *Store) Seed(ctx context.Context) error {
	stations := []models.Station{
		{
			Name:           "Ather Grid Charging Station - Jayanagar",
			Address:        "#64, 10th Main Rd, 4th Block, Jayanagar",
			City:           "Bengaluru",
			State:          "Karnataka",
			ZipCode:        "560011",
			Latitude:       12.9257,
			Longitude:      77.5960,
			TotalSlots:     4,
			AvailableSlots: 3,
			PricePerKwh:    15.00,
			Amenities:      []string{"Parking", "24/7 Access"},
			ConnectorTypes: []string{"AC Type 2"},
			ContactPhone:   "9789214555",
			ContactEmail:   "support@athergrid.com",
			OperatingHours: models.DefaultOperatingHours,
			Status:         models.StationOperational,
		},
		{
			Name:           "IKEA Bengaluru Charging Station",
			Address:        "IKEA, Nagasandra",
			City:           "Bengaluru",
			State:          "Karnataka",
			ZipCode:        "560073",
			Latitude:       13.0359,
			Longitude:      77.5085,
			TotalSlots:     12,
			AvailableSlots: 10,
			PricePerKwh:    0.00,
			Amenities:      []string{"Parking", "Shopping", "Restaurant", "Restrooms"},
			ConnectorTypes: []string{"Type 2"},
			ContactPhone:   "1800 419 4532",
			ContactEmail:   "customer.care@ikea.in",
			OperatingHours: "10:00 AM - 10:00 PM",
			Status:         models.StationOperational,
		},
		{
			Name:           "Mahindra EV Charging Station - Eva Mall",
			Address:        "Eva Mall, 60, Brigade Road",
			City:           "Bengaluru",
			State:          "Karnataka",
			ZipCode:        "560025",
			Latitude:       12.9730,
			Longitude:      77.6090,
			TotalSlots:     3,
			AvailableSlots: 1,
			PricePerKwh:    18.00,
			Amenities:      []string{"Parking", "Shopping", "Restrooms"},
			ConnectorTypes: []string{"AC Plug Point", "Socket 3PIN", "IEC 60309"},
			ContactPhone:   "8041531162",
			ContactEmail:   "support@mahindraelectric.com",
			OperatingHours: "10:00 AM - 7:00 PM",
			Status:         models.StationOperational,
		},
		{
			Name:                  "BESCOM Charging Station - Indiranagar",
			Address:               "BESCOM E6 Indiranagar SDO",
			City:                  "Bengaluru",
			State:                 "Karnataka",
			ZipCode:               "560038",
			Latitude:              12.9781,
			Longitude:             77.6408,
			TotalSlots:            3,
			AvailableSlots:        2,
			PricePerKwh:           12.00,
			FastChargingAvailable: true,
			Amenities:             []string{"Parking", "Government Facility"},
			ConnectorTypes:        []string{"AC", "DC"},
			ContactPhone:          "080-2294-4300",
			ContactEmail:          "bescom@karnataka.gov.in",
			OperatingHours:        "8:00 AM - 8:00 PM",
			Status:                models.StationOperational,
		},
		{
			Name:                  "ElectricPe Charging Station - Pariwar Presidency",
			Address:               "Pariwar Presidency Block-B, Phase 2, Anugraha Layout, Bilekahalli",
			City:                  "Bengaluru",
			State:                 "Karnataka",
			ZipCode:               "560076",
			Latitude:              12.8943,
			Longitude:             77.6080,
			TotalSlots:            6,
			AvailableSlots:        4,
			PricePerKwh:           16.00,
			FastChargingAvailable: true,
			Amenities:             []string{"Parking", "WiFi", "24/7 Access"},
			ConnectorTypes:        []string{"Type 2", "CCS", "CHAdeMO"},
			ContactPhone:          "1800-209-1234",
			ContactEmail:          "support@electricpe.com",
			OperatingHours:        models.DefaultOperatingHours,
			Status:                models.StationOperational,
		},
	}

	for i := range stations {
		station := &stations[i]
		available := station.AvailableSlots
		if err := s.CreateStation(ctx, station); err != nil {
			return fmt.Errorf("seed station %q: %w", station.Name, err)
		}

		for n := 1; n <= station.TotalSlots; n++ {
			status := models.SlotInUse
			if n <= available {
				status = models.SlotAvailable
			}
			slot := &models.Slot{
				StationID:     station.ID,
				SlotNumber:    n,
				Status:        status,
				ConnectorType: station.ConnectorTypes[n%len(station.ConnectorTypes)],
			}
			if err := s.CreateSlot(ctx, slot); err != nil {
				return fmt.Errorf("seed slot %d for station %q: %w", n, station.Name, err)
			}
		}
	}
	return nil
}
