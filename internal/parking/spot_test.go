package parking

import (
	"testing"
	"time"
)

func TestNewSpot(t *testing.T) {
	spot := NewSpot(1, SpotMedium)

	if spot.ID != 1 {
		t.Errorf("Expected spot ID 1, got %d", spot.ID)
	}
	if spot.Class != SpotMedium {
		t.Errorf("Expected class %s, got %s", SpotMedium, spot.Class)
	}
	if spot.Occupied() {
		t.Error("Expected new spot to be vacant")
	}
	if spot.Vehicle() != nil {
		t.Error("Expected new spot to have no vehicle")
	}
}

func TestSpotOccupy(t *testing.T) {
	spot := NewSpot(1, SpotLarge)
	vehicle := Vehicle{Category: Truck, Size: SizeLarge}
	at := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	spot.occupy(vehicle, at, "ticket-1")

	if !spot.Occupied() {
		t.Error("Expected spot to be occupied")
	}
	if spot.Vehicle() == nil || spot.Vehicle().Category != Truck {
		t.Error("Expected spot to hold the admitted vehicle")
	}
	if !spot.admittedAt.Equal(at) {
		t.Errorf("Expected admission time %v, got %v", at, spot.admittedAt)
	}
	if spot.ticketID != "ticket-1" {
		t.Errorf("Expected ticket ID ticket-1, got %s", spot.ticketID)
	}
}

func TestSpotVacate(t *testing.T) {
	spot := NewSpot(1, SpotSmall)
	spot.occupy(Vehicle{Category: Bike, Size: SizeSmall}, time.Now(), "ticket-1")

	spot.vacate()

	if spot.Occupied() {
		t.Error("Expected spot to be vacant after vacate")
	}
	if spot.Vehicle() != nil {
		t.Error("Expected no vehicle after vacate")
	}
	if !spot.admittedAt.IsZero() {
		t.Error("Expected admission time to be cleared")
	}
	if spot.ticketID != "" {
		t.Error("Expected ticket ID to be cleared")
	}
}
