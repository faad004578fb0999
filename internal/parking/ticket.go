package parking

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is the handle a driver holds between admission and release.
type Ticket struct {
	ID       string
	SpotID   int
	Vehicle  Vehicle
	IssuedAt time.Time
}

func newTicket(spotID int, vehicle Vehicle, issuedAt time.Time) Ticket {
	return Ticket{
		ID:       uuid.New().String(),
		SpotID:   spotID,
		Vehicle:  vehicle,
		IssuedAt: issuedAt,
	}
}
