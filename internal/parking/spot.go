package parking

import "time"

type Spot struct {
	ID    int
	Class SpotClass

	vehicle    *Vehicle
	admittedAt time.Time
	ticketID   string
}

func NewSpot(id int, class SpotClass) *Spot {
	return &Spot{
		ID:    id,
		Class: class,
	}
}

func (s *Spot) Occupied() bool {
	return s.vehicle != nil
}

func (s *Spot) Vehicle() *Vehicle {
	return s.vehicle
}

// occupy and vacate keep occupant, admission time and ticket in
// lockstep; the lot mutates spots only through them.
func (s *Spot) occupy(vehicle Vehicle, at time.Time, ticketID string) {
	s.vehicle = &vehicle
	s.admittedAt = at
	s.ticketID = ticketID
}

func (s *Spot) vacate() {
	s.vehicle = nil
	s.admittedAt = time.Time{}
	s.ticketID = ""
}
