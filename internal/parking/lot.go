package parking

import (
	"sync"
	"time"
)

// Lot is an ordered pool of spots. A single mutex guards every
// operation, so concurrent admissions can never pick the same spot.
type Lot struct {
	mu    sync.Mutex
	calc  FeeCalculator
	clock Clock
	spots []*Spot
}

func NewLot(calc FeeCalculator, clock Clock) *Lot {
	if clock == nil {
		clock = SystemClock
	}
	return &Lot{
		calc:  calc,
		clock: clock,
	}
}

// AddSpot appends a spot and returns its ID. Growth is append-only:
// existing spot IDs and their scan order never change.
func (l *Lot) AddSpot(class SpotClass) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	spot := NewSpot(len(l.spots)+1, class)
	l.spots = append(l.spots, spot)
	return spot.ID
}

// Admit takes the first vacant spot, in construction order, whose
// class fits the vehicle. A full lot rejects immediately; admissions
// never queue.
func (l *Lot) Admit(vehicle Vehicle) (Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, spot := range l.spots {
		if spot.Occupied() || !spot.Class.Fits(vehicle.Size) {
			continue
		}

		ticket := newTicket(spot.ID, vehicle, l.clock.Now())
		spot.occupy(vehicle, ticket.IssuedAt, ticket.ID)
		return ticket, nil
	}

	return Ticket{}, ErrNoCapacity
}

// Release charges for the elapsed stay and settles the fee through
// the given payment method. The spot stays occupied until settlement
// succeeds; a failed settlement can be retried with the same ticket.
func (l *Lot) Release(ticket Ticket, method PaymentMethod) (Fee, Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ticket.SpotID < 1 || ticket.SpotID > len(l.spots) {
		return Fee{}, Receipt{}, ErrUnknownSpot
	}

	spot := l.spots[ticket.SpotID-1]
	if !spot.Occupied() {
		return Fee{}, Receipt{}, ErrSpotVacant
	}
	if spot.ticketID != ticket.ID {
		return Fee{}, Receipt{}, ErrTicketStale
	}

	elapsed := l.clock.Now().Sub(spot.admittedAt)
	fee := l.calc.Fee(spot.vehicle.Category, elapsed)

	receipt, err := method.Settle(fee)
	if err != nil {
		return Fee{}, Receipt{}, &SettlementError{Method: method.Name(), Fee: fee, Err: err}
	}

	spot.vacate()
	return fee, receipt, nil
}

type SpotStatus struct {
	ID         int
	Class      SpotClass
	Occupied   bool
	Category   VehicleCategory
	TicketID   string
	AdmittedAt time.Time
}

func snapshot(spot *Spot) SpotStatus {
	status := SpotStatus{
		ID:       spot.ID,
		Class:    spot.Class,
		Occupied: spot.Occupied(),
	}
	if spot.Occupied() {
		status.Category = spot.vehicle.Category
		status.TicketID = spot.ticketID
		status.AdmittedAt = spot.admittedAt
	}
	return status
}

// Status returns a point-in-time copy of every spot in scan order.
func (l *Lot) Status() []SpotStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	statuses := make([]SpotStatus, 0, len(l.spots))
	for _, spot := range l.spots {
		statuses = append(statuses, snapshot(spot))
	}
	return statuses
}

func (l *Lot) Locate(ticketID string) (SpotStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, spot := range l.spots {
		if spot.Occupied() && spot.ticketID == ticketID {
			return snapshot(spot), nil
		}
	}
	return SpotStatus{}, ErrTicketNotFound
}

func (l *Lot) Capacity() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.spots)
}

func (l *Lot) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	available := 0
	for _, spot := range l.spots {
		if !spot.Occupied() {
			available++
		}
	}
	return available
}
