package parking

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type stubCalc struct {
	rate        float64
	lastElapsed time.Duration
}

func (c *stubCalc) Fee(category VehicleCategory, elapsed time.Duration) Fee {
	c.lastElapsed = elapsed
	return Fee{Category: category, Units: 1, Rate: c.rate, Amount: c.rate}
}

type stubPayment struct {
	name string
	err  error
}

func (p stubPayment) Name() string {
	return p.name
}

func (p stubPayment) Settle(fee Fee) (Receipt, error) {
	if p.err != nil {
		return Receipt{}, p.err
	}
	return Receipt{Method: p.name, Amount: fee.Amount, Reference: "ref-1"}, nil
}

func newTestLot(classes ...SpotClass) (*Lot, *fakeClock, *stubCalc) {
	clock := newFakeClock()
	calc := &stubCalc{rate: 2.0}
	lot := NewLot(calc, clock)
	for _, class := range classes {
		lot.AddSpot(class)
	}
	return lot, clock, calc
}

func TestNewLotIsEmpty(t *testing.T) {
	lot, _, _ := newTestLot()

	if lot.Capacity() != 0 {
		t.Errorf("Expected capacity 0, got %d", lot.Capacity())
	}

	_, err := lot.Admit(Vehicle{Category: Bike, Size: SizeSmall})
	if !errors.Is(err, ErrNoCapacity) {
		t.Errorf("Expected ErrNoCapacity, got %v", err)
	}
}

func TestNewLotNilClockUsesSystemClock(t *testing.T) {
	lot := NewLot(&stubCalc{rate: 1.0}, nil)
	lot.AddSpot(SpotSmall)

	before := time.Now()
	ticket, err := lot.Admit(Vehicle{Category: Bike, Size: SizeSmall})
	after := time.Now()

	if err != nil {
		t.Fatalf("Expected admission to succeed, got %v", err)
	}
	if ticket.IssuedAt.Before(before) || ticket.IssuedAt.After(after) {
		t.Errorf("Expected IssuedAt between %v and %v, got %v", before, after, ticket.IssuedAt)
	}
}

func TestLotAddSpot(t *testing.T) {
	lot, _, _ := newTestLot()

	for i, class := range []SpotClass{SpotSmall, SpotMedium, SpotLarge} {
		id := lot.AddSpot(class)
		if id != i+1 {
			t.Errorf("Expected spot ID %d, got %d", i+1, id)
		}
	}

	if lot.Capacity() != 3 {
		t.Errorf("Expected capacity 3, got %d", lot.Capacity())
	}
	if lot.Available() != 3 {
		t.Errorf("Expected 3 available spots, got %d", lot.Available())
	}
}

func TestLotAdmitFirstCompatibleSpot(t *testing.T) {
	lot, _, _ := newTestLot(SpotSmall, SpotMedium, SpotLarge)

	cases := []struct {
		vehicle Vehicle
		spotID  int
	}{
		{Vehicle{Category: Bike, Size: SizeSmall}, 1},
		{Vehicle{Category: Car, Size: SizeMedium}, 2},
		{Vehicle{Category: Truck, Size: SizeLarge}, 3},
	}

	for _, tc := range cases {
		ticket, err := lot.Admit(tc.vehicle)
		if err != nil {
			t.Fatalf("Unexpected error: %s", err.Error())
		}
		if ticket.SpotID != tc.spotID {
			t.Errorf("Expected %s in spot %d, got %d", tc.vehicle.Category, tc.spotID, ticket.SpotID)
		}
		if ticket.ID == "" {
			t.Error("Expected a non-empty ticket ID")
		}
	}

	_, err := lot.Admit(Vehicle{Category: Car, Size: SizeMedium})
	if !errors.Is(err, ErrNoCapacity) {
		t.Errorf("Expected ErrNoCapacity for a full lot, got %v", err)
	}
}

func TestLotAdmitScanOrderNotBestFit(t *testing.T) {
	lot, _, _ := newTestLot(SpotLarge, SpotSmall)

	ticket, err := lot.Admit(Vehicle{Category: Bike, Size: SizeSmall})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if ticket.SpotID != 1 {
		t.Errorf("Expected the first compatible spot 1, got %d", ticket.SpotID)
	}
}

func TestLotAdmitNoCompatibleSpot(t *testing.T) {
	lot, _, _ := newTestLot(SpotSmall, SpotMedium)

	_, err := lot.Admit(Vehicle{Category: Truck, Size: SizeLarge})
	if !errors.Is(err, ErrNoCapacity) {
		t.Errorf("Expected ErrNoCapacity, got %v", err)
	}
	if lot.Available() != 2 {
		t.Errorf("Expected rejection to leave the lot unchanged, got %d available", lot.Available())
	}
}

func TestLotReleaseFreesSpotForReuse(t *testing.T) {
	lot, clock, _ := newTestLot(SpotMedium)

	first, err := lot.Admit(Vehicle{Category: Car, Size: SizeMedium})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	clock.advance(30 * time.Minute)

	fee, receipt, err := lot.Release(first, stubPayment{name: "card"})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if fee.Amount != 2.0 {
		t.Errorf("Expected fee amount 2.0, got %.2f", fee.Amount)
	}
	if receipt.Method != "card" {
		t.Errorf("Expected receipt via card, got %s", receipt.Method)
	}

	second, err := lot.Admit(Vehicle{Category: Bike, Size: SizeSmall})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if second.SpotID != first.SpotID {
		t.Errorf("Expected spot %d to be reused, got %d", first.SpotID, second.SpotID)
	}
	if second.ID == first.ID {
		t.Error("Expected a fresh ticket for the reused spot")
	}
}

func TestLotReleaseTwice(t *testing.T) {
	lot, _, _ := newTestLot(SpotSmall)

	ticket, _ := lot.Admit(Vehicle{Category: Bike, Size: SizeSmall})

	if _, _, err := lot.Release(ticket, stubPayment{name: "card"}); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	_, _, err := lot.Release(ticket, stubPayment{name: "card"})
	if !errors.Is(err, ErrSpotVacant) {
		t.Errorf("Expected ErrSpotVacant on second release, got %v", err)
	}
}

func TestLotReleaseStaleTicket(t *testing.T) {
	lot, _, _ := newTestLot(SpotLarge)

	first, _ := lot.Admit(Vehicle{Category: Truck, Size: SizeLarge})
	if _, _, err := lot.Release(first, stubPayment{name: "card"}); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	second, _ := lot.Admit(Vehicle{Category: Car, Size: SizeMedium})

	_, _, err := lot.Release(first, stubPayment{name: "card"})
	if !errors.Is(err, ErrTicketStale) {
		t.Errorf("Expected ErrTicketStale after the spot was reused, got %v", err)
	}

	status, err := lot.Locate(second.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if !status.Occupied {
		t.Error("Expected the current occupant to be untouched")
	}
}

func TestLotReleaseUnknownSpot(t *testing.T) {
	lot, _, _ := newTestLot(SpotSmall)

	_, _, err := lot.Release(Ticket{ID: "ticket-1", SpotID: 99}, stubPayment{name: "card"})
	if !errors.Is(err, ErrUnknownSpot) {
		t.Errorf("Expected ErrUnknownSpot, got %v", err)
	}
}

func TestLotReleaseSettlementFailureKeepsSpotOccupied(t *testing.T) {
	lot, _, _ := newTestLot(SpotMedium)

	ticket, _ := lot.Admit(Vehicle{Category: Car, Size: SizeMedium})

	declined := errors.New("card declined")
	_, _, err := lot.Release(ticket, stubPayment{name: "card", err: declined})

	var settlementErr *SettlementError
	if !errors.As(err, &settlementErr) {
		t.Fatalf("Expected a SettlementError, got %v", err)
	}
	if settlementErr.Method != "card" {
		t.Errorf("Expected failing method card, got %s", settlementErr.Method)
	}
	if !errors.Is(err, declined) {
		t.Error("Expected the backend error to be wrapped")
	}
	if lot.Available() != 0 {
		t.Error("Expected the spot to stay occupied after a failed settlement")
	}

	fee, _, err := lot.Release(ticket, stubPayment{name: "wallet"})
	if err != nil {
		t.Fatalf("Expected the retry to succeed, got %v", err)
	}
	if fee.Amount != 2.0 {
		t.Errorf("Expected fee amount 2.0, got %.2f", fee.Amount)
	}
	if lot.Available() != 1 {
		t.Error("Expected the spot to be free after the retry")
	}
}

func TestLotReleaseUsesInjectedClock(t *testing.T) {
	lot, clock, calc := newTestLot(SpotLarge)

	ticket, _ := lot.Admit(Vehicle{Category: Truck, Size: SizeLarge})

	clock.advance(90 * time.Minute)

	if _, _, err := lot.Release(ticket, stubPayment{name: "crypto"}); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if calc.lastElapsed != 90*time.Minute {
		t.Errorf("Expected elapsed 90m, got %v", calc.lastElapsed)
	}
}

func TestLotConcurrentAdmissionsOneWinner(t *testing.T) {
	lot, _, _ := newTestLot(SpotSmall)

	const drivers = 16

	var (
		start   = make(chan struct{})
		wg      sync.WaitGroup
		mu      sync.Mutex
		tickets []Ticket
		rejects int
	)

	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			ticket, err := lot.Admit(Vehicle{Category: Bike, Size: SizeSmall})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				tickets = append(tickets, ticket)
			} else if errors.Is(err, ErrNoCapacity) {
				rejects++
			} else {
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if len(tickets) != 1 {
		t.Fatalf("Expected exactly one admission, got %d", len(tickets))
	}
	if rejects != drivers-1 {
		t.Errorf("Expected %d rejections, got %d", drivers-1, rejects)
	}

	if _, err := lot.Locate(tickets[0].ID); err != nil {
		t.Errorf("Expected the winning ticket to be active: %v", err)
	}
}

func TestLotStatus(t *testing.T) {
	lot, _, _ := newTestLot(SpotSmall, SpotMedium, SpotLarge)

	ticket, _ := lot.Admit(Vehicle{Category: Car, Size: SizeMedium})

	statuses := lot.Status()
	if len(statuses) != 3 {
		t.Fatalf("Expected 3 spots, got %d", len(statuses))
	}

	for i, status := range statuses {
		if status.ID != i+1 {
			t.Errorf("Expected spot ID %d at position %d, got %d", i+1, i, status.ID)
		}
	}

	occupied := statuses[1]
	if !occupied.Occupied {
		t.Error("Expected spot 2 to be occupied")
	}
	if occupied.Category != Car {
		t.Errorf("Expected occupant category car, got %s", occupied.Category)
	}
	if occupied.TicketID != ticket.ID {
		t.Errorf("Expected ticket %s, got %s", ticket.ID, occupied.TicketID)
	}

	if statuses[0].Occupied || statuses[2].Occupied {
		t.Error("Expected spots 1 and 3 to be vacant")
	}
}

func TestLotLocate(t *testing.T) {
	lot, _, _ := newTestLot(SpotMedium)

	ticket, _ := lot.Admit(Vehicle{Category: Car, Size: SizeMedium})

	status, err := lot.Locate(ticket.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if status.ID != ticket.SpotID {
		t.Errorf("Expected spot %d, got %d", ticket.SpotID, status.ID)
	}

	lot.Release(ticket, stubPayment{name: "card"})

	if _, err := lot.Locate(ticket.ID); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("Expected ErrTicketNotFound after release, got %v", err)
	}
}

func TestLotAddSpotWhileOccupied(t *testing.T) {
	lot, _, _ := newTestLot(SpotSmall)

	ticket, _ := lot.Admit(Vehicle{Category: Bike, Size: SizeSmall})

	id := lot.AddSpot(SpotSmall)
	if id != 2 {
		t.Errorf("Expected new spot ID 2, got %d", id)
	}

	status, err := lot.Locate(ticket.ID)
	if err != nil || status.ID != 1 {
		t.Error("Expected the existing admission to be untouched by growth")
	}

	second, err := lot.Admit(Vehicle{Category: Bike, Size: SizeSmall})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if second.SpotID != 2 {
		t.Errorf("Expected the new spot 2, got %d", second.SpotID)
	}
}
