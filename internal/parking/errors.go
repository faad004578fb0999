package parking

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownVehicle   = errors.New("unknown vehicle type")
	ErrUnknownSpotClass = errors.New("unknown spot class")
	ErrNoCapacity       = errors.New("no compatible spot available")
	ErrUnknownSpot      = errors.New("no such spot")
	ErrSpotVacant       = errors.New("spot is already vacant")
	ErrTicketStale      = errors.New("ticket no longer matches the spot")
	ErrTicketNotFound   = errors.New("ticket not found")
)

// SettlementError reports a fee that was computed but could not be
// collected. The spot stays occupied and the same ticket may retry.
type SettlementError struct {
	Method string
	Fee    Fee
	Err    error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement of %.2f via %s failed: %v", e.Fee.Amount, e.Method, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}
