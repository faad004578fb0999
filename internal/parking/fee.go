package parking

import "time"

type Fee struct {
	Category VehicleCategory
	Units    int64
	Rate     float64
	Amount   float64
}

type FeeCalculator interface {
	Fee(category VehicleCategory, elapsed time.Duration) Fee
}
