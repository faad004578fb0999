package parking

import (
	"fmt"
	"strings"
)

type VehicleCategory string

const (
	Bike  VehicleCategory = "bike"
	Car   VehicleCategory = "car"
	Truck VehicleCategory = "truck"
)

type SizeClass int

const (
	SizeSmall  SizeClass = 1
	SizeMedium SizeClass = 2
	SizeLarge  SizeClass = 3
)

type Vehicle struct {
	Category VehicleCategory
	Size     SizeClass
}

// The classification table is closed: a label either maps to a known
// vehicle or classification fails.
var vehicleCatalog = map[string]Vehicle{
	"bike":  {Category: Bike, Size: SizeSmall},
	"car":   {Category: Car, Size: SizeMedium},
	"truck": {Category: Truck, Size: SizeLarge},
}

func Classify(label string) (Vehicle, error) {
	vehicle, ok := vehicleCatalog[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return Vehicle{}, fmt.Errorf("%w: %q", ErrUnknownVehicle, label)
	}
	return vehicle, nil
}
