package parking

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		label    string
		category VehicleCategory
		size     SizeClass
	}{
		{"bike", Bike, SizeSmall},
		{"car", Car, SizeMedium},
		{"truck", Truck, SizeLarge},
		{"BIKE", Bike, SizeSmall},
		{" Car ", Car, SizeMedium},
	}

	for _, tc := range cases {
		vehicle, err := Classify(tc.label)
		if err != nil {
			t.Errorf("Classify(%q): unexpected error: %s", tc.label, err.Error())
			continue
		}
		if vehicle.Category != tc.category {
			t.Errorf("Classify(%q): expected category %s, got %s", tc.label, tc.category, vehicle.Category)
		}
		if vehicle.Size != tc.size {
			t.Errorf("Classify(%q): expected size %d, got %d", tc.label, tc.size, vehicle.Size)
		}
	}
}

func TestClassifyUnknownLabel(t *testing.T) {
	for _, label := range []string{"plane", "submarine", ""} {
		_, err := Classify(label)
		if !errors.Is(err, ErrUnknownVehicle) {
			t.Errorf("Classify(%q): expected ErrUnknownVehicle, got %v", label, err)
		}
	}
}
