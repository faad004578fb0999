package billing

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"parkmeter/internal/parking"
)

// Tariff prices occupancy per billing unit. Categories missing from
// Rates bill at DefaultRate; there is no free category.
type Tariff struct {
	Unit        time.Duration
	Rates       map[parking.VehicleCategory]float64
	DefaultRate float64
}

func DefaultTariff() *Tariff {
	return &Tariff{
		Unit: time.Hour,
		Rates: map[parking.VehicleCategory]float64{
			parking.Bike:  1.0,
			parking.Car:   2.0,
			parking.Truck: 3.0,
		},
		DefaultRate: 2.0,
	}
}

func (t *Tariff) Rate(category parking.VehicleCategory) float64 {
	if rate, ok := t.Rates[category]; ok {
		return rate
	}
	return t.DefaultRate
}

// Fee bills every started unit: partial units round up, and any stay,
// however short, is charged at least one unit.
func (t *Tariff) Fee(category parking.VehicleCategory, elapsed time.Duration) parking.Fee {
	units := int64((elapsed + t.Unit - 1) / t.Unit)
	if units < 1 {
		units = 1
	}

	rate := t.Rate(category)
	return parking.Fee{
		Category: category,
		Units:    units,
		Rate:     rate,
		Amount:   rate * float64(units),
	}
}

func (t *Tariff) Validate() error {
	if t.Unit <= 0 {
		return fmt.Errorf("billing unit must be positive")
	}
	if t.DefaultRate <= 0 {
		return fmt.Errorf("default rate must be positive")
	}
	for category, rate := range t.Rates {
		if rate <= 0 {
			return fmt.Errorf("rate for %s must be positive", category)
		}
	}
	return nil
}

// default_rate decodes through a pointer so an explicit zero is seen
// and rejected by Validate rather than silently inheriting the default.
type tariffFile struct {
	Unit        string             `yaml:"unit"`
	DefaultRate *float64           `yaml:"default_rate"`
	Rates       map[string]float64 `yaml:"rates"`
}

// LoadTariff reads a YAML tariff and overlays it on the defaults.
// Rate keys must be known vehicle labels.
func LoadTariff(path string) (*Tariff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tariff: %w", err)
	}

	var file tariffFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tariff: %w", err)
	}

	tariff := DefaultTariff()

	if file.Unit != "" {
		unit, err := time.ParseDuration(file.Unit)
		if err != nil {
			return nil, fmt.Errorf("parse tariff unit: %w", err)
		}
		tariff.Unit = unit
	}
	if file.DefaultRate != nil {
		tariff.DefaultRate = *file.DefaultRate
	}
	for label, rate := range file.Rates {
		vehicle, err := parking.Classify(label)
		if err != nil {
			return nil, fmt.Errorf("tariff rates: %w", err)
		}
		tariff.Rates[vehicle.Category] = rate
	}

	if err := tariff.Validate(); err != nil {
		return nil, err
	}
	return tariff, nil
}
