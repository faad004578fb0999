package parking

import (
	"fmt"
	"strings"
)

type SpotClass string

const (
	SpotSmall  SpotClass = "small"
	SpotMedium SpotClass = "medium"
	SpotLarge  SpotClass = "large"
)

type FitFunc func(SizeClass) bool

var spotClassFits = map[SpotClass]FitFunc{
	SpotSmall:  func(size SizeClass) bool { return size == SizeSmall },
	SpotMedium: func(size SizeClass) bool { return size <= SizeMedium },
	SpotLarge:  func(size SizeClass) bool { return true },
}

// RegisterSpotClass adds a spot class to the fit table. Register at
// startup, before any lot is built; the table is not synchronized
// with admissions.
func RegisterSpotClass(class SpotClass, fits FitFunc) {
	spotClassFits[class] = fits
}

func (c SpotClass) Fits(size SizeClass) bool {
	fits, ok := spotClassFits[c]
	return ok && fits(size)
}

func ParseSpotClass(label string) (SpotClass, error) {
	class := SpotClass(strings.ToLower(strings.TrimSpace(label)))
	if _, ok := spotClassFits[class]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSpotClass, label)
	}
	return class, nil
}
