package parking

import (
	"fmt"
	"strconv"
	"strings"
)

type SpotSpec struct {
	Class SpotClass
	Count int
}

// ParseLayout parses a layout like "small:2,medium:2,large:1" into an
// ordered list of spot specs. Order matters: spots are created in
// layout order and admissions scan them in that order.
func ParseLayout(layout string) ([]SpotSpec, error) {
	var specs []SpotSpec
	for _, entry := range strings.Split(layout, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		label, countPart, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid layout entry %q", entry)
		}

		class, err := ParseSpotClass(label)
		if err != nil {
			return nil, err
		}

		count, err := strconv.Atoi(strings.TrimSpace(countPart))
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("invalid spot count in %q", entry)
		}

		specs = append(specs, SpotSpec{Class: class, Count: count})
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("empty layout")
	}
	return specs, nil
}
