package parking

import (
	"errors"
	"testing"
)

func TestParseLayout(t *testing.T) {
	specs, err := ParseLayout("small:2, medium:2, large:1")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	expected := []SpotSpec{
		{Class: SpotSmall, Count: 2},
		{Class: SpotMedium, Count: 2},
		{Class: SpotLarge, Count: 1},
	}

	if len(specs) != len(expected) {
		t.Fatalf("Expected %d specs, got %d", len(expected), len(specs))
	}
	for i, spec := range specs {
		if spec != expected[i] {
			t.Errorf("Expected spec %v at position %d, got %v", expected[i], i, spec)
		}
	}
}

func TestParseLayoutInvalid(t *testing.T) {
	cases := []string{
		"",
		"small",
		"small:0",
		"small:-1",
		"small:two",
		"rooftop:1",
	}

	for _, layout := range cases {
		if _, err := ParseLayout(layout); err == nil {
			t.Errorf("ParseLayout(%q): expected error, got nil", layout)
		}
	}

	if _, err := ParseLayout("rooftop:1"); !errors.Is(err, ErrUnknownSpotClass) {
		t.Errorf("Expected ErrUnknownSpotClass, got %v", err)
	}
}
