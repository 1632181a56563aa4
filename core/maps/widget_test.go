package maps

import "testing"

func TestParseTravelMode(t *testing.T) {
	t.Parallel()

	for _, mode := range AvailableTravelModes() {
		parsed, err := ParseTravelMode(string(mode))
		if err != nil {
			t.Errorf("expected %q to parse, got: %v", mode, err)
		}
		if parsed != mode {
			t.Errorf("expected %q, got %q", mode, parsed)
		}
	}

	for _, raw := range []string{"", "flying", "DRIVING", "driving "} {
		if _, err := ParseTravelMode(raw); err == nil {
			t.Errorf("expected %q to be rejected", raw)
		}
	}
}
