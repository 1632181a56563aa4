// Package maps defines the contract for the embedded route widget. The
// widget is a black box: it receives two place names and a travel mode and
// renders the route itself. Nothing in here inspects route data.
package maps

import (
	"context"
	"fmt"
)

// TravelMode selects how the route between two places is computed.
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeWalking   TravelMode = "walking"
	ModeTransit   TravelMode = "transit"
	ModeBicycling TravelMode = "bicycling"
)

func AvailableTravelModes() []TravelMode {
	return []TravelMode{ModeDriving, ModeWalking, ModeTransit, ModeBicycling}
}

// ParseTravelMode validates a raw mode string against the supported modes.
func ParseTravelMode(raw string) (TravelMode, error) {
	switch mode := TravelMode(raw); mode {
	case ModeDriving, ModeWalking, ModeTransit, ModeBicycling:
		return mode, nil
	}
	return "", fmt.Errorf("unsupported travel mode: %q", raw)
}

// RouteWidget renders a route between two places.
type RouteWidget interface {
	Render(ctx context.Context, startPlace, endPlace string, mode TravelMode) error
}
