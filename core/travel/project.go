package travel

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/voyagent/voyagent-core/core/messages"
)

// MalformedPayloadError reports a tool payload that is missing a field the
// corresponding view requires. The caller's policy is to render nothing for
// the part and log the condition; the error is never fatal.
type MalformedPayloadError struct {
	Tool  messages.ToolName
	Field string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed %s payload: missing field %q", e.Tool, e.Field)
}

// View is a validated, render-ready projection of a resolved tool part. The
// set of implementations is closed, one per tool name.
type View interface {
	Tool() messages.ToolName
}

type ItineraryView struct{ Itinerary }

func (ItineraryView) Tool() messages.ToolName { return messages.ToolItinerary }

type AccommodationsView struct{ Accommodations }

func (AccommodationsView) Tool() messages.ToolName { return messages.ToolAccommodations }

type RestaurantsView struct{ Restaurants }

func (RestaurantsView) Tool() messages.ToolName { return messages.ToolRestaurants }

type LocalInfoView struct{ LocalInfo }

func (LocalInfoView) Tool() messages.ToolName { return messages.ToolLocalInfo }

// Project validates and shapes the payload of an output-available tool part.
// The part itself is never mutated.
func Project(part *messages.ToolPart) (View, error) {
	if part == nil {
		return nil, fmt.Errorf("nil tool part")
	}
	if part.State != messages.ToolStateOutputAvailable {
		return nil, fmt.Errorf("tool part %s is %s, not %s", part.Tool, part.State, messages.ToolStateOutputAvailable)
	}

	switch part.Tool {
	case messages.ToolItinerary:
		return ProjectItinerary(part.Payload)
	case messages.ToolAccommodations:
		return ProjectAccommodations(part.Payload)
	case messages.ToolRestaurants:
		return ProjectRestaurants(part.Payload)
	case messages.ToolLocalInfo:
		return ProjectLocalInfo(part.Payload)
	}

	return nil, fmt.Errorf("unknown tool name: %q", part.Tool)
}

// ProjectItinerary validates an itinerary payload.
func ProjectItinerary(payload json.RawMessage) (*ItineraryView, error) {
	var itinerary Itinerary
	if err := json.Unmarshal(payload, &itinerary); err != nil {
		return nil, fmt.Errorf("failed to decode itinerary payload: %w", err)
	}

	missing := func(field string) error {
		return &MalformedPayloadError{Tool: messages.ToolItinerary, Field: field}
	}
	if itinerary.Destination == "" {
		return nil, missing("destination")
	}
	if itinerary.Duration == 0 {
		return nil, missing("duration")
	}
	if len(itinerary.Days) == 0 {
		return nil, missing("itinerary")
	}
	for i, day := range itinerary.Days {
		if day.Title == "" {
			return nil, missing(fmt.Sprintf("itinerary[%d].title", i))
		}
		if len(day.Activities) == 0 {
			return nil, missing(fmt.Sprintf("itinerary[%d].activities", i))
		}
		for j, activity := range day.Activities {
			if activity.Time == "" {
				return nil, missing(fmt.Sprintf("itinerary[%d].activities[%d].time", i, j))
			}
			if activity.Activity == "" {
				return nil, missing(fmt.Sprintf("itinerary[%d].activities[%d].activity", i, j))
			}
		}
	}

	return &ItineraryView{Itinerary: itinerary}, nil
}

// ProjectAccommodations validates an accommodations payload.
func ProjectAccommodations(payload json.RawMessage) (*AccommodationsView, error) {
	var accommodations Accommodations
	if err := json.Unmarshal(payload, &accommodations); err != nil {
		return nil, fmt.Errorf("failed to decode accommodations payload: %w", err)
	}

	missing := func(field string) error {
		return &MalformedPayloadError{Tool: messages.ToolAccommodations, Field: field}
	}
	if accommodations.Destination == "" {
		return nil, missing("destination")
	}
	if len(accommodations.Hotels) == 0 {
		return nil, missing("hotels")
	}
	for i, hotel := range accommodations.Hotels {
		if hotel.Name == "" {
			return nil, missing(fmt.Sprintf("hotels[%d].name", i))
		}
		if hotel.Rating == 0 {
			return nil, missing(fmt.Sprintf("hotels[%d].rating", i))
		}
		if hotel.PricePerNight == 0 {
			return nil, missing(fmt.Sprintf("hotels[%d].pricePerNight", i))
		}
		if hotel.Pros == nil {
			return nil, missing(fmt.Sprintf("hotels[%d].pros", i))
		}
		if hotel.Cons == nil {
			return nil, missing(fmt.Sprintf("hotels[%d].cons", i))
		}
		if hotel.Amenities == nil {
			return nil, missing(fmt.Sprintf("hotels[%d].amenities", i))
		}
	}

	return &AccommodationsView{Accommodations: accommodations}, nil
}

// ProjectRestaurants validates a restaurants payload.
func ProjectRestaurants(payload json.RawMessage) (*RestaurantsView, error) {
	var restaurants Restaurants
	if err := json.Unmarshal(payload, &restaurants); err != nil {
		return nil, fmt.Errorf("failed to decode restaurants payload: %w", err)
	}

	missing := func(field string) error {
		return &MalformedPayloadError{Tool: messages.ToolRestaurants, Field: field}
	}
	if restaurants.Destination == "" {
		return nil, missing("destination")
	}
	if restaurants.Cuisine == "" {
		return nil, missing("cuisine")
	}
	if len(restaurants.Restaurants) == 0 {
		return nil, missing("restaurants")
	}
	for i, restaurant := range restaurants.Restaurants {
		if restaurant.Name == "" {
			return nil, missing(fmt.Sprintf("restaurants[%d].name", i))
		}
		if restaurant.Rating == 0 {
			return nil, missing(fmt.Sprintf("restaurants[%d].rating", i))
		}
		if restaurant.PriceRange == "" {
			return nil, missing(fmt.Sprintf("restaurants[%d].priceRange", i))
		}
		if restaurant.Hours == "" {
			return nil, missing(fmt.Sprintf("restaurants[%d].hours", i))
		}
	}

	return &RestaurantsView{Restaurants: restaurants}, nil
}

// ProjectLocalInfo validates a local information payload.
func ProjectLocalInfo(payload json.RawMessage) (*LocalInfoView, error) {
	var localInfo LocalInfo
	if err := json.Unmarshal(payload, &localInfo); err != nil {
		return nil, fmt.Errorf("failed to decode localInfo payload: %w", err)
	}

	missing := func(field string) error {
		return &MalformedPayloadError{Tool: messages.ToolLocalInfo, Field: field}
	}
	if localInfo.Destination == "" {
		return nil, missing("destination")
	}
	if len(localInfo.Transportation.PublicTransport) == 0 {
		return nil, missing("transportation.publicTransport")
	}
	if localInfo.Safety.Emergency.Police == "" {
		return nil, missing("safety.emergency.police")
	}
	if localInfo.Safety.Emergency.Medical == "" {
		return nil, missing("safety.emergency.medical")
	}
	if len(localInfo.Safety.Tips) == 0 {
		return nil, missing("safety.tips")
	}
	if len(localInfo.PracticalTips) == 0 {
		return nil, missing("practicalTips")
	}

	return &LocalInfoView{LocalInfo: localInfo}, nil
}

// Stars converts a rating to a whole star count for rendering. Upstream
// ranges are trusted but the result is clamped to [0, 5] so out-of-range
// ratings cannot produce rendering artifacts.
func Stars(rating float64) int {
	stars := int(math.Floor(rating))
	if stars < 0 {
		return 0
	}
	if stars > 5 {
		return 5
	}
	return stars
}
