// Package travel shapes the payloads of completed tool invocations into
// validated, render-ready view models. It never mutates the transcript parts
// it reads from.
package travel

// Itinerary is the payload of the itinerary tool.
type Itinerary struct {
	Destination        string         `json:"destination"`
	Duration           int            `json:"duration"`
	TravelStyle        string         `json:"travelStyle,omitempty"`
	TotalEstimatedCost string         `json:"totalEstimatedCost,omitempty"`
	Days               []ItineraryDay `json:"itinerary"`
	Interests          []string       `json:"interests,omitempty"`
}

// ItineraryDay is one day of an itinerary with its ordered activities.
type ItineraryDay struct {
	Day           int        `json:"day"`
	Title         string     `json:"title"`
	EstimatedCost string     `json:"estimatedCost,omitempty"`
	Activities    []Activity `json:"activities"`
}

// Activity is a single timed itinerary entry.
type Activity struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Location string `json:"location,omitempty"`
}

// Accommodations is the payload of the accommodations tool.
type Accommodations struct {
	Destination string  `json:"destination"`
	CheckIn     string  `json:"checkIn,omitempty"`
	CheckOut    string  `json:"checkOut,omitempty"`
	Hotels      []Hotel `json:"hotels"`
}

// Hotel is a single accommodation recommendation.
type Hotel struct {
	Name               string   `json:"name"`
	Rating             float64  `json:"rating"`
	PricePerNight      float64  `json:"pricePerNight"`
	Location           string   `json:"location,omitempty"`
	Description        string   `json:"description,omitempty"`
	Amenities          []string `json:"amenities"`
	Pros               []string `json:"pros"`
	Cons               []string `json:"cons"`
	RoomType           string   `json:"roomType,omitempty"`
	CancellationPolicy string   `json:"cancellationPolicy,omitempty"`
}

// Restaurants is the payload of the restaurants tool.
type Restaurants struct {
	Destination string       `json:"destination"`
	Cuisine     string       `json:"cuisine"`
	MealType    string       `json:"mealType,omitempty"`
	Restaurants []Restaurant `json:"restaurants"`
}

// Restaurant is a single dining recommendation.
type Restaurant struct {
	Name                string   `json:"name"`
	Cuisine             string   `json:"cuisine,omitempty"`
	Rating              float64  `json:"rating"`
	PriceRange          string   `json:"priceRange"`
	Hours               string   `json:"hours"`
	Phone               string   `json:"phone,omitempty"`
	Location            string   `json:"location,omitempty"`
	Description         string   `json:"description,omitempty"`
	Specialties         []string `json:"specialties,omitempty"`
	DietaryOptions      []string `json:"dietaryOptions,omitempty"`
	AverageWaitTime     string   `json:"averageWaitTime,omitempty"`
	ReservationRequired bool     `json:"reservationRequired,omitempty"`
}

// LocalInfo is the payload of the localInfo tool.
type LocalInfo struct {
	Destination    string         `json:"destination"`
	Transportation Transportation `json:"transportation"`
	Safety         Safety         `json:"safety"`
	PracticalTips  []string       `json:"practicalTips"`
}

// Transportation lists ways to get around and what they cost.
type Transportation struct {
	PublicTransport []string       `json:"publicTransport"`
	Costs           TransportCosts `json:"costs"`
}

// TransportCosts carries per-mode cost descriptions as the backend phrases
// them, e.g. "170-320 yen per ride".
type TransportCosts struct {
	Metro string `json:"metro,omitempty"`
	Bus   string `json:"bus,omitempty"`
	Taxi  string `json:"taxi,omitempty"`
}

// Safety bundles emergency contacts and safety tips.
type Safety struct {
	Emergency EmergencyContacts `json:"emergency"`
	Tips      []string          `json:"tips"`
}

// EmergencyContacts holds the numbers a traveller needs fast.
type EmergencyContacts struct {
	Police  string `json:"police"`
	Medical string `json:"medical"`
	Tourist string `json:"tourist,omitempty"`
}
