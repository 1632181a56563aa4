package travel

import (
	"github.com/invopop/jsonschema"
	"github.com/voyagent/voyagent-core/core/messages"
)

// Schemas publishes the JSON schema of every tool payload, keyed by tool
// name. The backend is prompted with these so its tool outputs decode into
// the payload types this package validates.
func Schemas() map[messages.ToolName]*jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return map[messages.ToolName]*jsonschema.Schema{
		messages.ToolItinerary:      reflector.Reflect(&Itinerary{}),
		messages.ToolAccommodations: reflector.Reflect(&Accommodations{}),
		messages.ToolRestaurants:    reflector.Reflect(&Restaurants{}),
		messages.ToolLocalInfo:      reflector.Reflect(&LocalInfo{}),
	}
}
