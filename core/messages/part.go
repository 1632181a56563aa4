package messages

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Part is an atomic unit of a message's content. The set of implementations
// is closed: [TextPart] and [ToolPart].
type Part interface {
	Clone() Part

	isPart()
}

// TextPart holds streamed response text. It only ever grows by append while
// the owning message is streaming.
type TextPart struct {
	Text string
}

func (p *TextPart) isPart() {}

func (p *TextPart) Clone() Part {
	clone := *p
	return &clone
}

// ToolName identifies one of the travel artifacts the backend can produce.
type ToolName string

const (
	ToolItinerary      ToolName = "itinerary"
	ToolAccommodations ToolName = "accommodations"
	ToolRestaurants    ToolName = "restaurants"
	ToolLocalInfo      ToolName = "localInfo"
)

// ToolNames returns all known tool names.
func ToolNames() []ToolName {
	return []ToolName{ToolItinerary, ToolAccommodations, ToolRestaurants, ToolLocalInfo}
}

// ParseToolName validates a wire-level tool name against the closed set.
func ParseToolName(name string) (ToolName, error) {
	toolName := ToolName(name)
	if !slices.Contains(ToolNames(), toolName) {
		return "", fmt.Errorf("unknown tool name: %q", name)
	}
	return toolName, nil
}

// ToolState is the lifecycle stage of a tool invocation part.
type ToolState string

const (
	ToolStateInputStreaming  ToolState = "input-streaming"
	ToolStateInputAvailable  ToolState = "input-available"
	ToolStateOutputAvailable ToolState = "output-available"
	ToolStateFailed          ToolState = "failed"
)

// order positions non-terminal-failure states on the forward axis. Failed is
// handled separately because it is reachable from either pre-output state.
func (s ToolState) order() int {
	switch s {
	case ToolStateInputStreaming:
		return 0
	case ToolStateInputAvailable:
		return 1
	case ToolStateOutputAvailable:
		return 2
	}
	return -1
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s ToolState) IsTerminal() bool {
	return s == ToolStateOutputAvailable || s == ToolStateFailed
}

// CanTransitionTo reports whether moving from s to next keeps the state
// machine monotonic. Staying in place is allowed so repeated fragments for
// the same stage are not treated as regressions.
func (s ToolState) CanTransitionTo(next ToolState) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == ToolStateFailed {
		return true
	}
	return next.order() > s.order()
}

// ToolPart is a named backend-computed artifact embedded in a message. Its
// name never changes after creation and its state only advances.
type ToolPart struct {
	Tool    ToolName
	State   ToolState
	Payload json.RawMessage
	Error   string
}

func (p *ToolPart) isPart() {}

func (p *ToolPart) Clone() Part {
	clone := *p
	if p.Payload != nil {
		clone.Payload = slices.Clone(p.Payload)
	}
	return &clone
}

// Advance moves the part to next, attaching the payload or error descriptor
// that the terminal states carry. It reports whether the transition was
// applied; a rejected transition leaves the part untouched.
func (p *ToolPart) Advance(next ToolState, payload json.RawMessage, errDescriptor string) bool {
	if !p.State.CanTransitionTo(next) {
		return false
	}

	p.State = next
	switch next {
	case ToolStateOutputAvailable:
		p.Payload = slices.Clone(payload)
	case ToolStateFailed:
		p.Error = errDescriptor
	}
	return true
}
