package session

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/voyagent/voyagent-core/core/backend"
	"github.com/voyagent/voyagent-core/core/messages"
)

func TestAppendUserMessageRejectsBlankInput(t *testing.T) {
	t.Parallel()

	reconciler := NewReconciler()

	for _, text := range []string{"", "   ", "\n\t "} {
		if _, err := reconciler.AppendUserMessage(text); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected %q to fail with ErrEmptyInput, got: %v", text, err)
		}
	}
	if got := len(reconciler.Snapshot()); got != 0 {
		t.Fatalf("expected rejected input to leave the transcript empty, got %d messages", got)
	}
}

func TestAppendUserMessageTrims(t *testing.T) {
	t.Parallel()

	reconciler := NewReconciler()

	message, err := reconciler.AppendUserMessage("  Plan a trip \n")
	if err != nil {
		t.Fatalf("expected message to append, got: %v", err)
	}
	if got := message.Text(); got != "Plan a trip" {
		t.Fatalf("expected trimmed text %q, got %q", "Plan a trip", got)
	}
}

func TestBeginAssistantMessageRefusesSecondStream(t *testing.T) {
	t.Parallel()

	reconciler := NewReconciler()

	if _, err := reconciler.BeginAssistantMessage(); err != nil {
		t.Fatalf("expected first assistant message to open, got: %v", err)
	}
	if _, err := reconciler.BeginAssistantMessage(); !errors.Is(err, ErrAlreadyStreaming) {
		t.Fatalf("expected second assistant message to fail with ErrAlreadyStreaming, got: %v", err)
	}
}

func TestApplyFragmentWithoutPendingResponse(t *testing.T) {
	t.Parallel()

	reconciler := NewReconciler()

	err := reconciler.ApplyFragment(backend.TextFragment{Delta: "orphaned"})
	if !errors.Is(err, ErrNoPendingResponse) {
		t.Fatalf("expected ErrNoPendingResponse, got: %v", err)
	}
}

func TestTokyoPlanScenario(t *testing.T) {
	t.Parallel()

	reconciler := NewReconciler()

	if _, err := reconciler.AppendUserMessage("Plan a 3-day trip to Tokyo"); err != nil {
		t.Fatalf("expected user message to append, got: %v", err)
	}
	if _, err := reconciler.BeginAssistantMessage(); err != nil {
		t.Fatalf("expected assistant message to open, got: %v", err)
	}

	payload := json.RawMessage(`{
		"destination": "Tokyo",
		"duration": 3,
		"itinerary": [
			{"day": 1, "title": "Asakusa", "activities": [{"time": "09:00", "activity": "Senso-ji Temple"}]},
			{"day": 2, "title": "Shibuya", "activities": [{"time": "10:00", "activity": "Crossing"}]},
			{"day": 3, "title": "Ueno", "activities": [{"time": "09:30", "activity": "Museums"}]}
		]
	}`)
	fragments := []backend.Fragment{
		backend.TextFragment{Delta: "Here is "},
		backend.TextFragment{Delta: "your plan:"},
		backend.ToolFragment{Tool: messages.ToolItinerary, State: messages.ToolStateInputStreaming},
		backend.ToolFragment{Tool: messages.ToolItinerary, State: messages.ToolStateInputAvailable},
		backend.ToolFragment{Tool: messages.ToolItinerary, State: messages.ToolStateOutputAvailable, Payload: payload},
	}
	for i, fragment := range fragments {
		if err := reconciler.ApplyFragment(fragment); err != nil {
			t.Fatalf("expected fragment %d to apply, got: %v", i, err)
		}
	}
	reconciler.CompleteAssistantMessage()

	transcript := reconciler.Snapshot()
	if len(transcript) != 2 {
		t.Fatalf("expected exactly 2 messages, got %d", len(transcript))
	}

	assistant := transcript[1]
	if assistant.Role != messages.RoleAssistant {
		t.Fatalf("expected second message to be the assistant's, got role %q", assistant.Role)
	}
	if len(assistant.Parts) != 2 {
		t.Fatalf("expected exactly 2 parts, got %d", len(assistant.Parts))
	}
	if got := assistant.Text(); got != "Here is your plan:" {
		t.Fatalf("expected accumulated text %q, got %q", "Here is your plan:", got)
	}

	toolParts := assistant.ToolParts()
	if len(toolParts) != 1 {
		t.Fatalf("expected 1 tool part, got %d", len(toolParts))
	}
	if toolParts[0].State != messages.ToolStateOutputAvailable {
		t.Fatalf("expected tool part to be resolved, got state %q", toolParts[0].State)
	}

	var itinerary struct {
		Days []json.RawMessage `json:"itinerary"`
	}
	if err := json.Unmarshal(toolParts[0].Payload, &itinerary); err != nil {
		t.Fatalf("expected stored payload to decode, got: %v", err)
	}
	if len(itinerary.Days) != 3 {
		t.Fatalf("expected a 3-entry day list, got %d", len(itinerary.Days))
	}

	if reconciler.LiveResponsePending() {
		t.Fatal("expected no pending response after completion")
	}
}

func TestApplyFragmentRejectsRegression(t *testing.T) {
	t.Parallel()

	reconciler := NewReconciler()
	if _, err := reconciler.BeginAssistantMessage(); err != nil {
		t.Fatalf("expected assistant message to open, got: %v", err)
	}

	apply := func(state messages.ToolState, payload json.RawMessage) error {
		return reconciler.ApplyFragment(backend.ToolFragment{
			Tool: messages.ToolAccommodations, State: state, Payload: payload,
		})
	}
	if err := apply(messages.ToolStateOutputAvailable, json.RawMessage(`{"destination":"Paris"}`)); err != nil {
		t.Fatalf("expected resolving fragment to apply, got: %v", err)
	}

	err := apply(messages.ToolStateInputStreaming, nil)
	if !errors.Is(err, ErrInvalidToolTransition) {
		t.Fatalf("expected ErrInvalidToolTransition, got: %v", err)
	}

	toolParts := reconciler.Snapshot()[0].ToolParts()
	if len(toolParts) != 1 {
		t.Fatalf("expected 1 tool part, got %d", len(toolParts))
	}
	if toolParts[0].State != messages.ToolStateOutputAvailable {
		t.Fatalf("expected the stored state to be kept, got %q", toolParts[0].State)
	}
	if string(toolParts[0].Payload) != `{"destination":"Paris"}` {
		t.Fatalf("expected the stored payload to be kept, got %s", toolParts[0].Payload)
	}
}

func TestApplyFragmentInterleavedInvocations(t *testing.T) {
	t.Parallel()

	reconciler := NewReconciler()
	if _, err := reconciler.BeginAssistantMessage(); err != nil {
		t.Fatalf("expected assistant message to open, got: %v", err)
	}

	fragments := []backend.Fragment{
		backend.ToolFragment{Tool: messages.ToolRestaurants, State: messages.ToolStateInputStreaming},
		backend.TextFragment{Delta: "Looking up dinner and a route."},
		backend.ToolFragment{Tool: messages.ToolLocalInfo, State: messages.ToolStateInputStreaming},
		backend.ToolFragment{Tool: messages.ToolRestaurants, State: messages.ToolStateInputAvailable},
		backend.ToolFragment{Tool: messages.ToolLocalInfo, State: messages.ToolStateInputAvailable},
		backend.ToolFragment{Tool: messages.ToolRestaurants, State: messages.ToolStateOutputAvailable, Payload: json.RawMessage(`{}`)},
		backend.ToolFragment{Tool: messages.ToolLocalInfo, State: messages.ToolStateOutputAvailable, Payload: json.RawMessage(`{}`)},
	}
	for i, fragment := range fragments {
		if err := reconciler.ApplyFragment(fragment); err != nil {
			t.Fatalf("expected fragment %d to apply, got: %v", i, err)
		}
	}

	assistant := reconciler.Snapshot()[0]
	if len(assistant.Parts) != 3 {
		t.Fatalf("expected 3 parts (tool, text, tool), got %d", len(assistant.Parts))
	}

	first, ok := assistant.Parts[0].(*messages.ToolPart)
	if !ok || first.Tool != messages.ToolRestaurants {
		t.Fatalf("expected the restaurants part to keep arrival position 0, got %#v", assistant.Parts[0])
	}
	third, ok := assistant.Parts[2].(*messages.ToolPart)
	if !ok || third.Tool != messages.ToolLocalInfo {
		t.Fatalf("expected the localInfo part to keep arrival position 2, got %#v", assistant.Parts[2])
	}
	for _, toolPart := range assistant.ToolParts() {
		if toolPart.State != messages.ToolStateOutputAvailable {
			t.Fatalf("expected %s to resolve, got state %q", toolPart.Tool, toolPart.State)
		}
	}
}

func TestTextFragmentsAroundToolPartOpenNewPart(t *testing.T) {
	t.Parallel()

	reconciler := NewReconciler()
	if _, err := reconciler.BeginAssistantMessage(); err != nil {
		t.Fatalf("expected assistant message to open, got: %v", err)
	}

	fragments := []backend.Fragment{
		backend.TextFragment{Delta: "Before"},
		backend.ToolFragment{Tool: messages.ToolItinerary, State: messages.ToolStateInputStreaming},
		backend.TextFragment{Delta: "After"},
		backend.TextFragment{Delta: " more"},
	}
	for i, fragment := range fragments {
		if err := reconciler.ApplyFragment(fragment); err != nil {
			t.Fatalf("expected fragment %d to apply, got: %v", i, err)
		}
	}

	assistant := reconciler.Snapshot()[0]
	if len(assistant.Parts) != 3 {
		t.Fatalf("expected 3 parts (text, tool, text), got %d", len(assistant.Parts))
	}
	last, ok := assistant.Parts[2].(*messages.TextPart)
	if !ok || last.Text != "After more" {
		t.Fatalf("expected trailing text part %q, got %#v", "After more", assistant.Parts[2])
	}
}

func TestAbortAssistantMessage(t *testing.T) {
	t.Parallel()

	reconciler := NewReconciler()
	if _, err := reconciler.BeginAssistantMessage(); err != nil {
		t.Fatalf("expected assistant message to open, got: %v", err)
	}

	fragments := []backend.Fragment{
		backend.TextFragment{Delta: "Partial answer"},
		backend.ToolFragment{Tool: messages.ToolItinerary, State: messages.ToolStateInputAvailable},
		backend.ToolFragment{Tool: messages.ToolRestaurants, State: messages.ToolStateOutputAvailable, Payload: json.RawMessage(`{}`)},
	}
	for i, fragment := range fragments {
		if err := reconciler.ApplyFragment(fragment); err != nil {
			t.Fatalf("expected fragment %d to apply, got: %v", i, err)
		}
	}

	reconciler.AbortAssistantMessage("connection lost")

	if reconciler.LiveResponsePending() {
		t.Fatal("expected abort to clear the pending response")
	}

	assistant := reconciler.Snapshot()[0]
	if got := assistant.Text(); got != "Partial answer" {
		t.Fatalf("expected accumulated text to be kept, got %q", got)
	}
	for _, toolPart := range assistant.ToolParts() {
		switch toolPart.Tool {
		case messages.ToolItinerary:
			if toolPart.State != messages.ToolStateFailed {
				t.Fatalf("expected unresolved part to fail, got state %q", toolPart.State)
			}
			if toolPart.Error != "connection lost" {
				t.Fatalf("expected failure reason to be recorded, got %q", toolPart.Error)
			}
		case messages.ToolRestaurants:
			if toolPart.State != messages.ToolStateOutputAvailable {
				t.Fatalf("expected resolved part to keep its payload, got state %q", toolPart.State)
			}
		}
	}

	// A fresh response can stream after the aborted one.
	if _, err := reconciler.BeginAssistantMessage(); err != nil {
		t.Fatalf("expected a new assistant message to open after abort, got: %v", err)
	}
}

func TestCompleteAssistantMessageIdempotent(t *testing.T) {
	t.Parallel()

	reconciler := NewReconciler()
	if _, err := reconciler.BeginAssistantMessage(); err != nil {
		t.Fatalf("expected assistant message to open, got: %v", err)
	}

	if _, completed := reconciler.CompleteAssistantMessage(); !completed {
		t.Fatal("expected the first completion to report completion")
	}
	if _, completed := reconciler.CompleteAssistantMessage(); completed {
		t.Fatal("expected the second completion to be a no-op")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	t.Parallel()

	reconciler := NewReconciler()
	if _, err := reconciler.BeginAssistantMessage(); err != nil {
		t.Fatalf("expected assistant message to open, got: %v", err)
	}
	if err := reconciler.ApplyFragment(backend.TextFragment{Delta: "Hello"}); err != nil {
		t.Fatalf("expected fragment to apply, got: %v", err)
	}

	snapshot := reconciler.Snapshot()
	snapshot[0].Parts[0].(*messages.TextPart).Text = "tampered"

	if got := reconciler.Snapshot()[0].Text(); got != "Hello" {
		t.Fatalf("expected reconciler state to be isolated from snapshots, got %q", got)
	}
}
