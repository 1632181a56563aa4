package messages

import (
	"encoding/json"
	"testing"
)

func TestToolStateTransitionsAreMonotonic(t *testing.T) {
	testCases := []struct {
		name    string
		from    ToolState
		to      ToolState
		allowed bool
	}{
		{name: "streaming to available", from: ToolStateInputStreaming, to: ToolStateInputAvailable, allowed: true},
		{name: "streaming to output", from: ToolStateInputStreaming, to: ToolStateOutputAvailable, allowed: true},
		{name: "streaming to failed", from: ToolStateInputStreaming, to: ToolStateFailed, allowed: true},
		{name: "available to output", from: ToolStateInputAvailable, to: ToolStateOutputAvailable, allowed: true},
		{name: "available to failed", from: ToolStateInputAvailable, to: ToolStateFailed, allowed: true},
		{name: "available to streaming", from: ToolStateInputAvailable, to: ToolStateInputStreaming, allowed: false},
		{name: "output to available", from: ToolStateOutputAvailable, to: ToolStateInputAvailable, allowed: false},
		{name: "output to failed", from: ToolStateOutputAvailable, to: ToolStateFailed, allowed: false},
		{name: "failed to output", from: ToolStateFailed, to: ToolStateOutputAvailable, allowed: false},
		{name: "same state repeats", from: ToolStateInputAvailable, to: ToolStateInputAvailable, allowed: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.from.CanTransitionTo(testCase.to); got != testCase.allowed {
				t.Fatalf("expected transition %s -> %s allowed=%t, got %t", testCase.from, testCase.to, testCase.allowed, got)
			}
		})
	}
}

func TestToolPartAdvanceRejectionKeepsState(t *testing.T) {
	part := &ToolPart{Tool: ToolItinerary, State: ToolStateOutputAvailable, Payload: json.RawMessage(`{"duration":3}`)}

	if part.Advance(ToolStateInputStreaming, nil, "") {
		t.Fatalf("expected regression to be rejected")
	}
	if part.State != ToolStateOutputAvailable {
		t.Fatalf("expected state to stay %s, got %s", ToolStateOutputAvailable, part.State)
	}
	if string(part.Payload) != `{"duration":3}` {
		t.Fatalf("expected payload to be untouched, got %s", part.Payload)
	}
}

func TestToolPartAdvanceAttachesTerminalData(t *testing.T) {
	part := &ToolPart{Tool: ToolRestaurants, State: ToolStateInputStreaming}

	if !part.Advance(ToolStateOutputAvailable, json.RawMessage(`{"destination":"Tokyo"}`), "") {
		t.Fatalf("expected forward transition to be applied")
	}
	if string(part.Payload) != `{"destination":"Tokyo"}` {
		t.Fatalf("expected payload to be attached, got %s", part.Payload)
	}

	failing := &ToolPart{Tool: ToolLocalInfo, State: ToolStateInputAvailable}
	if !failing.Advance(ToolStateFailed, nil, "stream aborted") {
		t.Fatalf("expected failure transition to be applied")
	}
	if failing.Error != "stream aborted" {
		t.Fatalf("expected error descriptor to be attached, got %q", failing.Error)
	}
}

func TestParseToolNameRejectsUnknownNames(t *testing.T) {
	if _, err := ParseToolName("weather"); err == nil {
		t.Fatalf("expected unknown tool name to be rejected")
	}

	toolName, err := ParseToolName("localInfo")
	if err != nil {
		t.Fatalf("expected known tool name to parse, got %v", err)
	}
	if toolName != ToolLocalInfo {
		t.Fatalf("expected %s, got %s", ToolLocalInfo, toolName)
	}
}

func TestMessageCloneIsDeep(t *testing.T) {
	message := NewAssistantMessage()
	message.Parts = append(message.Parts,
		&TextPart{Text: "Here is your plan:"},
		&ToolPart{Tool: ToolItinerary, State: ToolStateInputStreaming},
	)

	clone := message.Clone()
	clone.Parts[0].(*TextPart).Text = "changed"
	clone.Parts[1].(*ToolPart).State = ToolStateFailed

	if message.Parts[0].(*TextPart).Text != "Here is your plan:" {
		t.Fatalf("expected original text part to be untouched")
	}
	if message.Parts[1].(*ToolPart).State != ToolStateInputStreaming {
		t.Fatalf("expected original tool part state to be untouched")
	}
}
