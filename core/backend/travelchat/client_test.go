package travelchat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/voyagent/voyagent-core/core/backend"
	"github.com/voyagent/voyagent-core/core/messages"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		url:        server.URL + streamPath,
		httpClient: server.Client(),
	}
}

type streamResult struct {
	fragments []backend.Fragment
	err       error
}

func collectStream(t *testing.T, client *Client, transcript []messages.Message, prompt string) streamResult {
	t.Helper()

	result := streamResult{}
	done := make(chan struct{})
	err := client.Stream(context.Background(), transcript, prompt,
		backend.WithFragmentCallback(func(fragment backend.Fragment) {
			result.fragments = append(result.fragments, fragment)
		}),
		backend.WithStreamEndCallback(func() { close(done) }),
		backend.WithStreamErrorCallback(func(err error) {
			result.err = err
			close(done)
		}),
	)
	if err != nil {
		t.Fatalf("expected stream setup to succeed, got: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the stream to terminate")
	}
	return result
}

func TestStreamDecodesFragments(t *testing.T) {
	t.Parallel()

	var gotRequest streamRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotRequest); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		for _, line := range []string{
			`{"type":"text","delta":"Here is a plan for "}`,
			`{"type":"text","delta":"Kyoto."}`,
			`{"type":"tool","tool":"itinerary","state":"input-available"}`,
			`{"type":"tool","tool":"itinerary","state":"output-available","payload":{"destination":"Kyoto","duration":2,"itinerary":[]}}`,
			`{"type":"done"}`,
		} {
			io.WriteString(w, line+"\n")
		}
	}))
	defer server.Close()

	transcript := []messages.Message{messages.NewUserMessage("Plan a trip to Kyoto")}
	result := collectStream(t, newTestClient(server), transcript, "Two days please")

	if result.err != nil {
		t.Fatalf("expected a clean stream, got: %v", result.err)
	}
	if gotRequest.Prompt != "Two days please" {
		t.Errorf("unexpected prompt sent: %q", gotRequest.Prompt)
	}
	if len(gotRequest.Messages) != 1 || gotRequest.Messages[0].Content != "Plan a trip to Kyoto" {
		t.Errorf("unexpected transcript sent: %+v", gotRequest.Messages)
	}

	if len(result.fragments) != 4 {
		t.Fatalf("expected 4 fragments, got %d", len(result.fragments))
	}
	text, ok := result.fragments[0].(backend.TextFragment)
	if !ok || text.Delta != "Here is a plan for " {
		t.Errorf("unexpected first fragment: %+v", result.fragments[0])
	}
	tool, ok := result.fragments[3].(backend.ToolFragment)
	if !ok {
		t.Fatalf("expected a tool fragment, got %T", result.fragments[3])
	}
	if tool.Tool != messages.ToolItinerary || tool.State != messages.ToolStateOutputAvailable {
		t.Errorf("unexpected tool fragment: %+v", tool)
	}
	if !strings.Contains(string(tool.Payload), "Kyoto") {
		t.Errorf("expected the payload to carry through, got: %s", tool.Payload)
	}
}

func TestStreamSendsResolvedArtifacts(t *testing.T) {
	t.Parallel()

	var gotRequest streamRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotRequest); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		io.WriteString(w, `{"type":"done"}`+"\n")
	}))
	defer server.Close()

	assistant := messages.NewAssistantMessage()
	assistant.Parts = []messages.Part{
		&messages.TextPart{Text: "Found some options."},
		&messages.ToolPart{
			Tool:    messages.ToolRestaurants,
			State:   messages.ToolStateOutputAvailable,
			Payload: json.RawMessage(`{"destination":"Kyoto","restaurants":[]}`),
		},
		&messages.ToolPart{Tool: messages.ToolItinerary, State: messages.ToolStateFailed},
	}

	result := collectStream(t, newTestClient(server), []messages.Message{assistant}, "More")
	if result.err != nil {
		t.Fatalf("expected a clean stream, got: %v", result.err)
	}

	if len(gotRequest.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(gotRequest.Messages))
	}
	artifacts := gotRequest.Messages[0].Artifacts
	if len(artifacts) != 1 {
		t.Fatalf("expected only the resolved artifact to be sent, got %d", len(artifacts))
	}
	if artifacts[0].Tool != string(messages.ToolRestaurants) {
		t.Errorf("unexpected artifact: %+v", artifacts[0])
	}
}

func TestStreamBackendFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"type":"text","delta":"Searching"}`+"\n")
		io.WriteString(w, `{"type":"error","message":"upstream unavailable"}`+"\n")
	}))
	defer server.Close()

	result := collectStream(t, newTestClient(server), nil, "Plan a trip")
	if result.err == nil {
		t.Fatal("expected the stream to fail")
	}
	if !strings.Contains(result.err.Error(), "upstream unavailable") {
		t.Errorf("expected the backend message to carry through, got: %v", result.err)
	}
	if len(result.fragments) != 1 {
		t.Errorf("expected fragments before the failure to be delivered, got %d", len(result.fragments))
	}
}

func TestStreamNonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	result := collectStream(t, newTestClient(server), nil, "Plan a trip")
	if result.err == nil {
		t.Fatal("expected the stream to fail")
	}
}

func TestStreamTruncatedWithoutDone(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"type":"text","delta":"Here is"}`+"\n")
	}))
	defer server.Close()

	result := collectStream(t, newTestClient(server), nil, "Plan a trip")
	if result.err == nil {
		t.Fatal("expected the truncated stream to fail")
	}
	if len(result.fragments) != 1 {
		t.Errorf("expected the delivered fragment to be kept, got %d", len(result.fragments))
	}
}

func TestDecodeFragmentRejectsInvalidTools(t *testing.T) {
	t.Parallel()

	for _, wire := range []wireFragment{
		{Type: fragmentTypeTool, Tool: "weather", State: "input-available"},
		{Type: fragmentTypeTool, Tool: "itinerary", State: "pending"},
		{Type: "reasoning"},
	} {
		if _, err := decodeFragment(wire); err == nil {
			t.Errorf("expected %+v to be rejected", wire)
		}
	}
}
