package session

import (
	"context"
	"errors"
	"testing"

	"github.com/voyagent/voyagent-core/core/backend"
	"github.com/voyagent/voyagent-core/core/messages"
)

// hangingBackendClient never terminates its stream, keeping the response
// pending.
type hangingBackendClient struct{}

func (hangingBackendClient) Stream(context.Context, []messages.Message, string, ...backend.StreamOption) error {
	return nil
}

func TestGreetingSeedsTranscript(t *testing.T) {
	t.Parallel()

	session := NewSession(
		WithBackendClient(&fakeBackendClient{}),
		WithGreeting("Hi! Where would you like to go?"),
	)
	session.Listen(context.Background())

	transcript := session.Transcript()
	if len(transcript) != 1 {
		t.Fatalf("expected the greeting message, got %d messages", len(transcript))
	}
	if transcript[0].Role != messages.RoleAssistant {
		t.Fatalf("expected an assistant greeting, got role %q", transcript[0].Role)
	}
	if got := transcript[0].Text(); got != "Hi! Where would you like to go?" {
		t.Fatalf("unexpected greeting text: %q", got)
	}
	if session.LiveResponsePending() {
		t.Fatal("expected the greeting to not leave a response pending")
	}
}

func TestSendPromptRejectsBlankInput(t *testing.T) {
	t.Parallel()

	session := NewSession(WithBackendClient(&fakeBackendClient{}))
	session.Listen(context.Background())

	if err := session.SendPrompt("   "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got: %v", err)
	}
	if got := len(session.Transcript()); got != 0 {
		t.Fatalf("expected the transcript to stay empty, got %d messages", got)
	}
}

func TestSendPromptWhileResponsePending(t *testing.T) {
	t.Parallel()

	session := NewSession(WithBackendClient(hangingBackendClient{}))
	session.Listen(context.Background())

	if err := session.SendPrompt("Plan a trip to Oslo"); err != nil {
		t.Fatalf("expected first prompt to send, got: %v", err)
	}
	if !session.LiveResponsePending() {
		t.Fatal("expected the response to stay pending")
	}

	if err := session.SendPrompt("Actually, Bergen"); !errors.Is(err, ErrAlreadyStreaming) {
		t.Fatalf("expected ErrAlreadyStreaming, got: %v", err)
	}

	transcript := session.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected the refused prompt to leave the transcript alone, got %d messages", len(transcript))
	}
}

func TestCloseAbortsPendingResponse(t *testing.T) {
	t.Parallel()

	session := NewSession(WithBackendClient(hangingBackendClient{}))
	session.Listen(context.Background())

	if err := session.SendPrompt("Plan a trip to Oslo"); err != nil {
		t.Fatalf("expected prompt to send, got: %v", err)
	}

	session.Close()

	if session.LiveResponsePending() {
		t.Fatal("expected Close to abort the pending response")
	}
	if got := session.VoiceState(); got != VoiceStateIdle {
		t.Fatalf("expected the voice controller to be idle, got %q", got)
	}
}
