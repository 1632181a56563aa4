package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/voyagent/voyagent-core/core/backend"
	"github.com/voyagent/voyagent-core/core/events"
	"github.com/voyagent/voyagent-core/core/messages"
)

// Reconciler owns the ordered, append-only transcript and merges streamed
// fragments into the pending assistant message. At most one assistant
// response can be streaming at a time; only the last message is ever mutable.
//
// Callbacks from IO goroutines and UI-originated calls may arrive
// concurrently, so all state is guarded by a mutex. Fragments are applied in
// arrival order under that lock; parts are never reordered.
type Reconciler struct {
	mu sync.RWMutex

	messages  []messages.Message
	pendingID string

	emit eventEmitter
}

func NewReconciler() *Reconciler {
	return &Reconciler{emit: noopEventEmitter}
}

func (r *Reconciler) setEmitter(emit eventEmitter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if emit == nil {
		emit = noopEventEmitter
	}
	r.emit = emit
}

// AppendUserMessage appends a user message with a single text part. It fails
// with [ErrEmptyInput] when text is blank after trimming.
func (r *Reconciler) AppendUserMessage(text string) (messages.Message, error) {
	return r.appendUserMessage(text, false)
}

func (r *Reconciler) appendUserMessage(text string, transcribed bool) (messages.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return messages.Message{}, ErrEmptyInput
	}

	message := messages.NewUserMessage(trimmed)

	r.mu.Lock()
	r.messages = append(r.messages, message)
	emit := r.emit
	r.mu.Unlock()

	if transcribed {
		emit(events.NewTranscribedUserMessageAppended(message.ID, trimmed))
	} else {
		emit(events.NewUserMessageAppended(message.ID, trimmed))
	}
	return message.Clone(), nil
}

// BeginAssistantMessage appends an empty assistant message and marks the
// response pending. It fails with [ErrAlreadyStreaming] while another
// response is pending.
func (r *Reconciler) BeginAssistantMessage() (string, error) {
	r.mu.Lock()
	if r.pendingID != "" {
		r.mu.Unlock()
		return "", ErrAlreadyStreaming
	}

	message := messages.NewAssistantMessage()
	r.messages = append(r.messages, message)
	r.pendingID = message.ID
	emit := r.emit
	r.mu.Unlock()

	emit(events.NewAssistantResponseStarted(message.ID))
	return message.ID, nil
}

// ApplyFragment merges one streamed fragment into the pending assistant
// message.
//
// Text deltas append to the trailing text part, or open a new one when the
// trailing part is a tool part. Tool fragments address the invocation by tool
// name: the first fragment creates the part, later ones advance its state
// monotonically. A fragment proposing a backwards transition fails with
// [ErrInvalidToolTransition] and leaves the part untouched; the condition is
// a recoverable warning, not a stream failure.
func (r *Reconciler) ApplyFragment(fragment backend.Fragment) error {
	r.mu.Lock()

	pending := r.pendingMessage()
	if pending == nil {
		r.mu.Unlock()
		return ErrNoPendingResponse
	}
	emit := r.emit

	switch typedFragment := fragment.(type) {
	case backend.TextFragment:
		appended := false
		if len(pending.Parts) > 0 {
			if textPart, ok := pending.Parts[len(pending.Parts)-1].(*messages.TextPart); ok {
				textPart.Text += typedFragment.Delta
				appended = true
			}
		}
		if !appended {
			pending.Parts = append(pending.Parts, &messages.TextPart{Text: typedFragment.Delta})
		}

		messageID := pending.ID
		r.mu.Unlock()

		emit(events.NewAssistantResponseSegment(messageID, typedFragment.Delta))
		return nil

	case backend.ToolFragment:
		toolPart := findToolPart(pending, typedFragment.Tool)
		if toolPart == nil {
			toolPart = &messages.ToolPart{Tool: typedFragment.Tool, State: messages.ToolStateInputStreaming}
			pending.Parts = append(pending.Parts, toolPart)
		}

		if !toolPart.Advance(typedFragment.State, typedFragment.Payload, typedFragment.Error) {
			kept, messageID := toolPart.State, pending.ID
			r.mu.Unlock()

			logger.Warn("ignoring backwards tool state transition",
				"tool", typedFragment.Tool, "kept", kept, "proposed", typedFragment.State)
			emit(events.NewToolPartRegressed(messageID, string(typedFragment.Tool), string(kept), string(typedFragment.State)))
			return fmt.Errorf("%w: %s cannot move %s to %s",
				ErrInvalidToolTransition, typedFragment.Tool, kept, typedFragment.State)
		}

		messageID := pending.ID
		r.mu.Unlock()

		emit(events.NewToolPartUpdated(messageID, string(typedFragment.Tool), string(typedFragment.State)))
		return nil

	default:
		r.mu.Unlock()
		return fmt.Errorf("unknown fragment type: %T", fragment)
	}
}

// CompleteAssistantMessage clears the pending flag after a normally finished
// stream. It is idempotent; the second return reports whether a pending
// response was actually completed, with a deep copy of the finished message.
func (r *Reconciler) CompleteAssistantMessage() (messages.Message, bool) {
	r.mu.Lock()

	pending := r.pendingMessage()
	if pending == nil {
		r.mu.Unlock()
		return messages.Message{}, false
	}

	completed := pending.Clone()
	r.pendingID = ""
	emit := r.emit
	r.mu.Unlock()

	emit(events.NewAssistantResponseCompleted(completed.ID))
	return completed, true
}

// AbortAssistantMessage truncates the pending response after a stream
// failure. Accumulated text is kept, unresolved tool parts are marked failed
// with reason, and the pending flag is cleared. A half-built message never
// reads as complete. No-op when nothing is pending.
func (r *Reconciler) AbortAssistantMessage(reason string) {
	r.mu.Lock()

	pending := r.pendingMessage()
	if pending == nil {
		r.mu.Unlock()
		return
	}

	for _, toolPart := range pending.ToolParts() {
		if !toolPart.State.IsTerminal() {
			toolPart.Advance(messages.ToolStateFailed, nil, reason)
		}
	}

	messageID := pending.ID
	r.pendingID = ""
	emit := r.emit
	r.mu.Unlock()

	emit(events.NewAssistantResponseAborted(messageID, reason))
}

// LiveResponsePending reports whether an assistant response is streaming.
func (r *Reconciler) LiveResponsePending() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pendingID != ""
}

// Snapshot returns a point-in-time deep copy of the transcript. Mutating the
// returned messages never affects the reconciler's state.
func (r *Reconciler) Snapshot() []messages.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]messages.Message, len(r.messages))
	for i, message := range r.messages {
		snapshot[i] = message.Clone()
	}
	return snapshot
}

// pendingMessage returns the message receiving the pending response. Callers
// must hold the lock. The pending message is expected to be the last one, but
// the id is checked rather than assumed.
func (r *Reconciler) pendingMessage() *messages.Message {
	if r.pendingID == "" {
		return nil
	}
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].ID == r.pendingID {
			return &r.messages[i]
		}
	}
	return nil
}

func findToolPart(message *messages.Message, tool messages.ToolName) *messages.ToolPart {
	for _, toolPart := range message.ToolParts() {
		if toolPart.Tool == tool {
			return toolPart
		}
	}
	return nil
}
