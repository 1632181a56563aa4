package messages

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role describes who a message is from.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversational turn. A user message is immutable once
// appended; an assistant message is mutable only while it is the last message
// of the session and a response is still streaming into it.
type Message struct {
	ID        string
	Role      Role
	Parts     []Part
	CreatedAt time.Time
}

// NewUserMessage builds a user message with a single text part.
func NewUserMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Parts:     []Part{&TextPart{Text: text}},
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage builds an empty assistant message ready to receive
// streamed parts.
func NewAssistantMessage() Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		CreatedAt: time.Now(),
	}
}

// Text concatenates the message's text parts in order, skipping tool parts.
func (m Message) Text() string {
	var sb strings.Builder
	for _, part := range m.Parts {
		if textPart, ok := part.(*TextPart); ok {
			sb.WriteString(textPart.Text)
		}
	}
	return sb.String()
}

// ToolParts returns the message's tool parts in arrival order.
func (m Message) ToolParts() []*ToolPart {
	var toolParts []*ToolPart
	for _, part := range m.Parts {
		if toolPart, ok := part.(*ToolPart); ok {
			toolParts = append(toolParts, toolPart)
		}
	}
	return toolParts
}

// Clone returns a deep copy that shares no mutable state with the original.
func (m Message) Clone() Message {
	clone := m
	clone.Parts = make([]Part, len(m.Parts))
	for i, part := range m.Parts {
		clone.Parts[i] = part.Clone()
	}
	return clone
}
