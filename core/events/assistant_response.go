package events

const (
	// KindAssistantResponseStarted identifies an assistant message being opened.
	KindAssistantResponseStarted Kind = "assistant_response.started"
	// KindAssistantResponseSegment identifies a streamed response text segment.
	KindAssistantResponseSegment Kind = "assistant_response.segment"
	// KindAssistantResponseCompleted identifies a normally finished stream.
	KindAssistantResponseCompleted Kind = "assistant_response.completed"
	// KindAssistantResponseAborted identifies a stream that ended in failure.
	KindAssistantResponseAborted Kind = "assistant_response.aborted"
)

// AssistantResponseStarted marks an assistant message being opened for
// streaming.
type AssistantResponseStarted struct {
	Base
	MessageID string
}

// NewAssistantResponseStarted creates an assistant response started event.
func NewAssistantResponseStarted(messageID string) AssistantResponseStarted {
	return AssistantResponseStarted{Base: NewBase(KindAssistantResponseStarted), MessageID: messageID}
}

// AssistantResponseSegment carries a streamed response text segment.
type AssistantResponseSegment struct {
	Base
	MessageID string
	Segment   string
}

// NewAssistantResponseSegment creates a response segment event.
func NewAssistantResponseSegment(messageID, segment string) AssistantResponseSegment {
	return AssistantResponseSegment{Base: NewBase(KindAssistantResponseSegment), MessageID: messageID, Segment: segment}
}

// AssistantResponseCompleted marks the end of a successfully streamed
// response.
type AssistantResponseCompleted struct {
	Base
	MessageID string
}

// NewAssistantResponseCompleted creates a response completed event.
func NewAssistantResponseCompleted(messageID string) AssistantResponseCompleted {
	return AssistantResponseCompleted{Base: NewBase(KindAssistantResponseCompleted), MessageID: messageID}
}

// AssistantResponseAborted marks a response stream that failed or was
// cancelled mid-flight.
type AssistantResponseAborted struct {
	Base
	MessageID string
	Reason    string
}

// NewAssistantResponseAborted creates a response aborted event.
func NewAssistantResponseAborted(messageID, reason string) AssistantResponseAborted {
	return AssistantResponseAborted{Base: NewBase(KindAssistantResponseAborted), MessageID: messageID, Reason: reason}
}
