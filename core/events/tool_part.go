package events

const (
	// KindToolPartUpdated identifies a tool part state advance.
	KindToolPartUpdated Kind = "tool_part.updated"
	// KindToolPartRegressed identifies an ignored backwards transition.
	KindToolPartRegressed Kind = "tool_part.regressed"
)

// ToolPartUpdated marks a tool invocation part advancing to a new state.
type ToolPartUpdated struct {
	Base
	MessageID string
	Tool      string
	State     string
}

// NewToolPartUpdated creates a tool part updated event.
func NewToolPartUpdated(messageID, tool, state string) ToolPartUpdated {
	return ToolPartUpdated{Base: NewBase(KindToolPartUpdated), MessageID: messageID, Tool: tool, State: state}
}

// ToolPartRegressed marks a fragment that proposed a backwards state
// transition and was ignored.
type ToolPartRegressed struct {
	Base
	MessageID string
	Tool      string
	Kept      string
	Proposed  string
}

// NewToolPartRegressed creates a tool part regressed event.
func NewToolPartRegressed(messageID, tool, kept, proposed string) ToolPartRegressed {
	return ToolPartRegressed{Base: NewBase(KindToolPartRegressed), MessageID: messageID, Tool: tool, Kept: kept, Proposed: proposed}
}
