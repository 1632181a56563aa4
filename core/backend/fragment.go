// Package backend defines the contract between the session engine and the
// external travel-chat backend. The backend is consumed, never implemented
// here: it takes the running transcript plus new user text and answers with a
// stream of fragments.
package backend

import (
	"encoding/json"

	"github.com/voyagent/voyagent-core/core/messages"
)

// Fragment is one incremental unit of a streamed assistant response. The set
// of implementations is closed: [TextFragment] and [ToolFragment].
type Fragment interface {
	isFragment()
}

// TextFragment carries a response text delta.
type TextFragment struct {
	Delta string
}

func (TextFragment) isFragment() {}

// ToolFragment carries a tool invocation update. Fragments for one invocation
// arrive in order; fragments for distinct invocations may interleave.
type ToolFragment struct {
	Tool    messages.ToolName
	State   messages.ToolState
	Payload json.RawMessage
	Error   string
}

func (ToolFragment) isFragment() {}
