package events

const (
	// KindVoiceStateChanged identifies a voice controller state move.
	KindVoiceStateChanged Kind = "voice.state_changed"
	// KindVoiceTurnFailed identifies a collaborator failure ending a turn.
	KindVoiceTurnFailed Kind = "voice.turn_failed"
)

// VoiceStateChanged marks the voice turn controller moving between states.
type VoiceStateChanged struct {
	Base
	From string
	To   string
}

// NewVoiceStateChanged creates a voice state changed event.
func NewVoiceStateChanged(from, to string) VoiceStateChanged {
	return VoiceStateChanged{Base: NewBase(KindVoiceStateChanged), From: from, To: to}
}

// VoiceTurnFailed marks a collaborator failure that pushed the controller
// into its error state.
type VoiceTurnFailed struct {
	Base
	State string
	Error string
}

// NewVoiceTurnFailed creates a voice turn failed event.
func NewVoiceTurnFailed(state, err string) VoiceTurnFailed {
	return VoiceTurnFailed{Base: NewBase(KindVoiceTurnFailed), State: state, Error: err}
}
