package events

const (
	// KindUserMessageAppended identifies a user message entering the transcript.
	KindUserMessageAppended Kind = "user_message.appended"
)

// UserMessageAppended marks a user message entering the transcript.
type UserMessageAppended struct {
	Base
	MessageID   string
	Text        string
	Transcribed bool
}

// NewUserMessageAppended creates a user message appended event.
func NewUserMessageAppended(messageID, text string) UserMessageAppended {
	return UserMessageAppended{Base: NewBase(KindUserMessageAppended), MessageID: messageID, Text: text}
}

// NewTranscribedUserMessageAppended creates a user message appended event for
// text that came out of the transcription collaborator.
func NewTranscribedUserMessageAppended(messageID, text string) UserMessageAppended {
	return UserMessageAppended{Base: NewBase(KindUserMessageAppended), MessageID: messageID, Text: text, Transcribed: true}
}
