package events

const (
	// KindTranscriptionCompleted identifies successful transcription.
	KindTranscriptionCompleted Kind = "transcription.completed"
	// KindTranscriptionFailed identifies transcription failure.
	KindTranscriptionFailed Kind = "transcription.failed"
)

// TranscriptionCompleted carries the text the transcription collaborator
// produced for the captured audio.
type TranscriptionCompleted struct {
	Base
	Transcript string
}

// NewTranscriptionCompleted creates a transcription completed event.
func NewTranscriptionCompleted(transcript string) TranscriptionCompleted {
	return TranscriptionCompleted{Base: NewBase(KindTranscriptionCompleted), Transcript: transcript}
}

// TranscriptionFailed marks a transcription collaborator error.
type TranscriptionFailed struct {
	Base
	Error string
}

// NewTranscriptionFailed creates a transcription failed event.
func NewTranscriptionFailed(err string) TranscriptionFailed {
	return TranscriptionFailed{Base: NewBase(KindTranscriptionFailed), Error: err}
}
