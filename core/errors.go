package session

import "errors"

var (
	// ErrResourceBusy is returned when capture or playback cannot start
	// because the shared audio resource is already held.
	ErrResourceBusy = errors.New("audio resource busy")
	// ErrInvalidHandle is returned when a release names a handle that is not
	// the currently held one.
	ErrInvalidHandle = errors.New("invalid resource handle")
	// ErrPermissionDenied is returned when the capture collaborator refuses
	// microphone access.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrEmptyInput is returned when a user message is blank after trimming.
	ErrEmptyInput = errors.New("empty input")
	// ErrAlreadyStreaming is returned when an assistant message is opened
	// while another response is still pending.
	ErrAlreadyStreaming = errors.New("response already streaming")
	// ErrNoPendingResponse is returned when a fragment arrives with no
	// assistant message open to receive it.
	ErrNoPendingResponse = errors.New("no pending response")
	// ErrInvalidToolTransition is returned when a fragment proposes a
	// backwards tool state transition. The stored state is kept.
	ErrInvalidToolTransition = errors.New("invalid tool state transition")

	// ErrTranscriptionFailed is returned when the transcription collaborator
	// cannot produce text for the captured audio.
	ErrTranscriptionFailed = errors.New("transcription failed")
	// ErrStreamAborted is returned when the backend stream ends before the
	// response completes.
	ErrStreamAborted = errors.New("response stream aborted")
)
