package session

import (
	"context"

	"github.com/voyagent/voyagent-core/core/backend"
	"github.com/voyagent/voyagent-core/core/synthesis"
	"github.com/voyagent/voyagent-core/core/transcription"
)

type SessionOption func(*Session)

// WithBackendClient configures the travel-chat backend the session streams
// assistant responses from.
func WithBackendClient(client backend.Client) SessionOption {
	return func(s *Session) {
		s.backendClient = client
	}
}

// CaptureStream is an active microphone capture. Stop releases the device and
// returns the recorded audio.
type CaptureStream interface {
	Stop() ([]byte, error)
}

// CaptureClient grants access to the microphone. RequestMicrophone fails when
// the device refuses access.
type CaptureClient interface {
	RequestMicrophone(ctx context.Context) (CaptureStream, error)
}

func WithCaptureClient(client CaptureClient) SessionOption {
	return func(s *Session) {
		s.captureClient = client
	}
}

func WithTranscriber(transcriber transcription.Transcriber) SessionOption {
	return func(s *Session) {
		s.transcriber = transcriber
	}
}

func WithSpeaker(speaker synthesis.Speaker) SessionOption {
	return func(s *Session) {
		s.speaker = speaker
	}
}

// WithGreeting seeds a fresh session with an assistant greeting message when
// listening starts.
func WithGreeting(text string) SessionOption {
	return func(s *Session) {
		s.greeting = text
	}
}

// WithMuted starts the session with assistant speech playback muted.
func WithMuted() SessionOption {
	return func(s *Session) {
		s.startMuted = true
	}
}

type ListenOptions struct {
	onUserMessage           func(messageID, text string)
	onTranscription         func(transcript string)
	onResponseStarted       func(messageID string)
	onResponse              func(segment string)
	onResponseEnd           func()
	onResponseAborted       func(reason string)
	onToolPartUpdated       func(messageID, tool, state string)
	onToolPartRegressed     func(messageID, tool, kept, proposed string)
	onRecordingStateChanged func(isRecording bool)
	onPlaybackStateChanged  func(sourceID string, isPlaying bool)
	onVoiceStateChanged     func(from, to string)
	onVoiceTurnFailed       func(state, errDescriptor string)
}

type ListenOption func(*ListenOptions)

// WithUserMessageCallback registers a callback for user messages entering the
// transcript, typed or transcribed.
func WithUserMessageCallback(callback func(messageID, text string)) ListenOption {
	return func(o *ListenOptions) {
		o.onUserMessage = callback
	}
}

// WithTranscriptionCallback registers a callback for transcripts produced by
// the transcription collaborator during voice turns.
func WithTranscriptionCallback(callback func(transcript string)) ListenOption {
	return func(o *ListenOptions) {
		o.onTranscription = callback
	}
}

func WithResponseStartedCallback(callback func(messageID string)) ListenOption {
	return func(o *ListenOptions) {
		o.onResponseStarted = callback
	}
}

// WithResponseCallback registers a callback for streamed response text
// segments, in arrival order.
func WithResponseCallback(callback func(segment string)) ListenOption {
	return func(o *ListenOptions) {
		o.onResponse = callback
	}
}

func WithResponseEndCallback(callback func()) ListenOption {
	return func(o *ListenOptions) {
		o.onResponseEnd = callback
	}
}

func WithResponseAbortedCallback(callback func(reason string)) ListenOption {
	return func(o *ListenOptions) {
		o.onResponseAborted = callback
	}
}

// WithToolPartUpdatedCallback registers a callback for tool invocation parts
// advancing through their states.
func WithToolPartUpdatedCallback(callback func(messageID, tool, state string)) ListenOption {
	return func(o *ListenOptions) {
		o.onToolPartUpdated = callback
	}
}

// WithToolPartRegressedCallback registers a callback for ignored backwards
// tool state transitions. These are recoverable warnings, never fatal.
func WithToolPartRegressedCallback(callback func(messageID, tool, kept, proposed string)) ListenOption {
	return func(o *ListenOptions) {
		o.onToolPartRegressed = callback
	}
}

func WithRecordingStateChangedCallback(callback func(isRecording bool)) ListenOption {
	return func(o *ListenOptions) {
		o.onRecordingStateChanged = callback
	}
}

func WithPlaybackStateChangedCallback(callback func(sourceID string, isPlaying bool)) ListenOption {
	return func(o *ListenOptions) {
		o.onPlaybackStateChanged = callback
	}
}

func WithVoiceStateChangedCallback(callback func(from, to string)) ListenOption {
	return func(o *ListenOptions) {
		o.onVoiceStateChanged = callback
	}
}

func WithVoiceTurnFailedCallback(callback func(state, errDescriptor string)) ListenOption {
	return func(o *ListenOptions) {
		o.onVoiceTurnFailed = callback
	}
}
