// Package transcription defines the contract for turning captured audio into
// text. Implementations live in subpackages; the session core only consumes
// the interface.
package transcription

import (
	"context"

	"github.com/voyagent/voyagent-core/core/audio"
)

// Transcriber transcribes one captured audio blob. Transcribe returns once
// the request is underway; the result arrives through the registered
// callbacks.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, opts ...TranscriptionOption) error
}

type TranscriptionOptions struct {
	// TranscriptCallback is called once with the full transcript of the blob.
	TranscriptCallback func(transcript string)
	// ErrorCallback is called at most once when transcription fails; no
	// transcript follows it.
	ErrorCallback func(err error)

	EncodingInfo audio.EncodingInfo
}

type TranscriptionOption func(*TranscriptionOptions)

func WithTranscriptCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
