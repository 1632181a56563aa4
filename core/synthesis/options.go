// Package synthesis defines the speech synthesis contract the session core
// speaks through, plus a player that bridges a speech generator to an audio
// output.
package synthesis

import (
	"context"

	"github.com/voyagent/voyagent-core/core/audio"
)

// Speaker synthesizes and plays one text at a time. Speak returns once
// generation is underway; playback progress arrives through the registered
// callbacks. Cancel stops the active speech immediately, discarding position.
type Speaker interface {
	Speak(ctx context.Context, text string, opts ...SpeakOption) error
	Cancel() error
}

type SpeakOptions struct {
	// SpeechStartedCallback is called when the first audio is produced.
	SpeechStartedCallback func()
	// SpeechEndedCallback is called once when the speech ran to its natural
	// end, with the text that was spoken. It is not called after Cancel.
	SpeechEndedCallback func(spokenText string)
	// ErrorCallback is called when synthesis fails or is cancelled.
	ErrorCallback func(err error)
}

type SpeakOption func(*SpeakOptions)

func WithSpeechStartedCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func(spokenText string)) SpeakOption {
	return func(o *SpeakOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) SpeakOption {
	return func(o *SpeakOptions) {
		o.ErrorCallback = callback
	}
}

// SpeechGenerator is an in-flight speech generation stream.
type SpeechGenerator interface {
	// SendText sends text to the generator. Speech is generated in the order
	// text is sent.
	//
	// SendText will error if EndOfText, Cancel or Close has been called.
	SendText(text string) error
	// Mark marks the current point in the text. The mark is confirmed after
	// the text sent up to it has been generated.
	//
	// Mark will error if EndOfText, Cancel or Close has been called.
	Mark() error
	// EndOfText signals that no more text will be sent. The generator closes
	// itself after all remaining speech has been generated.
	//
	// EndOfText will error if Cancel or Close has been called. Repeated calls
	// are ignored.
	EndOfText() error
	// Cancel immediately stops further generation and closes the generator.
	//
	// Cancel will error if Close has been called. Repeated calls are ignored.
	Cancel() error
	// Close immediately closes the generator. No more speech is produced
	// after this call. Repeated calls are ignored.
	Close() error
}

// GeneratorClient opens speech generation streams.
type GeneratorClient interface {
	NewSpeechGenerator(ctx context.Context, opts ...GeneratorOption) (SpeechGenerator, error)
}

type GeneratorOptions struct {
	// AudioCallback is called for every produced audio chunk.
	AudioCallback func(audio []byte)
	// MarkCallback is called once per confirmed mark.
	MarkCallback func()
	// SpeechEndedCallback is called when the generator has produced all
	// speech for the text sent before EndOfText.
	SpeechEndedCallback func()
	// ErrorCallback is called when the generator fails; this usually means it
	// has been cancelled.
	ErrorCallback func(err error)

	EncodingInfo audio.EncodingInfo
}

type GeneratorOption func(*GeneratorOptions)

func WithAudioCallback(callback func(audio []byte)) GeneratorOption {
	return func(o *GeneratorOptions) {
		o.AudioCallback = callback
	}
}

func WithMarkCallback(callback func()) GeneratorOption {
	return func(o *GeneratorOptions) {
		o.MarkCallback = callback
	}
}

func WithGeneratorSpeechEndedCallback(callback func()) GeneratorOption {
	return func(o *GeneratorOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithGeneratorErrorCallback(callback func(err error)) GeneratorOption {
	return func(o *GeneratorOptions) {
		o.ErrorCallback = callback
	}
}

func WithGeneratorEncodingInfo(encodingInfo audio.EncodingInfo) GeneratorOption {
	return func(o *GeneratorOptions) {
		if encodingInfo.IsZero() {
			return
		}
		o.EncodingInfo = encodingInfo
	}
}
