package synthesis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/voyagent/voyagent-core/core/audio"
)

// AudioOutput is the playback device the player feeds generated speech into.
type AudioOutput interface {
	EncodingInfo() audio.EncodingInfo
	SendAudio(audio []byte) error
	Clear()
}

// Player implements [Speaker] by bridging a speech generator to an audio
// output. One speech is active at a time; starting a new one while another is
// active cancels the active one first.
type Player struct {
	client GeneratorClient
	output AudioOutput

	mu        sync.Mutex
	active    SpeechGenerator
	cancelled *atomic.Bool
}

func NewPlayer(client GeneratorClient, output AudioOutput) *Player {
	return &Player{client: client, output: output}
}

func (p *Player) Speak(ctx context.Context, text string, opts ...SpeakOption) error {
	options := SpeakOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if err := p.Cancel(); err != nil {
		return fmt.Errorf("failed to cancel previous speech: %w", err)
	}

	cancelled := &atomic.Bool{}
	started := &atomic.Bool{}

	generator, err := p.client.NewSpeechGenerator(ctx,
		WithGeneratorEncodingInfo(p.output.EncodingInfo()),
		WithAudioCallback(func(chunk []byte) {
			if cancelled.Load() {
				return
			}
			if started.CompareAndSwap(false, true) && options.SpeechStartedCallback != nil {
				options.SpeechStartedCallback()
			}
			if err := p.output.SendAudio(chunk); err != nil && options.ErrorCallback != nil {
				options.ErrorCallback(fmt.Errorf("failed to send audio to output: %w", err))
			}
		}),
		WithGeneratorSpeechEndedCallback(func() {
			if cancelled.Load() {
				return
			}
			p.release()
			if options.SpeechEndedCallback != nil {
				options.SpeechEndedCallback(text)
			}
		}),
		WithGeneratorErrorCallback(func(err error) {
			if cancelled.Load() {
				return
			}
			p.release()
			if options.ErrorCallback != nil {
				options.ErrorCallback(err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to open speech generator: %w", err)
	}

	p.mu.Lock()
	p.active = generator
	p.cancelled = cancelled
	p.mu.Unlock()

	if err := generator.SendText(text); err != nil {
		p.release()
		return fmt.Errorf("failed to send text to speech generator: %w", err)
	}
	if err := generator.EndOfText(); err != nil {
		p.release()
		return fmt.Errorf("failed to end speech generator text: %w", err)
	}
	return nil
}

// Cancel stops the active speech immediately and flushes buffered audio. It
// is a no-op when nothing is playing.
func (p *Player) Cancel() error {
	p.mu.Lock()
	generator, cancelled := p.active, p.cancelled
	p.active, p.cancelled = nil, nil
	p.mu.Unlock()

	if generator == nil {
		return nil
	}
	if cancelled != nil {
		cancelled.Store(true)
	}

	p.output.Clear()
	if err := generator.Cancel(); err != nil {
		return fmt.Errorf("failed to cancel speech generator: %w", err)
	}
	return nil
}

func (p *Player) release() {
	p.mu.Lock()
	p.active, p.cancelled = nil, nil
	p.mu.Unlock()
}
