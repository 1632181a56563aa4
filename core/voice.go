package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/voyagent/voyagent-core/core/events"
	"github.com/voyagent/voyagent-core/core/messages"
	"github.com/voyagent/voyagent-core/core/synthesis"
	"github.com/voyagent/voyagent-core/core/transcription"
)

// VoiceState is the voice turn controller's position in the capture →
// transcribe → respond → speak cycle.
type VoiceState string

const (
	VoiceStateIdle             VoiceState = "idle"
	VoiceStateCapturing        VoiceState = "capturing"
	VoiceStateTranscribing     VoiceState = "transcribing"
	VoiceStateAwaitingResponse VoiceState = "awaiting-response"
	VoiceStateSpeaking         VoiceState = "speaking"
	// VoiceStateError is reachable from any non-idle state on collaborator
	// failure. The only exit is [Session.Reset]; the transcript is never
	// corrupted by a failed turn.
	VoiceStateError VoiceState = "error"
)

// voiceController drives one voice turn at a time, composing the arbiter for
// resource exclusivity and the reconciler for transcript updates. Collaborator
// callbacks resume it from IO goroutines, so state is guarded by a mutex;
// events are emitted outside the lock because listeners may call back in.
type voiceController struct {
	mu    sync.Mutex
	state VoiceState
	muted bool

	arbiter    *Arbiter
	reconciler *Reconciler
	emit       eventEmitter

	captureClient CaptureClient
	transcriber   transcription.Transcriber
	speaker       synthesis.Speaker

	// respond streams the backend response for a transcribed prompt and
	// resumes the controller through onResponseCompleted or failTurn.
	respond func(ctx context.Context, prompt string)

	captureHandle  CaptureHandle
	captureStream  CaptureStream
	playbackHandle PlaybackHandle
	playbackSource string
}

func newVoiceController(
	arbiter *Arbiter,
	reconciler *Reconciler,
	captureClient CaptureClient,
	transcriber transcription.Transcriber,
	speaker synthesis.Speaker,
	respond func(ctx context.Context, prompt string),
) *voiceController {
	return &voiceController{
		state:         VoiceStateIdle,
		arbiter:       arbiter,
		reconciler:    reconciler,
		emit:          noopEventEmitter,
		captureClient: captureClient,
		transcriber:   transcriber,
		speaker:       speaker,
		respond:       respond,
	}
}

func (c *voiceController) setEmitter(emit eventEmitter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if emit == nil {
		emit = noopEventEmitter
	}
	c.emit = emit
}

func (c *voiceController) State() VoiceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartCapture moves idle → capturing. An arbiter refusal is surfaced to the
// caller without a state change; a capture collaborator refusal is treated as
// denied microphone access and ends the turn in the error state.
func (c *voiceController) StartCapture(ctx context.Context) error {
	c.mu.Lock()
	if c.state != VoiceStateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot start capturing from state %q", state)
	}
	if c.captureClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("no capture client configured")
	}

	handle, err := c.arbiter.BeginCapture()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	stream, err := c.captureClient.RequestMicrophone(ctx)
	if err != nil {
		if releaseErr := c.arbiter.EndCapture(handle); releaseErr != nil {
			logger.Warn("failed to release capture after refused microphone", "error", releaseErr)
		}
		deniedErr := fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		pending, emit := c.failTurnLocked(deniedErr)
		c.mu.Unlock()

		emitAll(emit, pending)
		return deniedErr
	}

	c.captureHandle, c.captureStream = handle, stream
	pending := c.setStateLocked(VoiceStateCapturing)
	pending = append(pending, events.NewCaptureStarted())
	emit := c.emit
	c.mu.Unlock()

	emitAll(emit, pending)
	return nil
}

// StopCapture moves capturing → transcribing, handing the recorded audio to
// the transcription collaborator. The microphone is released before
// transcription starts, whatever the outcome.
func (c *voiceController) StopCapture(ctx context.Context) error {
	c.mu.Lock()
	if c.state != VoiceStateCapturing {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot stop capturing from state %q", state)
	}

	stream, handle := c.captureStream, c.captureHandle
	c.captureStream, c.captureHandle = nil, ""

	blob, err := stream.Stop()
	if releaseErr := c.arbiter.EndCapture(handle); releaseErr != nil {
		logger.Warn("failed to release capture", "error", releaseErr)
	}
	if err != nil {
		stopErr := fmt.Errorf("failed to stop capture: %w", err)
		pending, emit := c.failTurnLocked(stopErr)
		c.mu.Unlock()

		emitAll(emit, pending)
		return stopErr
	}
	if c.transcriber == nil {
		pending, emit := c.failTurnLocked(fmt.Errorf("no transcriber configured"))
		c.mu.Unlock()

		emitAll(emit, pending)
		return fmt.Errorf("no transcriber configured")
	}

	pending := []events.Event{events.NewCaptureEnded(len(blob))}
	pending = append(pending, c.setStateLocked(VoiceStateTranscribing)...)
	emit := c.emit
	c.mu.Unlock()

	emitAll(emit, pending)

	if err := c.transcriber.Transcribe(ctx, blob,
		transcription.WithTranscriptCallback(func(transcript string) {
			c.onTranscript(ctx, transcript)
		}),
		transcription.WithErrorCallback(func(transcribeErr error) {
			c.failTurn(fmt.Errorf("%w: %v", ErrTranscriptionFailed, transcribeErr))
		}),
	); err != nil {
		transcribeErr := fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
		c.failTurn(transcribeErr)
		return transcribeErr
	}
	return nil
}

// onTranscript moves transcribing → awaiting-response, appending the user
// message and opening the assistant one before handing the prompt to the
// backend.
func (c *voiceController) onTranscript(ctx context.Context, transcript string) {
	c.mu.Lock()
	if c.state != VoiceStateTranscribing {
		c.mu.Unlock()
		return
	}
	pending := []events.Event{events.NewTranscriptionCompleted(transcript)}
	pending = append(pending, c.setStateLocked(VoiceStateAwaitingResponse)...)
	emit := c.emit
	c.mu.Unlock()

	emitAll(emit, pending)

	if _, err := c.reconciler.appendUserMessage(transcript, true); err != nil {
		c.failTurn(fmt.Errorf("%w: transcript unusable: %v", ErrTranscriptionFailed, err))
		return
	}
	if _, err := c.reconciler.BeginAssistantMessage(); err != nil {
		c.failTurn(err)
		return
	}
	c.respond(ctx, transcript)
}

// onResponseCompleted moves awaiting-response → speaking with the assistant's
// accumulated text, or straight to idle when muted or without a speaker.
func (c *voiceController) onResponseCompleted(ctx context.Context, message messages.Message) {
	c.mu.Lock()
	if c.state != VoiceStateAwaitingResponse {
		c.mu.Unlock()
		return
	}

	if c.muted || c.speaker == nil || message.Text() == "" {
		pending := c.setStateLocked(VoiceStateIdle)
		emit := c.emit
		c.mu.Unlock()

		emitAll(emit, pending)
		return
	}
	c.mu.Unlock()

	// Acquired outside the lock: the arbiter's cancellation hook can call
	// back into the controller while replacing another playback.
	handle, err := c.arbiter.BeginPlayback(message.ID)

	c.mu.Lock()
	if c.state != VoiceStateAwaitingResponse {
		if err == nil {
			if releaseErr := c.arbiter.EndPlayback(handle); releaseErr != nil {
				logger.Warn("failed to release playback", "error", releaseErr)
			}
		}
		c.mu.Unlock()
		return
	}
	if err != nil {
		pending, emit := c.failTurnLocked(err)
		c.mu.Unlock()

		emitAll(emit, pending)
		return
	}
	c.playbackHandle, c.playbackSource = handle, message.ID

	pending := c.setStateLocked(VoiceStateSpeaking)
	pending = append(pending, events.NewPlaybackStarted(message.ID))
	emit := c.emit
	c.mu.Unlock()

	emitAll(emit, pending)

	if err := c.speaker.Speak(ctx, message.Text(),
		synthesis.WithSpeechEndedCallback(func(spokenText string) {
			c.onPlaybackEnded(message.ID, spokenText)
		}),
		synthesis.WithErrorCallback(func(speakErr error) {
			c.failTurn(fmt.Errorf("failed to speak response: %w", speakErr))
		}),
	); err != nil {
		c.failTurn(fmt.Errorf("failed to speak response: %w", err))
	}
}

// onPlaybackEnded moves speaking → idle after the speech ran to its natural
// end.
func (c *voiceController) onPlaybackEnded(sourceID, spokenText string) {
	c.mu.Lock()
	if c.state != VoiceStateSpeaking || c.playbackSource != sourceID {
		c.mu.Unlock()
		return
	}

	handle := c.playbackHandle
	c.playbackHandle, c.playbackSource = "", ""
	if err := c.arbiter.EndPlayback(handle); err != nil {
		logger.Warn("failed to release playback", "error", err)
	}

	pending := []events.Event{events.NewPlaybackEnded(sourceID, spokenText)}
	pending = append(pending, c.setStateLocked(VoiceStateIdle)...)
	emit := c.emit
	c.mu.Unlock()

	emitAll(emit, pending)
}

// onPlaybackCancelled resumes the controller after the arbiter cancelled its
// playback on behalf of a replacement or a toggle.
func (c *voiceController) onPlaybackCancelled(handle PlaybackHandle) {
	c.mu.Lock()
	if c.state != VoiceStateSpeaking || c.playbackHandle != handle {
		c.mu.Unlock()
		return
	}

	c.playbackHandle, c.playbackSource = "", ""
	pending := c.setStateLocked(VoiceStateIdle)
	emit := c.emit
	c.mu.Unlock()

	emitAll(emit, pending)
}

// SetMuted toggles speech playback of assistant responses. Muting mid-speech
// cancels the active playback, discarding position.
func (c *voiceController) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted

	if !muted || c.state != VoiceStateSpeaking {
		c.mu.Unlock()
		return
	}

	handle, source := c.playbackHandle, c.playbackSource
	c.playbackHandle, c.playbackSource = "", ""
	if err := c.arbiter.EndPlayback(handle); err != nil {
		logger.Warn("failed to release playback on mute", "error", err)
	}

	pending := []events.Event{events.NewPlaybackCancelled(source)}
	pending = append(pending, c.setStateLocked(VoiceStateIdle)...)
	emit := c.emit
	c.mu.Unlock()

	if c.speaker != nil {
		if err := c.speaker.Cancel(); err != nil {
			logger.Warn("failed to cancel speech on mute", "error", err)
		}
	}
	emitAll(emit, pending)
}

func (c *voiceController) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Reset discards any in-flight capture, transcription and playback and
// returns the controller to idle. It is the only exit from the error state.
func (c *voiceController) Reset() {
	c.mu.Lock()

	if c.captureStream != nil {
		if _, err := c.captureStream.Stop(); err != nil {
			logger.Warn("failed to stop capture on reset", "error", err)
		}
		c.captureStream = nil
	}
	if c.captureHandle != "" {
		if err := c.arbiter.EndCapture(c.captureHandle); err != nil {
			logger.Warn("failed to release capture on reset", "error", err)
		}
		c.captureHandle = ""
	}

	var pending []events.Event
	if c.playbackHandle != "" {
		if err := c.arbiter.EndPlayback(c.playbackHandle); err != nil {
			logger.Warn("failed to release playback on reset", "error", err)
		}
		pending = append(pending, events.NewPlaybackCancelled(c.playbackSource))
		c.playbackHandle, c.playbackSource = "", ""
	}

	wasSpeaking := c.state == VoiceStateSpeaking
	pending = append(pending, c.setStateLocked(VoiceStateIdle)...)
	emit := c.emit
	c.mu.Unlock()

	if wasSpeaking && c.speaker != nil {
		if err := c.speaker.Cancel(); err != nil {
			logger.Warn("failed to cancel speech on reset", "error", err)
		}
	}
	emitAll(emit, pending)
}

// failTurn ends the current turn in the error state, releasing any held
// resources first so the arbiter is never left inconsistent.
func (c *voiceController) failTurn(err error) {
	c.mu.Lock()
	pending, emit := c.failTurnLocked(err)
	c.mu.Unlock()

	emitAll(emit, pending)
}

func (c *voiceController) failTurnLocked(err error) ([]events.Event, eventEmitter) {
	logger.Error("voice turn failed", "state", c.state, "error", err)

	if c.captureStream != nil {
		if _, stopErr := c.captureStream.Stop(); stopErr != nil {
			logger.Warn("failed to stop capture after turn failure", "error", stopErr)
		}
		c.captureStream = nil
	}
	if c.captureHandle != "" {
		if releaseErr := c.arbiter.EndCapture(c.captureHandle); releaseErr != nil {
			logger.Warn("failed to release capture after turn failure", "error", releaseErr)
		}
		c.captureHandle = ""
	}
	if c.playbackHandle != "" {
		if releaseErr := c.arbiter.EndPlayback(c.playbackHandle); releaseErr != nil {
			logger.Warn("failed to release playback after turn failure", "error", releaseErr)
		}
		c.playbackHandle, c.playbackSource = "", ""
	}

	pending := []events.Event{events.NewVoiceTurnFailed(string(c.state), err.Error())}
	pending = append(pending, c.setStateLocked(VoiceStateError)...)
	return pending, c.emit
}

func (c *voiceController) setStateLocked(to VoiceState) []events.Event {
	if c.state == to {
		return nil
	}
	from := c.state
	c.state = to
	return []events.Event{events.NewVoiceStateChanged(string(from), string(to))}
}

func emitAll(emit eventEmitter, pending []events.Event) {
	for _, event := range pending {
		emit(event)
	}
}
