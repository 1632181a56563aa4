// Package session implements the conversational state engine of the travel
// assistant: the append-only transcript of streamed messages, the arbiter
// guarding the microphone and speaker, and the voice turn controller that
// composes them. External collaborators (backend, capture, transcription,
// synthesis) are injected through options; the session owns no persistence
// and is discarded whole when the front-end unmounts or switches modes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/voyagent/voyagent-core/core/backend"
	"github.com/voyagent/voyagent-core/core/events"
	"github.com/voyagent/voyagent-core/core/messages"
	"github.com/voyagent/voyagent-core/core/synthesis"
	"github.com/voyagent/voyagent-core/core/transcription"
	"go.opentelemetry.io/otel/codes"
)

type Session struct {
	arbiter    *Arbiter
	reconciler *Reconciler
	voice      *voiceController

	backendClient backend.Client
	captureClient CaptureClient
	transcriber   transcription.Transcriber
	speaker       synthesis.Speaker

	greeting   string
	startMuted bool

	emit        eventEmitter
	baseContext context.Context
	closeOnce   sync.Once
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		reconciler:  NewReconciler(),
		emit:        noopEventEmitter,
		baseContext: context.Background(),
	}
	s.arbiter = NewArbiter(WithPlaybackCancelledCallback(s.onPlaybackCancelled))

	for _, opt := range opts {
		opt(s)
	}

	s.voice = newVoiceController(
		s.arbiter,
		s.reconciler,
		s.captureClient,
		s.transcriber,
		s.speaker,
		s.respondToVoicePrompt,
	)
	if s.startMuted {
		s.voice.SetMuted(true)
	}
	return s
}

// Listen wires the callbacks and starts the session. ctx is the base context
// for backend and collaborator calls; when it is cancelled the session
// closes.
//
// Contract: call Listen at most once per session instance, before any other
// interaction.
func (s *Session) Listen(ctx context.Context, opts ...ListenOption) {
	options := ListenOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	s.baseContext = ctx
	s.emit = newCallbackEventEmitter(options)
	s.reconciler.setEmitter(s.emit)
	s.voice.setEmitter(s.emit)

	if s.greeting != "" {
		s.seedGreeting()
	}

	go func() {
		<-ctx.Done()
		s.Close()
	}()
}

// seedGreeting plays the greeting through the reconciler so listeners observe
// it the same way as a streamed response.
func (s *Session) seedGreeting() {
	if _, err := s.reconciler.BeginAssistantMessage(); err != nil {
		logger.Warn("failed to seed greeting", "error", err)
		return
	}
	if err := s.reconciler.ApplyFragment(backend.TextFragment{Delta: s.greeting}); err != nil {
		logger.Warn("failed to seed greeting", "error", err)
	}
	s.reconciler.CompleteAssistantMessage()
}

// SendPrompt submits typed user text and streams the assistant response into
// the transcript. It fails with [ErrEmptyInput] on blank text and with
// [ErrAlreadyStreaming] while a response is pending.
func (s *Session) SendPrompt(prompt string) error {
	if s.backendClient == nil {
		return fmt.Errorf("no backend client configured")
	}
	if s.reconciler.LiveResponsePending() {
		return ErrAlreadyStreaming
	}

	if _, err := s.reconciler.AppendUserMessage(prompt); err != nil {
		return err
	}
	if _, err := s.reconciler.BeginAssistantMessage(); err != nil {
		return err
	}
	return s.streamResponse(s.baseContext, prompt, nil, nil)
}

// respondToVoicePrompt streams the backend response for a transcribed prompt
// and resumes the voice controller.
func (s *Session) respondToVoicePrompt(ctx context.Context, prompt string) {
	if s.backendClient == nil {
		s.voice.failTurn(fmt.Errorf("no backend client configured"))
		return
	}

	err := s.streamResponse(ctx, prompt,
		func(message messages.Message) { s.voice.onResponseCompleted(ctx, message) },
		func(streamErr error) { s.voice.failTurn(streamErr) },
	)
	if err != nil {
		s.voice.failTurn(err)
	}
}

// streamResponse drives one backend stream into the reconciler. A regressing
// tool fragment is already surfaced by the reconciler and does not interrupt
// the stream; a stream failure aborts the pending message so accumulated text
// survives with unresolved tool parts marked failed.
func (s *Session) streamResponse(
	ctx context.Context,
	prompt string,
	onCompleted func(messages.Message),
	onFailed func(error),
) error {
	ctx, span := tracer.Start(ctx, "stream assistant response")

	err := s.backendClient.Stream(ctx, s.reconciler.Snapshot(), prompt,
		backend.WithFragmentCallback(func(fragment backend.Fragment) {
			if err := s.reconciler.ApplyFragment(fragment); err != nil && !errors.Is(err, ErrInvalidToolTransition) {
				logger.Warn("failed to apply fragment", "error", err)
			}
		}),
		backend.WithStreamEndCallback(func() {
			span.End()
			if message, completed := s.reconciler.CompleteAssistantMessage(); completed && onCompleted != nil {
				onCompleted(message)
			}
		}),
		backend.WithStreamErrorCallback(func(streamErr error) {
			wrapped := fmt.Errorf("%w: %v", ErrStreamAborted, streamErr)
			s.reconciler.AbortAssistantMessage(streamErr.Error())
			span.RecordError(wrapped)
			span.SetStatus(codes.Error, wrapped.Error())
			span.End()
			if onFailed != nil {
				onFailed(wrapped)
			}
		}),
	)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrStreamAborted, err)
		s.reconciler.AbortAssistantMessage(err.Error())
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		span.End()
		return wrapped
	}
	return nil
}

// StartRecording begins a voice turn by acquiring the microphone.
func (s *Session) StartRecording() error {
	return s.voice.StartCapture(s.baseContext)
}

// StopRecording ends the capture and hands the recorded audio to
// transcription; the rest of the voice turn resumes through collaborator
// callbacks.
func (s *Session) StopRecording() error {
	return s.voice.StopCapture(s.baseContext)
}

// TogglePlayback replays the given message's text, or cancels its playback
// when it is the one currently audible. It reports whether playback started.
func (s *Session) TogglePlayback(messageID string) (bool, error) {
	message, ok := s.findMessage(messageID)
	if !ok {
		return false, fmt.Errorf("unknown message id: %q", messageID)
	}
	if s.speaker == nil {
		return false, fmt.Errorf("no speaker configured")
	}

	started, err := s.arbiter.Toggle(messageID)
	if err != nil || !started {
		// The cancel path already stopped the speaker through the arbiter's
		// cancellation hook.
		return false, err
	}

	s.emit(events.NewPlaybackStarted(messageID))

	if err := s.speaker.Speak(s.baseContext, message.Text(),
		synthesis.WithSpeechEndedCallback(func(spokenText string) {
			s.endTogglePlayback(messageID, spokenText)
		}),
		synthesis.WithErrorCallback(func(speakErr error) {
			logger.Warn("playback failed", "message_id", messageID, "error", speakErr)
			s.endTogglePlayback(messageID, "")
		}),
	); err != nil {
		s.endTogglePlayback(messageID, "")
		return false, fmt.Errorf("failed to start playback: %w", err)
	}
	return true, nil
}

func (s *Session) endTogglePlayback(messageID, spokenText string) {
	handle, sourceID, active := s.arbiter.CurrentPlayback()
	if !active || sourceID != messageID {
		return
	}
	if err := s.arbiter.EndPlayback(handle); err != nil {
		logger.Warn("failed to release playback", "error", err)
		return
	}
	s.emit(events.NewPlaybackEnded(messageID, spokenText))
}

// onPlaybackCancelled is the arbiter's cancellation hook: it silences the
// speaker for a playback the arbiter stopped on behalf of a replacement or a
// toggle, and lets the voice controller leave its speaking state.
func (s *Session) onPlaybackCancelled(handle PlaybackHandle, sourceID string) {
	if s.speaker != nil {
		if err := s.speaker.Cancel(); err != nil {
			logger.Warn("failed to cancel speech", "error", err)
		}
	}
	s.emit(events.NewPlaybackCancelled(sourceID))
	s.voice.onPlaybackCancelled(handle)
}

// SetMuted toggles assistant speech playback.
func (s *Session) SetMuted(muted bool) { s.voice.SetMuted(muted) }

func (s *Session) IsMuted() bool { return s.voice.Muted() }

// VoiceState reports the voice turn controller's current state.
func (s *Session) VoiceState() VoiceState { return s.voice.State() }

// Reset discards any in-flight voice turn and returns the controller to
// idle. It is the only exit from the voice error state.
func (s *Session) Reset() { s.voice.Reset() }

// Transcript returns a point-in-time deep copy of the conversation.
func (s *Session) Transcript() []messages.Message { return s.reconciler.Snapshot() }

// LiveResponsePending reports whether an assistant response is streaming.
func (s *Session) LiveResponsePending() bool { return s.reconciler.LiveResponsePending() }

// Close cancels any in-flight capture and playback and truncates a pending
// response. The transcript stays readable; the session accepts no new turns
// from its front-end after this.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.voice.Reset()
		s.reconciler.AbortAssistantMessage("session closed")
	})
}

func (s *Session) findMessage(messageID string) (messages.Message, bool) {
	for _, message := range s.reconciler.Snapshot() {
		if message.ID == messageID {
			return message, true
		}
	}
	return messages.Message{}, false
}
