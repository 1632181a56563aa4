package session

import (
	"sync"

	"github.com/google/uuid"
)

// CaptureHandle identifies an active microphone capture.
type CaptureHandle string

// PlaybackHandle identifies an active playback stream.
type PlaybackHandle string

// Arbiter serializes access to the microphone and the speaker. It guarantees
// at most one active capture and at most one active playback at any instant,
// and that the two never overlap. It performs no IO itself; callers drive the
// capture and synthesis collaborators around it.
type Arbiter struct {
	mu sync.Mutex

	capture        CaptureHandle
	playback       PlaybackHandle
	playbackSource string

	// onPlaybackCancelled is invoked, outside the lock, for a playback that
	// was stopped by a replacement or a toggle rather than by EndPlayback.
	onPlaybackCancelled func(handle PlaybackHandle, sourceID string)
}

type ArbiterOption func(*Arbiter)

// WithPlaybackCancelledCallback registers a callback for playbacks the
// arbiter cancels on behalf of a newer one or a toggle. Cancellation discards
// position; there is no pause.
func WithPlaybackCancelledCallback(callback func(handle PlaybackHandle, sourceID string)) ArbiterOption {
	return func(a *Arbiter) {
		a.onPlaybackCancelled = callback
	}
}

func NewArbiter(opts ...ArbiterOption) *Arbiter {
	a := &Arbiter{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BeginCapture acquires the microphone. It fails with [ErrResourceBusy] while
// a capture or a playback is active; the active holder is unaffected.
func (a *Arbiter) BeginCapture() (CaptureHandle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.capture != "" || a.playback != "" {
		return "", ErrResourceBusy
	}

	a.capture = CaptureHandle(uuid.NewString())
	return a.capture, nil
}

// EndCapture releases the microphone. It fails with [ErrInvalidHandle] if
// handle is not the currently held one.
func (a *Arbiter) EndCapture(handle CaptureHandle) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if handle == "" || handle != a.capture {
		return ErrInvalidHandle
	}

	a.capture = ""
	return nil
}

// BeginPlayback acquires the speaker for sourceID. An active playback for
// another source is cancelled atomically before the new one starts. It fails
// with [ErrResourceBusy] while a capture is active.
func (a *Arbiter) BeginPlayback(sourceID string) (PlaybackHandle, error) {
	a.mu.Lock()
	if a.capture != "" {
		a.mu.Unlock()
		return "", ErrResourceBusy
	}

	cancelledHandle, cancelledSource := a.playback, a.playbackSource
	handle := PlaybackHandle(uuid.NewString())
	a.playback, a.playbackSource = handle, sourceID
	a.mu.Unlock()

	if cancelledHandle != "" && a.onPlaybackCancelled != nil {
		a.onPlaybackCancelled(cancelledHandle, cancelledSource)
	}
	return handle, nil
}

// EndPlayback releases the speaker after playback ran to its natural end. It
// fails with [ErrInvalidHandle] if handle is not the currently held one, which
// happens benignly when the playback was already cancelled by a replacement.
func (a *Arbiter) EndPlayback(handle PlaybackHandle) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if handle == "" || handle != a.playback {
		return ErrInvalidHandle
	}

	a.playback, a.playbackSource = "", ""
	return nil
}

// Toggle starts playback for sourceID if it does not own the speaker, or
// cancels its playback if it does. Two immediate toggles for the same source
// return the arbiter to its pre-toggle state. It reports whether playback was
// started.
func (a *Arbiter) Toggle(sourceID string) (bool, error) {
	a.mu.Lock()
	if a.playback != "" && a.playbackSource == sourceID {
		cancelledHandle := a.playback
		a.playback, a.playbackSource = "", ""
		a.mu.Unlock()

		if a.onPlaybackCancelled != nil {
			a.onPlaybackCancelled(cancelledHandle, sourceID)
		}
		return false, nil
	}

	if a.capture != "" {
		a.mu.Unlock()
		return false, ErrResourceBusy
	}

	cancelledHandle, cancelledSource := a.playback, a.playbackSource
	a.playback, a.playbackSource = PlaybackHandle(uuid.NewString()), sourceID
	a.mu.Unlock()

	if cancelledHandle != "" && a.onPlaybackCancelled != nil {
		a.onPlaybackCancelled(cancelledHandle, cancelledSource)
	}
	return true, nil
}

// IsCapturing reports whether a capture is active.
func (a *Arbiter) IsCapturing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capture != ""
}

// CurrentPlayback reports the active playback, if any.
func (a *Arbiter) CurrentPlayback() (PlaybackHandle, string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playback, a.playbackSource, a.playback != ""
}
