package session

import (
	"errors"
	"testing"
)

func TestArbiterCaptureExclusivity(t *testing.T) {
	t.Parallel()

	arbiter := NewArbiter()

	handle, err := arbiter.BeginCapture()
	if err != nil {
		t.Fatalf("expected capture to start, got: %v", err)
	}

	if _, err := arbiter.BeginCapture(); !errors.Is(err, ErrResourceBusy) {
		t.Fatalf("expected second capture to fail with ErrResourceBusy, got: %v", err)
	}
	if !arbiter.IsCapturing() {
		t.Fatal("expected first capture to be unaffected by the refused one")
	}

	if _, err := arbiter.BeginPlayback("message-1"); !errors.Is(err, ErrResourceBusy) {
		t.Fatalf("expected playback during capture to fail with ErrResourceBusy, got: %v", err)
	}

	if err := arbiter.EndCapture(handle); err != nil {
		t.Fatalf("expected capture to end, got: %v", err)
	}
	if arbiter.IsCapturing() {
		t.Fatal("expected capture to be released")
	}
}

func TestArbiterEndCaptureRejectsForeignHandle(t *testing.T) {
	t.Parallel()

	arbiter := NewArbiter()

	handle, err := arbiter.BeginCapture()
	if err != nil {
		t.Fatalf("expected capture to start, got: %v", err)
	}

	if err := arbiter.EndCapture(CaptureHandle("not-the-one")); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("expected a foreign handle to be rejected, got: %v", err)
	}
	if err := arbiter.EndCapture(""); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("expected an empty handle to be rejected, got: %v", err)
	}
	if !arbiter.IsCapturing() {
		t.Fatal("expected rejected releases to leave the capture held")
	}

	if err := arbiter.EndCapture(handle); err != nil {
		t.Fatalf("expected the held handle to release, got: %v", err)
	}
}

func TestArbiterPlaybackReplacement(t *testing.T) {
	t.Parallel()

	var cancelled []string
	arbiter := NewArbiter(WithPlaybackCancelledCallback(func(_ PlaybackHandle, sourceID string) {
		cancelled = append(cancelled, sourceID)
	}))

	first, err := arbiter.BeginPlayback("message-1")
	if err != nil {
		t.Fatalf("expected first playback to start, got: %v", err)
	}

	second, err := arbiter.BeginPlayback("message-2")
	if err != nil {
		t.Fatalf("expected replacement playback to start, got: %v", err)
	}
	if len(cancelled) != 1 || cancelled[0] != "message-1" {
		t.Fatalf("expected the first playback to be cancelled, got: %v", cancelled)
	}

	if err := arbiter.EndPlayback(first); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("expected the replaced handle to be stale, got: %v", err)
	}
	if err := arbiter.EndPlayback(second); err != nil {
		t.Fatalf("expected the active playback to end, got: %v", err)
	}
	if _, _, active := arbiter.CurrentPlayback(); active {
		t.Fatal("expected the speaker to be released")
	}
}

func TestArbiterToggleIdempotence(t *testing.T) {
	t.Parallel()

	var cancelled int
	arbiter := NewArbiter(WithPlaybackCancelledCallback(func(PlaybackHandle, string) {
		cancelled++
	}))

	started, err := arbiter.Toggle("message-1")
	if err != nil {
		t.Fatalf("expected toggle to start playback, got: %v", err)
	}
	if !started {
		t.Fatal("expected the first toggle to report a start")
	}

	started, err = arbiter.Toggle("message-1")
	if err != nil {
		t.Fatalf("expected toggle to cancel playback, got: %v", err)
	}
	if started {
		t.Fatal("expected the second toggle to report a cancellation")
	}
	if cancelled != 1 {
		t.Fatalf("expected exactly one cancellation, got %d", cancelled)
	}
	if _, _, active := arbiter.CurrentPlayback(); active {
		t.Fatal("expected two toggles to return the arbiter to idle")
	}
}

func TestArbiterToggleReplacesOtherSource(t *testing.T) {
	t.Parallel()

	var cancelled []string
	arbiter := NewArbiter(WithPlaybackCancelledCallback(func(_ PlaybackHandle, sourceID string) {
		cancelled = append(cancelled, sourceID)
	}))

	if _, err := arbiter.Toggle("message-1"); err != nil {
		t.Fatalf("expected toggle to start playback, got: %v", err)
	}
	started, err := arbiter.Toggle("message-2")
	if err != nil {
		t.Fatalf("expected toggle to switch playback, got: %v", err)
	}
	if !started {
		t.Fatal("expected toggling another source to start its playback")
	}

	if len(cancelled) != 1 || cancelled[0] != "message-1" {
		t.Fatalf("expected the previous source to be cancelled, got: %v", cancelled)
	}
	if _, sourceID, active := arbiter.CurrentPlayback(); !active || sourceID != "message-2" {
		t.Fatalf("expected message-2 to own the speaker, got active=%t source=%q", active, sourceID)
	}
}

func TestArbiterToggleDuringCapture(t *testing.T) {
	t.Parallel()

	arbiter := NewArbiter()

	if _, err := arbiter.BeginCapture(); err != nil {
		t.Fatalf("expected capture to start, got: %v", err)
	}
	if _, err := arbiter.Toggle("message-1"); !errors.Is(err, ErrResourceBusy) {
		t.Fatalf("expected toggle during capture to fail with ErrResourceBusy, got: %v", err)
	}
}
