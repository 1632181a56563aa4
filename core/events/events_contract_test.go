package events

import "testing"

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "user message appended", event: NewUserMessageAppended("id", "text"), expected: KindUserMessageAppended},
		{name: "transcribed user message appended", event: NewTranscribedUserMessageAppended("id", "text"), expected: KindUserMessageAppended},
		{name: "assistant response started", event: NewAssistantResponseStarted("id"), expected: KindAssistantResponseStarted},
		{name: "assistant response segment", event: NewAssistantResponseSegment("id", "seg"), expected: KindAssistantResponseSegment},
		{name: "assistant response completed", event: NewAssistantResponseCompleted("id"), expected: KindAssistantResponseCompleted},
		{name: "assistant response aborted", event: NewAssistantResponseAborted("id", "reason"), expected: KindAssistantResponseAborted},
		{name: "tool part updated", event: NewToolPartUpdated("id", "itinerary", "input-available"), expected: KindToolPartUpdated},
		{name: "tool part regressed", event: NewToolPartRegressed("id", "itinerary", "output-available", "input-streaming"), expected: KindToolPartRegressed},
		{name: "capture started", event: NewCaptureStarted(), expected: KindCaptureStarted},
		{name: "capture ended", event: NewCaptureEnded(42), expected: KindCaptureEnded},
		{name: "transcription completed", event: NewTranscriptionCompleted("text"), expected: KindTranscriptionCompleted},
		{name: "transcription failed", event: NewTranscriptionFailed("err"), expected: KindTranscriptionFailed},
		{name: "playback started", event: NewPlaybackStarted("id"), expected: KindPlaybackStarted},
		{name: "playback ended", event: NewPlaybackEnded("id", "text"), expected: KindPlaybackEnded},
		{name: "playback cancelled", event: NewPlaybackCancelled("id"), expected: KindPlaybackCancelled},
		{name: "voice state changed", event: NewVoiceStateChanged("idle", "capturing"), expected: KindVoiceStateChanged},
		{name: "voice turn failed", event: NewVoiceTurnFailed("transcribing", "err"), expected: KindVoiceTurnFailed},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestTranscribedUserMessageMarksOrigin(t *testing.T) {
	typed := NewUserMessageAppended("id", "text")
	transcribed := NewTranscribedUserMessageAppended("id", "text")

	if typed.Transcribed {
		t.Fatalf("expected typed message to not be marked transcribed")
	}
	if !transcribed.Transcribed {
		t.Fatalf("expected transcribed message to be marked transcribed")
	}
}
