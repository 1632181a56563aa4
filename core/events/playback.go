package events

const (
	// KindPlaybackStarted identifies playback beginning for a source.
	KindPlaybackStarted Kind = "playback.started"
	// KindPlaybackEnded identifies playback reaching its natural end.
	KindPlaybackEnded Kind = "playback.ended"
	// KindPlaybackCancelled identifies playback stopped before its end.
	KindPlaybackCancelled Kind = "playback.cancelled"
)

// PlaybackStarted marks speech playback beginning.
type PlaybackStarted struct {
	Base
	SourceID string
}

// NewPlaybackStarted creates a playback started event.
func NewPlaybackStarted(sourceID string) PlaybackStarted {
	return PlaybackStarted{Base: NewBase(KindPlaybackStarted), SourceID: sourceID}
}

// PlaybackEnded marks playback finishing naturally.
type PlaybackEnded struct {
	Base
	SourceID   string
	Transcript string
}

// NewPlaybackEnded creates a playback ended event.
func NewPlaybackEnded(sourceID, transcript string) PlaybackEnded {
	return PlaybackEnded{Base: NewBase(KindPlaybackEnded), SourceID: sourceID, Transcript: transcript}
}

// PlaybackCancelled marks playback stopped before its natural end. Position
// is discarded, not paused.
type PlaybackCancelled struct {
	Base
	SourceID string
}

// NewPlaybackCancelled creates a playback cancelled event.
func NewPlaybackCancelled(sourceID string) PlaybackCancelled {
	return PlaybackCancelled{Base: NewBase(KindPlaybackCancelled), SourceID: sourceID}
}
