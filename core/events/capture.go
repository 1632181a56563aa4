package events

const (
	// KindCaptureStarted identifies the start of microphone capture.
	KindCaptureStarted Kind = "capture.started"
	// KindCaptureEnded identifies capture stop and consumption of its audio.
	KindCaptureEnded Kind = "capture.ended"
)

// CaptureStarted marks microphone capture beginning.
type CaptureStarted struct{ Base }

// NewCaptureStarted creates a capture started event.
func NewCaptureStarted() CaptureStarted {
	return CaptureStarted{Base: NewBase(KindCaptureStarted)}
}

// CaptureEnded marks microphone capture stopping.
type CaptureEnded struct {
	Base
	AudioBytes int
}

// NewCaptureEnded creates a capture ended event.
func NewCaptureEnded(audioBytes int) CaptureEnded {
	return CaptureEnded{Base: NewBase(KindCaptureEnded), AudioBytes: audioBytes}
}
