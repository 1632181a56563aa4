package backend

import (
	"context"

	"github.com/voyagent/voyagent-core/core/messages"
)

// Client streams assistant responses for a prompt in the context of the
// running transcript. Stream returns once the stream is set up; fragments and
// termination are delivered through the registered callbacks.
type Client interface {
	Stream(ctx context.Context, transcript []messages.Message, prompt string, opts ...StreamOption) error
}

type StreamOptions struct {
	// FragmentCallback is called for every decoded fragment in arrival order.
	FragmentCallback func(Fragment)
	// EndCallback is called once after the last fragment of a normally
	// terminated stream.
	EndCallback func()
	// ErrorCallback is called at most once when the stream fails; no further
	// fragments follow it.
	ErrorCallback func(error)
}

type StreamOption func(*StreamOptions)

func WithFragmentCallback(callback func(Fragment)) StreamOption {
	return func(o *StreamOptions) {
		o.FragmentCallback = callback
	}
}

func WithStreamEndCallback(callback func()) StreamOption {
	return func(o *StreamOptions) {
		o.EndCallback = callback
	}
}

func WithStreamErrorCallback(callback func(error)) StreamOption {
	return func(o *StreamOptions) {
		o.ErrorCallback = callback
	}
}
