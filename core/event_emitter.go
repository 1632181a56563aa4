package session

import "github.com/voyagent/voyagent-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts ListenOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.UserMessageAppended:
			if opts.onUserMessage != nil {
				opts.onUserMessage(typedEvent.MessageID, typedEvent.Text)
			}
			if typedEvent.Transcribed && opts.onTranscription != nil {
				opts.onTranscription(typedEvent.Text)
			}
		case events.AssistantResponseStarted:
			if opts.onResponseStarted != nil {
				opts.onResponseStarted(typedEvent.MessageID)
			}
		case events.AssistantResponseSegment:
			if opts.onResponse != nil {
				opts.onResponse(typedEvent.Segment)
			}
		case events.AssistantResponseCompleted:
			if opts.onResponseEnd != nil {
				opts.onResponseEnd()
			}
		case events.AssistantResponseAborted:
			if opts.onResponseAborted != nil {
				opts.onResponseAborted(typedEvent.Reason)
			}
		case events.ToolPartUpdated:
			if opts.onToolPartUpdated != nil {
				opts.onToolPartUpdated(typedEvent.MessageID, typedEvent.Tool, typedEvent.State)
			}
		case events.ToolPartRegressed:
			if opts.onToolPartRegressed != nil {
				opts.onToolPartRegressed(typedEvent.MessageID, typedEvent.Tool, typedEvent.Kept, typedEvent.Proposed)
			}
		case events.CaptureStarted:
			if opts.onRecordingStateChanged != nil {
				opts.onRecordingStateChanged(true)
			}
		case events.CaptureEnded:
			if opts.onRecordingStateChanged != nil {
				opts.onRecordingStateChanged(false)
			}
		case events.PlaybackStarted:
			if opts.onPlaybackStateChanged != nil {
				opts.onPlaybackStateChanged(typedEvent.SourceID, true)
			}
		case events.PlaybackEnded:
			if opts.onPlaybackStateChanged != nil {
				opts.onPlaybackStateChanged(typedEvent.SourceID, false)
			}
		case events.PlaybackCancelled:
			if opts.onPlaybackStateChanged != nil {
				opts.onPlaybackStateChanged(typedEvent.SourceID, false)
			}
		case events.VoiceStateChanged:
			if opts.onVoiceStateChanged != nil {
				opts.onVoiceStateChanged(typedEvent.From, typedEvent.To)
			}
		case events.VoiceTurnFailed:
			if opts.onVoiceTurnFailed != nil {
				opts.onVoiceTurnFailed(typedEvent.State, typedEvent.Error)
			}
		}
	}
}
