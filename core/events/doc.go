// Package events defines the typed session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - user_message.*
//   - assistant_response.*
//   - tool_part.*
//   - capture.*
//   - transcription.*
//   - playback.*
//   - voice.*
//
// Semantics used across the package:
//
//   - Segment: append-only text piece emitted in stream order.
//   - Completed: terminal state for the current stream/turn phase.
//   - Aborted/Failed: the phase ended without reaching its terminal state.
//
// user_message events
//
//   - UserMessageAppended (user_message.appended): a user message entered the
//     transcript, either typed or transcribed.
//
// assistant_response events
//
//   - AssistantResponseStarted (assistant_response.started): an assistant
//     message was opened and fragments may arrive.
//   - AssistantResponseSegment (assistant_response.segment): streamed response
//     text segment.
//   - AssistantResponseCompleted (assistant_response.completed): the backend
//     stream finished normally.
//   - AssistantResponseAborted (assistant_response.aborted): the backend
//     stream failed or was cancelled; accumulated text is kept.
//
// tool_part events
//
//   - ToolPartUpdated (tool_part.updated): a tool invocation part advanced to
//     a new state.
//   - ToolPartRegressed (tool_part.regressed): a fragment proposed a backwards
//     state transition and was ignored. Recoverable warning, never fatal.
//
// capture events
//
//   - CaptureStarted (capture.started): microphone capture began.
//   - CaptureEnded (capture.ended): microphone capture stopped and the
//     recorded audio was consumed.
//
// transcription events
//
//   - TranscriptionCompleted (transcription.completed): captured audio was
//     transcribed to text.
//   - TranscriptionFailed (transcription.failed): the transcription
//     collaborator reported an error.
//
// playback events
//
//   - PlaybackStarted (playback.started): speech playback began for a source.
//   - PlaybackEnded (playback.ended): playback reached its natural end.
//   - PlaybackCancelled (playback.cancelled): playback was stopped before its
//     natural end, discarding position.
//
// voice events
//
//   - VoiceStateChanged (voice.state_changed): the voice turn controller moved
//     between states.
//   - VoiceTurnFailed (voice.turn_failed): a collaborator failure pushed the
//     controller into its error state.
package events
