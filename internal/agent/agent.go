package agent

import (
	"context"
	"strings"
)

// Request is one agent turn: a message, and for code-editing turns the
// directory the agent may work in.
type Request struct {
	// Message is the prompt text (required).
	Message string

	// WorkDir scopes the agent's file access for fix turns. Empty for
	// evaluation-only turns.
	WorkDir string

	// AllowEdits permits the agent to modify files without prompting.
	AllowEdits bool
}

// Agent submits a prompt and returns a stream of incremental events.
// Submission failure (the capability is not available at all) is the only
// error path; everything after a successful submit is reported through the
// stream.
type Agent interface {
	Submit(ctx context.Context, req Request) (*Stream, error)
}

// Stream is an in-flight agent response. Events arrive on Events until the
// turn completes, then the channel closes. There is no mid-stream
// cancellation: callers drain to completion or abandon the process.
type Stream struct {
	// Events yields tagged events in arrival order.
	Events <-chan Event

	// wait reports the turn's terminal error once Events is closed.
	wait func() error
}

// NewStream assembles a stream from an event channel and a completion func.
// wait may be nil when no terminal error is possible.
func NewStream(events <-chan Event, wait func() error) *Stream {
	if wait == nil {
		wait = func() error { return nil }
	}
	return &Stream{Events: events, wait: wait}
}

// Drain consumes the stream to completion, invoking onEvent for every event
// (may be nil) and concatenating text-delta fragments in arrival order.
// It returns the accumulated text together with the turn's terminal error;
// text gathered before a failure is still returned.
func (s *Stream) Drain(onEvent func(Event)) (string, error) {
	var b strings.Builder
	for ev := range s.Events {
		if onEvent != nil {
			onEvent(ev)
		}
		if ev.Kind == EventTextDelta {
			b.WriteString(ev.Text)
		}
	}
	return b.String(), s.wait()
}
