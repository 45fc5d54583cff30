// Package agent defines the evaluation-agent capability boundary: submitting
// a prompt and draining the resulting event stream.
package agent

// EventKind tags stream events. The set is closed at the consumption site;
// event kinds this package does not recognize are mapped to EventUnknown and
// must be skipped by consumers, never treated as fatal.
type EventKind string

const (
	EventTextDelta         EventKind = "text-delta"
	EventThinkingDelta     EventKind = "thinking-delta"
	EventToolCallStarted   EventKind = "tool-call-started"
	EventToolCallCompleted EventKind = "tool-call-completed"
	EventUnknown           EventKind = "unknown"
)

// Event is one incremental item on an agent response stream.
type Event struct {
	Kind EventKind

	// Text carries the fragment for text-delta and thinking-delta events.
	Text string

	// ToolName names the tool for tool-call-started events.
	ToolName string

	// ToolID correlates tool-call-started with tool-call-completed.
	ToolID string
}
