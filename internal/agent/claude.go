package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/google/uuid"

	"github.com/dstanley/viewport/internal/logger"
)

// CLIAgent drives the Claude CLI as the evaluation agent. Each Submit execs
// one `claude -p` turn with stream-json output and translates the JSONL
// stream into tagged events.
//
// No timeout wraps the turn: once submitted, the caller drains the stream to
// completion. Context cancellation kills the process.
type CLIAgent struct {
	// BinaryPath is the path to the claude CLI binary.
	// Defaults to "claude" (found in PATH).
	BinaryPath string

	Logger logger.Logger
}

// NewCLIAgent creates a CLIAgent with default settings.
func NewCLIAgent(binaryPath string, log logger.Logger) *CLIAgent {
	if binaryPath == "" {
		binaryPath = "claude"
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CLIAgent{BinaryPath: binaryPath, Logger: log}
}

// Submit starts one agent turn. A missing binary or failed process start is a
// capability-unavailable error; stream-level problems surface when draining.
func (a *CLIAgent) Submit(ctx context.Context, req Request) (*Stream, error) {
	if req.Message == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	bin := a.BinaryPath
	if bin == "" {
		bin = "claude"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("agent capability unavailable: %q not found in PATH: %w", bin, err)
	}

	args := []string{"-p", req.Message, "--output-format", "stream-json", "--verbose"}
	if req.AllowEdits {
		args = append(args, "--permission-mode", "bypassPermissions")
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	if req.WorkDir != "" {
		cmd.Dir = req.WorkDir
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach to agent output: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start agent: %w", err)
	}

	requestID := uuid.NewString()[:8]
	a.Logger.LogDebug(fmt.Sprintf("agent turn %s started (%d byte prompt)", requestID, len(req.Message)))

	events := make(chan Event, 64)
	go func() {
		defer close(events)

		scanner := bufio.NewScanner(stdout)
		// Stream lines carry whole assistant messages and can be very long.
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 10*1024*1024)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			for _, ev := range parseStreamLine(line) {
				if ev.Kind == EventUnknown {
					continue
				}
				if ev.Kind == EventToolCallStarted {
					a.Logger.LogTrace(fmt.Sprintf("agent turn %s: tool %s", requestID, ev.ToolName))
				}
				events <- ev
			}
		}
	}()

	wait := func() error {
		if err := cmd.Wait(); err != nil {
			return fmt.Errorf("agent turn %s failed: %w", requestID, err)
		}
		a.Logger.LogDebug(fmt.Sprintf("agent turn %s complete", requestID))
		return nil
	}

	return NewStream(events, wait), nil
}

// streamLine is the envelope of one stream-json line.
type streamLine struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

type streamMessage struct {
	Content []json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Thinking  string `json:"thinking"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	ToolUseID string `json:"tool_use_id"`
}

// parseStreamLine maps one JSONL line to zero or more events. Malformed lines
// and unrecognized shapes yield nothing; the stream must survive whatever the
// agent emits.
func parseStreamLine(line []byte) []Event {
	var envelope streamLine
	if err := json.Unmarshal(line, &envelope); err != nil {
		return nil
	}

	switch envelope.Type {
	case "assistant", "user":
	default:
		// system, result, and anything newer: not event-bearing.
		return nil
	}

	var msg streamMessage
	if err := json.Unmarshal(envelope.Message, &msg); err != nil {
		return nil
	}

	var events []Event
	for _, raw := range msg.Content {
		var block contentBlock
		if err := json.Unmarshal(raw, &block); err != nil {
			continue
		}
		switch block.Type {
		case "text":
			if block.Text != "" {
				events = append(events, Event{Kind: EventTextDelta, Text: block.Text})
			}
		case "thinking":
			if block.Thinking != "" {
				events = append(events, Event{Kind: EventThinkingDelta, Text: block.Thinking})
			}
		case "tool_use":
			events = append(events, Event{Kind: EventToolCallStarted, ToolName: block.Name, ToolID: block.ID})
		case "tool_result":
			events = append(events, Event{Kind: EventToolCallCompleted, ToolID: block.ToolUseID})
		default:
			events = append(events, Event{Kind: EventUnknown})
		}
	}
	return events
}
