// Package runner orchestrates a full evaluation run: one capture per
// configured device, a single batched agent turn, and the parsed result.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dstanley/viewport/internal/agent"
	"github.com/dstanley/viewport/internal/browser"
	"github.com/dstanley/viewport/internal/capture"
	"github.com/dstanley/viewport/internal/device"
	"github.com/dstanley/viewport/internal/evaluation"
	"github.com/dstanley/viewport/internal/logger"
)

// runDirLayout is the timestamp format naming each run's output directory.
const runDirLayout = "2006-01-02_15-04-05"

// Options are the per-run knobs.
type Options struct {
	// SettleWait is slept after each navigation before screenshotting.
	SettleWait time.Duration

	// NavTimeout bounds each device's navigation.
	NavTimeout time.Duration

	// Accessibility toggles the heuristic accessibility pass.
	Accessibility bool

	// Task overrides the default evaluation task text. Empty uses the default.
	Task string
}

// RunResult is the complete outcome of one run. It is the unit of
// persistence: serialized as run.json inside the run directory, and the
// input to comparison and reporting.
type RunResult struct {
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	OutputDir string    `json:"output_dir"`

	// Captures holds one record per successfully captured device,
	// in registry order.
	Captures []capture.Record `json:"captures"`

	// Evaluations holds whatever the agent returned, including entries
	// for devices this run never captured. Consumers match by device
	// name and ignore what they cannot match.
	Evaluations []evaluation.DeviceEvaluation `json:"evaluations"`

	Summary       string   `json:"summary,omitempty"`
	PriorityFixes []string `json:"priority_fixes,omitempty"`

	// RawResponse is the agent's verbatim text, kept so a human can
	// recover intent when parsing degraded to an empty evaluation list.
	RawResponse string `json:"raw_response,omitempty"`
}

// EvaluationFor returns the evaluation whose device name matches, if any.
func (r *RunResult) EvaluationFor(deviceName string) (evaluation.DeviceEvaluation, bool) {
	for _, ev := range r.Evaluations {
		if ev.Device == deviceName {
			return ev, true
		}
	}
	return evaluation.DeviceEvaluation{}, false
}

// Runner wires the capture driver and the evaluation agent into runs.
type Runner struct {
	Registry *device.Registry
	Session  browser.Session
	Agent    agent.Agent

	// OutputRoot is the directory run directories are created under.
	OutputRoot string

	Logger logger.Logger
}

// RunOnce captures every registered device against url, submits the batched
// evaluation prompt, and returns the parsed result.
//
// Per-device capture failures are soft: the device is skipped with a warning
// and the run continues. When no device captures at all the agent turn is
// skipped and the result carries empty evaluations. Agent stream failures
// keep the text gathered so far; parse failures keep the raw text.
func (r *Runner) RunOnce(ctx context.Context, url string, opts Options) (*RunResult, error) {
	log := r.logger()
	now := time.Now()

	runDir := filepath.Join(r.OutputRoot, now.Format(runDirLayout))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	result := &RunResult{
		URL:       url,
		Timestamp: now,
		OutputDir: runDir,
	}

	driver := &capture.Driver{
		Session:       r.Session,
		OutputDir:     runDir,
		SettleWait:    opts.SettleWait,
		NavTimeout:    opts.NavTimeout,
		Accessibility: opts.Accessibility,
		Logger:        log,
	}

	profiles := r.Registry.Profiles()
	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.LogInfo(fmt.Sprintf("Capturing %s (%s)...", profile.Name, profile.Resolution()))
		record, err := driver.Capture(ctx, url, profile)
		if err != nil {
			log.LogWarn(fmt.Sprintf("Skipping %s: %v", profile.Name, err))
			continue
		}
		result.Captures = append(result.Captures, *record)
	}

	if len(result.Captures) == 0 {
		log.LogWarn("No device captured successfully; skipping evaluation")
		return result, nil
	}

	log.LogInfo(fmt.Sprintf("Evaluating %d captures...", len(result.Captures)))
	prompt := evaluation.BuildRequest(result.Captures, r.Registry, opts.Task)

	stream, err := r.Agent.Submit(ctx, agent.Request{Message: prompt})
	if err != nil {
		return nil, fmt.Errorf("evaluation agent unavailable: %w", err)
	}

	raw, err := stream.Drain(r.traceEvents(log))
	result.RawResponse = raw
	if err != nil {
		log.LogWarn(fmt.Sprintf("Agent stream ended with error: %v (parsing partial output)", err))
	}

	payload, ok := evaluation.ParsePayload(raw)
	if !ok {
		log.LogWarn("Could not parse agent response as JSON; run report will carry raw text only")
		return result, nil
	}

	result.Evaluations = payload.Evaluations
	result.Summary = payload.Summary
	result.PriorityFixes = payload.PriorityFixes

	log.LogInfo(fmt.Sprintf("Received %d device evaluations", len(result.Evaluations)))
	return result, nil
}

// traceEvents returns a stream callback that surfaces agent activity at
// trace level.
func (r *Runner) traceEvents(log logger.Logger) func(agent.Event) {
	return func(ev agent.Event) {
		switch ev.Kind {
		case agent.EventToolCallStarted:
			log.LogTrace(fmt.Sprintf("agent tool call: %s", ev.ToolName))
		case agent.EventThinkingDelta:
			log.LogTrace("agent thinking...")
		}
	}
}

func (r *Runner) logger() logger.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logger.NewNoOpLogger()
}
