package runner

import (
	"context"
	"fmt"

	"github.com/dstanley/viewport/internal/agent"
	"github.com/dstanley/viewport/internal/evaluation"
	"github.com/dstanley/viewport/internal/logger"
)

// Fixer dispatches one aggregated fix turn against a local working copy.
type Fixer struct {
	Agent  agent.Agent
	Logger logger.Logger
}

// ApplyFixes builds the aggregated fix prompt from evals and runs a single
// code-editing agent turn inside targetDir. There is no retry and no
// verification here; the caller re-runs the evaluation afterwards to judge
// the outcome.
//
// Returns (false, nil) when the evaluations contain nothing actionable.
func (f *Fixer) ApplyFixes(ctx context.Context, evals []evaluation.DeviceEvaluation, targetDir string) (bool, error) {
	log := f.logger()

	prompt := evaluation.BuildFixRequest(evals)
	if prompt == "" {
		log.LogInfo("No issues or suggestions to fix; skipping fix turn")
		return false, nil
	}

	log.LogInfo(fmt.Sprintf("Dispatching fix agent in %s...", targetDir))
	stream, err := f.Agent.Submit(ctx, agent.Request{
		Message:    prompt,
		WorkDir:    targetDir,
		AllowEdits: true,
	})
	if err != nil {
		return false, fmt.Errorf("fix agent unavailable: %w", err)
	}

	if _, err := stream.Drain(func(ev agent.Event) {
		if ev.Kind == agent.EventToolCallStarted {
			log.LogDebug(fmt.Sprintf("fix agent tool call: %s", ev.ToolName))
		}
	}); err != nil {
		return false, fmt.Errorf("fix agent turn failed: %w", err)
	}

	log.LogInfo("Fix turn complete")
	return true, nil
}

func (f *Fixer) logger() logger.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return logger.NewNoOpLogger()
}
