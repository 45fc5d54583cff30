package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dstanley/viewport/internal/agent"
	"github.com/dstanley/viewport/internal/device"
	"github.com/dstanley/viewport/internal/report"
	"github.com/dstanley/viewport/internal/runner"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <url>",
		Short: "Capture and evaluate a page across device viewports",
		Long: `Capture screenshots of the given URL at every configured device viewport,
run the heuristic accessibility pass, and submit the captures to the
evaluation agent in a single batched turn.

Outputs are written to a timestamped directory under the output root:
one screenshot per device, report.md, report.html, and run.json.

Configuration is loaded from .viewport/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  viewport run https://example.com
  viewport run --task "check the checkout flow" https://shop.example.com
  viewport run --no-accessibility --log-level debug https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCommand,
	}

	addSharedFlags(cmd)
	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	url := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sess, cleanup, err := openSession(ctx, cfg, log, cfg.Headless)
	if err != nil {
		return err
	}
	defer cleanup()

	r := &runner.Runner{
		Registry:   device.NewRegistry(cfg.Devices),
		Session:    sess,
		Agent:      agent.NewCLIAgent(cfg.AgentBinary, log),
		OutputRoot: cfg.OutputDir,
		Logger:     log,
	}

	result, err := r.RunOnce(ctx, url, runOptions(cmd, cfg))
	if err != nil {
		return err
	}

	writer := &report.Writer{Logger: log}
	if err := writer.WriteRun(result); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run complete: %s\n", result.OutputDir)
	return nil
}
