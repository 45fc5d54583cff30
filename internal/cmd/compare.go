package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dstanley/viewport/internal/agent"
	"github.com/dstanley/viewport/internal/comparison"
	"github.com/dstanley/viewport/internal/device"
	"github.com/dstanley/viewport/internal/report"
	"github.com/dstanley/viewport/internal/runner"
)

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <url>",
		Short: "Run, fix, re-run, and compare before/after",
		Long: `Run a full evaluation of the URL, dispatch the agent to fix the reported
issues inside the target working copy, run a second evaluation, and write
a before/after comparison report.

The target directory must be the working copy that serves the URL; the
fix turn edits its stylesheets and templates directly. Use --skip-fix to
compare two runs without changing any code in between (for example after
applying fixes by hand).

Examples:
  viewport compare --target ./mysite https://localhost:3000
  viewport compare --target ./mysite --skip-fix https://localhost:3000`,
		Args: cobra.ExactArgs(1),
		RunE: compareCommand,
	}

	addSharedFlags(cmd)
	cmd.Flags().String("target", "", "Working copy the fix agent may edit (required unless --skip-fix)")
	cmd.Flags().Bool("skip-fix", false, "Skip the fix turn between the two runs")
	return cmd
}

// compareCommand implements the compare command logic
func compareCommand(cmd *cobra.Command, args []string) error {
	url := args[0]
	target, _ := cmd.Flags().GetString("target")
	skipFix, _ := cmd.Flags().GetBool("skip-fix")

	if !skipFix && target == "" {
		return fmt.Errorf("--target is required unless --skip-fix is set")
	}

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

	ag := agent.NewCLIAgent(cfg.AgentBinary, log)
	r := &runner.Runner{
		Registry:   device.NewRegistry(cfg.Devices),
		Session:    sess,
		Agent:      ag,
		OutputRoot: cfg.OutputDir,
		Logger:     log,
	}
	opts := runOptions(cmd, cfg)
	writer := &report.Writer{Logger: log}

	log.LogInfo("Before run...")
	before, err := r.RunOnce(ctx, url, opts)
	if err != nil {
		return err
	}
	if err := writer.WriteRun(before); err != nil {
		return err
	}

	if !skipFix {
		fixer := &runner.Fixer{Agent: ag, Logger: log}
		applied, err := fixer.ApplyFixes(ctx, before.Evaluations, target)
		if err != nil {
			return err
		}
		if !applied {
			log.LogInfo("Nothing to fix; comparing two plain runs")
		}
	}

	log.LogInfo("After run...")
	after, err := r.RunOnce(ctx, url, opts)
	if err != nil {
		return err
	}
	if err := writer.WriteRun(after); err != nil {
		return err
	}

	result := comparison.Compare(before, after)
	if err := writer.WriteComparison(result, after.OutputDir); err != nil {
		return err
	}

	if result.OverallReady {
		fmt.Fprintf(cmd.OutOrStdout(), "Ready: every device reports good. Comparison in %s\n", after.OutputDir)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Not ready. Comparison in %s\n", after.OutputDir)
	}
	return nil
}
