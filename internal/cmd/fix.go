package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dstanley/viewport/internal/agent"
	"github.com/dstanley/viewport/internal/runner"
)

// NewFixCommand creates the fix command
func NewFixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix <run-dir>",
		Short: "Dispatch the fix agent from a stored run",
		Long: `Load a previous run's results from its run directory and dispatch a
single fix turn against the target working copy, without opening a
browser. Useful for re-applying fixes from an earlier evaluation, or
for fixing from a run produced on another machine.

Examples:
  viewport fix --target ./mysite viewport-reports/2026-03-01_12-30-00`,
		Args: cobra.ExactArgs(1),
		RunE: fixCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: "+defaultConfigPath+")")
	cmd.Flags().String("log-level", "", "Logging verbosity (trace, debug, info, warn, error)")
	cmd.Flags().String("target", "", "Working copy the fix agent may edit (required)")
	cmd.MarkFlagRequired("target")
	return cmd
}

// fixCommand implements the fix command logic
func fixCommand(cmd *cobra.Command, args []string) error {
	runDir := args[0]
	target, _ := cmd.Flags().GetString("target")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	runPath := filepath.Join(runDir, "run.json")
	data, err := os.ReadFile(runPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", runPath, err)
	}
	var result runner.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to parse %s: %w", runPath, err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fixer := &runner.Fixer{Agent: agent.NewCLIAgent(cfg.AgentBinary, log), Logger: log}
	applied, err := fixer.ApplyFixes(ctx, result.Evaluations, target)
	if err != nil {
		return err
	}
	if !applied {
		fmt.Fprintln(cmd.OutOrStdout(), "Run contains no issues or suggestions; nothing to fix.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Fixes applied in %s. Re-run the evaluation to verify.\n", target)
	return nil
}
