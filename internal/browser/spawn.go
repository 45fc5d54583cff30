package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	shellwords "github.com/mattn/go-shellwords"
)

// SpawnBridge starts a local bridge process from a shell-style command string
// (e.g. "pinchtab --port 9867") and waits for its health endpoint to come up.
// The returned stop function terminates the process.
//
// The command is parsed with shellwords so quoted arguments survive; it is
// never passed through a shell.
func SpawnBridge(ctx context.Context, command string, bridge *Bridge) (stop func(), err error) {
	args, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("invalid bridge command %q: %w", command, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty bridge command")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start browser bridge: %w", err)
	}

	stop = func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		cmd.Wait()
	}

	// Poll health until the bridge answers or the startup window closes.
	deadline := time.Now().Add(15 * time.Second)
	for {
		if err := bridge.Health(ctx); err == nil {
			return stop, nil
		}
		if time.Now().After(deadline) {
			stop()
			return nil, fmt.Errorf("browser bridge did not become healthy within 15s")
		}
		select {
		case <-ctx.Done():
			stop()
			return nil, ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}
