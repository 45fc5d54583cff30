package cmd

import (
	"bufio"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <url>",
		Short: "Open a visible browser to log in to a site",
		Long: `Open the URL in a visible (non-headless) browser using the configured
profile, so you can complete a login by hand. Cookies and session state
are stored in the profile directory and reused by later runs.

Press Enter in the terminal when you are done to close the browser.

Examples:
  viewport login https://app.example.com/signin`,
		Args: cobra.ExactArgs(1),
		RunE: loginCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: "+defaultConfigPath+")")
	cmd.Flags().String("log-level", "", "Logging verbosity (trace, debug, info, warn, error)")
	return cmd
}

// loginCommand implements the login command logic
func loginCommand(cmd *cobra.Command, args []string) error {
	url := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Login always wants a window, whatever the config says.
	sess, cleanup, err := openSession(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer cleanup()

	page, err := sess.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, url, cfg.NavTimeout); err != nil {
		log.LogWarn(fmt.Sprintf("navigation did not complete: %v", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Log in to the site in the browser window, then press Enter here to finish...\n")

	done := make(chan struct{})
	go func() {
		reader := bufio.NewReader(cmd.InOrStdin())
		reader.ReadString('\n')
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Session saved to profile %q.\n", cfg.Profile)
	return nil
}
