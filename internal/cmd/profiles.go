package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dstanley/viewport/internal/profile"
)

// NewProfilesCommand creates the profiles command group
func NewProfilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage stored browser profiles",
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: "+defaultConfigPath+")")

	cmd.AddCommand(newProfilesListCommand())
	cmd.AddCommand(newProfilesResetCommand())
	return cmd
}

func newProfilesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored browser profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			manager, err := profile.NewManager(cfg.ProfileDir)
			if err != nil {
				return err
			}
			profiles, err := manager.List()
			if err != nil {
				return err
			}

			if len(profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No profiles stored.")
				return nil
			}
			for _, p := range profiles {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %8.1f MB  %s\n", p.Name, p.SizeMB, p.Path)
			}
			return nil
		},
	}
}

func newProfilesResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <name>",
		Short: "Delete a profile's stored state (logins, cookies)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			manager, err := profile.NewManager(cfg.ProfileDir)
			if err != nil {
				return err
			}
			if err := manager.Reset(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile %q reset.\n", args[0])
			return nil
		},
	}
}
