package main

import (
	"fmt"

	"github.com/aretw0/simflow/internal/cli"
	"github.com/aretw0/simflow/internal/config"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, and remove sessions kept by the configured store (the file store by default).`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openSessionBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()
		return cli.ListSessions(cmd.Context(), backend.Store, cmd.OutOrStdout())
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the stored state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openSessionBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()
		return cli.InspectSession(cmd.Context(), backend.Store, args[0], cmd.OutOrStdout())
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openSessionBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		failed := 0
		for _, id := range args {
			if err := cli.RemoveSession(cmd.Context(), backend.Store, id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d sessions could not be removed", failed)
		}
		return nil
	},
}

// openSessionBackend uses the file store unless another persistent store is configured.
func openSessionBackend(cmd *cobra.Command) (*cli.Backend, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Store == config.StoreMemory {
		cfg.Store = config.StoreFile
	}
	return cli.OpenBackend(cmd.Context(), cfg)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
}
