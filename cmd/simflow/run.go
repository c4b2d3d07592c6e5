package main

import (
	"github.com/aretw0/simflow/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <form>",
	Short: "Answer a form interactively",
	Long: `Asks the questions of a form on the terminal, one at a time.

With --session the answers are saved after every step (in the file store
unless --store says otherwise) and running again with the same id resumes.
Type ':back' to return to the previous question, ':skip' to skip an optional
one and 'quit' to leave.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		jsonMode, _ := cmd.Flags().GetBool("json")
		debug, _ := cmd.Flags().GetBool("debug")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		_, err = cli.Run(ctx, cli.RunOptions{
			FormPath:  args[0],
			SessionID: sessionID,
			Fresh:     fresh,
			JSON:      jsonMode,
			Debug:     debug,
			Config:    cfg,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session id to persist and resume")
	runCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
	runCmd.Flags().Bool("json", false, "Exchange JSON lines instead of text")
	runCmd.Flags().Bool("debug", false, "Log engine events to stderr")
}
