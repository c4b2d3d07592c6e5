package main

import (
	"fmt"

	"github.com/aretw0/simflow/internal/cli"
	"github.com/aretw0/simflow/internal/config"
	"github.com/aretw0/simflow/internal/presentation/graph"
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/flowgraph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <form>",
	Short: "Export the flow of a block as a Mermaid diagram",
	Long: `Lays out the questions of a block in levels and prints a Mermaid
flowchart (graph TD). Without --block every block is printed.
With --session the answered and current questions are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blockID, _ := cmd.Flags().GetString("block")
		sessionID, _ := cmd.Flags().GetString("session")

		form, err := cli.LoadForm(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if sessionID != "" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Store == config.StoreMemory {
				cfg.Store = config.StoreFile
			}
			backend, err := cli.OpenBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer backend.Close()
			state, err := backend.Store.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session %q: %w", sessionID, err)
			}
			overlay = &graph.Overlay{Answered: state.AnsweredQuestions, Current: state.ActiveQuestion.QuestionID}
		}

		out := cmd.OutOrStdout()
		if blockID != "" {
			b, ok := form.Block(blockID)
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrBlockNotFound, blockID)
			}
			fmt.Fprint(out, graph.GenerateMermaid(flowgraph.Analyze(*b), overlay))
			return nil
		}
		for i, b := range form.Blocks {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%%%% block %s\n", b.ID)
			fmt.Fprint(out, graph.GenerateMermaid(flowgraph.Analyze(b), overlay))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("block", "", "Block to draw")
	graphCmd.Flags().String("session", "", "Session whose progress is highlighted")
}
