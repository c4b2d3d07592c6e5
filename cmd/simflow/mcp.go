package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/simflow"
	"github.com/aretw0/simflow/internal/cli"
	"github.com/aretw0/simflow/pkg/adapters/mcp"
	"github.com/aretw0/simflow/pkg/observability"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <form>",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes sessions of a form as MCP tools, so agents can fill it in.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		baseURL, _ := cmd.Flags().GetString("base-url")

		// Stdout carries JSON-RPC; keep every log on stderr.
		log.SetOutput(os.Stderr)
		logger := newLogger(cfg)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		backend, err := cli.OpenBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		form, err := cli.LoadForm(args[0])
		if err != nil {
			return err
		}
		engine, err := cli.NewEngine(form, backend, cfg, logger,
			simflow.WithLifecycleHooks(observability.LogHooks(logger)))
		if err != nil {
			return err
		}
		srv := mcp.NewServer(engine, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("starting MCP server (stdio)", "form", form.ID)
			return srv.ServeStdio()
		case "sse":
			if baseURL == "" {
				baseURL = "http://localhost" + addr
			}
			if err := srv.ServeSSE(ctx, addr, baseURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Listen address (only for SSE)")
	mcpCmd.Flags().String("base-url", "", "Public base URL announced to SSE clients")
}
