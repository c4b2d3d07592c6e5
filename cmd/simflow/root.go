package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/simflow/internal/config"
	"github.com/aretw0/simflow/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "simflow",
	Short: "simflow runs branching questionnaires",
	Long: `simflow walks users through block-structured questionnaires whose next
question depends on their answers. Forms are YAML or JSON files.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("env", "", "Path of a .env file (default .env when present)")
	flags.String("store", "", "Session store: memory, file, redis or sqlite (env SIMFLOW_STORE)")
	flags.String("session-dir", "", "Directory of the file store (env SIMFLOW_SESSION_DIR)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (env SIMFLOW_LOG_LEVEL)")
	flags.String("log-format", "", "Log format: text or json (env SIMFLOW_LOG_FORMAT)")
}

// loadConfig reads the environment, then applies the flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var files []string
	if env, _ := cmd.Flags().GetString("env"); env != "" {
		files = append(files, env)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return cfg, err
	}

	for flag, dst := range map[string]*string{
		"store":       &cfg.Store,
		"session-dir": &cfg.SessionDir,
		"log-level":   &cfg.LogLevel,
		"log-format":  &cfg.LogFormat,
	} {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.LogLevel), logging.Format(cfg.LogFormat))
}
