package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a dialog engine and Telegram service bot",
	Long: `Arbor runs branching question-and-answer dialogs defined in JSON or YAML
files. It serves them to Telegram users and can play, validate or draw them
locally.`,
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
	rootCmd.PersistentFlags().String("env", ".env", "Env file loaded before the process environment")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides ARBOR_LOG_LEVEL")
}

// commandLogger builds a Stderr logger from --log-level, falling back to def.
func commandLogger(cmd *cobra.Command, def string) (*slog.Logger, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	if raw == "" {
		raw = def
	}
	if raw == "" {
		return logging.NewNop(), nil
	}
	level, err := logging.ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}
