package main

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Starts the bot with the settings from the environment (ARBOR_*).
Updates arrive by long polling unless ARBOR_WEBHOOK_URL is set. Health,
metrics and the webhook are served on ARBOR_HTTP_ADDR.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env")
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Log.Level = lvl
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		logger := logging.New(level)
		if cfg.Log.File != "" {
			var closer io.Closer
			logger, closer = logging.NewRotating(level, cfg.Log.File)
			defer closer.Close()
		}

		sig := cli.NewSignalContext(context.Background())
		defer sig.Cancel()

		err = cli.RunServe(sig, cli.ServeOptions{
			Config:  cfg,
			Logger:  logger,
			Version: strings.TrimSpace(arbor.Version),
		})
		if s := sig.Signal(); s != nil {
			logger.Info("Stopped", "signal", s.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
