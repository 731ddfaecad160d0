package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/adapters/console"
	"github.com/aretw0/arbor/internal/cli"
)

var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "Walk through a dialog in the terminal",
	Long: `Plays one dialog file against the real engine. Type the number of a
button to press it, or type an answer for text and image steps. "quit" exits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := commandLogger(cmd, "")
		if err != nil {
			return err
		}
		entry, _ := cmd.Flags().GetString("entry")
		localeFile, _ := cmd.Flags().GetString("locale")
		lang, _ := cmd.Flags().GetString("lang")
		plain, _ := cmd.Flags().GetBool("plain")

		sig := cli.NewSignalContext(cmd.Context())
		defer sig.Cancel()

		return cli.RunPlay(sig, cli.PlayOptions{
			Path:       args[0],
			Entry:      entry,
			LocaleFile: localeFile,
			Lang:       lang,
			Plain:      plain || !console.Interactive(),
			Version:    arbor.Version,
			In:         cmd.InOrStdin(),
			Out:        cmd.OutOrStdout(),
			Logger:     logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("entry", "", "Entry point to play the file as (default: file name)")
	playCmd.Flags().String("locale", "", "Locale catalog file (default: embedded)")
	playCmd.Flags().String("lang", "en", "Language of the prompts")
	playCmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")
}
