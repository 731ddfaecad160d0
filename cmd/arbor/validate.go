package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check the dialog files of a directory",
	Long: `Loads every dialog file, reports broken references and checks that
each entry point (service, profile, poll, feedback) has a dialog.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "dialogs"
		if len(args) > 0 {
			dir = args[0]
		}
		if err := cli.Validate(dir, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Dialogs are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
