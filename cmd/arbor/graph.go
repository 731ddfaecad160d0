package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export a dialog as a Mermaid diagram",
	Long:  `Reads one dialog file and prints a Mermaid flowchart (graph TD) of its sequences and branches.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		localeFile, _ := cmd.Flags().GetString("locale")
		lang, _ := cmd.Flags().GetString("lang")
		out, err := cli.Graph(args[0], localeFile, lang)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("locale", "", "Locale catalog file (default: embedded)")
	graphCmd.Flags().String("lang", "", "Label nodes in this language instead of template keys")
}
