package main

import (
	"os"

	"github.com/aretw0/vine/internal/cli"
	"github.com/aretw0/vine/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var capsCmd = &cobra.Command{
	Use:     "caps",
	Aliases: []string{"capabilities"},
	Short:   "List the functions scripts can call",
	RunE: func(cmd *cobra.Command, args []string) error {
		render := tui.PlainRenderer
		if plain, _ := cmd.Flags().GetBool("plain"); !plain && term.IsTerminal(int(os.Stdout.Fd())) {
			if r, err := tui.NewRenderer(0); err == nil {
				render = r
			}
		}
		return cli.PrintCapabilities(cmd.OutOrStdout(), render)
	},
}

func init() {
	rootCmd.AddCommand(capsCmd)
	capsCmd.Flags().Bool("plain", false, "Print raw markdown")
}
