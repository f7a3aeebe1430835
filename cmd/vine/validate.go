package main

import (
	"github.com/aretw0/vine/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:          "validate [script]",
	Short:        "Check that a script loads",
	Long:         `Loads the script into a throwaway session and reports which callbacks it defines.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		report := cli.Validate(cmd.Context(), cfg.Script, cfg.EntryPoint, cfg.StrictArgs)
		return cli.PrintValidateReport(cmd.OutOrStdout(), report, cfg.EntryPoint)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addHostFlags(validateCmd)
}
