package main

import (
	"github.com/aretw0/vine/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Run a script with live reload",
	Long: `Starts the host with the given script (or the configured one) and drives
frames until interrupted. Type 'help' at the prompt for console commands.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("http") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("http")
		}
		if cmd.Flags().Changed("fps") {
			cfg.FPS, _ = cmd.Flags().GetInt("fps")
		}
		headless, _ := cmd.Flags().GetBool("headless")
		debug, _ := cmd.Flags().GetBool("debug")
		quiet, _ := cmd.Flags().GetBool("quiet")
		fresh, _ := cmd.Flags().GetBool("fresh")

		return cli.Run(cli.RunOptions{
			Config:   cfg,
			Headless: headless,
			Debug:    debug,
			Quiet:    quiet,
			Fresh:    fresh,
			Stdin:    cmd.InOrStdin(),
			Stdout:   cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addHostFlags(runCmd)

	runCmd.Flags().String("http", "", "Address for the HTTP control API (e.g. :8080)")
	runCmd.Flags().Int("fps", 0, "Frames per second")
	runCmd.Flags().Bool("headless", false, "Run without the console, stop on signals only")
	runCmd.Flags().Bool("debug", false, "Log reload and script error events")
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress logs and system messages")
	runCmd.Flags().Bool("fresh", false, "Ignore the stored snapshot")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Args = runCmd.Args
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
