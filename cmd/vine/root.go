package main

import (
	"fmt"
	"os"

	"github.com/aretw0/vine/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "vine",
	Short:        "Vine hosts a live-reloadable Lua GUI script",
	SilenceUsage: true,
	Long: `Vine runs a Lua script every frame against an immediate-mode GUI,
reloading it atomically whenever the file changes on disk.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultFile, "Path to the vine config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig reads the config file and applies the flags shared by every
// command. A script argument overrides the configured script.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if len(args) > 0 {
		cfg.Script = args[0]
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if cmd.Flags().Lookup("entry") != nil && cmd.Flags().Changed("entry") {
		cfg.EntryPoint, _ = cmd.Flags().GetString("entry")
	}
	if cmd.Flags().Lookup("strict") != nil && cmd.Flags().Changed("strict") {
		cfg.StrictArgs, _ = cmd.Flags().GetBool("strict")
	}
	if cmd.Flags().Lookup("no-auto-reload") != nil {
		if off, _ := cmd.Flags().GetBool("no-auto-reload"); off {
			cfg.AutoReload = false
		}
	}
	return cfg, cfg.Validate()
}

// addHostFlags registers the flags that shape the hosted script.
func addHostFlags(cmd *cobra.Command) {
	cmd.Flags().String("entry", "", "Name of the global function called every frame")
	cmd.Flags().Bool("strict", false, "Raise script errors on bad capability arguments")
	cmd.Flags().Bool("no-auto-reload", false, "Start with auto-reload off (F5 still reloads)")
}
