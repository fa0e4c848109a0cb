package cmd

import (
	"fmt"
	"os"

	"mod-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the running release, set at build time with
// -ldflags "-X mod-sync/cmd.Version=1.2.0".
var Version = "dev"

// configPath is the folder searched for config.yaml and .env.
var configPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "mod-sync",
	Short: "Game Mod Synchronizer",
	Long: `Mod Sync keeps a local mods folder identical to the set of mods a
dedicated game server requires. It downloads missing and outdated archives,
verifies their content hashes and can serve its state over HTTP.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We use "debug" level configuration to get ISO8601 timestamps (DevConfig) instead of Epoch (ProdConfig)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Folder containing config.yaml and .env")
}
