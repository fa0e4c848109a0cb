package cmd

import (
	"fmt"

	"mod-sync/core/config"
	"mod-sync/core/logger"
	"mod-sync/core/selfupdate"

	"github.com/spf13/cobra"
)

// updateCheckCmd represents the update-check command
var updateCheckCmd = &cobra.Command{
	Use:   "update-check",
	Short: "Check whether a newer release is available",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		checker := selfupdate.NewChecker(selfupdate.NewClient(cfg.Update, nil), Version, 0, logg)
		res, err := checker.Check(cmd.Context())
		if err != nil {
			return fmt.Errorf("update check failed: %w", err)
		}

		if !res.Available {
			fmt.Println(successStyle.Render(fmt.Sprintf("You are running the latest release (%s).", res.Current)))
			return nil
		}
		fmt.Println(warningStyle.Render(fmt.Sprintf("Release %s is available (running %s).", res.Latest, res.Current)))
		if res.URL != "" {
			fmt.Println(mutedStyle.Render(res.URL))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(updateCheckCmd)
}
