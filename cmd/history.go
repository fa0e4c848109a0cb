package cmd

import (
	"fmt"

	"mod-sync/core/history"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	historyMod   string
	historyLimit int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transfers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		var rows []history.Transfer
		if historyMod != "" {
			rows, err = a.ledger.ForMod(cmd.Context(), historyMod, historyLimit)
		} else {
			rows, err = a.ledger.Recent(cmd.Context(), historyLimit)
		}
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Transfer History"))
		for _, r := range rows {
			status := "complete"
			if !r.Success {
				status = "failed"
			}
			fmt.Printf("%s %s %-10s %8s  %s %s\n",
				statusStyle(status).Width(9).Render(status),
				nameStyle.Render(r.ModName),
				versionOrDash(r.Version),
				humanize.Bytes(uint64(r.Bytes)),
				mutedStyle.Render(humanize.Time(r.FinishedAt)),
				errorStyle.Render(r.Error),
			)
		}
		if len(rows) == 0 {
			fmt.Println(mutedStyle.Render("No transfers recorded."))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyMod, "mod", "", "Only show transfers of this mod")
	historyCmd.Flags().IntVar(&historyLimit, "limit", history.DefaultLimit, "Maximum number of rows")
}
