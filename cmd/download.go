package cmd

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"mod-sync/core/transfer"
	"mod-sync/feature/modsync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download [mod...]",
	Short: "Download missing and outdated mods",
	Long: `Checks the mods folder against the server and downloads every mod that
is missing or outdated. With mod names, only those mods are downloaded,
whatever their status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.sync.Reconcile(ctx); err != nil {
			return fmt.Errorf("check failed: %w", err)
		}

		onProgress := func(p transfer.Progress) {
			if p.Phase.Terminal() || p.Phase == transfer.PhaseRetryFailed {
				a.logger.Info(p.Message, zap.String("mod", p.Name), zap.String("phase", string(p.Phase)))
			}
		}

		var reports []*modsync.TransferReport
		if len(args) == 0 {
			report, err := a.sync.DownloadPending(ctx, onProgress)
			if errors.Is(err, modsync.ErrNothingToDownload) {
				fmt.Println(successStyle.Render("All mods are up to date."))
				return nil
			}
			if err != nil {
				return err
			}
			reports = append(reports, report)
		} else {
			for _, name := range args {
				report, err := a.sync.DownloadOne(ctx, name, onProgress)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				reports = append(reports, report)
			}
		}

		return printReports(reports)
	},
}

func init() {
	RootCmd.AddCommand(downloadCmd)
}

func printReports(reports []*modsync.TransferReport) error {
	var (
		total, failed int
		bytes         int64
		elapsed       time.Duration
		errs          = map[string]string{}
	)
	for _, r := range reports {
		total += r.Total
		failed += r.Failed
		bytes += r.Bytes
		elapsed += r.Duration()
		for name, msg := range r.Errors {
			errs[name] = msg
		}
	}

	fmt.Println()
	fmt.Printf("%s of %d mods, %s in %s\n",
		successStyle.Render(fmt.Sprintf("Downloaded %d", total-failed)),
		total,
		humanize.Bytes(uint64(bytes)),
		elapsed.Round(time.Millisecond),
	)

	if failed == 0 {
		return nil
	}

	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s %s %s\n", errorStyle.Render("failed"), nameStyle.Render(name), mutedStyle.Render(errs[name]))
	}
	return fmt.Errorf("%d of %d downloads failed", failed, total)
}
