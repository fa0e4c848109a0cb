package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"mod-sync/feature/integrity"

	"github.com/spf13/cobra"
)

var (
	fixFlag       bool
	integrityJSON bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the mods folder, cache, ledger and mirror for problems",
	Long: `Checks that the mods folder exists, finds partial downloads, validates the
inventory cache and the ledger schema and, when object storage is configured,
verifies the mirror bucket. Use --fix to repair what can be repaired.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		svc := integrity.NewService(a.integrityOptions(), a.logger)
		report := svc.CheckAll(cmd.Context(), fixFlag)

		if integrityJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			printIntegrity(report)
		}

		if !report.Healthy() {
			if !fixFlag {
				fmt.Println(mutedStyle.Render("Run with --fix to repair."))
			}
			return fmt.Errorf("integrity issues detected")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Repair detected issues")
	integrityCmd.Flags().BoolVar(&integrityJSON, "json", false, "Print the report as JSON")
}

func printIntegrity(report integrity.Report) {
	fmt.Println(titleStyle.Render("Integrity"))

	sections := make([]string, 0, len(report))
	for name := range report {
		sections = append(sections, name)
	}
	sort.Strings(sections)

	for _, name := range sections {
		res := report[name]
		detail := res.Error
		if detail == "" && res.Detail != nil {
			if b, err := json.Marshal(res.Detail); err == nil {
				detail = string(b)
			}
		}
		fmt.Printf("%s %s %s\n",
			statusStyle(res.Status).Width(10).Render(res.Status),
			nameStyle.Width(12).Render(name),
			mutedStyle.Render(detail),
		)
	}
}
