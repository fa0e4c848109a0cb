package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"mod-sync/core/reconcile"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var checkJSON bool

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the mods folder with the server",
	Long:  `Fetches the server's mod list, scans the mods folder and reports which mods are missing, outdated or up to date. Nothing is downloaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		plan, err := a.sync.Reconcile(cmd.Context())
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}

		if checkJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		}

		printPlan(plan)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the plan as JSON")
}

func printPlan(plan *reconcile.Plan) {
	fmt.Println(titleStyle.Render("Server Mods"))
	for _, r := range plan.Results {
		status := r.Status.String()
		local := mutedStyle.Render("not installed")
		if r.Local != nil {
			local = fmt.Sprintf("%s (%s)", versionOrDash(r.Local.Version), humanize.Bytes(uint64(r.Local.SizeBytes)))
		}
		fmt.Printf("%s %s %s -> %s  %s\n",
			statusStyle(status).Width(18).Render(status),
			nameStyle.Render(r.Remote.Name),
			local,
			versionOrDash(r.Remote.Version),
			mutedStyle.Render(string(r.Reason)),
		)
	}

	s := plan.Summary
	fmt.Println()
	fmt.Printf("%d mods: %s, %s, %s\n", s.Total,
		errorStyle.Render(fmt.Sprintf("%d missing", s.Missing)),
		warningStyle.Render(fmt.Sprintf("%d outdated", s.UpdateAvailable)),
		successStyle.Render(fmt.Sprintf("%d up to date", s.Latest)),
	)
	if len(plan.Pending) > 0 {
		fmt.Println(mutedStyle.Render("Run 'mod-sync download' to fetch pending mods."))
	}
}

func versionOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
