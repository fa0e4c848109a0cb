package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"mod-sync/core/mirror"
	"mod-sync/core/storage"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	pushAll    bool
	pushForce  bool
	pruneDry   bool
	yesConfirm bool
)

// mirrorCmd is the parent command for object-storage mirror operations.
var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Publish mods to an S3-compatible mirror bucket",
	Long: `Uploads the archives of the local mods folder to object storage so other
clients can download them with storage.enabled=true instead of from the game server.`,
}

// mirrorPushCmd uploads archives.
var mirrorPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the server's mods from the local mods folder",
	Long: `Uploads the archive of every mod the server lists. With --all, every archive
in the mods folder is uploaded. Objects with the same size are skipped unless --force is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		m, err := newMirror(a)
		if err != nil {
			return err
		}

		var names []string
		if !pushAll {
			if names, err = a.sync.ServerMods(ctx); err != nil {
				return err
			}
		}

		result, err := m.Push(ctx, a.sync.ModsFolder(), names, pushForce)
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s), %d skipped\n",
			successStyle.Render(fmt.Sprintf("%d uploaded", len(result.Uploaded))),
			humanize.Bytes(uint64(result.Bytes)),
			len(result.Skipped))
		for _, name := range result.Missing {
			fmt.Printf("%s %s\n", warningStyle.Render("not installed"), name)
		}
		for name, msg := range result.Failed {
			fmt.Printf("%s %s %s\n", errorStyle.Render("failed"), name, mutedStyle.Render(msg))
		}
		if len(result.Failed) > 0 {
			return fmt.Errorf("%d uploads failed", len(result.Failed))
		}
		return nil
	},
}

// mirrorPruneCmd removes archives the server no longer lists.
var mirrorPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete mirrored archives the server no longer lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		m, err := newMirror(a)
		if err != nil {
			return err
		}
		keep, err := a.sync.ServerMods(ctx)
		if err != nil {
			return err
		}

		stale, err := m.Prune(ctx, keep, true)
		if err != nil {
			return err
		}
		if len(stale) == 0 {
			fmt.Println(successStyle.Render("Mirror holds no stale archives."))
			return nil
		}
		for _, key := range stale {
			fmt.Println(warningStyle.Render("stale"), key)
		}
		if pruneDry || !confirmDestructiveAction() {
			fmt.Println(mutedStyle.Render("Nothing deleted."))
			return nil
		}

		removed, err := m.Prune(ctx, keep, false)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Deleted %d archives.", len(removed))))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(mirrorCmd)
	mirrorCmd.AddCommand(mirrorPushCmd, mirrorPruneCmd)

	mirrorPushCmd.Flags().BoolVar(&pushAll, "all", false, "Upload every archive in the mods folder")
	mirrorPushCmd.Flags().BoolVar(&pushForce, "force", false, "Upload even when the object already exists")
	mirrorPruneCmd.Flags().BoolVar(&pruneDry, "dry-run", false, "Only list stale archives")
	mirrorPruneCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm deletion (non-interactive)")
}

// newMirror connects to the configured bucket. Publishing does not require
// storage.enabled, which only switches the download source.
func newMirror(a *app) (*mirror.Mirror, error) {
	client := a.storage
	if client == nil {
		c, err := storage.NewClient(a.cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		client = c
	}
	s := a.cfg.Storage
	return mirror.New(client, s.Bucket, s.Prefix, s.Region, a.logger), nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("Type 'yes' to confirm deletion: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(strings.ToLower(response)) == "yes"
}
