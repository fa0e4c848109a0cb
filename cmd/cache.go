package cmd

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// cacheCmd is the parent command for inventory cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the inventory cache",
	Long:  `The inventory cache remembers the hash and version of every archive so unchanged files are not rehashed on each check.`,
}

// cacheShowCmd prints the cache entries.
var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List cached archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		store := a.sync.Cache()
		doc := store.Load()

		fmt.Println(titleStyle.Render("Inventory Cache"))
		fmt.Println(mutedStyle.Render(fmt.Sprintf("%s, updated %s", store.Path(), humanize.Time(doc.LastUpdated))))

		names := make([]string, 0, len(doc.Entries))
		for name := range doc.Entries {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			e := doc.Entries[name]
			hash := e.Hash
			if hash == "" {
				hash = "-"
			}
			fmt.Printf("%s %8s  %-10s %s %s\n",
				nameStyle.Render(name),
				humanize.Bytes(uint64(e.FileSize)),
				versionOrDash(e.Version),
				mutedStyle.Render(string(e.HashAlgorithm)),
				hash,
			)
		}
		fmt.Printf("\n%d entries\n", len(names))
		return nil
	},
}

// cacheClearCmd drops every cache entry.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached entry so the next check rehashes all archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		a.sync.Cache().Clear()
		fmt.Println(successStyle.Render("Inventory cache cleared."))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheShowCmd, cacheClearCmd)
}
