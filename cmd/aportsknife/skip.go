package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aportsknife/aportsknife/internal/aports"
	"github.com/aportsknife/aportsknife/internal/common/output"
)

var skipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Manage packages skipped by build",
	Long: `Manage the list of packages the build command leaves out.
Entries are written as repo/pkg, one per line.`,
}

var skipListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show skipped packages",
	Args:  cobra.NoArgs,
	Run:   runSkipList,
}

var skipAddCmd = &cobra.Command{
	Use:   "add <repo/pkg>...",
	Short: "Skip packages in subsequent builds",
	Args:  cobra.MinimumNArgs(1),
	Run:   runSkipAdd,
}

var skipRemoveCmd = &cobra.Command{
	Use:     "remove <repo/pkg>...",
	Aliases: []string{"rm"},
	Short:   "Build packages again",
	Args:    cobra.MinimumNArgs(1),
	Run:     runSkipRemove,
}

func init() {
	skipCmd.AddCommand(skipListCmd)
	skipCmd.AddCommand(skipAddCmd)
	skipCmd.AddCommand(skipRemoveCmd)
	rootCmd.AddCommand(skipCmd)
}

func loadSkipList() *aports.SkipList {
	loadConfig()

	paths, err := aports.NewDataPaths()
	if err != nil {
		fatal("resolving data directory: %v", err)
	}
	list, err := aports.LoadSkipList(paths.SkipList())
	if err != nil {
		fatal("%v", err)
	}
	return list
}

func runSkipList(cmd *cobra.Command, args []string) {
	list := loadSkipList()

	entries := list.Entries()
	if len(entries) == 0 {
		output.PrintInfo("No packages are skipped")
		return
	}
	for _, e := range entries {
		fmt.Println(e)
	}
}

func runSkipAdd(cmd *cobra.Command, args []string) {
	list := loadSkipList()

	for _, name := range args {
		added, err := list.Add(name)
		if err != nil {
			fatal("%v", err)
		}
		if added {
			output.PrintSuccess("%s will be skipped", name)
		} else {
			output.PrintInfo("%s is already skipped", name)
		}
	}
}

func runSkipRemove(cmd *cobra.Command, args []string) {
	list := loadSkipList()

	failed := false
	for _, name := range args {
		err := list.Remove(name)
		switch {
		case errors.Is(err, aports.ErrNotInSkipList):
			output.PrintWarning("%s is not in %s", name, list.Path())
			failed = true
		case err != nil:
			fatal("%v", err)
		default:
			output.PrintSuccess("%s will be built again", name)
		}
	}
	if failed {
		exit(1)
	}
}
