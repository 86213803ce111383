package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aportsknife/aportsknife/internal/aports"
	"github.com/aportsknife/aportsknife/internal/common/abuild"
	"github.com/aportsknife/aportsknife/internal/common/logger"
)

var (
	listSelection selectionFlags
	listPaths     bool
	listSort      bool
)

var listCmd = &cobra.Command{
	Use:   "list [repo/pkg...]",
	Short: "List selected packages",
	Long: `List packages of the aports tree grouped by repository.

Without selectors every package is listed. Selectors are combined, so
"--from 1.2 --repo community" lists community packages at pkgver 1.2.`,
	Run: runList,
}

func init() {
	listSelection.register(listCmd, true)
	listCmd.Flags().BoolVar(&listPaths, "paths", false, "Print package directories only")
	listCmd.Flags().BoolVar(&listSort, "sort", false, "Order packages by build dependencies (ap builddirs)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	sc := newSelectionContext(cfg, nil)

	repos, err := listSelection.resolve(sc, args)
	if err != nil {
		fatal("%v", err)
	}

	if listSort {
		ctx, stop := signalContext()
		defer stop()

		repos, err = aports.SortRepositories(ctx, abuild.NewRunner(), repos)
		if err != nil {
			fatal("failed to sort packages: %v", err)
		}
	}

	logger.Debug("selected %d packages", aports.CountPackages(repos))
	aports.PrintSelection(os.Stdout, repos, listPaths)
}
