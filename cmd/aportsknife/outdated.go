package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aportsknife/aportsknife/internal/aports"
	"github.com/aportsknife/aportsknife/internal/common/logger"
	"github.com/aportsknife/aportsknife/internal/common/output"
	"github.com/aportsknife/aportsknife/internal/upstream"
)

var (
	outdatedSelection selectionFlags
	outdatedForce     bool
	outdatedAll       bool
)

var outdatedCmd = &cobra.Command{
	Use:   "outdated [repo/pkg...]",
	Short: "Compare selected packages with upstream releases",
	Long: `Look up the latest upstream release of the selected packages on the
release-monitoring service and print those with a newer version.

Answers are cached for upstream.cache_ttl; --force queries again.`,
	Run: runOutdated,
}

func init() {
	outdatedSelection.register(outdatedCmd, true)
	outdatedCmd.Flags().BoolVarP(&outdatedForce, "force", "f", false, "Ignore cached upstream versions")
	outdatedCmd.Flags().BoolVarP(&outdatedAll, "all", "a", false, "Also show up-to-date packages")
	rootCmd.AddCommand(outdatedCmd)
}

func runOutdated(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	sc := newSelectionContext(cfg, nil)

	repos, err := outdatedSelection.resolve(sc, args)
	if err != nil {
		fatal("%v", err)
	}
	pkgs := aports.Packages(repos)
	if len(pkgs) == 0 {
		output.PrintInfo("No packages matched")
		return
	}

	cacheDir, err := upstream.DefaultCacheDir()
	if err != nil {
		fatal("resolving cache directory: %v", err)
	}
	cache, err := upstream.NewCache(cacheDir, upstream.WithTTL(cfg.CacheTTL()))
	if err != nil {
		fatal("%v", err)
	}

	client := upstream.NewClient(cfg.Upstream.URL, cfg.Upstream.Distribution, upstream.NewRetryableHTTPClient())
	checker := upstream.NewChecker(client,
		upstream.WithCache(cache),
		upstream.WithJobs(cfg.General.Jobs),
		upstream.WithForce(outdatedForce),
	)

	ctx, stop := signalContext()
	defer stop()

	logger.Debug("checking %d packages against %s", len(pkgs), cfg.Upstream.URL)
	results, err := checker.Check(ctx, pkgs)
	if err != nil {
		fatal("%v", err)
	}

	n := printOutdated(os.Stdout, results, outdatedAll)
	if n == 0 && !outdatedAll {
		output.PrintSuccess("All %d packages are up to date", len(pkgs))
	}
}

// printOutdated writes one line per outdated package, and per up-to-date
// package when all is set. Lookup failures are only logged. It returns the
// number of outdated packages.
func printOutdated(w io.Writer, results []upstream.Result, all bool) int {
	outdated := 0
	for _, res := range results {
		name := output.FormatPackage(res.Package.Repository, res.Package.Name)
		switch {
		case errors.Is(res.Err, upstream.ErrNotTracked):
			logger.Debug("%s: not tracked upstream", res.Package.LongName())
		case res.Err != nil:
			logger.Warn("%s: %v", res.Package.LongName(), res.Err)
		case res.Outdated:
			outdated++
			fmt.Fprintf(w, "%s %s → %s\n", name, res.Current, output.Sprint(output.Success, res.Upstream))
		case all:
			fmt.Fprintf(w, "%s %s\n", name, output.Sprint(output.Dim, res.Current))
		}
	}
	return outdated
}
