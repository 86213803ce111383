package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aportsknife/aportsknife/internal/aports"
	"github.com/aportsknife/aportsknife/internal/common/abuild"
	"github.com/aportsknife/aportsknife/internal/common/logger"
	"github.com/aportsknife/aportsknife/internal/common/output"
)

var (
	buildSelection selectionFlags
	buildOpts      aports.BuildOptions
)

var buildCmd = &cobra.Command{
	Use:   "build [repo/pkg...]",
	Short: "Build selected packages with abuild rootbld",
	Long: `Build packages in dependency order with "abuild rootbld".

Without selectors every package of main, community and testing is built.
Packages listed in the skip list are left out. Failed builds write their
log to the data directory and offer to add the package to the skip list.
A report of the run is saved for "build --failed".`,
	Run: runBuild,
}

func init() {
	buildSelection.register(buildCmd, true)
	buildCmd.Flags().BoolVar(&buildOpts.NoPrompt, "no-prompt", false, "Never ask whether to skip failed packages")
	buildCmd.Flags().BoolVar(&buildOpts.SkipFailed, "skip-failed", false, "Add failed packages to the skip list without asking")
	buildCmd.Flags().BoolVar(&buildOpts.FailFast, "fail-fast", false, "Stop at the first failed package")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	sc := newSelectionContext(cfg, aports.DefaultBuildRepositories)

	repos, err := buildSelection.resolve(sc, args)
	if err != nil {
		fatal("%v", err)
	}

	ctx, stop := signalContext()
	code := buildSelected(ctx, sc.paths, repos, buildOpts)
	stop()
	exit(code)
}

// buildSelected builds repos, saves the report and prints the summary. It
// returns the process exit status: 1 when a package failed or the run was
// interrupted.
func buildSelected(ctx context.Context, paths aports.DataPaths, repos []*aports.Repository, opts aports.BuildOptions) int {
	runner := abuild.NewRunner()
	if err := runner.LookPath(); err != nil {
		logger.Error("%v", err)
		return 1
	}

	skipList, err := aports.LoadSkipList(paths.SkipList())
	if err != nil {
		logger.Error("%v", err)
		return 1
	}

	builder := aports.NewBuilder(runner, paths, skipList, aports.WithBuildOptions(opts))
	report, err := builder.Build(ctx, repos)
	if errors.Is(err, aports.ErrNothingToBuild) {
		fmt.Println("No packages found to build, exiting")
		return 0
	}
	if report == nil {
		logger.Error("%v", err)
		return 1
	}

	if saveErr := report.Save(paths.Report()); saveErr != nil {
		logger.Warn("failed to save build report: %v", saveErr)
	} else {
		logger.Debug("build report written to %s", paths.Report())
	}
	aports.PrintSummary(os.Stdout, report)

	if err != nil {
		logger.Error("build interrupted: %v", err)
		return 1
	}
	if failed := report.Count(aports.StatusFailed); failed > 0 {
		output.PrintWarning("%d package(s) failed, rebuild them with \"aportsknife build --failed\"", failed)
		return 1
	}
	return 0
}
