package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aportsknife/aportsknife/internal/aports"
	"github.com/aportsknife/aportsknife/internal/common/abuild"
	"github.com/aportsknife/aportsknife/internal/common/git"
	"github.com/aportsknife/aportsknife/internal/common/logger"
	"github.com/aportsknife/aportsknife/internal/common/output"
)

var (
	updateSelection  selectionFlags
	updateNoChecksum bool
	updateCommit     bool
	updateBuild      bool
	updateDryRun     bool
)

var updateCmd = &cobra.Command{
	Use:   "update <new-pkgver> [repo/pkg...]",
	Short: "Set pkgver of selected packages",
	Long: `Set pkgver of the selected packages to <new-pkgver> and reset pkgrel to 0.

At least one selector is required. Checksums are regenerated afterwards
unless --no-checksum is given.

Examples:
  aportsknife update 6.1.0 --from 6.0.3 --repo community
  aportsknife update 2.4.1 main/foo main/foo-plugins --commit`,
	Args: cobra.MinimumNArgs(1),
	Run:  runUpdate,
}

func init() {
	updateSelection.register(updateCmd, false)
	updateCmd.Flags().BoolVar(&updateNoChecksum, "no-checksum", false, "Do not run abuild checksum")
	updateCmd.Flags().BoolVar(&updateCommit, "commit", false, "Commit every updated package")
	updateCmd.Flags().BoolVar(&updateBuild, "build", false, "Build the updated packages")
	updateCmd.Flags().BoolVarP(&updateDryRun, "dry-run", "n", false, "Show what would change without writing")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	newVer, names := args[0], args[1:]
	if !updateSelection.hasSelector(names) {
		fatal("no packages selected: use --from, --dep, --modified or name packages explicitly")
	}
	sc := newSelectionContext(cfg, nil)

	repos, err := updateSelection.resolve(sc, names)
	if err != nil {
		fatal("%v", err)
	}
	if aports.CountPackages(repos) == 0 {
		output.PrintInfo("No packages matched")
		return
	}

	if updateDryRun {
		results, err := aports.UpdatePkgver(repos, newVer, aports.UpdateOptions{DryRun: true})
		if err != nil {
			fatal("%v", err)
		}
		printUpdatePlan(results)
		return
	}

	// git identity is checked before any file is touched
	var user, email string
	if updateCommit {
		user, email, err = cfg.GetGitUser()
		if err != nil {
			fatal("%v", err)
		}
	}

	fmt.Print("Updating pkgver ")
	results, err := aports.UpdatePkgver(repos, newVer, aports.UpdateOptions{Progress: os.Stdout})
	fmt.Println()
	if err != nil {
		fatal("%v", err)
	}

	changed := aports.Changed(results)
	output.PrintSuccess("Updated %d of %d packages", len(changed), len(results))
	if len(changed) == 0 {
		return
	}

	ctx, stop := signalContext()
	defer stop()

	if !updateNoChecksum {
		fmt.Print("Updating checksums ")
		err := aports.UpdateChecksums(ctx, abuild.NewRunner(), changed, cfg.General.Jobs, os.Stdout)
		fmt.Println()
		if err != nil {
			fatal("%v", err)
		}
	}

	if updateCommit {
		n, err := aports.CommitUpdates(git.NewGitRunner(sc.root), results, user, email)
		if err != nil {
			fatal("%v", err)
		}
		output.PrintSuccess("Created %d commits", n)
	}

	if updateBuild {
		code := buildSelected(ctx, sc.paths, aports.Regroup(repos, changed), aports.BuildOptions{})
		stop()
		exit(code)
	}
}

func printUpdatePlan(results []aports.UpdateResult) {
	for _, res := range results {
		name := output.FormatPackage(res.Package.Repository, res.Package.Name)
		if !res.Changed {
			fmt.Printf("%s %s\n", name, output.Sprint(output.Dim, "(already "+res.NewVer+")"))
			continue
		}
		fmt.Printf("%s %s → %s\n", name, res.OldVer, output.Sprint(output.Success, res.NewVer))
	}
	logger.Debug("dry run, nothing written")
}
