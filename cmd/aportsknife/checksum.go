package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aportsknife/aportsknife/internal/aports"
	"github.com/aportsknife/aportsknife/internal/common/abuild"
	"github.com/aportsknife/aportsknife/internal/common/output"
)

var checksumSelection selectionFlags

var checksumCmd = &cobra.Command{
	Use:   "checksum [repo/pkg...]",
	Short: "Regenerate checksums of selected packages",
	Long: `Run "abuild checksum" for every selected package, using up to
general.jobs parallel workers. At least one selector is required.`,
	Run: runChecksum,
}

func init() {
	checksumSelection.register(checksumCmd, true)
	rootCmd.AddCommand(checksumCmd)
}

func runChecksum(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if !checksumSelection.hasSelector(args) {
		fatal("no packages selected: use --from, --dep, --modified, --failed or name packages explicitly")
	}
	sc := newSelectionContext(cfg, nil)

	repos, err := checksumSelection.resolve(sc, args)
	if err != nil {
		fatal("%v", err)
	}
	pkgs := aports.Packages(repos)
	if len(pkgs) == 0 {
		output.PrintInfo("No packages matched")
		return
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Print("Updating checksums ")
	err = aports.UpdateChecksums(ctx, abuild.NewRunner(), pkgs, cfg.General.Jobs, os.Stdout)
	fmt.Println()
	if err != nil {
		fatal("%v", err)
	}
	output.PrintSuccess("Updated checksums of %d packages", len(pkgs))
}
