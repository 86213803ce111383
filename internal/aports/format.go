package aports

import (
	"fmt"
	"io"
	"time"

	"github.com/aportsknife/aportsknife/internal/common/output"
)

// PrintSelection writes a selection grouped by repository. With paths set
// only package directories are printed, one per line.
func PrintSelection(w io.Writer, repos []*Repository, paths bool) {
	for _, repo := range repos {
		if len(repo.Packages) == 0 {
			continue
		}
		if !paths {
			output.Fprintf(w, output.Repository, "%s", repo.Name)
			fmt.Fprintf(w, " (%d)\n", len(repo.Packages))
		}
		for _, pkg := range repo.Packages {
			if paths {
				fmt.Fprintln(w, pkg.Dir)
				continue
			}
			version := "?"
			if info, err := pkg.Info(); err == nil {
				version = info.Version()
			}
			fmt.Fprintf(w, "  %s %s\n", output.FormatPackage(pkg.Repository, pkg.Name), output.Sprint(output.Dim, version))
		}
	}
}

// PrintSummary writes per-status totals and the failed packages of a run
func PrintSummary(w io.Writer, report *BuildReport) {
	fmt.Fprintln(w)
	output.Fprintf(w, output.Header, "Build summary")
	fmt.Fprintf(w, " (%s)\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Second))

	for _, status := range []BuildStatus{StatusBuilt, StatusFailed, StatusSkipped, StatusPending} {
		if n := report.Count(status); n > 0 {
			fmt.Fprintf(w, "  %s %d\n", output.FormatState(string(status)), n)
		}
	}

	for _, e := range report.Packages {
		if e.Status != StatusFailed {
			continue
		}
		if e.Log != "" {
			fmt.Fprintf(w, "  %s %s\n", output.Sprint(output.Failed, e.Package), output.Sprint(output.Dim, e.Log))
		} else {
			fmt.Fprintf(w, "  %s\n", output.Sprint(output.Failed, e.Package))
		}
	}
}
