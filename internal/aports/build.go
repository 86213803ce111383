package aports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aportsknife/aportsknife/internal/common/abuild"
	"github.com/aportsknife/aportsknife/internal/common/logger"
	"github.com/aportsknife/aportsknife/internal/common/output"
)

var ErrNothingToBuild = errors.New("no packages found to build")

// SkipQuestion is asked after a failed build
const SkipQuestion = "Do you want to skip this package while building next time?"

// BuildOptions controls failure handling of a build run
type BuildOptions struct {
	NoPrompt   bool // never ask about the skip list
	SkipFailed bool // add every failed package to the skip list
	FailFast   bool // stop at the first failure
}

// Builder builds selections with abuild rootbld in dependency order
type Builder struct {
	executor abuild.Executor
	paths    DataPaths
	skipList *SkipList
	prompter Prompter
	out      io.Writer
	opts     BuildOptions
	now      func() time.Time
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithPrompter sets how the skip question is answered
func WithPrompter(p Prompter) BuilderOption {
	return func(b *Builder) {
		b.prompter = p
	}
}

// WithOutput sets where progress is written
func WithOutput(w io.Writer) BuilderOption {
	return func(b *Builder) {
		b.out = w
	}
}

// WithBuildOptions sets the failure handling options
func WithBuildOptions(opts BuildOptions) BuilderOption {
	return func(b *Builder) {
		b.opts = opts
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder creates a Builder. Without WithPrompter the skip question is
// read from stdin.
func NewBuilder(executor abuild.Executor, paths DataPaths, skipList *SkipList, opts ...BuilderOption) *Builder {
	b := &Builder{
		executor: executor,
		paths:    paths,
		skipList: skipList,
		out:      os.Stdout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.prompter == nil {
		b.prompter = NewLinePrompter(os.Stdin, b.out)
	}
	return b
}

// Build removes skip-listed packages from repos, sorts each repository and
// builds every package. Failures are recorded and the run continues unless
// FailFast is set. The returned report covers every selected package, and
// is returned alongside a context error when the run is interrupted.
func (b *Builder) Build(ctx context.Context, repos []*Repository) (*BuildReport, error) {
	kept, skipped := b.skipList.Filter(repos)
	if CountPackages(kept) == 0 {
		return nil, ErrNothingToBuild
	}

	report := &BuildReport{StartedAt: b.now()}
	for _, pkg := range skipped {
		logger.Debug("skipping %s (skip list)", pkg.LongName())
		report.Packages = append(report.Packages, BuildEntry{Package: pkg.LongName(), Status: StatusSkipped})
	}

	sorted, err := SortRepositories(ctx, b.executor, kept)
	if err != nil {
		return nil, fmt.Errorf("failed to sort packages: %w", err)
	}

	var runErr error
	stopped := false
	for _, pkg := range Packages(sorted) {
		if stopped {
			report.Packages = append(report.Packages, BuildEntry{Package: pkg.LongName(), Status: StatusPending})
			continue
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			stopped = true
			report.Packages = append(report.Packages, BuildEntry{Package: pkg.LongName(), Status: StatusPending})
			continue
		}

		entry, err := b.buildPackage(ctx, pkg)
		report.Packages = append(report.Packages, entry)
		if err != nil {
			runErr = err
			stopped = true
			continue
		}
		if entry.Status == StatusFailed && b.opts.FailFast {
			stopped = true
		}
	}

	report.FinishedAt = b.now()
	return report, runErr
}

// buildPackage builds one package. The returned error is only set for
// failures that must abort the run (interruption, broken skip list).
func (b *Builder) buildPackage(ctx context.Context, pkg *Package) (BuildEntry, error) {
	entry := BuildEntry{Package: pkg.LongName()}

	fmt.Fprintf(b.out, "Building %s... ", pkg.LongName())
	start := b.now()
	buildLog, err := b.executor.Rootbld(ctx, pkg.Dir)
	entry.Duration = b.now().Sub(start)

	if err == nil {
		entry.Status = StatusBuilt
		output.Fprintf(b.out, output.Built, "Done!\n")
		return entry, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		entry.Status = StatusPending
		fmt.Fprintln(b.out)
		return entry, ctxErr
	}

	entry.Status = StatusFailed
	fmt.Fprintln(b.out)
	output.Fprintf(b.out, output.Failed, "Something went wrong while building %s\n", pkg.LongName())
	logger.Debug("abuild rootbld %s: %v", pkg.LongName(), err)

	if len(buildLog) == 0 {
		buildLog = []byte(err.Error() + "\n")
	}

	logPath := b.paths.BuildLog(pkg)
	if werr := writeBuildLog(logPath, buildLog); werr != nil {
		logger.Warn("failed to write build log for %s: %v", pkg.LongName(), werr)
	} else {
		entry.Log = logPath
		fmt.Fprintf(b.out, "The build log is written to %s\n", logPath)
	}

	skip, err := b.askSkip()
	if err != nil {
		return entry, err
	}
	if skip {
		if _, err := b.skipList.Add(pkg.LongName()); err != nil {
			return entry, fmt.Errorf("failed to update skip list: %w", err)
		}
		fmt.Fprintf(b.out, "\n%s will be skipped in subsequent runs\n", pkg.LongName())
		fmt.Fprintf(b.out, "If you don't want to skip it anymore, remove it from %s\n", b.skipList.Path())
	}

	return entry, nil
}

func (b *Builder) askSkip() (bool, error) {
	switch {
	case b.opts.SkipFailed:
		return true, nil
	case b.opts.NoPrompt:
		return false, nil
	}
	return b.prompter.Confirm(SkipQuestion)
}

func writeBuildLog(path string, log []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, log, 0644)
}
