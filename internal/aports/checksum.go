package aports

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aportsknife/aportsknife/internal/common/abuild"
	"github.com/aportsknife/aportsknife/internal/common/logger"
)

// ChecksumError names the package whose checksums could not be updated
type ChecksumError struct {
	Package *Package
	Err     error
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("failed to update checksums of %s: %v\nrun \"abuild checksum\" in %s to determine the issue",
		e.Package.LongName(), e.Err, e.Package.Dir)
}

func (e *ChecksumError) Unwrap() error {
	return e.Err
}

// UpdateChecksums runs abuild checksum for every package with up to jobs
// concurrent workers. The first failure cancels the remaining work.
func UpdateChecksums(ctx context.Context, executor abuild.Executor, pkgs []*Package, jobs int, progress io.Writer) error {
	if jobs < 1 {
		jobs = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var mu sync.Mutex
	for _, pkg := range pkgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			logger.Debug("abuild checksum in %s", pkg.Dir)
			if err := executor.Checksum(ctx, pkg.Dir); err != nil {
				return &ChecksumError{Package: pkg, Err: err}
			}
			if progress != nil {
				mu.Lock()
				fmt.Fprint(progress, ".")
				mu.Unlock()
			}
			return nil
		})
	}

	return g.Wait()
}
