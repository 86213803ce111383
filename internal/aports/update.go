package aports

import (
	"fmt"
	"io"

	"github.com/aportsknife/aportsknife/internal/common/apkbuild"
	"github.com/aportsknife/aportsknife/internal/common/git"
	"github.com/aportsknife/aportsknife/internal/common/logger"
)

// UpdateResult describes the pkgver rewrite of one package
type UpdateResult struct {
	Package *Package
	OldVer  string
	NewVer  string
	Changed bool
}

// UpdateOptions configures UpdatePkgver
type UpdateOptions struct {
	// DryRun reports what would change without writing
	DryRun bool
	// Progress receives one dot per rewritten package
	Progress io.Writer
}

// UpdatePkgver sets pkgver to newVer and pkgrel to 0 in every selected
// package. It stops at the first recipe that cannot be rewritten.
func UpdatePkgver(repos []*Repository, newVer string, opts UpdateOptions) ([]UpdateResult, error) {
	if !apkbuild.ValidPkgver(newVer) {
		logger.Warn("%q does not look like a valid pkgver", newVer)
	}

	var results []UpdateResult
	for _, pkg := range Packages(repos) {
		res := UpdateResult{Package: pkg, NewVer: newVer}

		if opts.DryRun {
			info, err := pkg.Info()
			if err != nil {
				return results, fmt.Errorf("%s: %w", pkg.LongName(), err)
			}
			res.OldVer = info.Pkgver
			res.Changed = info.Pkgver != newVer
		} else {
			oldVer, changed, err := apkbuild.UpdateFile(pkg.APKBUILD, newVer)
			if err != nil {
				return results, fmt.Errorf("failed to update %s: %w", pkg.LongName(), err)
			}
			res.OldVer = oldVer
			res.Changed = changed
			if changed && opts.Progress != nil {
				fmt.Fprint(opts.Progress, ".")
			}
		}

		if !res.Changed {
			logger.Debug("%s already at %s", pkg.LongName(), newVer)
		}
		results = append(results, res)
	}
	return results, nil
}

// Changed returns the packages an update actually rewrote
func Changed(results []UpdateResult) []*Package {
	var pkgs []*Package
	for _, r := range results {
		if r.Changed {
			pkgs = append(pkgs, r.Package)
		}
	}
	return pkgs
}

// CommitMessage returns the Alpine-style message for a version bump
func CommitMessage(pkg *Package, newVer string) string {
	return fmt.Sprintf("%s: upgrade to %s", pkg.LongName(), newVer)
}

// CommitUpdates creates one commit per rewritten package. Each commit
// holds only the package directory.
func CommitUpdates(g git.GitExecutor, results []UpdateResult, user, email string) (int, error) {
	count := 0
	for _, r := range results {
		if !r.Changed {
			continue
		}
		if err := g.Add(r.Package.LongName()); err != nil {
			return count, fmt.Errorf("failed to stage %s: %w", r.Package.LongName(), err)
		}
		if err := g.Commit(CommitMessage(r.Package, r.NewVer), user, email, r.Package.LongName()); err != nil {
			return count, fmt.Errorf("failed to commit %s: %w", r.Package.LongName(), err)
		}
		logger.Info("committed %s", CommitMessage(r.Package, r.NewVer))
		count++
	}
	return count, nil
}

// Regroup rebuilds a repository selection from a package list, keeping
// the repositories of repos and their order.
func Regroup(repos []*Repository, pkgs []*Package) []*Repository {
	set := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		set[p.LongName()] = true
	}
	regrouped, _ := Select(repos, func(pkg *Package) (bool, error) {
		return set[pkg.LongName()], nil
	})
	return regrouped
}
