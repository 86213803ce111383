package aports

import (
	"github.com/aportsknife/aportsknife/internal/common/apkbuild"
	"github.com/aportsknife/aportsknife/internal/common/git"
	"github.com/aportsknife/aportsknife/internal/common/logger"
)

// Filter decides whether a package belongs to a selection
type Filter func(pkg *Package) (bool, error)

// Select applies f to every package and returns one repository per input
// repository (possibly empty) holding the packages that passed, in their
// original order.
func Select(repos []*Repository, f Filter) ([]*Repository, error) {
	selected := make([]*Repository, 0, len(repos))
	for _, repo := range repos {
		var pkgs []*Package
		for _, pkg := range repo.Packages {
			ok, err := f(pkg)
			if err != nil {
				return nil, err
			}
			if ok {
				pkgs = append(pkgs, pkg)
			}
		}
		selected = append(selected, repo.withPackages(pkgs))
	}
	return selected, nil
}

// All selects every package
func All() Filter {
	return func(*Package) (bool, error) {
		return true, nil
	}
}

// And selects packages passing every filter
func And(filters ...Filter) Filter {
	return func(pkg *Package) (bool, error) {
		for _, f := range filters {
			ok, err := f(pkg)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// parsed returns the recipe of pkg, or nil after logging a warning when it
// cannot be read. One broken recipe does not abort a scan of the tree.
func parsed(pkg *Package) *apkbuild.APKBUILD {
	info, err := pkg.Info()
	if err != nil {
		logger.Warn("skipping %s: %v", pkg.LongName(), err)
		return nil
	}
	return info
}

// WithPkgver selects packages whose top-level pkgver equals version exactly
func WithPkgver(version string) Filter {
	return func(pkg *Package) (bool, error) {
		info := parsed(pkg)
		return info != nil && info.Pkgver == version, nil
	}
}

// WithDep selects packages with a dependency matching pattern in any
// dependency variable
func WithDep(pattern string) (Filter, error) {
	m, err := NewDepMatcher(pattern)
	if err != nil {
		return nil, err
	}
	return func(pkg *Package) (bool, error) {
		info := parsed(pkg)
		return info != nil && m.MatchTokens(info.Dependencies()), nil
	}, nil
}

// Names selects packages by repository/package name
func Names(longNames []string) Filter {
	set := make(map[string]bool, len(longNames))
	for _, n := range longNames {
		set[n] = true
	}
	return func(pkg *Package) (bool, error) {
		return set[pkg.LongName()], nil
	}
}

// Modified selects packages whose APKBUILD differs from base, counting
// committed, staged and unstaged changes. Deleted recipes and files other
// than APKBUILDs are ignored.
func Modified(g git.GitExecutor, base string) (Filter, error) {
	files, err := g.ChangedFiles(base)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, f := range files {
		loc, err := apkbuild.ParsePath(f)
		if err != nil {
			continue
		}
		names = append(names, loc.LongName())
	}
	logger.Debug("%d changed APKBUILDs relative to %s", len(names), base)

	return Names(names), nil
}

// Failed selects the packages recorded as failed in a build report
func Failed(report *BuildReport) Filter {
	return Names(report.Failed())
}
