package aports

import (
	"context"
	"path/filepath"

	"github.com/aportsknife/aportsknife/internal/common/abuild"
	"github.com/aportsknife/aportsknife/internal/common/logger"
)

// SortRepository orders the packages of repo for building with
// `ap builddirs`. Packages the sorter leaves out are appended in their
// original order and returned as leftovers.
func SortRepository(ctx context.Context, executor abuild.Executor, repo *Repository) (*Repository, []*Package, error) {
	if len(repo.Packages) == 0 {
		return repo.withPackages(nil), nil, nil
	}

	names := make([]string, len(repo.Packages))
	byName := make(map[string]*Package, len(repo.Packages))
	for i, pkg := range repo.Packages {
		names[i] = pkg.Name
		byName[pkg.Name] = pkg
	}

	dirs, err := executor.BuildDirs(ctx, repo.Path, names)
	if err != nil {
		return nil, nil, err
	}

	placed := make(map[string]bool, len(names))
	sorted := make([]*Package, 0, len(names))
	for _, dir := range dirs {
		// Output lines are package directories
		name := filepath.Base(filepath.Clean(dir))
		pkg, ok := byName[name]
		if !ok || placed[name] {
			continue
		}
		placed[name] = true
		sorted = append(sorted, pkg)
	}

	var leftovers []*Package
	for _, pkg := range repo.Packages {
		if !placed[pkg.Name] {
			leftovers = append(leftovers, pkg)
			sorted = append(sorted, pkg)
		}
	}

	return repo.withPackages(sorted), leftovers, nil
}

// SortRepositories sorts every repository of a selection, logging a warning
// for packages the sorter did not return.
func SortRepositories(ctx context.Context, executor abuild.Executor, repos []*Repository) ([]*Repository, error) {
	sorted := make([]*Repository, 0, len(repos))
	for _, repo := range repos {
		r, leftovers, err := SortRepository(ctx, executor, repo)
		if err != nil {
			return nil, err
		}
		for _, pkg := range leftovers {
			logger.Warn("%s was not ordered by ap builddirs, building it last", pkg.LongName())
		}
		sorted = append(sorted, r)
	}
	return sorted, nil
}
