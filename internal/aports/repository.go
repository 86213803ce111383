// Package aports selects recipes in an aports tree and acts on them.
package aports

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aportsknife/aportsknife/internal/common/apkbuild"
	"github.com/aportsknife/aportsknife/internal/common/config"
)

// DefaultBuildRepositories are built when no repository is named
var DefaultBuildRepositories = []string{"main", "community", "testing"}

// Package is a directory holding an APKBUILD
type Package struct {
	Repository string // e.g., "community"
	Name       string // e.g., "kate"
	Dir        string // absolute package directory
	APKBUILD   string // absolute APKBUILD path

	once sync.Once
	info *apkbuild.APKBUILD
	err  error
}

// NewPackage describes the package directory repo/name under root
func NewPackage(root, repo, name string) *Package {
	dir := filepath.Join(root, repo, name)
	return &Package{
		Repository: repo,
		Name:       name,
		Dir:        dir,
		APKBUILD:   filepath.Join(dir, apkbuild.FileName),
	}
}

// LongName returns the repository/package format
func (p *Package) LongName() string {
	return p.Repository + "/" + p.Name
}

// Equal reports whether both packages refer to the same APKBUILD
func (p *Package) Equal(other *Package) bool {
	return other != nil && p.APKBUILD == other.APKBUILD
}

// Info parses the APKBUILD on first use. Safe for concurrent use.
func (p *Package) Info() (*apkbuild.APKBUILD, error) {
	p.once.Do(func() {
		p.info, p.err = apkbuild.ParseFile(p.APKBUILD)
	})
	return p.info, p.err
}

// Repository is a top-level directory of the tree carrying the
// repository marker
type Repository struct {
	Name     string
	Path     string
	Packages []*Package
}

// Equal compares repositories by name
func (r *Repository) Equal(other *Repository) bool {
	return other != nil && r.Name == other.Name
}

// withPackages returns a copy of r holding pkgs
func (r *Repository) withPackages(pkgs []*Package) *Repository {
	return &Repository{Name: r.Name, Path: r.Path, Packages: pkgs}
}

// RepositoryNotFoundError indicates that a requested repository does not exist
type RepositoryNotFoundError struct {
	Name string
}

func (e *RepositoryNotFoundError) Error() string {
	return fmt.Sprintf("repository not found: %s (expected a directory containing %s)", e.Name, config.RepositoryMarker)
}

// Discover returns the repositories of the tree at root with all of their
// packages, sorted by name. When names is non-empty only those
// repositories are returned, and each must exist.
func Discover(root string, names ...string) ([]*Repository, error) {
	if len(names) == 0 {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
				names = append(names, entry.Name())
			}
		}
	} else {
		for _, name := range names {
			if !config.IsRepositoryDir(root, name) {
				return nil, &RepositoryNotFoundError{Name: name}
			}
		}
	}

	seen := make(map[string]bool)
	var repos []*Repository
	for _, name := range names {
		if seen[name] || !config.IsRepositoryDir(root, name) {
			continue
		}
		seen[name] = true

		repo, err := scanRepository(root, name)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}

	sort.Slice(repos, func(i, j int) bool {
		return repos[i].Name < repos[j].Name
	})
	return repos, nil
}

// ExistingRepositories filters names down to repositories present under root
func ExistingRepositories(root string, names []string) []string {
	var existing []string
	for _, name := range names {
		if config.IsRepositoryDir(root, name) {
			existing = append(existing, name)
		}
	}
	return existing
}

// scanRepository lists every package directory of a repository.
// Only APKBUILDs directly inside the package directory count.
func scanRepository(root, name string) (*Repository, error) {
	repoPath := filepath.Join(root, name)
	entries, err := os.ReadDir(repoPath)
	if err != nil {
		return nil, err
	}

	repo := &Repository{Name: name, Path: repoPath}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		pkg := NewPackage(root, name, entry.Name())
		info, err := os.Stat(pkg.APKBUILD)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		repo.Packages = append(repo.Packages, pkg)
	}

	sort.Slice(repo.Packages, func(i, j int) bool {
		return repo.Packages[i].Name < repo.Packages[j].Name
	})
	return repo, nil
}

// Packages flattens repositories into a single list, repository order first
func Packages(repos []*Repository) []*Package {
	var pkgs []*Package
	for _, r := range repos {
		pkgs = append(pkgs, r.Packages...)
	}
	return pkgs
}

// CountPackages returns the number of packages across repositories
func CountPackages(repos []*Repository) int {
	n := 0
	for _, r := range repos {
		n += len(r.Packages)
	}
	return n
}
