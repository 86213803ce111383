package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aportsknife/aportsknife/internal/aports"
	"github.com/aportsknife/aportsknife/internal/common/config"
	"github.com/aportsknife/aportsknife/internal/common/git"
)

// selectionFlags are the package selectors shared by list, update,
// checksum, build and outdated.
type selectionFlags struct {
	from     string
	dep      string
	modified bool
	failed   bool
	repos    []string
}

func (s *selectionFlags) register(cmd *cobra.Command, withFailed bool) {
	cmd.Flags().StringVar(&s.from, "from", "", "Select packages whose pkgver equals this version")
	cmd.Flags().StringVar(&s.dep, "dep", "", "Select packages with a dependency matching this glob")
	cmd.Flags().BoolVar(&s.modified, "modified", false, "Select APKBUILDs changed against the base branch")
	cmd.Flags().StringArrayVar(&s.repos, "repo", nil, "Restrict selection to a repository (repeatable)")
	if withFailed {
		cmd.Flags().BoolVar(&s.failed, "failed", false, "Select packages that failed in the last build")
	}
}

// hasSelector reports whether any criterion narrows the selection
func (s *selectionFlags) hasSelector(args []string) bool {
	return s.from != "" || s.dep != "" || s.modified || s.failed || len(args) > 0
}

// selectionContext carries what resolving a selection needs besides flags
type selectionContext struct {
	root       string
	baseBranch string
	paths      aports.DataPaths
	git        git.GitExecutor
	// defaultRepos restricts discovery when neither --repo nor any
	// selector is given; nil means every repository.
	defaultRepos []string
}

// resolve discovers the repositories and applies every selector, ANDed
func (s *selectionFlags) resolve(sc selectionContext, args []string) ([]*aports.Repository, error) {
	repoNames := s.repos
	if len(repoNames) == 0 && len(sc.defaultRepos) > 0 && !s.hasSelector(args) {
		repoNames = aports.ExistingRepositories(sc.root, sc.defaultRepos)
		if len(repoNames) == 0 {
			return nil, fmt.Errorf("none of the repositories %s exist in %s",
				strings.Join(sc.defaultRepos, ", "), sc.root)
		}
	}

	repos, err := aports.Discover(sc.root, repoNames...)
	if err != nil {
		return nil, err
	}

	filter, err := s.filter(sc, args)
	if err != nil {
		return nil, err
	}
	return aports.Select(repos, filter)
}

func (s *selectionFlags) filter(sc selectionContext, args []string) (aports.Filter, error) {
	var filters []aports.Filter

	if s.from != "" {
		filters = append(filters, aports.WithPkgver(s.from))
	}
	if s.dep != "" {
		f, err := aports.WithDep(s.dep)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	if s.modified {
		g := sc.git
		if g == nil {
			g = git.NewGitRunner(sc.root)
		}
		f, err := aports.Modified(g, sc.baseBranch)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	if s.failed {
		report, err := aports.LoadReport(sc.paths.Report())
		if err != nil {
			return nil, err
		}
		filters = append(filters, aports.Failed(report))
	}
	if len(args) > 0 {
		for _, name := range args {
			if err := aports.ValidateLongName(name); err != nil {
				return nil, err
			}
		}
		filters = append(filters, aports.Names(args))
	}

	if len(filters) == 0 {
		return aports.All(), nil
	}
	return aports.And(filters...), nil
}

// newSelectionContext builds the selection context for the configured tree,
// exiting on configuration errors.
func newSelectionContext(cfg *config.Config, defaultRepos []string) selectionContext {
	root, err := aportsRoot(cfg)
	if err != nil {
		fatal("%v", err)
	}

	paths, err := aports.NewDataPaths()
	if err != nil {
		fatal("resolving data directory: %v", err)
	}

	return selectionContext{
		root:         root,
		baseBranch:   cfg.General.BaseBranch,
		paths:        paths,
		defaultRepos: defaultRepos,
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
