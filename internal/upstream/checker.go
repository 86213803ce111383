package upstream

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aportsknife/aportsknife/internal/aports"
	"github.com/aportsknife/aportsknife/internal/common/apkbuild"
	"github.com/aportsknife/aportsknife/internal/common/logger"
)

// VersionSource looks up the newest upstream version of a package name
type VersionSource interface {
	LatestVersion(ctx context.Context, name string) (string, error)
	QueryURL(name string) string
}

// Result is the outcome of checking one package
type Result struct {
	Package   *aports.Package
	Current   string // pkgver in the tree
	Upstream  string
	Outdated  bool // upstream is newer than Current
	FromCache bool
	Err       error
}

// Checker compares packages with their upstream versions
type Checker struct {
	source VersionSource
	cache  *Cache
	jobs   int
	force  bool
}

// CheckerOption is a functional option for configuring Checker
type CheckerOption func(*Checker)

// WithCache enables the on-disk cache
func WithCache(cache *Cache) CheckerOption {
	return func(c *Checker) {
		c.cache = cache
	}
}

// WithJobs sets the number of concurrent lookups
func WithJobs(n int) CheckerOption {
	return func(c *Checker) {
		c.jobs = n
	}
}

// WithForce bypasses cached versions; fresh results are still stored
func WithForce(force bool) CheckerOption {
	return func(c *Checker) {
		c.force = force
	}
}

// NewChecker creates a Checker querying source
func NewChecker(source VersionSource, opts ...CheckerOption) *Checker {
	c := &Checker{source: source, jobs: 1}
	for _, opt := range opts {
		opt(c)
	}
	if c.jobs < 1 {
		c.jobs = 1
	}
	return c
}

// Check looks up every package and returns one result per package in
// input order. Lookup failures are reported per result; only cancellation
// aborts the run.
func (c *Checker) Check(ctx context.Context, pkgs []*aports.Package) ([]Result, error) {
	results := make([]Result, len(pkgs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs)

	for i, pkg := range pkgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.checkOne(ctx, pkg)
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (c *Checker) checkOne(ctx context.Context, pkg *aports.Package) Result {
	res := Result{Package: pkg}

	info, err := pkg.Info()
	if err != nil {
		res.Err = err
		return res
	}
	res.Current = info.Pkgver

	name := info.Pkgname
	if name == "" {
		name = pkg.Name
	}

	if c.cache != nil && !c.force {
		if v, ok := c.cache.Get(name); ok {
			res.Upstream = v
			res.FromCache = true
		}
	}

	if !res.FromCache {
		v, err := c.source.LatestVersion(ctx, name)
		if err != nil {
			res.Err = err
			return res
		}
		res.Upstream = v
		if c.cache != nil {
			if err := c.cache.Set(name, v, c.source.QueryURL(name)); err != nil {
				logger.Warn("failed to update upstream cache: %v", err)
			}
		}
	}

	res.Outdated = apkbuild.CompareVersions(NormalizeVersion(res.Upstream), res.Current) > 0
	return res
}

// preReleaseRegex matches upstream pre-release spellings such as
// "2.0-beta1", "2.0.rc.2" or "2.0RC3"
var preReleaseRegex = regexp.MustCompile(`([0-9])[-.]?(alpha|beta|pre|rc)[-.]?([0-9]*)`)

// NormalizeVersion rewrites an upstream version into apk syntax: a "v"
// prefix is stripped and pre-release markers become _alpha, _beta, _pre
// or _rc suffixes.
func NormalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 1 && (v[0] == 'v' || v[0] == 'V') && v[1] >= '0' && v[1] <= '9' {
		v = v[1:]
	}
	return preReleaseRegex.ReplaceAllString(strings.ToLower(v), "${1}_${2}${3}")
}
