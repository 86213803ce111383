package apkbuild

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DependencyVars lists the variables whose tokens are build or runtime
// dependencies, in the order abuild documents them.
var DependencyVars = []string{
	"depends",
	"depends_dev",
	"makedepends",
	"makedepends_build",
	"makedepends_host",
	"checkdepends",
}

// APKBUILD holds the top-level fields of a recipe. The file is read as text;
// nothing is executed.
type APKBUILD struct {
	Pkgname string
	Pkgver  string
	Pkgrel  string
	URL     string

	// Depends maps each dependency variable present in the file to its
	// whitespace-separated tokens, with $var references to earlier
	// top-level assignments expanded.
	Depends map[string][]string

	// Vars holds every top-level assignment with quotes removed and
	// references expanded.
	Vars map[string]string
}

// ParseFile reads and parses the APKBUILD at path
func ParseFile(path string) (*APKBUILD, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return a, nil
}

// Parse extracts the top-level assignments of an APKBUILD
func Parse(r io.Reader) (*APKBUILD, error) {
	a := &APKBUILD{
		Depends: make(map[string][]string),
		Vars:    make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		pending     string // variable whose quoted value is still open
		pendingQ    byte
		accumulated strings.Builder
	)

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if pending != "" {
			end := findClosingQuote(line, pendingQ)
			if end < 0 {
				accumulated.WriteString("\n")
				accumulated.WriteString(line)
				continue
			}
			accumulated.WriteString("\n")
			accumulated.WriteString(line[:end])
			a.set(pending, accumulated.String())
			pending = ""
			accumulated.Reset()
			continue
		}

		name, rest, ok := splitAssignment(line)
		if !ok {
			continue
		}

		v := scanValue(rest)
		if !v.closed {
			pending = name
			pendingQ = v.quote
			accumulated.WriteString(v.value)
			continue
		}
		a.set(name, v.value)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if pending != "" {
		return nil, fmt.Errorf("unterminated quote in %s", pending)
	}

	return a, nil
}

// set records an assignment. The first pkgver and pkgrel win, matching
// the lines SetPkgver rewrites.
func (a *APKBUILD) set(name, value string) {
	if name == "pkgver" || name == "pkgrel" {
		if _, seen := a.Vars[name]; seen {
			return
		}
	}
	a.Vars[name] = a.expand(value)

	switch name {
	case "pkgname":
		a.Pkgname = value
	case "pkgver":
		a.Pkgver = value
	case "pkgrel":
		a.Pkgrel = value
	case "url":
		a.URL = value
	}

	for _, dv := range DependencyVars {
		if name == dv {
			a.Depends[name] = strings.Fields(a.Vars[name])
			return
		}
	}
}

// expand substitutes $name and ${name} with previously assigned values.
// Unknown references and shell parameter operations are kept verbatim.
func (a *APKBUILD) expand(s string) string {
	return os.Expand(s, func(name string) string {
		if v, ok := a.Vars[name]; ok {
			return v
		}
		if isIdentifier(name) {
			return "$" + name
		}
		return "${" + name + "}"
	})
}

func isIdentifier(s string) bool {
	_, _, ok := splitAssignment(s + "=")
	return ok
}

// Dependencies returns the tokens of all dependency variables in
// DependencyVars order.
func (a *APKBUILD) Dependencies() []string {
	var deps []string
	for _, dv := range DependencyVars {
		deps = append(deps, a.Depends[dv]...)
	}
	return deps
}

// Version returns pkgver-rpkgrel, the version apk reports for the package
func (a *APKBUILD) Version() string {
	if a.Pkgrel == "" {
		return a.Pkgver
	}
	return a.Pkgver + "-r" + a.Pkgrel
}

// DependencyName reduces a dependency token to the package name it refers
// to. Conflict markers ("!foo") yield ok=false. Version constraints such as
// "foo>=1.2" and "foo~1" are dropped.
func DependencyName(token string) (name string, ok bool) {
	token = strings.TrimSpace(token)
	if token == "" || strings.HasPrefix(token, "!") {
		return "", false
	}
	if i := strings.IndexAny(token, "<>=~"); i >= 0 {
		token = token[:i]
	}
	if token == "" {
		return "", false
	}
	return token, true
}
