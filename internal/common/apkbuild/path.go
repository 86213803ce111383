package apkbuild

import (
	"errors"
	"regexp"
	"strings"
)

// FileName is the name of the build recipe inside every package directory.
const FileName = "APKBUILD"

var (
	ErrInvalidPath = errors.New("invalid APKBUILD path format")
)

// apkbuildPathRegex matches: repository/package/APKBUILD
// Repository names never contain a dot.
var apkbuildPathRegex = regexp.MustCompile(`^([^/.]+)/([^/]+)/APKBUILD$`)

// Location identifies a recipe inside the aports tree
type Location struct {
	Repository string // e.g., "community"
	Package    string // e.g., "kate"
}

// ParsePath parses a path relative to the aports root
// Expected format: repository/package/APKBUILD
func ParsePath(path string) (*Location, error) {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "./")

	matches := apkbuildPathRegex.FindStringSubmatch(path)
	if matches == nil {
		return nil, ErrInvalidPath
	}

	if strings.HasPrefix(matches[2], ".") {
		return nil, ErrInvalidPath
	}

	return &Location{
		Repository: matches[1],
		Package:    matches[2],
	}, nil
}

// LongName returns the repository/package format
func (l *Location) LongName() string {
	return l.Repository + "/" + l.Package
}

// String returns the relative recipe path: repository/package/APKBUILD
func (l *Location) String() string {
	return l.LongName() + "/" + FileName
}
