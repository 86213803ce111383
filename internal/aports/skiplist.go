package aports

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aportsknife/aportsknife/internal/common/apkbuild"
)

var (
	ErrNotInSkipList   = errors.New("package is not in the skip list")
	ErrInvalidLongName = errors.New("expected repository/package")
)

// SkipList is the set of packages the build action leaves out, stored one
// repository/package per line.
type SkipList struct {
	path    string
	entries []string
}

// LoadSkipList reads the skip list at path. A missing file is an empty list.
func LoadSkipList(path string) (*SkipList, error) {
	s := &SkipList{path: path}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !s.Contains(line) {
			s.entries = append(s.entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file
func (s *SkipList) Path() string {
	return s.path
}

// Entries returns the listed packages in file order
func (s *SkipList) Entries() []string {
	return append([]string(nil), s.entries...)
}

// Contains reports whether longName is listed
func (s *SkipList) Contains(longName string) bool {
	for _, e := range s.entries {
		if e == longName {
			return true
		}
	}
	return false
}

// ValidateLongName checks the repository/package format
func ValidateLongName(longName string) error {
	if _, err := apkbuild.ParsePath(longName + "/" + apkbuild.FileName); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLongName, longName)
	}
	return nil
}

// Add appends longName to the list and the file. Adding a listed package
// is a no-op and returns false.
func (s *SkipList) Add(longName string) (bool, error) {
	if err := ValidateLongName(longName); err != nil {
		return false, err
	}
	if s.Contains(longName) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return false, fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	if _, err := fmt.Fprintln(f, longName); err != nil {
		f.Close()
		return false, err
	}
	if err := f.Close(); err != nil {
		return false, err
	}

	s.entries = append(s.entries, longName)
	return true, nil
}

// Remove deletes longName from the list and rewrites the file
func (s *SkipList) Remove(longName string) error {
	idx := -1
	for i, e := range s.entries {
		if e == longName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotInSkipList, longName)
	}

	entries := append(append([]string(nil), s.entries[:idx]...), s.entries[idx+1:]...)

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	if err := apkbuild.WriteFileAtomic(s.path, []byte(b.String()), 0644); err != nil {
		return err
	}

	s.entries = entries
	return nil
}

// Filter splits a selection into packages to keep and packages listed in
// the skip list.
func (s *SkipList) Filter(repos []*Repository) (kept []*Repository, skipped []*Package) {
	kept, _ = Select(repos, func(pkg *Package) (bool, error) {
		if s.Contains(pkg.LongName()) {
			skipped = append(skipped, pkg)
			return false, nil
		}
		return true, nil
	})
	return kept, skipped
}
