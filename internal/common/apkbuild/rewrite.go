package apkbuild

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrPkgverNotFound = errors.New("no top-level pkgver assignment")
	ErrEmptyVersion   = errors.New("version must not be empty")
)

// SetPkgver rewrites the top-level pkgver assignment to newVer and resets
// pkgrel to 0. Quoting and trailing comments are kept, and every other byte
// of content is preserved. When pkgver already equals newVer the content is
// returned unchanged with changed=false.
func SetPkgver(content []byte, newVer string) (out []byte, oldVer string, changed bool, err error) {
	if newVer == "" {
		return content, "", false, ErrEmptyVersion
	}

	lines := strings.SplitAfter(string(content), "\n")
	pkgverLine, pkgrelLine := -1, -1
	var pkgver rawValue

	var open byte
	for i, line := range lines {
		body, _ := splitEOL(line)

		if open != 0 {
			if findClosingQuote(body, open) >= 0 {
				open = 0
			}
			continue
		}

		name, rest, ok := splitAssignment(body)
		if !ok {
			continue
		}
		v := scanValue(rest)
		if !v.closed {
			open = v.quote
			continue
		}

		switch name {
		case "pkgver":
			if pkgverLine < 0 {
				pkgverLine = i
				pkgver = v
			}
		case "pkgrel":
			if pkgrelLine < 0 {
				pkgrelLine = i
			}
		}
	}

	if pkgverLine < 0 {
		return content, "", false, ErrPkgverNotFound
	}
	if pkgver.value == newVer {
		return content, pkgver.value, false, nil
	}

	lines[pkgverLine] = rewriteAssignment(lines[pkgverLine], newVer)
	if pkgrelLine >= 0 {
		lines[pkgrelLine] = rewriteAssignment(lines[pkgrelLine], "0")
	}

	return []byte(strings.Join(lines, "")), pkgver.value, true, nil
}

// rewriteAssignment replaces the value of a single-line assignment, keeping
// its quote style, trailing text and line terminator.
func rewriteAssignment(line, value string) string {
	body, eol := splitEOL(line)
	name, rest, _ := splitAssignment(body)
	v := scanValue(rest)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('=')
	if v.quote != 0 {
		b.WriteByte(v.quote)
	}
	b.WriteString(value)
	if v.quote != 0 {
		b.WriteByte(v.quote)
	}
	b.WriteString(v.tail)
	b.WriteString(eol)
	return b.String()
}

// UpdateFile applies SetPkgver to the APKBUILD at path. The file is replaced
// atomically and keeps its permissions; nothing is written when the version
// is already current.
func UpdateFile(path, newVer string) (oldVer string, changed bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}

	out, oldVer, changed, err := SetPkgver(content, newVer)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", path, err)
	}
	if !changed {
		return oldVer, false, nil
	}

	if err := WriteFileAtomic(path, out, info.Mode().Perm()); err != nil {
		return oldVer, false, err
	}
	return oldVer, true, nil
}

// WriteFileAtomic writes data to a temporary file in the target directory
// and renames it over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
