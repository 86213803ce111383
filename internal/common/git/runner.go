package git

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrPathOutsideAports = errors.New("path is outside aports directory")
	ErrInvalidPath       = errors.New("invalid path")
	ErrGitCommand        = errors.New("git command failed")
	ErrEmptyBase         = errors.New("base ref must not be empty")
)

// GitRunner executes git commands in a specific working directory
type GitRunner struct {
	workDir string
}

// NewGitRunner creates a new GitRunner for the specified working directory
func NewGitRunner(workDir string) *GitRunner {
	return &GitRunner{
		workDir: workDir,
	}
}

// WorkDir returns the working directory of the GitRunner
func (g *GitRunner) WorkDir() string {
	return g.workDir
}

// runCommand executes a git command and returns stdout, stderr, and any error
func (g *GitRunner) runCommand(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.workDir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		if stderr != "" {
			err = errors.Join(ErrGitCommand, errors.New(strings.TrimSpace(stderr)))
		} else {
			err = errors.Join(ErrGitCommand, err)
		}
	}

	return stdout, stderr, err
}

// ChangedFiles returns the union of the index diff against base
// (committed and staged changes) and the worktree diff against the index
// (unstaged changes), in first-seen order.
func (g *GitRunner) ChangedFiles(base string) ([]string, error) {
	if base == "" {
		return nil, ErrEmptyBase
	}

	staged, _, err := g.runCommand("diff", "--name-only", "--diff-filter=d", "--cached", base, "--")
	if err != nil {
		return nil, err
	}

	unstaged, _, err := g.runCommand("diff", "--name-only", "--diff-filter=d", "--")
	if err != nil {
		return nil, err
	}

	return MergeNameLists(ParseNameOnly(staged), ParseNameOnly(unstaged)), nil
}

// ParseNameOnly parses `git diff --name-only` output into paths
func ParseNameOnly(output string) []string {
	var paths []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

// MergeNameLists concatenates path lists dropping duplicates, keeping the
// first occurrence of every path.
func MergeNameLists(lists ...[]string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, list := range lists {
		for _, path := range list {
			if seen[path] {
				continue
			}
			seen[path] = true
			merged = append(merged, path)
		}
	}
	return merged
}

// Add stages files for commit with path validation
func (g *GitRunner) Add(paths ...string) error {
	if len(paths) == 0 {
		_, _, err := g.runCommand("add", ".")
		return err
	}

	for _, path := range paths {
		if err := g.validateAndAddPath(path); err != nil {
			return err
		}
	}

	return nil
}

// validateAndAddPath validates a single path and adds it to staging
func (g *GitRunner) validateAndAddPath(path string) error {
	absPath := path
	if !filepath.IsAbs(path) {
		absPath = filepath.Join(g.workDir, path)
	}
	absPath = filepath.Clean(absPath)

	relPath, err := filepath.Rel(filepath.Clean(g.workDir), absPath)
	if err != nil {
		return errors.Join(ErrInvalidPath, err)
	}

	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return ErrPathOutsideAports
	}

	if _, err := os.Stat(absPath); err != nil {
		return ErrFileNotFound
	}

	// -A so removed files inside a package directory are staged too
	_, _, err = g.runCommand("add", "-A", "--", relPath)
	return err
}

// Commit creates a git commit with the specified message. A non-empty
// user and email become both author and committer. With paths, only
// those paths are committed and anything else staged stays in the index.
func (g *GitRunner) Commit(message, user, email string, paths ...string) error {
	var args []string
	if user != "" && email != "" {
		args = append(args, "-c", "user.name="+user, "-c", "user.email="+email)
	}
	args = append(args, "commit", "-m", message)

	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}

	_, _, err := g.runCommand(args...)
	return err
}
