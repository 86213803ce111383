package abuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	ErrToolNotFound = errors.New("required tool not found in PATH")
)

// CommandError reports a failed tool invocation together with its output
type CommandError struct {
	Command string
	Dir     string
	Output  []byte
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed in %s: %v", e.Command, e.Dir, e.Err)
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		lines := strings.Split(out, "\n")
		msg += ": " + lines[len(lines)-1]
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Runner executes abuild and ap from PATH
type Runner struct {
	abuild string
	ap     string
}

// Option configures a Runner
type Option func(*Runner)

// WithAbuild overrides the abuild executable
func WithAbuild(path string) Option {
	return func(r *Runner) {
		r.abuild = path
	}
}

// WithAp overrides the ap executable
func WithAp(path string) Option {
	return func(r *Runner) {
		r.ap = path
	}
}

// NewRunner creates a Runner using the tools found in PATH
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		abuild: "abuild",
		ap:     "ap",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LookPath verifies that every tool the runner needs can be executed
func (r *Runner) LookPath() error {
	for _, tool := range []string{r.abuild, r.ap} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%w: %s", ErrToolNotFound, tool)
		}
	}
	return nil
}

func (r *Runner) run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return out.Bytes(), &CommandError{
			Command: strings.Join(append([]string{filepath.Base(name)}, args...), " "),
			Dir:     dir,
			Output:  out.Bytes(),
			Err:     err,
		}
	}
	return out.Bytes(), nil
}

// Checksum regenerates the checksums of the APKBUILD in dir
func (r *Runner) Checksum(ctx context.Context, dir string) error {
	_, err := r.run(ctx, dir, r.abuild, "checksum")
	return err
}

// Rootbld builds the package in dir inside the abuild sandbox
func (r *Runner) Rootbld(ctx context.Context, dir string) ([]byte, error) {
	return r.run(ctx, dir, r.abuild, "rootbld")
}

// BuildDirs sorts package names of a repository into build order
func (r *Runner) BuildDirs(ctx context.Context, repoPath string, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	args := append([]string{"builddirs", "-d", repoPath}, names...)
	cmd := exec.CommandContext(ctx, r.ap, args...)
	cmd.Dir = repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &CommandError{
			Command: "ap builddirs",
			Dir:     repoPath,
			Output:  stderr.Bytes(),
			Err:     err,
		}
	}

	return ParseBuildDirs(stdout.String()), nil
}

// ParseBuildDirs splits sorter output into directory lines
func ParseBuildDirs(output string) []string {
	var dirs []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			dirs = append(dirs, line)
		}
	}
	return dirs
}
