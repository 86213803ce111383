package git

// GitExecutor defines the interface for git operations.
// This interface allows for mocking git operations in tests.
type GitExecutor interface {
	// ChangedFiles returns paths that differ from base, either committed,
	// staged or unstaged. Deleted paths are omitted.
	ChangedFiles(base string) ([]string, error)

	// Add stages files for commit
	Add(paths ...string) error

	// Commit creates a git commit with the specified message and identity,
	// limited to paths when any are given
	Commit(message, user, email string, paths ...string) error

	// WorkDir returns the working directory of the git repository
	WorkDir() string
}
