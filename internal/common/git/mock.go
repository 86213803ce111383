package git

// MockGitRunner implements GitExecutor for testing.
// Each method can be configured with a custom function to control behavior.
type MockGitRunner struct {
	ChangedFilesFunc func(base string) ([]string, error)
	AddFunc          func(paths ...string) error
	CommitFunc       func(message, user, email string, paths ...string) error
	workDir          string
}

// NewMockGitRunner creates a new MockGitRunner with the specified working directory
func NewMockGitRunner(workDir string) *MockGitRunner {
	return &MockGitRunner{
		workDir: workDir,
	}
}

// ChangedFiles returns paths changed relative to base
func (m *MockGitRunner) ChangedFiles(base string) ([]string, error) {
	if m.ChangedFilesFunc != nil {
		return m.ChangedFilesFunc(base)
	}
	return nil, nil
}

// Add stages files for commit
func (m *MockGitRunner) Add(paths ...string) error {
	if m.AddFunc != nil {
		return m.AddFunc(paths...)
	}
	return nil
}

// Commit creates a git commit with the specified message and author
func (m *MockGitRunner) Commit(message, user, email string, paths ...string) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(message, user, email, paths...)
	}
	return nil
}

// WorkDir returns the working directory of the git repository
func (m *MockGitRunner) WorkDir() string {
	return m.workDir
}

// Ensure implementations satisfy GitExecutor
var (
	_ GitExecutor = (*MockGitRunner)(nil)
	_ GitExecutor = (*GitRunner)(nil)
)
