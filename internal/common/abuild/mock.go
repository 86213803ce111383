package abuild

import "context"

// MockRunner implements Executor for testing.
// Each method can be configured with a custom function to control behavior.
type MockRunner struct {
	ChecksumFunc  func(ctx context.Context, dir string) error
	RootbldFunc   func(ctx context.Context, dir string) ([]byte, error)
	BuildDirsFunc func(ctx context.Context, repoPath string, names []string) ([]string, error)
}

// Checksum regenerates checksums
func (m *MockRunner) Checksum(ctx context.Context, dir string) error {
	if m.ChecksumFunc != nil {
		return m.ChecksumFunc(ctx, dir)
	}
	return nil
}

// Rootbld builds a package
func (m *MockRunner) Rootbld(ctx context.Context, dir string) ([]byte, error) {
	if m.RootbldFunc != nil {
		return m.RootbldFunc(ctx, dir)
	}
	return nil, nil
}

// BuildDirs returns names unchanged unless configured otherwise
func (m *MockRunner) BuildDirs(ctx context.Context, repoPath string, names []string) ([]string, error) {
	if m.BuildDirsFunc != nil {
		return m.BuildDirsFunc(ctx, repoPath, names)
	}
	return names, nil
}

// Ensure MockRunner and Runner implement Executor
var (
	_ Executor = (*MockRunner)(nil)
	_ Executor = (*Runner)(nil)
)
