package abuild

import "context"

// Executor runs the Alpine packaging tools. It is implemented by Runner
// and by MockRunner for testing.
type Executor interface {
	// Checksum runs `abuild checksum` in the package directory.
	Checksum(ctx context.Context, dir string) error

	// Rootbld runs `abuild rootbld` in the package directory and returns
	// the combined stdout and stderr of the build.
	Rootbld(ctx context.Context, dir string) ([]byte, error)

	// BuildDirs runs `ap builddirs -d repoPath names...` and returns the
	// package directories in build order, one per output line.
	BuildDirs(ctx context.Context, repoPath string, names []string) ([]string, error)
}
