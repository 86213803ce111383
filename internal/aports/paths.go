package aports

import (
	"path/filepath"

	"github.com/aportsknife/aportsknife/internal/common/xdg"
)

// Files kept in the data directory
const (
	SkipListFile = "skip_packages.txt"
	ReportFile   = "build-report.yaml"
	buildLogDir  = "build"
)

// DataPaths locates the persistent state under the data directory
type DataPaths struct {
	Root string
}

// NewDataPaths returns the paths under $XDG_DATA_HOME/aportsknife
func NewDataPaths() (DataPaths, error) {
	dir, err := xdg.DataDir()
	if err != nil {
		return DataPaths{}, err
	}
	return DataPaths{Root: dir}, nil
}

// SkipList returns the skip list path
func (d DataPaths) SkipList() string {
	return filepath.Join(d.Root, SkipListFile)
}

// Report returns the build report path
func (d DataPaths) Report() string {
	return filepath.Join(d.Root, ReportFile)
}

// BuildLog returns where the log of a failed build of pkg is written
func (d DataPaths) BuildLog(pkg *Package) string {
	return filepath.Join(d.Root, buildLogDir, pkg.Repository, pkg.Name)
}
