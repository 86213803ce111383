package aports

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aportsknife/aportsknife/internal/common/apkbuild"
)

var ErrNoReport = errors.New("no build report found: run 'aportsknife build' first")

// BuildStatus is the outcome of one package in a build run
type BuildStatus string

const (
	StatusBuilt   BuildStatus = "built"
	StatusFailed  BuildStatus = "failed"
	StatusSkipped BuildStatus = "skipped" // listed in the skip list
	StatusPending BuildStatus = "pending" // not attempted (fail-fast or interrupted)
)

// BuildEntry records one package of a build run
type BuildEntry struct {
	Package  string        `yaml:"package"`
	Status   BuildStatus   `yaml:"status"`
	Log      string        `yaml:"log,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`
}

// BuildReport is persisted after every build run
type BuildReport struct {
	StartedAt  time.Time    `yaml:"started_at"`
	FinishedAt time.Time    `yaml:"finished_at"`
	Packages   []BuildEntry `yaml:"packages"`
}

// LoadReport reads the report at path
func LoadReport(path string) (*BuildReport, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, err
	}

	var r BuildReport
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse build report %s: %w", path, err)
	}
	return &r, nil
}

// Save writes the report to path atomically
func (r *BuildReport) Save(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode build report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return apkbuild.WriteFileAtomic(path, data, 0644)
}

// Failed returns the packages that failed to build
func (r *BuildReport) Failed() []string {
	var names []string
	for _, e := range r.Packages {
		if e.Status == StatusFailed {
			names = append(names, e.Package)
		}
	}
	return names
}

// Count returns how many packages ended with status
func (r *BuildReport) Count(status BuildStatus) int {
	n := 0
	for _, e := range r.Packages {
		if e.Status == status {
			n++
		}
	}
	return n
}
