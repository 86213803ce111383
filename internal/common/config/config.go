package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/aportsknife/aportsknife/internal/common/xdg"
)

var (
	ErrConfigNotFound       = errors.New("config file not found: run 'aportsknife init' first")
	ErrAportsPathNotSet     = errors.New("aports path is not configured")
	ErrAportsPathNotFound   = errors.New("aports path does not exist")
	ErrGitUserNotConfigured = errors.New("git user is not configured: set user.name and user.email in ~/.gitconfig or the [git] section of config.toml")
)

// RepositoryMarker is the file abuild rootbld reads the repository list from.
// Its presence marks a directory of the aports tree as a repository.
const RepositoryMarker = ".rootbld-repositories"

// Defaults applied to missing configuration values
const (
	DefaultBaseBranch   = "master"
	DefaultJobs         = 1
	DefaultUpstreamURL  = "https://release-monitoring.org"
	DefaultDistribution = "Alpine"
	DefaultCacheTTL     = 6 * time.Hour
)

// Config represents the application configuration
type Config struct {
	General  GeneralConfig  `toml:"general" yaml:"general"`
	Git      GitConfig      `toml:"git" yaml:"git"`
	Upstream UpstreamConfig `toml:"upstream" yaml:"upstream"`
}

// GeneralConfig holds the aports tree settings
type GeneralConfig struct {
	AportsPath string `toml:"aports_path" yaml:"aports_path"`
	BaseBranch string `toml:"base_branch" yaml:"base_branch"` // ref the modified selector diffs against
	Jobs       int    `toml:"jobs" yaml:"jobs"`               // parallel checksum and upstream workers
}

// GitConfig holds git user settings
type GitConfig struct {
	User  string `toml:"user" yaml:"user"`
	Email string `toml:"email" yaml:"email"`
}

// UpstreamConfig holds release-monitoring settings for the outdated check
type UpstreamConfig struct {
	URL          string `toml:"url" yaml:"url"`
	Distribution string `toml:"distribution" yaml:"distribution"`
	CacheTTL     string `toml:"cache_ttl" yaml:"cache_ttl"` // Go duration, e.g. "6h"
}

// New returns a configuration with every default filled in.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// ConfigPaths returns all possible config file paths in priority order
// 1. $XDG_CONFIG_HOME/aportsknife/config.toml
// 2. $XDG_CONFIG_HOME/aportsknife/config.yaml (legacy)
func ConfigPaths() ([]string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return nil, err
	}

	return []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "config.yaml"),
	}, nil
}

// DefaultConfigPath returns the path new configuration is written to
func DefaultConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// FindConfigPath returns the first existing config file path.
// The boolean is false, and the default path returned, when none exists.
func FindConfigPath() (string, bool, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", false, err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, true, nil
		}
	}

	return paths[0], false, nil
}

// Load reads configuration from the first available config file
func Load() (*Config, error) {
	configPath, exists, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrConfigNotFound
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path.
// Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.General.BaseBranch == "" {
		c.General.BaseBranch = DefaultBaseBranch
	}
	if c.General.Jobs < 1 {
		c.General.Jobs = DefaultJobs
	}
	if c.Upstream.URL == "" {
		c.Upstream.URL = DefaultUpstreamURL
	}
	if c.Upstream.Distribution == "" {
		c.Upstream.Distribution = DefaultDistribution
	}
}

// Save writes configuration to the default config file
func (c *Config) Save() error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo writes configuration as TOML to a specific file path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// CacheTTL returns the upstream cache lifetime, falling back to the default
// for empty, invalid or non-positive values.
func (c *Config) CacheTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Upstream.CacheTTL)
	if err != nil || ttl <= 0 {
		return DefaultCacheTTL
	}
	return ttl
}

// AportsPath returns the validated aports tree path
func (c *Config) AportsPath() (string, error) {
	if c.General.AportsPath == "" {
		return "", ErrAportsPathNotSet
	}

	path, err := xdg.ExpandHome(c.General.AportsPath)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrAportsPathNotFound, path)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrAportsPathNotFound, path)
	}

	if result := ValidateAportsStructure(path); !result.Valid {
		return "", &AportsValidationError{Path: path, Errors: result.Errors}
	}

	return path, nil
}

// GetGitUser returns the git user name and email.
// It first tries to read from ~/.gitconfig, then falls back to config.toml.
func (c *Config) GetGitUser() (user, email string, err error) {
	gitconfigPath, err := defaultGitconfigPath()
	if err == nil {
		user, email, err = parseGitconfig(gitconfigPath)
		if err == nil && user != "" && email != "" {
			return user, email, nil
		}
	}

	if c.Git.User != "" && c.Git.Email != "" {
		return c.Git.User, c.Git.Email, nil
	}

	return "", "", ErrGitUserNotConfigured
}

// defaultGitconfigPath returns the default gitconfig file path
func defaultGitconfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gitconfig"), nil
}

// parseGitconfig reads user.name and user.email from a gitconfig file.
func parseGitconfig(path string) (user, email string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	return ParseGitconfigContent(file)
}

// ParseGitconfigContent parses the [user] section of gitconfig (INI) content.
func ParseGitconfigContent(r io.Reader) (user, email string, err error) {
	scanner := bufio.NewScanner(r)
	inUserSection := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section := strings.ToLower(strings.Trim(line, "[]"))
			inUserSection = section == "user"
			continue
		}

		if !inUserSection {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			user = strings.TrimSpace(value)
		case "email":
			email = strings.TrimSpace(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return "", "", err
	}

	return user, email, nil
}

// AportsValidationResult contains aports tree validation results
type AportsValidationResult struct {
	Valid        bool     // True if the tree has at least one repository
	Repositories []string // Repository directory names found
	Errors       []string // Critical issues that prevent operation
}

// AportsValidationError represents an aports tree validation failure
type AportsValidationError struct {
	Path   string
	Errors []string
}

func (e *AportsValidationError) Error() string {
	msg := "aports validation failed for " + e.Path + ":"
	for _, err := range e.Errors {
		msg += "\n  - " + err
	}
	msg += "\n\nSuggestion: run 'aportsknife init' or point --aports at the root of an aports checkout"
	return msg
}

// IsRepositoryDir reports whether name, a child of root, is an aports
// repository: a visible directory without dots carrying RepositoryMarker.
func IsRepositoryDir(root, name string) bool {
	if name == "" || strings.Contains(name, ".") {
		return false
	}
	info, err := os.Stat(filepath.Join(root, name))
	if err != nil || !info.IsDir() {
		return false
	}
	marker, err := os.Stat(filepath.Join(root, name, RepositoryMarker))
	return err == nil && marker.Mode().IsRegular()
}

// ValidateAportsStructure checks if a path looks like the root of an aports tree.
func ValidateAportsStructure(path string) *AportsValidationResult {
	result := &AportsValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	for _, entry := range entries {
		if entry.IsDir() && IsRepositoryDir(path, entry.Name()) {
			result.Repositories = append(result.Repositories, entry.Name())
		}
	}

	if len(result.Repositories) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "no repository directories found (expected e.g. main/"+RepositoryMarker+")")
	}

	return result
}
