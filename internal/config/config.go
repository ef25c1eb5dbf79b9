package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abramin/symmerge/internal/symbols"
)

// Walker kinds.
const (
	WalkerSnapshot = "snapshot"
	WalkerPackages = "packages"
)

var (
	ErrNoVersions        = errors.New("no versions configured")
	ErrDuplicateVersion  = errors.New("duplicate version key")
	ErrUnknownWalker     = errors.New("unknown walker")
	ErrMissingVersionKey = errors.New("version without key")
)

// Config represents the symmerge configuration.
type Config struct {
	Walker   string          `yaml:"walker"`
	Versions []VersionConfig `yaml:"versions"`
	Snapshot SnapshotConfig  `yaml:"snapshot"`
	Packages PackagesConfig  `yaml:"packages"`
	Exclude  ExcludeConfig   `yaml:"exclude"`
	Output   OutputConfig    `yaml:"output"`
	Workers  int             `yaml:"workers"`
}

// VersionConfig describes one supported version and how the walker builds it.
// The order of Versions in Config is the enumeration order.
type VersionConfig struct {
	Key string `yaml:"key"`
	// Dir overrides the snapshot directory, relative to Snapshot.Root.
	Dir string `yaml:"dir"`
	// Tags and Env are passed to the packages walker for this version.
	Tags []string `yaml:"tags"`
	Env  []string `yaml:"env"`
}

// SnapshotConfig locates per-version module dumps.
type SnapshotConfig struct {
	Root string `yaml:"root"`
}

// PackagesConfig configures the Go packages walker.
type PackagesConfig struct {
	Dir      string   `yaml:"dir"`
	Patterns []string `yaml:"patterns"`
}

// ExcludeConfig defines patterns to exclude from walking.
type ExcludeConfig struct {
	Dirs      []string `yaml:"dirs"`
	FilesGlob []string `yaml:"files_glob"`
}

// OutputConfig controls where merged results are written.
type OutputConfig struct {
	Dir  string `yaml:"dir"`
	JSON string `yaml:"json"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Walker: WalkerSnapshot,
		Versions: []VersionConfig{
			{Key: "27"},
			{Key: "35"},
			{Key: "36"},
			{Key: "37"},
			{Key: "38"},
			{Key: "39"},
		},
		Snapshot: SnapshotConfig{Root: "stubs"},
		Packages: PackagesConfig{Dir: ".", Patterns: []string{"./..."}},
		Exclude: ExcludeConfig{
			Dirs:      []string{"vendor", "testdata", "third_party"},
			FilesGlob: []string{"**/*_test.go", "**/.*"},
		},
		Output: OutputConfig{
			Dir:  ".",
			JSON: "merged.json",
		},
		Workers: runtime.NumCPU(),
	}
}

// Load reads configuration from file, falling back to defaults.
// If configPath is empty, it looks for symmerge.yaml in the current directory.
// Fields set in the file replace the matching defaults; the result is validated.
func Load(configPath string) (*Config, error) {
	defaults := Default()

	if configPath == "" {
		configPath = "symmerge.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return nil, err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configPath, err)
	}

	defaults.Merge(&fileCfg)
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", configPath, err)
	}
	return defaults, nil
}

// LoadFromDir loads configuration from the specified directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, "symmerge.yaml"))
}

// Merge combines another config into this one, with other taking precedence.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Walker != "" {
		c.Walker = other.Walker
	}
	if len(other.Versions) > 0 {
		c.Versions = other.Versions
	}
	if other.Snapshot.Root != "" {
		c.Snapshot.Root = other.Snapshot.Root
	}
	if other.Packages.Dir != "" {
		c.Packages.Dir = other.Packages.Dir
	}
	if len(other.Packages.Patterns) > 0 {
		c.Packages.Patterns = other.Packages.Patterns
	}
	if len(other.Exclude.Dirs) > 0 {
		c.Exclude.Dirs = other.Exclude.Dirs
	}
	if len(other.Exclude.FilesGlob) > 0 {
		c.Exclude.FilesGlob = other.Exclude.FilesGlob
	}
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if other.Output.JSON != "" {
		c.Output.JSON = other.Output.JSON
	}
	if other.Workers > 0 {
		c.Workers = other.Workers
	}
}

// Validate checks the version set and walker selection.
func (c *Config) Validate() error {
	if len(c.Versions) == 0 {
		return ErrNoVersions
	}
	seen := map[string]bool{}
	for i, v := range c.Versions {
		if v.Key == "" {
			return fmt.Errorf("%w at position %d", ErrMissingVersionKey, i)
		}
		if seen[v.Key] {
			return fmt.Errorf("%w: %s", ErrDuplicateVersion, v.Key)
		}
		seen[v.Key] = true
	}
	switch c.Walker {
	case WalkerSnapshot, WalkerPackages:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownWalker, c.Walker)
	}
	return nil
}

// VersionKeys returns the configured versions in enumeration order.
func (c *Config) VersionKeys() symbols.Versions {
	out := make(symbols.Versions, len(c.Versions))
	for i, v := range c.Versions {
		out[i] = symbols.Version(v.Key)
	}
	return out
}

// Version returns the configuration of one version, or nil.
func (c *Config) Version(v symbols.Version) *VersionConfig {
	for i := range c.Versions {
		if c.Versions[i].Key == string(v) {
			return &c.Versions[i]
		}
	}
	return nil
}

// IsExcludedDir checks if a directory should be excluded from walking.
func (c *Config) IsExcludedDir(dir string) bool {
	base := filepath.Base(dir)
	for _, excluded := range c.Exclude.Dirs {
		if base == excluded {
			return true
		}
	}
	return false
}

// IsExcludedFile checks a file path against the exclusion globs.
func (c *Config) IsExcludedFile(path string) bool {
	for _, pattern := range c.Exclude.FilesGlob {
		if MatchesGlob(path, pattern) {
			return true
		}
	}
	return false
}

// MatchesGlob performs a simplified glob match.
// A leading **/ matches the pattern against the end of the path.
func MatchesGlob(path, pattern string) bool {
	if strings.HasPrefix(pattern, "**/") {
		suffix := pattern[3:]
		if strings.HasPrefix(suffix, "*") || strings.HasPrefix(suffix, ".") {
			matched, _ := filepath.Match(suffix, filepath.Base(path))
			return matched
		}
		return strings.HasSuffix(path, suffix)
	}
	matched, _ := filepath.Match(pattern, filepath.Base(path))
	return matched
}
