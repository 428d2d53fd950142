// Package project loads nixbump.toml, the per-repository settings that name
// the tracked upstream and the files and commands an update touches.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/obentoo/nixbump/internal/common/github"
)

// FileName is the project file looked up in the repository root
const FileName = "nixbump.toml"

// Error variables for project file errors
var (
	// ErrUnknownKey is returned when the project file contains keys nixbump does not understand
	ErrUnknownKey = errors.New("unknown key in " + FileName)
	// ErrMissingField is returned when a required path is blank
	ErrMissingField = errors.New("missing required field")
)

// Project is the decoded form of nixbump.toml
type Project struct {
	// Upstream is the tracked GitHub repository in owner/repo form
	Upstream string        `toml:"upstream"`
	Record   RecordConfig  `toml:"record"`
	Install  InstallConfig `toml:"install"`
	Regen    RegenConfig   `toml:"regen"`
}

// RecordConfig describes the version record file
type RecordConfig struct {
	// Path is relative to the project root
	Path string `toml:"path"`
	// Metadata enables commit and hash resolution when the record is written
	Metadata bool `toml:"metadata"`
}

// InstallConfig describes the package install step run before an update
type InstallConfig struct {
	// Command is run in the project root; empty skips the step
	Command []string `toml:"command"`
}

// RegenConfig describes dependency regeneration
type RegenConfig struct {
	// Command replaces the builtin regenerator when set
	Command []string `toml:"command"`
	// SourceDir is an existing upstream checkout; empty clones the recorded rev
	SourceDir string `toml:"source_dir"`
	// CMakeDir is scanned for dependency declarations, relative to the source
	CMakeDir string `toml:"cmake_dir"`
	// DepFile and ShaFile are written relative to the project root
	DepFile string `toml:"dep_file"`
	ShaFile string `toml:"sha_file"`
	// Ignore lists cmake file names that are never scanned
	Ignore []string `toml:"ignore"`
}

// Default returns the settings used when nixbump.toml is absent
func Default() *Project {
	return &Project{
		Upstream: "apache/kvrocks",
		Record: RecordConfig{
			Path:     "ver.json",
			Metadata: true,
		},
		Regen: RegenConfig{
			CMakeDir: "cmake",
			DepFile:  "dep.json",
			ShaFile:  "sha.json",
			Ignore:   []string{"riscv64.cmake"},
		},
	}
}

// Load reads root/nixbump.toml, falling back to Default when it does not exist.
// Keys missing from the file keep their default values.
func Load(root string) (*Project, error) {
	path := filepath.Join(root, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	return Parse(string(data))
}

// Parse decodes project file content on top of the defaults and validates it
func Parse(content string) (*Project, error) {
	p := Default()

	meta, err := toml.Decode(content, p)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks the upstream identifier and required paths
func (p *Project) Validate() error {
	if _, _, err := github.ParseRepository(p.Upstream); err != nil {
		return fmt.Errorf("upstream: %w", err)
	}

	required := []struct {
		name  string
		value string
	}{
		{"record.path", p.Record.Path},
		{"regen.cmake_dir", p.Regen.CMakeDir},
		{"regen.dep_file", p.Regen.DepFile},
		{"regen.sha_file", p.Regen.ShaFile},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, field.name)
		}
	}

	return nil
}

// Owner returns the owner part of Upstream
func (p *Project) Owner() string {
	owner, _, _ := github.ParseRepository(p.Upstream)
	return owner
}

// Repo returns the repository part of Upstream
func (p *Project) Repo() string {
	_, repo, _ := github.ParseRepository(p.Upstream)
	return repo
}

// Resolve joins a project-relative path onto root, leaving absolute paths as-is
func Resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
