package regen

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/obentoo/nixbump/internal/common/logger"
)

// Dependency is a third-party source declared by the upstream build
type Dependency struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Rev   string `json:"rev"`
}

// DepManifest maps a dependency key (cmake file stem) to its declaration
type DepManifest map[string]Dependency

// Declarations are tried in order; the first pattern that matches wins
var declPatterns = []*regexp.Regexp{
	regexp.MustCompile(`FetchContent_DeclareGitHubWithMirror\s*\(\s*(\S+)\s+([\w.-]+)/([\w.-]+)\s+([\w.-]+)`),
	regexp.MustCompile(`FetchContent_DeclareGitHubTarWithMirror\s*\(\s*(\S+)\s+([\w.-]+)/([\w.-]+)\s+([\w.-]+)`),
}

// ParseCMake extracts the GitHub dependency declared in a cmake module
func ParseCMake(content string) (Dependency, bool) {
	for _, pattern := range declPatterns {
		if m := pattern.FindStringSubmatch(content); m != nil {
			return Dependency{Owner: m[2], Repo: m[3], Rev: m[4]}, true
		}
	}
	return Dependency{}, false
}

// ScanCMakeDir parses every *.cmake file in dir except the ignored names
func ScanCMakeDir(dir string, ignore []string) (DepManifest, error) {
	skip := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		skip[name] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cmake directory: %w", err)
	}

	logger.Info("Scanning %s...", dir)

	deps := make(DepManifest)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".cmake") || skip[name] {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		dep, ok := ParseCMake(string(data))
		if !ok {
			continue
		}

		key := strings.TrimSuffix(name, ".cmake")
		logger.Info("  -> Found %s", key)
		deps[key] = dep
	}

	return deps, nil
}
