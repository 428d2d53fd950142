// Package regen rebuilds the dependency manifests (dep.json and sha.json)
// from the upstream source tree pinned by the version record.
package regen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/obentoo/nixbump/internal/common/git"
	"github.com/obentoo/nixbump/internal/common/github"
	"github.com/obentoo/nixbump/internal/common/logger"
	"github.com/obentoo/nixbump/internal/common/nix"
	"github.com/obentoo/nixbump/internal/common/shell"
	"github.com/obentoo/nixbump/internal/project"
	"github.com/obentoo/nixbump/internal/record"
)

// ErrSourceUnavailable is returned when the upstream source tree cannot be obtained
var ErrSourceUnavailable = errors.New("upstream source unavailable")

// Regenerator recomputes dependency manifests from the version record in root
type Regenerator interface {
	Regenerate(ctx context.Context, root string) error
}

// Pin is a dependency resolved to an exact commit and content hash
type Pin struct {
	Commit string `json:"commit"`
	Hash   string `json:"hash"`
	Rev    string `json:"rev"`
}

// ShaManifest maps a dependency key to its pin
type ShaManifest map[string]Pin

// Result summarises a builtin regeneration run
type Result struct {
	Rev     string
	Deps    int
	Reused  []string
	Fetched []string
	Failed  []string
}

// New returns the configured regenerator: an external command when one is set, else the builtin
func New(p *project.Project, gitExec git.GitExecutor, prefetcher nix.Prefetcher, runner shell.Runner) Regenerator {
	if len(p.Regen.Command) > 0 {
		return &Command{Argv: p.Regen.Command, Runner: runner}
	}
	return &Builtin{Project: p, Git: gitExec, Prefetcher: prefetcher}
}

// Command runs an external regeneration script in the project root
type Command struct {
	Argv   []string
	Runner shell.Runner
}

// Regenerate runs the script; its output is logged at debug level
func (c *Command) Regenerate(ctx context.Context, root string) error {
	out, err := c.Runner.Run(ctx, root, c.Argv...)
	if out != "" {
		logger.Debug("%s", out)
	}
	return err
}

// Builtin scans the upstream cmake modules and pins each declared dependency
type Builtin struct {
	Project    *project.Project
	Git        git.GitExecutor
	Prefetcher nix.Prefetcher
}

// Regenerate implements Regenerator
func (b *Builtin) Regenerate(ctx context.Context, root string) error {
	_, err := b.Run(ctx, root)
	return err
}

// Run regenerates dep.json and sha.json under root.
// A dependency that fails to resolve is logged and left out of sha.json.
func (b *Builtin) Run(ctx context.Context, root string) (*Result, error) {
	cfg := b.Project.Regen

	rec, err := record.Load(project.Resolve(root, b.Project.Record.Path))
	if err != nil {
		return nil, err
	}

	source, cleanup, err := b.source(ctx, root, rec)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	depPath := project.Resolve(root, cfg.DepFile)
	shaPath := project.Resolve(root, cfg.ShaFile)

	logger.Info("Generating %s", cfg.DepFile)
	deps, err := ScanCMakeDir(filepath.Join(source, cfg.CMakeDir), cfg.Ignore)
	if err != nil {
		return nil, err
	}
	if err := writeJSON(depPath, deps); err != nil {
		return nil, err
	}
	logger.Info("Generated %s", depPath)

	logger.Info("Generating %s", cfg.ShaFile)
	existing := loadShaManifest(shaPath)
	result := &Result{Rev: rec.Rev, Deps: len(deps)}
	pins := make(ShaManifest, len(deps))

	for _, name := range sortedKeys(deps) {
		dep := deps[name]

		if cached, ok := existing[name]; ok && cached.Rev == dep.Rev {
			logger.Info("-> Reusing cached %s @ %s", name, dep.Rev)
			pins[name] = cached
			result.Reused = append(result.Reused, name)
			continue
		}

		pin, err := b.pin(ctx, name, dep)
		if err != nil {
			logger.Error("%s: %v", name, err)
			result.Failed = append(result.Failed, name)
			continue
		}
		pins[name] = pin
		result.Fetched = append(result.Fetched, name)
	}

	if err := writeJSON(shaPath, pins); err != nil {
		return nil, err
	}
	logger.Info("Generated %s", shaPath)

	return result, nil
}

// source returns the upstream tree for rec and a cleanup func
func (b *Builtin) source(ctx context.Context, root string, rec *record.VersionRecord) (string, func(), error) {
	if b.Project.Regen.SourceDir != "" {
		dir := project.Resolve(root, b.Project.Regen.SourceDir)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return "", nil, fmt.Errorf("%w: %s is not a directory", ErrSourceUnavailable, dir)
		}
		return dir, func() {}, nil
	}

	owner, repo := rec.Owner, rec.Repo
	if owner == "" || repo == "" {
		owner, repo = b.Project.Owner(), b.Project.Repo()
	}

	tmp, err := os.MkdirTemp("", "nixbump-src-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(tmp) }

	dest := filepath.Join(tmp, repo)
	logger.Info("Cloning %s/%s @ %s...", owner, repo, rec.Rev)
	if err := b.Git.Clone(ctx, github.RepoURL(owner, repo), rec.Rev, dest); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	return dest, cleanup, nil
}

// pin resolves dep to a commit and prefetches its archive
func (b *Builtin) pin(ctx context.Context, name string, dep Dependency) (Pin, error) {
	commit := dep.Rev
	if !git.IsCommitHash(commit) {
		logger.Info("-> Resolving %s %s/%s @ %s...", name, dep.Owner, dep.Repo, dep.Rev)
		resolved, err := b.Git.LsRemote(ctx, github.RepoURL(dep.Owner, dep.Repo), dep.Rev)
		if err != nil {
			return Pin{}, err
		}
		commit = resolved
	}

	logger.Info("-> fetching %s : %s/%s %s...", name, dep.Owner, dep.Repo, short(commit))
	hash, err := b.Prefetcher.PrefetchArchive(ctx, github.ArchiveURL(dep.Owner, dep.Repo, commit))
	if err != nil {
		return Pin{}, fmt.Errorf("failed to prefetch: %w", err)
	}

	return Pin{Rev: dep.Rev, Commit: commit, Hash: hash}, nil
}

// loadShaManifest reads a previous sha.json; any problem yields an empty cache
func loadShaManifest(path string) ShaManifest {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Could not load existing %s, will regenerate all", path)
		}
		return ShaManifest{}
	}

	var manifest ShaManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		logger.Warn("Could not load existing %s, will regenerate all", path)
		return ShaManifest{}
	}

	logger.Debug("Loaded existing %s", path)
	return manifest
}

// writeJSON writes v as indented JSON; map keys are emitted sorted
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func sortedKeys(deps DepManifest) []string {
	keys := make([]string, 0, len(deps))
	for k := range deps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

var (
	_ Regenerator = (*Builtin)(nil)
	_ Regenerator = (*Command)(nil)
)
