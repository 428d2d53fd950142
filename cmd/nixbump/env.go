package main

import (
	"fmt"
	"path/filepath"

	"github.com/obentoo/nixbump/internal/bump"
	"github.com/obentoo/nixbump/internal/common/config"
	"github.com/obentoo/nixbump/internal/common/git"
	"github.com/obentoo/nixbump/internal/common/github"
	"github.com/obentoo/nixbump/internal/common/logger"
	"github.com/obentoo/nixbump/internal/common/nix"
	"github.com/obentoo/nixbump/internal/common/shell"
	"github.com/obentoo/nixbump/internal/project"
	"github.com/obentoo/nixbump/internal/regen"
)

// env holds everything a command needs, built from the user config and the project file
type env struct {
	root        string
	cfg         *config.Config
	project     *project.Project
	git         *git.GitRunner
	runner      *shell.ExecRunner
	prefetcher  *nix.CLI
	releases    *github.Client
	regenerator regen.Regenerator
}

// newEnv loads the environment. createConfig writes a default user config when none exists.
func newEnv(createConfig bool) (*env, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}

	load := config.Load
	if createConfig {
		load = config.LoadOrCreate
	}
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Log.File && !logFile {
		if err := logger.EnableFileLogging(); err != nil {
			logger.Warn("file logging disabled: %v", err)
		}
	}

	p, err := project.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", project.FileName, err)
	}

	runner := shell.NewExecRunner()
	gitRunner := git.NewGitRunner(root)
	prefetcher := nix.NewCLI(runner)

	return &env{
		root:        root,
		cfg:         cfg,
		project:     p,
		git:         gitRunner,
		runner:      runner,
		prefetcher:  prefetcher,
		releases:    github.NewClientWithOptions(cfg.GitHub.APIURL, cfg.GitHubToken(), cfg.GitHub.Timeout),
		regenerator: regen.New(p, gitRunner, prefetcher, runner),
	}, nil
}

func (e *env) recordPath() string {
	return project.Resolve(e.root, e.project.Record.Path)
}

// updater builds the version updater for repository (owner/repo)
func (e *env) updater(repository string) *bump.Updater {
	u := &bump.Updater{
		Root:        e.root,
		Repository:  repository,
		RecordPath:  e.recordPath(),
		Releases:    e.releases,
		Regenerator: e.regenerator,
	}
	if e.project.Record.Metadata {
		u.Resolver = &bump.SourceResolver{Git: e.git, Prefetcher: e.prefetcher}
	}
	return u
}

func (e *env) checker(dryRun bool) *bump.Checker {
	return &bump.Checker{
		Repository: e.project.Upstream,
		RecordPath: e.recordPath(),
		Releases:   e.releases,
		Installer: &bump.CommandInstaller{
			Argv:   e.project.Install.Command,
			Dir:    e.root,
			Runner: e.runner,
		},
		Updater: e.updater(e.project.Upstream),
		Committer: &bump.GitCommitter{
			Git:   e.git,
			User:  e.cfg.Git.User,
			Email: e.cfg.Git.Email,
		},
		DryRun: dryRun,
	}
}
