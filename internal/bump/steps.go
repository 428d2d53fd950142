package bump

import (
	"context"

	"github.com/obentoo/nixbump/internal/common/git"
	"github.com/obentoo/nixbump/internal/common/github"
	"github.com/obentoo/nixbump/internal/common/logger"
	"github.com/obentoo/nixbump/internal/common/nix"
	"github.com/obentoo/nixbump/internal/common/shell"
	"github.com/obentoo/nixbump/internal/record"
)

// ReleaseSource reports the latest published release of a repository
type ReleaseSource interface {
	LatestRelease(ctx context.Context, repository string) (*github.Release, error)
}

// Installer prepares whatever the update and regeneration steps depend on
type Installer interface {
	Install(ctx context.Context) error
}

// VersionUpdater moves the version record to explicitVersion, or to the latest release when empty
type VersionUpdater interface {
	Update(ctx context.Context, explicitVersion string) (*record.VersionRecord, error)
}

// Committer stages tracked changes and commits them with message
type Committer interface {
	StageAndCommit(ctx context.Context, message string) error
}

// Metadata is what a Resolver knows about a rev beyond its name
type Metadata struct {
	Commit string
	URL    string
	Hash   string
}

// Resolver pins a rev of owner/repo to a commit and source hash
type Resolver interface {
	Resolve(ctx context.Context, owner, repo, rev string) (Metadata, error)
}

// CommandInstaller runs the configured install command in Dir
type CommandInstaller struct {
	Argv   []string
	Dir    string
	Runner shell.Runner
}

// Install runs the command; an empty command is a successful no-op
func (i *CommandInstaller) Install(ctx context.Context) error {
	if len(i.Argv) == 0 {
		logger.Debug("No install command configured, skipping")
		return nil
	}

	logger.Info("Running %s...", shell.Join(i.Argv))
	out, err := i.Runner.Run(ctx, i.Dir, i.Argv...)
	if out != "" {
		logger.Debug("%s", out)
	}
	return err
}

// GitCommitter commits with git add -u and git commit -m
type GitCommitter struct {
	Git   git.GitExecutor
	User  string
	Email string
}

// StageAndCommit implements Committer
func (c *GitCommitter) StageAndCommit(ctx context.Context, message string) error {
	if err := c.Git.AddTracked(ctx); err != nil {
		return err
	}
	return c.Git.Commit(ctx, message, c.User, c.Email)
}

// SourceResolver resolves commits with git ls-remote and hashes with the nix prefetcher
type SourceResolver struct {
	Git        git.GitExecutor
	Prefetcher nix.Prefetcher
}

// Resolve implements Resolver
func (r *SourceResolver) Resolve(ctx context.Context, owner, repo, rev string) (Metadata, error) {
	commit := rev
	if !git.IsCommitHash(rev) {
		resolved, err := r.Git.LsRemote(ctx, github.RepoURL(owner, repo), rev)
		if err != nil {
			return Metadata{}, err
		}
		commit = resolved
	}

	url := github.ArchiveURL(owner, repo, commit)
	hash, err := r.Prefetcher.PrefetchArchive(ctx, url)
	if err != nil {
		return Metadata{}, err
	}

	return Metadata{Commit: commit, URL: url, Hash: hash}, nil
}

var (
	_ ReleaseSource = (*github.Client)(nil)
	_ Installer     = (*CommandInstaller)(nil)
	_ Committer     = (*GitCommitter)(nil)
	_ Resolver      = (*SourceResolver)(nil)
)
