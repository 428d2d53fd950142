package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"
)

var (
	ErrGitCommand  = errors.New("git command failed")
	ErrRefNotFound = errors.New("ref not found on remote")
)

// GitRunner executes git commands in a specific working directory
type GitRunner struct {
	workDir string
}

// NewGitRunner creates a new GitRunner for the specified working directory
func NewGitRunner(workDir string) *GitRunner {
	return &GitRunner{
		workDir: workDir,
	}
}

// WorkDir returns the working directory of the GitRunner
func (g *GitRunner) WorkDir() string {
	return g.workDir
}

// runCommand executes a git command and returns stdout, stderr, and any error
func (g *GitRunner) runCommand(ctx context.Context, args ...string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.workDir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			err = errors.Join(ErrGitCommand, err, errors.New(msg))
		} else {
			err = errors.Join(ErrGitCommand, err)
		}
	}

	return stdout, stderr, err
}

// StatusEntry represents a single entry from git status --porcelain
type StatusEntry struct {
	Status   string // A, M, D, R, ??
	FilePath string
}

// Status returns the current git status as a list of StatusEntry
func (g *GitRunner) Status(ctx context.Context) ([]StatusEntry, error) {
	stdout, _, err := g.runCommand(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}

	return ParseStatusOutput(stdout), nil
}

// ParseStatusOutput parses git status --porcelain output into StatusEntry slice
func ParseStatusOutput(output string) []StatusEntry {
	var entries []StatusEntry

	for _, line := range strings.Split(output, "\n") {
		if len(line) < 3 {
			continue
		}

		// XY filename, X = index status, Y = worktree status
		status := strings.TrimSpace(line[:2])
		filePath := line[3:]

		// R  old -> new
		if strings.HasPrefix(status, "R") {
			parts := strings.Split(filePath, " -> ")
			if len(parts) == 2 {
				filePath = parts[1]
			}
		}

		entries = append(entries, StatusEntry{
			Status:   status,
			FilePath: filePath,
		})
	}

	return entries
}

// AddTracked stages modifications and deletions of already tracked files (git add -u)
func (g *GitRunner) AddTracked(ctx context.Context) error {
	_, _, err := g.runCommand(ctx, "add", "-u")
	return err
}

// Commit creates a git commit with the specified message and author
func (g *GitRunner) Commit(ctx context.Context, message, user, email string) error {
	args := []string{"commit", "-m", message}

	if user != "" && email != "" {
		args = append(args, "--author", user+" <"+email+">")
	}

	_, _, err := g.runCommand(ctx, args...)
	return err
}

// LsRemote resolves ref on the remote repository at url to a commit hash.
// Annotated tags are peeled to the commit they point at.
func (g *GitRunner) LsRemote(ctx context.Context, url, ref string) (string, error) {
	stdout, _, err := g.runCommand(ctx, "ls-remote", url, ref, ref+"^{}")
	if err != nil {
		return "", err
	}

	hash, ok := ParseLsRemoteOutput(stdout, ref)
	if !ok {
		return "", errors.Join(ErrRefNotFound, errors.New(url+" "+ref))
	}
	return hash, nil
}

// ParseLsRemoteOutput picks the commit hash for ref from git ls-remote output.
// A peeled refs/tags/<ref>^{} wins, then refs/tags/<ref>, then refs/heads/<ref>,
// then the first listed entry.
func ParseLsRemoteOutput(output, ref string) (string, bool) {
	rank := map[string]int{
		"refs/tags/" + ref + "^{}": 4,
		"refs/tags/" + ref:         3,
		"refs/heads/" + ref:        2,
	}

	var best string
	bestRank := 0

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		r := rank[fields[1]]
		if best == "" {
			r = max(r, 1)
		}
		if r > bestRank {
			best, bestRank = fields[0], r
		}
	}

	return best, best != ""
}

// Clone makes a shallow clone of ref from url into dest
func (g *GitRunner) Clone(ctx context.Context, url, ref, dest string) error {
	args := []string{"clone", "--quiet", "--depth=1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, url, dest)

	_, _, err := g.runCommand(ctx, args...)
	return err
}

var commitHashRegex = regexp.MustCompile(`^[0-9a-f]{40}$`)

// IsCommitHash reports whether ref is a full 40-hex commit hash
func IsCommitHash(ref string) bool {
	return commitHashRegex.MatchString(ref)
}
