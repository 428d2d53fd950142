package git

import "context"

// GitExecutor defines the interface for git operations.
// This interface allows for mocking git operations in tests.
type GitExecutor interface {
	// Status returns the current git status as a list of StatusEntry
	Status(ctx context.Context) ([]StatusEntry, error)

	// AddTracked stages changes to tracked files
	AddTracked(ctx context.Context) error

	// Commit creates a git commit with the specified message and author
	Commit(ctx context.Context, message, user, email string) error

	// LsRemote resolves a ref on a remote repository to a commit hash
	LsRemote(ctx context.Context, url, ref string) (string, error)

	// Clone makes a shallow clone of a ref into dest
	Clone(ctx context.Context, url, ref, dest string) error

	// WorkDir returns the working directory of the git repository
	WorkDir() string
}

var _ GitExecutor = (*GitRunner)(nil)
