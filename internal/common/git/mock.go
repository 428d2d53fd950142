package git

import "context"

// MockGitRunner implements GitExecutor for testing.
// Each method can be configured with a custom function to control behavior.
type MockGitRunner struct {
	StatusFunc     func(ctx context.Context) ([]StatusEntry, error)
	AddTrackedFunc func(ctx context.Context) error
	CommitFunc     func(ctx context.Context, message, user, email string) error
	LsRemoteFunc   func(ctx context.Context, url, ref string) (string, error)
	CloneFunc      func(ctx context.Context, url, ref, dest string) error
	workDir        string
}

// NewMockGitRunner creates a new MockGitRunner with the specified working directory
func NewMockGitRunner(workDir string) *MockGitRunner {
	return &MockGitRunner{
		workDir: workDir,
	}
}

// Status returns the configured status, or a clean tree
func (m *MockGitRunner) Status(ctx context.Context) ([]StatusEntry, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return nil, nil
}

// AddTracked stages tracked files
func (m *MockGitRunner) AddTracked(ctx context.Context) error {
	if m.AddTrackedFunc != nil {
		return m.AddTrackedFunc(ctx)
	}
	return nil
}

// Commit creates a git commit with the specified message and author
func (m *MockGitRunner) Commit(ctx context.Context, message, user, email string) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx, message, user, email)
	}
	return nil
}

// LsRemote resolves a ref, returning an empty hash when unconfigured
func (m *MockGitRunner) LsRemote(ctx context.Context, url, ref string) (string, error) {
	if m.LsRemoteFunc != nil {
		return m.LsRemoteFunc(ctx, url, ref)
	}
	return "", nil
}

// Clone makes a shallow clone of a ref into dest
func (m *MockGitRunner) Clone(ctx context.Context, url, ref, dest string) error {
	if m.CloneFunc != nil {
		return m.CloneFunc(ctx, url, ref, dest)
	}
	return nil
}

// WorkDir returns the working directory of the git repository
func (m *MockGitRunner) WorkDir() string {
	return m.workDir
}

var _ GitExecutor = (*MockGitRunner)(nil)
