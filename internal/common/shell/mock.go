package shell

import "context"

// Call records a single MockRunner invocation
type Call struct {
	Dir  string
	Argv []string
}

// MockRunner implements Runner for testing.
// RunFunc controls the result; every call is recorded in Calls.
type MockRunner struct {
	RunFunc func(ctx context.Context, dir string, argv ...string) (string, error)
	Calls   []Call
}

// Run records the call and delegates to RunFunc when set
func (m *MockRunner) Run(ctx context.Context, dir string, argv ...string) (string, error) {
	m.Calls = append(m.Calls, Call{Dir: dir, Argv: append([]string(nil), argv...)})
	if m.RunFunc != nil {
		return m.RunFunc(ctx, dir, argv...)
	}
	return "", nil
}

var _ Runner = (*MockRunner)(nil)
