// Package shell runs external commands (install steps, regeneration scripts,
// nix tooling) behind an interface that tests can substitute.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/obentoo/nixbump/internal/common/logger"
)

var (
	// ErrEmptyCommand is returned when asked to run a command with no argv
	ErrEmptyCommand = errors.New("empty command")
	// ErrCommandFailed wraps a non-zero exit or a failure to start
	ErrCommandFailed = errors.New("command failed")
)

// Runner executes a command in dir and returns its standard output
type Runner interface {
	Run(ctx context.Context, dir string, argv ...string) (string, error)
}

// ExecRunner runs commands as child processes
type ExecRunner struct{}

// NewExecRunner creates a runner that inherits the current environment
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes argv in dir, returning stdout. Stderr is folded into the error.
func (r *ExecRunner) Run(ctx context.Context, dir string, argv ...string) (string, error) {
	if len(argv) == 0 || argv[0] == "" {
		return "", ErrEmptyCommand
	}

	logger.Debug("$ %s", Join(argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return stdout.String(), fmt.Errorf("%w: %s: %w", ErrCommandFailed, Join(argv), err)
		}
		return stdout.String(), fmt.Errorf("%w: %s: %w: %s", ErrCommandFailed, Join(argv), err, msg)
	}

	return stdout.String(), nil
}

// Join renders argv for logs, quoting arguments that contain spaces
func Join(argv []string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			parts[i] = fmt.Sprintf("%q", arg)
		} else {
			parts[i] = arg
		}
	}
	return strings.Join(parts, " ")
}

var _ Runner = (*ExecRunner)(nil)
