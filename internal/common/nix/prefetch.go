// Package nix wraps the nix command line tools used to pin source archives.
package nix

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/obentoo/nixbump/internal/common/shell"
)

// ErrEmptyHash is returned when a nix tool prints no hash
var ErrEmptyHash = errors.New("nix produced no hash")

// Prefetcher computes the SRI hash of an unpacked source archive
type Prefetcher interface {
	PrefetchArchive(ctx context.Context, url string) (string, error)
}

// CLI implements Prefetcher with nix-prefetch-url and nix hash to-sri
type CLI struct {
	runner shell.Runner
}

// NewCLI creates a prefetcher that runs nix tools through runner
func NewCLI(runner shell.Runner) *CLI {
	return &CLI{runner: runner}
}

// PrefetchArchive downloads and unpacks url into the store and returns its sha256 in SRI form
func (c *CLI) PrefetchArchive(ctx context.Context, url string) (string, error) {
	out, err := c.runner.Run(ctx, "", "nix-prefetch-url", "--unpack", "--type", "sha256", url)
	if err != nil {
		return "", err
	}

	// nix-prefetch-url prints the hash on its last line; progress may precede it
	base32 := lastLine(out)
	if base32 == "" {
		return "", fmt.Errorf("%w: nix-prefetch-url %s", ErrEmptyHash, url)
	}

	out, err = c.runner.Run(ctx, "", "nix", "hash", "to-sri", "--type", "sha256", base32)
	if err != nil {
		return "", err
	}

	sri := strings.TrimSpace(out)
	if sri == "" {
		return "", fmt.Errorf("%w: nix hash to-sri %s", ErrEmptyHash, base32)
	}
	return sri, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

var _ Prefetcher = (*CLI)(nil)
