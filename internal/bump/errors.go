package bump

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this package wraps exactly one.
var (
	// ErrFetch covers network failures, non-success statuses and malformed release bodies
	ErrFetch = errors.New("fetch failed")
	// ErrParse is returned when a tag is not a semantic version once its prefix is stripped
	ErrParse = errors.New("invalid version")
	// ErrFile covers a missing, unreadable, invalid or unwritable version record
	ErrFile = errors.New("version record error")
	// ErrSubprocess covers failures of the install, regeneration and commit steps
	ErrSubprocess = errors.New("step failed")
)

var categories = []error{ErrFetch, ErrParse, ErrFile, ErrSubprocess}

// categorize wraps err in category unless it already carries one
func categorize(category error, step string, err error) error {
	for _, c := range categories {
		if errors.Is(err, c) {
			return fmt.Errorf("%s: %w", step, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", category, step, err)
}
