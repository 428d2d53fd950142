package bump

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// StripPrefix removes the leading run of non-digit characters from a tag,
// so "v2.7.0" and "release-2.7.0" both become "2.7.0".
func StripPrefix(tag string) string {
	i := strings.IndexFunc(tag, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return ""
	}
	return tag[i:]
}

// ParseVersion strips the tag prefix and parses the rest as a strict semantic version
func ParseVersion(tag string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(StripPrefix(tag))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrParse, tag, err)
	}
	return v, nil
}

// IsNewer reports whether remote is strictly greater than local.
// Both tags must parse; there is no ordering for malformed input.
func IsNewer(remote, local string) (bool, error) {
	rv, err := ParseVersion(remote)
	if err != nil {
		return false, err
	}
	lv, err := ParseVersion(local)
	if err != nil {
		return false, err
	}
	return rv.GreaterThan(lv), nil
}
