package bump

import (
	"context"
	"time"

	"github.com/obentoo/nixbump/internal/common/github"
	"github.com/obentoo/nixbump/internal/common/logger"
	"github.com/obentoo/nixbump/internal/record"
	"github.com/obentoo/nixbump/internal/regen"
)

// Updater writes the version record for a release and regenerates the
// dependency manifests from it. A failed regeneration leaves the new
// record in place.
type Updater struct {
	// Root is the project root the regenerator runs in
	Root string
	// Repository is the upstream in owner/repo form
	Repository string
	// RecordPath is the version record file
	RecordPath string

	Releases ReleaseSource
	// Resolver fills commit, url and hash; nil writes the record without them
	Resolver    Resolver
	Regenerator regen.Regenerator
}

// Update implements VersionUpdater. An empty explicitVersion resolves the
// latest release; a non-empty one is recorded verbatim. Either way the rev must
// parse as a version, and nothing is written when it does not.
func (u *Updater) Update(ctx context.Context, explicitVersion string) (*record.VersionRecord, error) {
	owner, repo, err := github.ParseRepository(u.Repository)
	if err != nil {
		return nil, categorize(ErrFetch, "resolve repository", err)
	}

	rec := &record.VersionRecord{
		Rev:   explicitVersion,
		Owner: owner,
		Repo:  repo,
	}

	if rec.Rev == "" {
		release, err := u.Releases.LatestRelease(ctx, u.Repository)
		if err != nil {
			return nil, categorize(ErrFetch, "latest release of "+u.Repository, err)
		}
		rec.Rev = release.TagName
		if !release.PublishedAt.IsZero() {
			rec.Date = release.PublishedAt.UTC().Format(time.RFC3339)
		}
	}

	if _, err := ParseVersion(rec.Rev); err != nil {
		return nil, err
	}

	if u.Resolver != nil {
		logger.Info("Resolving %s @ %s...", u.Repository, rec.Rev)
		md, err := u.Resolver.Resolve(ctx, owner, repo, rec.Rev)
		if err != nil {
			return nil, categorize(ErrSubprocess, "resolve "+rec.Rev, err)
		}
		rec.Commit, rec.URL, rec.Hash = md.Commit, md.URL, md.Hash
	}

	if err := record.Save(u.RecordPath, rec); err != nil {
		return nil, categorize(ErrFile, "save record", err)
	}
	logger.Info("Wrote %s (rev %s)", u.RecordPath, rec.Rev)

	if err := u.Regenerator.Regenerate(ctx, u.Root); err != nil {
		return rec, categorize(ErrSubprocess, "regenerate dependencies", err)
	}

	return rec, nil
}

var _ VersionUpdater = (*Updater)(nil)
