package bump

import (
	"context"
	"fmt"

	"github.com/obentoo/nixbump/internal/common/logger"
	"github.com/obentoo/nixbump/internal/record"
)

// Checker compares the latest upstream release with the version record
// and, when the release is newer, runs install, update and commit in order.
type Checker struct {
	// Repository is the tracked upstream in owner/repo form
	Repository string
	// RecordPath is the version record file
	RecordPath string

	Releases  ReleaseSource
	Installer Installer
	Updater   VersionUpdater
	Committer Committer

	// DryRun stops after the comparison
	DryRun bool
}

// CheckResult describes the outcome of a check
type CheckResult struct {
	Repository string
	Current    string
	Latest     string
	// ReleaseURL is the release page of Latest, when the feed provides one
	ReleaseURL string
	// Newer is true when Latest is strictly greater than Current
	Newer bool
	// Updated is true when the update was applied and committed
	Updated bool
	// Record is the record written by the update, if any
	Record *record.VersionRecord
}

// CheckAndUpdate runs one check. The release is fetched before the record is
// read, and nothing is run or written unless the release is strictly newer.
func (c *Checker) CheckAndUpdate(ctx context.Context) (*CheckResult, error) {
	logger.Debug("Fetching latest release of %s", c.Repository)
	release, err := c.Releases.LatestRelease(ctx, c.Repository)
	if err != nil {
		return nil, categorize(ErrFetch, "latest release of "+c.Repository, err)
	}

	current, err := record.Load(c.RecordPath)
	if err != nil {
		return nil, categorize(ErrFile, "load record", err)
	}

	result := &CheckResult{
		Repository: c.Repository,
		Current:    current.Rev,
		Latest:     release.TagName,
		ReleaseURL: release.HTMLURL,
	}

	newer, err := IsNewer(release.TagName, current.Rev)
	if err != nil {
		return nil, err
	}
	result.Newer = newer

	if !newer {
		logger.Debug("%s is up to date at %s (latest %s)", c.Repository, current.Rev, release.TagName)
		return result, nil
	}

	logger.Info("New release of %s: %s → %s", c.Repository, current.Rev, release.TagName)
	if c.DryRun {
		return result, nil
	}

	if err := c.Installer.Install(ctx); err != nil {
		return result, categorize(ErrSubprocess, "install", err)
	}

	rec, err := c.Updater.Update(ctx, "")
	if err != nil {
		return result, categorize(ErrSubprocess, "update", err)
	}
	result.Record = rec

	if err := c.Committer.StageAndCommit(ctx, release.TagName); err != nil {
		return result, categorize(ErrSubprocess, fmt.Sprintf("commit %s", release.TagName), err)
	}

	result.Updated = true
	return result, nil
}
