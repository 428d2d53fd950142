// Package bump checks the tracked upstream for a newer release and moves the
// repository to it.
//
// The package implements:
//   - Checker: compare the latest release tag with the version record and,
//     when the release is newer, install, update and commit
//   - Updater: write the version record for a release and regenerate the
//     dependency manifests derived from it
//
// Every external capability (release feed, install step, metadata resolution,
// regeneration and commit) sits behind a small interface so tests can
// substitute fakes. No step is retried and nothing is rolled back: the first
// failure aborts the run and is returned wrapped in one of ErrFetch, ErrParse,
// ErrFile or ErrSubprocess.
//
// Usage:
//
//	checker := &bump.Checker{...}
//	result, err := checker.CheckAndUpdate(ctx)
package bump
