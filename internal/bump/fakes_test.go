package bump

import (
	"context"
	"errors"
	"os"

	"github.com/obentoo/nixbump/internal/common/github"
	"github.com/obentoo/nixbump/internal/record"
)

// steps records the order in which fakes are invoked
type steps struct {
	events []string
}

func (s *steps) add(event string) {
	s.events = append(s.events, event)
}

type fakeReleases struct {
	release *github.Release
	err     error
	calls   int
}

func (f *fakeReleases) LatestRelease(_ context.Context, _ string) (*github.Release, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.release
	return &r, nil
}

type fakeInstaller struct {
	log *steps
	err error
}

func (f *fakeInstaller) Install(context.Context) error {
	f.log.add("install")
	return f.err
}

type fakeUpdater struct {
	log *steps
	err error
}

func (f *fakeUpdater) Update(_ context.Context, explicit string) (*record.VersionRecord, error) {
	f.log.add("update:" + explicit)
	if f.err != nil {
		return nil, f.err
	}
	return &record.VersionRecord{Rev: "updated"}, nil
}

type fakeCommitter struct {
	log      *steps
	err      error
	messages []string
}

func (f *fakeCommitter) StageAndCommit(_ context.Context, message string) error {
	f.log.add("commit:" + message)
	f.messages = append(f.messages, message)
	return f.err
}

type fakeRegenerator struct {
	log   *steps
	err   error
	roots []string
}

func (f *fakeRegenerator) Regenerate(_ context.Context, root string) error {
	if f.log != nil {
		f.log.add("regenerate")
	}
	f.roots = append(f.roots, root)
	return f.err
}

type fakeResolver struct {
	md  Metadata
	err error
}

func (f *fakeResolver) Resolve(context.Context, string, string, string) (Metadata, error) {
	return f.md, f.err
}

type countingResolver struct {
	calls int
}

func (c *countingResolver) Resolve(context.Context, string, string, string) (Metadata, error) {
	c.calls++
	return Metadata{}, nil
}

var errBoom = errors.New("boom")

func writeRecord(path, rev string) error {
	return os.WriteFile(path, []byte(`{"rev":"`+rev+`"}`), 0644)
}
