package regen

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/obentoo/nixbump/internal/common/git"
	"github.com/obentoo/nixbump/internal/common/shell"
	"github.com/obentoo/nixbump/internal/project"
	"github.com/obentoo/nixbump/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rocksdbCommit  = "1111111111111111111111111111111111111111"
	jemallocCommit = "2222222222222222222222222222222222222222"
	luaCommit      = "3333333333333333333333333333333333333333"
)

// stubPrefetcher returns a hash derived from the archive URL
type stubPrefetcher struct {
	urls []string
	fail map[string]bool
}

func (s *stubPrefetcher) PrefetchArchive(_ context.Context, url string) (string, error) {
	s.urls = append(s.urls, url)
	for fragment := range s.fail {
		if strings.Contains(url, fragment) {
			return "", errors.New("prefetch failed")
		}
	}
	return "sha256-" + filepath.Base(filepath.Dir(filepath.Dir(url))) + "=", nil
}

func lsRemote(_ context.Context, url, ref string) (string, error) {
	switch {
	case strings.HasSuffix(url, "/facebook/rocksdb") && ref == "v9.3.1":
		return rocksdbCommit, nil
	case strings.HasSuffix(url, "/jemalloc/jemalloc") && ref == "5.3.0":
		return jemallocCommit, nil
	}
	return "", git.ErrRefNotFound
}

// setupProject lays out a project root with a record and an upstream checkout
func setupProject(t *testing.T) (string, *project.Project) {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, record.Save(filepath.Join(root, "ver.json"), &record.VersionRecord{
		Rev: "v2.8.0", Owner: "apache", Repo: "kvrocks",
	}))

	cmake := filepath.Join(root, "kvrocks", "cmake")
	writeCMake(t, cmake, "rocksdb.cmake", "FetchContent_DeclareGitHubWithMirror(rocksdb facebook/rocksdb v9.3.1)")
	writeCMake(t, cmake, "jemalloc.cmake", "FetchContent_DeclareGitHubTarWithMirror(jemalloc jemalloc/jemalloc 5.3.0)")
	writeCMake(t, cmake, "lua.cmake", "FetchContent_DeclareGitHubWithMirror(lua RocksLabs/lua "+luaCommit+")")

	p := project.Default()
	p.Regen.SourceDir = "kvrocks"
	return root, p
}

func readSha(t *testing.T, path string) ShaManifest {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m ShaManifest
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestBuiltinRun(t *testing.T) {
	root, p := setupProject(t)
	gitMock := git.NewMockGitRunner(root)
	gitMock.LsRemoteFunc = lsRemote
	prefetcher := &stubPrefetcher{}

	b := &Builtin{Project: p, Git: gitMock, Prefetcher: prefetcher}
	result, err := b.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, "v2.8.0", result.Rev)
	assert.Equal(t, 3, result.Deps)
	assert.Equal(t, []string{"jemalloc", "lua", "rocksdb"}, result.Fetched)
	assert.Empty(t, result.Failed)

	depData, err := os.ReadFile(filepath.Join(root, "dep.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(depData), "}\n"))
	var deps DepManifest
	require.NoError(t, json.Unmarshal(depData, &deps))
	assert.Equal(t, Dependency{Owner: "facebook", Repo: "rocksdb", Rev: "v9.3.1"}, deps["rocksdb"])

	sha := readSha(t, filepath.Join(root, "sha.json"))
	assert.Equal(t, Pin{Rev: "v9.3.1", Commit: rocksdbCommit, Hash: "sha256-rocksdb="}, sha["rocksdb"])
	assert.Equal(t, Pin{Rev: luaCommit, Commit: luaCommit, Hash: "sha256-lua="}, sha["lua"])

	assert.Contains(t, prefetcher.urls, "https://github.com/jemalloc/jemalloc/archive/"+jemallocCommit+".tar.gz")
}

func TestBuiltinReusesMatchingPins(t *testing.T) {
	root, p := setupProject(t)
	cached := ShaManifest{
		"rocksdb":  {Rev: "v9.3.1", Commit: rocksdbCommit, Hash: "sha256-cached="},
		"jemalloc": {Rev: "5.2.1", Commit: "stale", Hash: "sha256-stale="},
	}
	require.NoError(t, writeJSON(filepath.Join(root, "sha.json"), cached))

	gitMock := git.NewMockGitRunner(root)
	gitMock.LsRemoteFunc = lsRemote
	prefetcher := &stubPrefetcher{}

	result, err := (&Builtin{Project: p, Git: gitMock, Prefetcher: prefetcher}).Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"rocksdb"}, result.Reused)
	assert.Equal(t, []string{"jemalloc", "lua"}, result.Fetched)

	sha := readSha(t, filepath.Join(root, "sha.json"))
	assert.Equal(t, "sha256-cached=", sha["rocksdb"].Hash)
	assert.Equal(t, jemallocCommit, sha["jemalloc"].Commit)
	for _, url := range prefetcher.urls {
		assert.NotContains(t, url, "rocksdb")
	}
}

func TestBuiltinCorruptShaIsIgnored(t *testing.T) {
	root, p := setupProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "sha.json"), []byte("{oops"), 0644))

	gitMock := git.NewMockGitRunner(root)
	gitMock.LsRemoteFunc = lsRemote

	result, err := (&Builtin{Project: p, Git: gitMock, Prefetcher: &stubPrefetcher{}}).Run(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, result.Reused)
	assert.Len(t, result.Fetched, 3)
}

func TestBuiltinOmitsFailedDependencies(t *testing.T) {
	root, p := setupProject(t)

	gitMock := git.NewMockGitRunner(root)
	gitMock.LsRemoteFunc = func(ctx context.Context, url, ref string) (string, error) {
		if strings.Contains(url, "jemalloc") {
			return "", git.ErrRefNotFound
		}
		return lsRemote(ctx, url, ref)
	}
	prefetcher := &stubPrefetcher{fail: map[string]bool{"RocksLabs": true}}

	result, err := (&Builtin{Project: p, Git: gitMock, Prefetcher: prefetcher}).Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"jemalloc", "lua"}, result.Failed)
	assert.Equal(t, []string{"rocksdb"}, result.Fetched)

	sha := readSha(t, filepath.Join(root, "sha.json"))
	assert.Len(t, sha, 1)
	assert.Contains(t, sha, "rocksdb")
}

func TestBuiltinClonesRecordedRev(t *testing.T) {
	root, p := setupProject(t)
	p.Regen.SourceDir = ""

	var clonedURL, clonedRef, clonedDest string
	gitMock := git.NewMockGitRunner(root)
	gitMock.LsRemoteFunc = lsRemote
	gitMock.CloneFunc = func(_ context.Context, url, ref, dest string) error {
		clonedURL, clonedRef, clonedDest = url, ref, dest
		writeCMake(t, filepath.Join(dest, "cmake"), "rocksdb.cmake",
			"FetchContent_DeclareGitHubWithMirror(rocksdb facebook/rocksdb v9.3.1)")
		return nil
	}

	result, err := (&Builtin{Project: p, Git: gitMock, Prefetcher: &stubPrefetcher{}}).Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/apache/kvrocks", clonedURL)
	assert.Equal(t, "v2.8.0", clonedRef)
	assert.Equal(t, 1, result.Deps)

	_, statErr := os.Stat(clonedDest)
	assert.True(t, os.IsNotExist(statErr), "temporary checkout should be removed")
}

func TestBuiltinCloneFailure(t *testing.T) {
	root, p := setupProject(t)
	p.Regen.SourceDir = ""

	gitMock := git.NewMockGitRunner(root)
	gitMock.CloneFunc = func(context.Context, string, string, string) error {
		return git.ErrGitCommand
	}

	_, err := (&Builtin{Project: p, Git: gitMock, Prefetcher: &stubPrefetcher{}}).Run(context.Background(), root)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, git.ErrGitCommand)
}

func TestBuiltinMissingSourceDir(t *testing.T) {
	root, p := setupProject(t)
	p.Regen.SourceDir = "does-not-exist"

	_, err := (&Builtin{Project: p, Git: git.NewMockGitRunner(root), Prefetcher: &stubPrefetcher{}}).Run(context.Background(), root)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestBuiltinMissingRecord(t *testing.T) {
	root := t.TempDir()
	b := &Builtin{Project: project.Default(), Git: git.NewMockGitRunner(root), Prefetcher: &stubPrefetcher{}}

	err := b.Regenerate(context.Background(), root)
	assert.ErrorIs(t, err, record.ErrNotFound)
}

func TestNewSelectsImplementation(t *testing.T) {
	p := project.Default()
	runner := &shell.MockRunner{}

	_, isBuiltin := New(p, git.NewMockGitRunner(""), &stubPrefetcher{}, runner).(*Builtin)
	assert.True(t, isBuiltin)

	p.Regen.Command = []string{"./update_dep.py"}
	cmd, isCommand := New(p, git.NewMockGitRunner(""), &stubPrefetcher{}, runner).(*Command)
	require.True(t, isCommand)
	assert.Equal(t, []string{"./update_dep.py"}, cmd.Argv)
}

func TestCommandRegenerate(t *testing.T) {
	failure := errors.New("exit status 1")
	runner := &shell.MockRunner{
		RunFunc: func(context.Context, string, ...string) (string, error) {
			return "partial output", failure
		},
	}

	err := (&Command{Argv: []string{"./update_dep.py"}, Runner: runner}).Regenerate(context.Background(), "/repo")
	assert.ErrorIs(t, err, failure)
	require.Len(t, runner.Calls, 1)
	assert.Equal(t, shell.Call{Dir: "/repo", Argv: []string{"./update_dep.py"}}, runner.Calls[0])
}
