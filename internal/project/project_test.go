package project

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	p, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(p, Default()) {
		t.Errorf("Expected defaults, got %+v", p)
	}
	if p.Owner() != "apache" || p.Repo() != "kvrocks" {
		t.Errorf("Unexpected upstream split %s/%s", p.Owner(), p.Repo())
	}
}

func TestLoadFullFile(t *testing.T) {
	root := t.TempDir()
	content := `
upstream = "redis/redis"

[record]
path = "nix/ver.json"
metadata = false

[install]
command = ["bun", "i"]

[regen]
command = ["./update_dep.py"]
source_dir = "src"
cmake_dir = "deps/cmake"
dep_file = "nix/dep.json"
sha_file = "nix/sha.json"
ignore = []
`
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	expected := &Project{
		Upstream: "redis/redis",
		Record:   RecordConfig{Path: "nix/ver.json", Metadata: false},
		Install:  InstallConfig{Command: []string{"bun", "i"}},
		Regen: RegenConfig{
			Command:   []string{"./update_dep.py"},
			SourceDir: "src",
			CMakeDir:  "deps/cmake",
			DepFile:   "nix/dep.json",
			ShaFile:   "nix/sha.json",
			Ignore:    []string{},
		},
	}
	if !reflect.DeepEqual(p, expected) {
		t.Errorf("Expected %+v, got %+v", expected, p)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	p, err := Parse(`[install]
command = ["bun", "install"]
`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if p.Upstream != "apache/kvrocks" {
		t.Errorf("Expected default upstream, got %s", p.Upstream)
	}
	if !p.Record.Metadata {
		t.Error("Expected metadata to stay enabled")
	}
	if !reflect.DeepEqual(p.Regen.Ignore, []string{"riscv64.cmake"}) {
		t.Errorf("Expected default ignore list, got %v", p.Regen.Ignore)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"unknown top-level key", `upstreams = "a/b"`, ErrUnknownKey},
		{"unknown nested key", "[regen]\nscript = \"x\"\n", ErrUnknownKey},
		{"bad upstream", `upstream = "kvrocks"`, nil},
		{"blank record path", "[record]\npath = \"\"\n", ErrMissingField},
		{"blank sha file", "[regen]\nsha_file = \" \"\n", ErrMissingField},
		{"invalid toml", `upstream = `, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content)
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("/repo", "ver.json"); got != "/repo/ver.json" {
		t.Errorf("Unexpected %s", got)
	}
	if got := Resolve("/repo", "/abs/ver.json"); got != "/abs/ver.json" {
		t.Errorf("Unexpected %s", got)
	}
}

// **Property: Project file TOML round-trip preserves data**
func TestProjectRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genName := gen.RegexMatch(`^[a-z][a-z0-9-]{0,12}$`)
	genPath := gen.RegexMatch(`^[a-z][a-z0-9_/]{0,12}\.json$`)

	properties.Property("encode then Parse yields the same project", prop.ForAll(
		func(owner, repo, record, dep, sha string, metadata bool) bool {
			p := Default()
			p.Upstream = owner + "/" + repo
			p.Record.Path = record
			p.Record.Metadata = metadata
			p.Regen.DepFile = dep
			p.Regen.ShaFile = sha
			p.Install.Command = []string{"bun", "i"}

			dir := t.TempDir()
			f, err := os.Create(filepath.Join(dir, FileName))
			if err != nil {
				return false
			}
			if err := toml.NewEncoder(f).Encode(p); err != nil {
				f.Close()
				return false
			}
			f.Close()

			loaded, err := Load(dir)
			if err != nil {
				t.Logf("Load failed: %v", err)
				return false
			}
			return reflect.DeepEqual(p, loaded)
		},
		genName, genName, genPath, genPath, genPath, gen.Bool(),
	))

	properties.TestingRun(t)
}
