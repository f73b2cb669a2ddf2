package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jopa/internal/sema"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigName)
	writeFile(t, path, `
[resolve]
source = "1.4"
pedantic = true

[run]
jobs = 3
cache_dir = ".cache"

[output]
format = "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Fatalf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.Resolve.Source != "1.4" || !cfg.Resolve.Pedantic || !cfg.Resolve.Deprecation {
		t.Fatalf("unexpected resolve section: %+v", cfg.Resolve)
	}
	if cfg.Run.Jobs != 3 || cfg.Run.CacheDir != ".cache" {
		t.Fatalf("unexpected run section: %+v", cfg.Run)
	}
	if cfg.Output.Format != "json" || cfg.Output.Color != "auto" {
		t.Fatalf("unexpected output section: %+v", cfg.Output)
	}
	opts := cfg.ResolverOptions()
	if opts.Source != sema.Source14 || !opts.Pedantic {
		t.Fatalf("ResolverOptions = %+v", opts)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "[resolve]\nsauce = \"1.5\"\n", "resolve.sauce"},
		{"empty source", "[resolve]\nsource = \"\"\n", "must not be empty"},
		{"bad source", "[resolve]\nsource = \"9\"\n", "unsupported source level"},
		{"negative jobs", "[run]\njobs = -1\n", "must not be negative"},
		{"bad format", "[output]\nformat = \"xml\"\n", "[output].format"},
		{"bad color", "[output]\ncolor = \"maybe\"\n", "[output].color"},
		{"bad trace level", "[trace]\nlevel = \"loud\"\n", "invalid trace level"},
		{"syntax", "[resolve\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigName)
			writeFile(t, path, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestUnknownKeyIsWrapped(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigName)
	writeFile(t, path, "color = true\n")
	_, err := Load(path)
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigName), "[resolve]\ndeprecation = false\n")
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg, err := Discover(deep)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Resolve.Deprecation {
		t.Fatalf("deprecation should come from %s", ConfigName)
	}
	got, ok, err := FindProjectRoot(deep)
	if err != nil || !ok {
		t.Fatalf("FindProjectRoot: ok=%v err=%v", ok, err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Fatalf("root = %q, want %q", got, want)
	}
}

func TestFindConfigStopsAtRepository(t *testing.T) {
	outer := t.TempDir()
	writeFile(t, filepath.Join(outer, ConfigName), "[resolve]\n")
	repo := filepath.Join(outer, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	deep := filepath.Join(repo, "fixtures", "calls")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if path, ok, err := FindConfig(deep); err != nil || ok {
		t.Fatalf("FindConfig crossed the repository: path=%q ok=%v err=%v", path, ok, err)
	}

	writeFile(t, filepath.Join(repo, ConfigName), "[resolve]\n")
	got, ok, err := FindProjectRoot(deep)
	if err != nil || !ok {
		t.Fatalf("FindProjectRoot: ok=%v err=%v", ok, err)
	}
	want, _ := filepath.Abs(repo)
	if got != want {
		t.Fatalf("root = %q, want %q", got, want)
	}
}

func TestFingerprintTracksOptions(t *testing.T) {
	a := Default()
	b := Default()
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("equal configs must agree")
	}
	b.Resolve.Pedantic = true
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("pedantic must change the fingerprint")
	}
	b = Default()
	b.Output.Format = "json"
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("output settings must not change the fingerprint")
	}
}

func TestExpandFixtures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.yaml"), "")
	writeFile(t, filepath.Join(root, "sub", "a.yml"), "")
	writeFile(t, filepath.Join(root, "sub", "notes.txt"), "")
	writeFile(t, filepath.Join(root, ".hidden", "c.yaml"), "")

	got, err := ExpandFixtures([]string{root, filepath.Join(root, "b.yaml")})
	if err != nil {
		t.Fatalf("ExpandFixtures: %v", err)
	}
	want := []string{filepath.Join(root, "b.yaml"), filepath.Join(root, "sub", "a.yml")}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := ExpandFixtures([]string{filepath.Join(root, "sub", "notes.txt")}); err != nil {
		t.Fatalf("explicit files are taken as given: %v", err)
	}
	if _, err := ExpandFixtures([]string{filepath.Join(root, ".hidden", "missing")}); err == nil {
		t.Fatalf("expected an error for a missing path")
	}
	empty := filepath.Join(root, "empty")
	if err := os.MkdirAll(empty, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := ExpandFixtures([]string{empty}); !errors.Is(err, ErrNoFixtures) {
		t.Fatalf("expected ErrNoFixtures, got %v", err)
	}
}
