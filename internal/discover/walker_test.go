package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern, name string
		want          bool
	}{
		{"*.reals", "shard-1.reals", true},
		{"*.reals", "shard-1.txt", false},
		{"shard-{a,b}.reals", "shard-a.reals", true},
		{"shard-{a,b}.reals", "shard-c.reals", false},
	}
	for _, tt := range tests {
		if got := matchGlob(tt.pattern, tt.name); got != tt.want {
			t.Errorf("matchGlob(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}

func TestSkipDir(t *testing.T) {
	if !skipDir(".git", true) {
		t.Error(".git must always be skipped, even with hidden=true")
	}
	if skipDir("shards", false) {
		t.Error("a plain directory name must not be skipped")
	}
	if !skipDir(".cache", false) {
		t.Error("dot-directories must be skipped when hidden is false")
	}
	if skipDir(".cache", true) {
		t.Error("dot-directories must not be skipped when hidden is true")
	}
}

func TestParallelWalkerIsGlobExcluded(t *testing.T) {
	pw := &parallelWalker{globs: []string{"*.reals"}}
	if pw.isGlobExcluded("shard.reals") {
		t.Error("a file matching the only include glob must not be excluded")
	}
	if !pw.isGlobExcluded("shard.txt") {
		t.Error("a file matching no include glob must be excluded")
	}

	pw2 := &parallelWalker{globs: []string{"!*.bak"}}
	if !pw2.isGlobExcluded("shard.bak") {
		t.Error("a file matching an exclude glob must be excluded")
	}
	if pw2.isGlobExcluded("shard.reals") {
		t.Error("a file matching no exclude glob, with no include globs present, must not be excluded")
	}
}

func TestLoadExcludeLayerPrefersChashignore(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.txt\n"), 0o644)
	os.WriteFile(filepath.Join(dir, ".chashignore"), []byte("*.bak\n"), 0o644)

	layer := loadExcludeLayer(dir)
	if layer.parser == nil {
		t.Fatal("expected a compiled exclude parser")
	}
	if !layer.parser.MatchesPath("shard.bak") {
		t.Error(".chashignore rules should take effect")
	}
	if layer.parser.MatchesPath("shard.txt") {
		t.Error(".gitignore must be ignored once .chashignore is present")
	}
}

func TestWalkRecursiveFindsShardFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.reals"), []byte("x 1 100\n"), 0o644)
	sub := filepath.Join(dir, "rack2")
	os.Mkdir(sub, 0o755)
	os.WriteFile(filepath.Join(sub, "b.reals"), []byte("y 2 100\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me\n"), 0o644)

	fileCh, errCh := Walk([]string{dir}, Options{Recursive: true, Globs: []string{"*.reals"}})

	var found []string
	for f := range fileCh {
		found = append(found, f.Path)
	}
	for err := range errCh {
		t.Fatalf("unexpected walk error: %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("found %d shard files %v, want 2", len(found), found)
	}
}
