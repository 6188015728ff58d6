package discover

import (
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// excludeLayer holds one directory's .chashignore (or .gitignore, as a
// fallback for fleets that already maintain one) compiled ruleset.
type excludeLayer struct {
	dir    string
	parser *ignore.GitIgnore
}

// loadExcludeLayer loads and compiles the exclude file for dir, trying
// .chashignore before falling back to .gitignore. Returns a layer with a
// nil parser if neither exists or fails to parse.
func loadExcludeLayer(dir string) excludeLayer {
	for _, name := range []string{".chashignore", ".gitignore"} {
		path := filepath.Join(dir, name)
		if parser, err := ignore.CompileIgnoreFile(path); err == nil {
			return excludeLayer{dir: dir, parser: parser}
		}
	}
	return excludeLayer{dir: dir, parser: nil}
}

// isExcludedByLayers reports whether fullPath is excluded by any layer in
// the slice, checked from the root layer down.
func isExcludedByLayers(layers []excludeLayer, fullPath string, isDir bool) bool {
	for _, layer := range layers {
		if layer.parser == nil {
			continue
		}
		rel, err := filepath.Rel(layer.dir, fullPath)
		if err != nil {
			continue
		}
		checkPath := rel
		if isDir {
			checkPath = rel + "/"
		}
		if layer.parser.MatchesPath(checkPath) {
			return true
		}
	}
	return false
}
