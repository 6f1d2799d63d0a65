// Package discovery enumerates the files eligible for control-tag scanning.
//
// It recursively walks a project directory, keeps text files the tag engine
// understands (source code, configuration, scripts, docs), and returns a
// sorted inventory. Gitignore patterns are respected and the .git directory
// is always skipped.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Artifact represents a single discovered file eligible for scanning.
type Artifact struct {
	// Path is the file path relative to the walker root, slash-separated.
	Path string
	// AbsPath is the absolute file path.
	AbsPath string
	// Size is the file size in bytes.
	Size int64
}

// scannableExtensions lists file extensions the tag scanner understands.
// Tags live in comments, so any text format developers annotate qualifies.
var scannableExtensions = map[string]bool{
	".go":    true,
	".py":    true,
	".js":    true,
	".jsx":   true,
	".ts":    true,
	".tsx":   true,
	".rb":    true,
	".java":  true,
	".kt":    true,
	".rs":    true,
	".c":     true,
	".cpp":   true,
	".h":     true,
	".hpp":   true,
	".cs":    true,
	".swift": true,
	".sh":    true,
	".sql":   true,
	".tf":    true,
	".yaml":  true,
	".yml":   true,
	".toml":  true,
	".md":    true,
}

// skippedNames lists exact file names excluded from scanning even though
// their extension qualifies (generated or dependency-managed content).
var skippedNames = map[string]bool{
	"go.sum":            true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"poetry.lock":       true,
	"Cargo.lock":        true,
	"pnpm-lock.yaml":    true,
}

// Scannable reports whether a file at the given relative path is eligible
// for tag scanning.
func Scannable(path string) bool {
	name := filepath.Base(path)
	if skippedNames[name] {
		return false
	}
	return scannableExtensions[strings.ToLower(filepath.Ext(name))]
}

// Walker recursively discovers scannable files under Root.
type Walker struct {
	// Root is the directory to walk.
	Root string
	// IgnorePatterns holds gitignore-style patterns for skipping files.
	IgnorePatterns []string
}

// NewWalker creates a Walker rooted at root. It attempts to load ignore
// patterns from .gitignore and .ctlscanignore in the root directory; if
// neither exists the walker proceeds with no ignore patterns.
func NewWalker(root string) *Walker {
	patterns, _ := LoadIgnorePatterns(root)
	return &Walker{
		Root:           root,
		IgnorePatterns: patterns,
	}
}

// Walk recursively traverses the Root directory and returns the scannable
// files sorted by relative path. Directories matching ignore patterns or
// named .git are skipped entirely.
func (w *Walker) Walk() ([]Artifact, error) {
	absRoot, err := filepath.Abs(w.Root)
	if err != nil {
		return nil, err
	}

	var artifacts []Artifact

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if info.IsDir() && info.Name() == ".git" {
			return filepath.SkipDir
		}

		if IsIgnored(rel, w.IgnorePatterns) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() || !Scannable(rel) {
			return nil
		}

		artifacts = append(artifacts, Artifact{
			Path:    filepath.ToSlash(rel),
			AbsPath: path,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Path < artifacts[j].Path
	})

	return artifacts, nil
}
