// Package walk is the thin file-discovery collaborator the purpose
// section names as out-of-scope for the analytical core: it walks a
// project root, applies the configured ignore globs, and hands back the
// raw file bytes the orchestrator needs. It never touches call-graph,
// scoring, or detector logic.
package walk

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/lci/internal/astx"
	"github.com/standardbeagle/lci/internal/orchestrator"
)

// defaultSkipDirs are directory names never descended into regardless of
// ignore-pattern configuration: vendored and generated trees that would
// drown the report in third-party findings.
var defaultSkipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
	"build":        true,
	".cache":       true,
}

// MatchesIgnore is a path predicate; cmd/debtmap builds one by closing
// over config.MatchesIgnore and the loaded config. It is a plain func
// type here so this package doesn't import internal/config and
// create a cycle with packages config itself might grow to depend on.
type MatchesIgnore func(path string) bool

// Collect walks root and returns every regular file whose extension maps
// to a known astx.Language and that isn't excluded by defaultSkipDirs or
// ignoreFn. Paths in the returned SourceFiles are relative to root.
func Collect(root string, ignoreFn MatchesIgnore) ([]orchestrator.SourceFile, error) {
	var files []orchestrator.SourceFile
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && defaultSkipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		ext := strings.ToLower(filepath.Ext(path))
		if astx.LanguageForExt(ext) == astx.LangUnknown {
			return nil
		}
		if ignoreFn != nil && ignoreFn(rel) {
			return nil
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil // unreadable file degrades to a skipped file, not an aborted walk
		}
		files = append(files, orchestrator.SourceFile{Path: rel, Content: content})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// MatchGlob exposes doublestar.Match for callers building a MatchesIgnore
// closure without importing doublestar directly.
func MatchGlob(pattern, path string) bool {
	ok, _ := doublestar.Match(pattern, path)
	return ok
}
