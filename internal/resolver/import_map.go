// Package resolver implements import and module resolution: it
// resolves imported names, re-exports, glob imports, relative paths, and
// crate/module-qualified paths, tracking a confidence class per
// resolution, through a single language-agnostic ImportMap plus small
// per-language path-resolution strategies.
package resolver

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/lci/internal/astx"
)

// Confidence classifies how sure a resolution is, used by the call-graph
// builder to decide edge confidence and by diagnostics.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceGlob
	ConfidenceSpecific
	ConfidenceExact
)

// Resolution is the outcome of resolving a local name to a qualified path.
type Resolution struct {
	QualifiedPath string
	Confidence    Confidence
	IsExternal    bool
	IsGlob        bool
}

// fileScope holds one file's import bindings: specific names, aliases,
// re-exports, and glob prefixes (tried in that priority order
// step 2: "specific entries first, then globs").
type fileScope struct {
	specific map[string]string // local name -> qualified path
	globs    []string          // prefixes tried in registration order
	reexports map[string]string // exported name -> source qualified path
}

// ImportMap holds every file's import scope plus re-export and glob
// tables, sealed by Builder.Seal. (file, local-name) -> [qualified-path],
// glob imports stored as prefixes per the data model.
type ImportMap struct {
	scopes map[string]*fileScope
}

// Builder accumulates per-file import scopes before Seal.
type Builder struct {
	scopes map[string]*fileScope
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{scopes: make(map[string]*fileScope)}
}

// AddFile registers a parsed file's raw imports and exports into its
// file scope, resolving `use X as Y` aliases and `pub use` re-exports as
// it goes.
func (b *Builder) AddFile(file *astx.File) {
	scope := b.scopeFor(file.Path)
	for _, imp := range file.Imports {
		local := imp.Alias
		if local == "" {
			local = lastSegment(imp.Path)
		}
		if imp.IsGlob {
			scope.globs = append(scope.globs, imp.Path)
			continue
		}
		scope.specific[local] = qualify(imp.Path, file.Language)
	}
	for _, exp := range file.Exports {
		if exp.SourcePath != "" {
			scope.reexports[exp.Name] = qualify(exp.SourcePath, file.Language)
		}
	}
}

func (b *Builder) scopeFor(file string) *fileScope {
	s, ok := b.scopes[file]
	if !ok {
		s = &fileScope{
			specific:  make(map[string]string),
			reexports: make(map[string]string),
		}
		b.scopes[file] = s
	}
	return s
}

// Seal finalizes the Builder into an immutable ImportMap.
func (b *Builder) Seal() *ImportMap {
	return &ImportMap{scopes: b.scopes}
}

// Resolve resolves a local identifier as seen in `file`: `crate::` /
// `super::` / `self::` special paths first, then specific imports, then
// re-exports, then globs.
func (m *ImportMap) Resolve(file, localName string) Resolution {
	scope, ok := m.scopes[file]
	if !ok {
		return Resolution{Confidence: ConfidenceNone}
	}

	switch {
	case strings.HasPrefix(localName, "crate::"):
		return Resolution{
			QualifiedPath: strings.TrimPrefix(localName, "crate::"),
			Confidence:    ConfidenceExact,
		}
	case strings.HasPrefix(localName, "super::"), strings.HasPrefix(localName, "self::"):
		return m.resolveModuleRelative(file, localName)
	}

	if q, ok := scope.specific[localName]; ok {
		return Resolution{QualifiedPath: q, Confidence: ConfidenceSpecific}
	}
	if q, ok := scope.reexports[localName]; ok {
		return Resolution{QualifiedPath: q, Confidence: ConfidenceSpecific}
	}
	for _, prefix := range scope.globs {
		// Glob imports are stored as prefixes; any unresolved identifier in
		// scope of a glob import is tentatively qualified under it, with
		// lower confidence since the exact source is ambiguous.
		return Resolution{
			QualifiedPath: prefix + "::" + localName,
			Confidence:    ConfidenceGlob,
			IsGlob:        true,
		}
	}
	return Resolution{Confidence: ConfidenceNone, IsExternal: true}
}

func (m *ImportMap) resolveModuleRelative(file, localName string) Resolution {
	dir := filepath.Dir(file)
	trimmed := strings.TrimPrefix(strings.TrimPrefix(localName, "super::"), "self::")
	if strings.HasPrefix(localName, "super::") {
		dir = filepath.Dir(dir)
	}
	return Resolution{
		QualifiedPath: filepath.ToSlash(filepath.Join(dir, trimmed)),
		Confidence:    ConfidenceSpecific,
	}
}

// Globs returns the glob-import prefixes registered for file, used by
// diagnostics and by the "unresolved-import" reason-code classification.
func (m *ImportMap) Globs(file string) []string {
	scope, ok := m.scopes[file]
	if !ok {
		return nil
	}
	out := make([]string, len(scope.globs))
	copy(out, scope.globs)
	return out
}

func lastSegment(path string) string {
	path = strings.TrimRight(path, "/")
	for _, sep := range []string{"::", "/", "."} {
		if idx := strings.LastIndex(path, sep); idx >= 0 {
			return path[idx+len(sep):]
		}
	}
	return path
}

// qualify normalizes an import path into the module-qualified form used
// as ImportMap keys, language-specific only in its separator convention.
func qualify(path string, lang astx.Language) string {
	switch lang {
	case astx.LangRust:
		return strings.ReplaceAll(path, "/", "::")
	default:
		return path
	}
}
