package resolver

import (
	"path/filepath"
	"strings"
)

// ModuleResolver maps a project's qualified import paths to concrete file
// paths on disk against a module's declared root. Kept separate from
// ImportMap (which resolves local names within one file) because this
// resolution is project-wide and shared across every file.
type ModuleResolver struct {
	projectRoot string
	moduleName  string
	filesByPath map[string]bool // normalized file paths known to the project
}

// NewModuleResolver creates a resolver rooted at projectRoot, with
// moduleName the project's own module/package prefix (e.g. a Go module
// path or a Python package name) so module-qualified imports can be told
// apart from external dependencies.
func NewModuleResolver(projectRoot, moduleName string, knownFiles []string) *ModuleResolver {
	set := make(map[string]bool, len(knownFiles))
	for _, f := range knownFiles {
		set[filepath.ToSlash(filepath.Clean(f))] = true
	}
	return &ModuleResolver{
		projectRoot: projectRoot,
		moduleName:  moduleName,
		filesByPath: set,
	}
}

// ResolveModulePath resolves a qualified import path to a project file,
// reporting whether it is internal, and if so which file represents it.
// Resolution order: relative paths first, then module-prefixed paths,
// anything else is treated as external.
func (r *ModuleResolver) ResolveModulePath(importPath, fromFile string) (resolvedFile string, internal bool) {
	switch {
	case strings.HasPrefix(importPath, "./"), strings.HasPrefix(importPath, "../"):
		target := filepath.ToSlash(filepath.Clean(filepath.Join(filepath.Dir(fromFile), importPath)))
		if candidate, ok := r.matchFile(target); ok {
			return candidate, true
		}
		return "", false
	case r.moduleName != "" && strings.HasPrefix(importPath, r.moduleName):
		rel := strings.TrimPrefix(strings.TrimPrefix(importPath, r.moduleName), "/")
		target := filepath.ToSlash(filepath.Join(r.projectRoot, rel))
		if candidate, ok := r.matchFile(target); ok {
			return candidate, true
		}
		return "", false
	default:
		return "", false
	}
}

// matchFile finds a known file at target or, if target is a directory,
// the first known file under it: a "directory with Go files, use the
// first as representative" fallback.
func (r *ModuleResolver) matchFile(target string) (string, bool) {
	if r.filesByPath[target] {
		return target, true
	}
	prefix := target + "/"
	var best string
	for f := range r.filesByPath {
		if strings.HasPrefix(f, prefix) {
			if best == "" || f < best {
				best = f
			}
		}
	}
	if best != "" {
		return best, true
	}
	return "", false
}
