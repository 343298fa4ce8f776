// Package ids defines the canonical identity types shared across the
// analytical engine: every component from the call-graph builder to the
// prioritizer refers to functions by FunctionID rather than by pointer or
// AST node, so identity survives across phase boundaries and worker
// goroutines.
package ids

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FunctionID is the canonical identity for a function, method, or closure:
// (file path, function name, start line). Two FunctionIDs are equal iff all
// three components are equal after path normalization, so callers should
// construct values with New rather than the struct literal directly.
type FunctionID struct {
	File      string
	Name      string
	StartLine int
}

// New builds a FunctionID with its file path normalized to a clean,
// slash-separated form so identities built from different working
// directories or on different platforms still compare equal.
func New(file, name string, startLine int) FunctionID {
	return FunctionID{
		File:      NormalizePath(file),
		Name:      name,
		StartLine: startLine,
	}
}

// NormalizePath cleans a path and forces forward slashes, matching the
// "equal iff all three components are equal after path normalization"
// invariant from the data model.
func NormalizePath(file string) string {
	clean := filepath.Clean(file)
	return filepath.ToSlash(clean)
}

// String renders a FunctionID as "file:name:line", used in log messages
// and as a stable map key source for caches keyed by string.
func (f FunctionID) String() string {
	return fmt.Sprintf("%s:%s:%d", f.File, f.Name, f.StartLine)
}

// FileKey returns the normalized file path alone, used by components that
// index per-file (the coverage index, file-level debt items).
func (f FunctionID) FileKey() string {
	return f.File
}

// SamePackage reports whether two FunctionIDs live under the same
// directory, a coarse locality check used by the dependency factor to
// distinguish local calls from cross-module ones.
func (f FunctionID) SamePackage(other FunctionID) bool {
	return filepath.Dir(f.File) == filepath.Dir(other.File)
}

// ModulePath returns the directory component of the file, used when
// building the module-dependency graph (distinct from the function call
// graph) for the cycle-detection property in the testable-properties list.
func ModulePath(file string) string {
	dir := filepath.Dir(NormalizePath(file))
	if dir == "." {
		return ""
	}
	return dir
}

// SameModule reports whether two file paths normalize to the same module
// (directory). Import edges with equal source and target modules violate
// the self-loop-freedom invariant and must never be emitted.
func SameModule(a, b string) bool {
	return ModulePath(a) == ModulePath(b)
}

// IsTestName reports whether a function name matches the common
// test-function naming conventions used across the supported languages
// (Go Test*, Python test_*, Rust #[test] fns commonly named test_*, JS/TS
// it()/describe() callbacks handled separately by the AST frontend).
func IsTestName(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "Test") && len(name) > 4:
		return true
	case strings.HasPrefix(lower, "test_"):
		return true
	case strings.HasSuffix(lower, "_test"):
		return true
	case strings.HasPrefix(lower, "test"):
		return true
	default:
		return false
	}
}
