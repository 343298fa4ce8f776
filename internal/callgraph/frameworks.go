package callgraph

import (
	"strings"

	"github.com/standardbeagle/lci/internal/astx"
)

// FrameworkRule declares that functions matching Match are invoked by a
// framework rather than by any visible caller in the codebase: test
// runners, HTTP routers, serialization hooks, CLI command registries.
// Keeping these as data (rather than scattered `if` checks per detector)
// means adding a framework is adding a table entry rather than touching
// the resolution logic itself.
type FrameworkRule struct {
	Name        string
	Language    astx.Language
	MatchName   func(name string) bool
	MatchKind   astx.FunctionKind
	RequireKind bool
}

// DefaultFrameworkRules is the built-in table, grounded on the test
// naming conventions and framework entry points the pack's example repos
// actually use (Go's `TestXxx`/`BenchmarkXxx`, pytest's `test_*`, JUnit's
// `@Test`-style naming fallback, Rust's `#[test]` fallback by name).
func DefaultFrameworkRules() []FrameworkRule {
	return []FrameworkRule{
		{
			Name:     "go-test-function",
			Language: astx.LangGo,
			MatchName: func(name string) bool {
				return strings.HasPrefix(name, "Test") || strings.HasPrefix(name, "Benchmark") || strings.HasPrefix(name, "Fuzz") || strings.HasPrefix(name, "Example")
			},
		},
		{
			Name:     "go-main-entrypoint",
			Language: astx.LangGo,
			MatchName: func(name string) bool {
				return name == "main" || name == "init"
			},
		},
		{
			Name:     "python-test-function",
			Language: astx.LangPython,
			MatchName: func(name string) bool {
				return strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test")
			},
		},
		{
			Name:     "js-test-function",
			Language: astx.LangJavaScript,
			MatchName: func(name string) bool {
				lower := strings.ToLower(name)
				return strings.Contains(lower, "test") || strings.Contains(lower, "spec")
			},
		},
		{
			Name:     "ts-test-function",
			Language: astx.LangTypeScript,
			MatchName: func(name string) bool {
				lower := strings.ToLower(name)
				return strings.Contains(lower, "test") || strings.Contains(lower, "spec")
			},
		},
		{
			Name:     "rust-test-function",
			Language: astx.LangRust,
			MatchName: func(name string) bool {
				return strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test") || name == "main"
			},
		},
		{
			Name:     "java-test-function",
			Language: astx.LangJava,
			MatchName: func(name string) bool {
				return strings.HasPrefix(name, "test") || strings.HasPrefix(name, "Test") || name == "main"
			},
		},
		{
			Name:     "csharp-entrypoint",
			Language: astx.LangCSharp,
			MatchName: func(name string) bool {
				return name == "Main" || strings.HasPrefix(name, "Test")
			},
		},
		{
			Name:     "php-test-function",
			Language: astx.LangPHP,
			MatchName: func(name string) bool {
				return strings.HasPrefix(name, "test")
			},
		},
		{
			Name:     "cpp-entrypoint",
			Language: astx.LangCpp,
			MatchName: func(name string) bool {
				return name == "main"
			},
		},
		{
			Name:     "zig-test-entrypoint",
			Language: astx.LangZig,
			MatchName: func(name string) bool {
				return name == "main" || strings.HasPrefix(name, "test")
			},
		},
	}
}

// matches reports whether a FunctionSite in a file of language lang
// matches this rule.
func (r FrameworkRule) matches(lang astx.Language, site astx.FunctionSite) bool {
	if r.Language != lang {
		return false
	}
	if r.RequireKind && site.Kind != r.MatchKind {
		return false
	}
	if r.MatchName != nil && !r.MatchName(site.Name) {
		return false
	}
	return true
}
