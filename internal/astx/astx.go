// Package astx provides the per-language AST frontends. Each
// supported language is parsed by tree-sitter into a uniform FunctionSite
// slice carrying span/line information, so the type registry, import
// resolver, and call-graph builder downstream never branch on language.
package astx

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// Language identifies one of the frontends wired into the engine.
type Language int

const (
	LangUnknown Language = iota
	LangGo
	LangPython
	LangJavaScript
	LangTypeScript
	LangRust
	LangJava
	LangCSharp
	LangPHP
	LangCpp
	LangZig
)

func (l Language) String() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return "unknown"
}

var languageNames = map[Language]string{
	LangGo:         "go",
	LangPython:     "python",
	LangJavaScript: "javascript",
	LangTypeScript: "typescript",
	LangRust:       "rust",
	LangJava:       "java",
	LangCSharp:     "csharp",
	LangPHP:        "php",
	LangCpp:        "cpp",
	LangZig:        "zig",
}

// LanguageForExt maps a file extension (with leading dot) to its Language,
// or LangUnknown if no frontend is wired for it.
func LanguageForExt(ext string) Language {
	return extToLang[ext]
}

// FunctionKind distinguishes free functions from methods and closures so
// the type registry can key method lookups on (type, name).
type FunctionKind int

const (
	FuncKindFunction FunctionKind = iota
	FuncKindMethod
	FuncKindClosure
	FuncKindConstructor
)

// FunctionSite is one function/method/closure definition extracted from a
// single file's AST, with enough span information for FunctionMetrics and
// ids.FunctionID construction.
type FunctionSite struct {
	Name         string
	Kind         FunctionKind
	ReceiverType string // non-empty for methods: the declaring struct/class name
	StartLine    int    // 0-based, matches tree-sitter's Row
	EndLine      int
	StartByte    uint
	EndByte      uint
	Visibility   Visibility
	IsTraitMethod bool
	Node         *tree_sitter.Node
	Params       []Param
	ReturnsSelf  bool
}

// Param is a single parameter of a FunctionSite, used by the constructor
// detector and long-parameter-list detector.
type Param struct {
	Name string
	Type string
}

// Visibility mirrors the pub/private distinction the languages in the
// pack all carry in some form (Go capitalization, Rust `pub`, TypeScript
// `export`, Python `_` convention).
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
)

// CallSite is one call expression found in a function body: `X.m(...)` or
// `p::q::f(...)`, retained with enough structure for the call-graph
// builder's resolution order.
type CallSite struct {
	CalleeName   string   // the final identifier: `m` or `f`
	Qualifier    []string // path/receiver segments before the final identifier
	ReceiverExpr string   // textual receiver expression, used for local type inference
	Line         int
	IsMethodCall bool
}

// File is the parsed representation of one source file: its language, its
// function sites, its call sites (grouped by enclosing function), and raw
// import statements for the resolver.
type File struct {
	Path      string
	Language  Language
	Content   []byte
	Tree      *tree_sitter.Tree
	Functions []FunctionSite
	Calls     map[int][]CallSite // keyed by index into Functions
	Imports   []RawImport
	Exports   []RawExport
	TypeDefs  []RawTypeDef
}

// RawImport is a single import/use/require statement as written, before
// resolution. `use X as Y` style aliases populate Alias.
type RawImport struct {
	Path    string
	Alias   string
	IsGlob  bool
	IsRelative bool
	Line    int
}

// RawExport models `pub use` / re-export statements.
type RawExport struct {
	Name       string
	SourcePath string // non-empty when this is a re-export
	Line       int
}

// RawTypeDef is a struct/enum/trait/class/interface definition as seen by
// the frontend, handed to the type registry for field/method resolution.
type RawTypeDef struct {
	Name       string
	Kind       TypeDefKind
	Fields     []Param
	Methods    []string
	Generics   []string
	Implements []string // trait/interface names this type implements
	Line       int
}

type TypeDefKind int

const (
	TypeDefStruct TypeDefKind = iota
	TypeDefTupleStruct
	TypeDefUnitStruct
	TypeDefEnum
	TypeDefTrait
	TypeDefAlias
	TypeDefClass
	TypeDefInterface
)

// Frontend parses one file's bytes into a File. Implementations are
// stateless except for their cached tree-sitter Parser/Query pair; the
// parser is not safe for concurrent Parse calls, so each worker uses its
// own Frontend from Registry.Acquire rather than sharing one instance.
type Frontend interface {
	Language() Language
	Parse(path string, content []byte) (*File, error)
}
