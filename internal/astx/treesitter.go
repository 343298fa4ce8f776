package astx

import (
	"fmt"
	"strings"
	"sync"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// langSpec wires one Language to its tree-sitter grammar, file extensions,
// and symbol-extraction query. Queries follow the same capture-name
// convention throughout: `.function`/`.method` for callables (with a
// `.name` sub-capture), `.class`/`.struct`/`.interface`/`.enum`/`.type` for
// type definitions, and `.import` for import/use statements.
type langSpec struct {
	lang  Language
	exts  []string
	grammar func() *tree_sitter.Language
	query string
}

var extToLang = map[string]Language{}

var specs = []langSpec{
	{
		lang: LangGo, exts: []string{".go"},
		grammar: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) },
		query: `
			(function_declaration name: (identifier) @function.name) @function
			(method_declaration
				receiver: (parameter_list (parameter_declaration type: [(pointer_type (type_identifier) @method.receiver) (type_identifier) @method.receiver]))
				name: (field_identifier) @method.name) @method
			(type_declaration (type_spec name: (type_identifier) @type.name type: (struct_type))) @struct
			(type_declaration (type_spec name: (type_identifier) @type.name type: (interface_type))) @interface
			(func_literal) @function
			(import_spec path: (interpreted_string_literal) @import.path) @import
		`,
	},
	{
		lang: LangPython, exts: []string{".py"},
		grammar: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
		query: `
			(class_definition
				body: (block (function_definition name: (identifier) @method.name))) @method
			(function_definition name: (identifier) @function.name) @function
			(class_definition name: (identifier) @class.name) @class
			(import_statement) @import
			(import_from_statement) @import
			(decorated_definition) @decorated
		`,
	},
	{
		lang: LangJavaScript, exts: []string{".js", ".jsx", ".mjs"},
		grammar: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_javascript.Language()) },
		query: `
			(function_declaration name: (identifier) @function.name) @function
			(generator_function_declaration name: (identifier) @function.name) @function
			(variable_declarator
				name: (identifier) @function.name
				value: [(arrow_function) (function_expression) (generator_function)]) @function
			(method_definition name: (property_identifier) @method.name) @method
			(class_declaration name: (identifier) @class.name) @class
			(export_statement declaration: (_) @export)
			(import_statement source: (string) @import.path) @import
		`,
	},
	{
		lang: LangTypeScript, exts: []string{".ts", ".tsx"},
		grammar: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) },
		query: `
			(function_declaration name: (identifier) @function.name) @function
			(generator_function_declaration name: (identifier) @function.name) @function
			(method_definition name: (property_identifier) @method.name) @method
			(variable_declarator
				name: (identifier) @function.name
				value: [(arrow_function) (function_expression)]) @function
			(class_declaration name: (type_identifier) @class.name) @class
			(interface_declaration name: (type_identifier) @interface.name) @interface
			(type_alias_declaration name: (type_identifier) @type.name) @type
			(enum_declaration name: (identifier) @enum.name) @enum
			(import_statement source: (string) @import.path) @import
		`,
	},
	{
		lang: LangRust, exts: []string{".rs"},
		grammar: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
		query: `
			(impl_item
				body: (declaration_list (function_item name: (identifier) @method.name))) @method
			(trait_item
				body: (declaration_list (function_item name: (identifier) @method.name))) @traitmethod
			(function_item name: (identifier) @function.name) @function
			(struct_item name: (type_identifier) @struct.name) @struct
			(enum_item name: (type_identifier) @enum.name) @enum
			(trait_item name: (type_identifier) @interface.name) @interface
			(type_item name: (type_identifier) @type.name) @type
			(use_declaration) @import
			(mod_item name: (identifier) @module.name) @module
		`,
	},
	{
		lang: LangJava, exts: []string{".java"},
		grammar: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) },
		query: `
			(method_declaration name: (identifier) @method.name) @method
			(constructor_declaration name: (identifier) @constructor.name) @constructor
			(class_declaration name: (identifier) @class.name) @class
			(interface_declaration name: (identifier) @interface.name) @interface
			(enum_declaration name: (identifier) @enum.name) @enum
			(import_declaration) @import
		`,
	},
	{
		lang: LangCSharp, exts: []string{".cs"},
		grammar: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_csharp.Language()) },
		query: `
			(method_declaration name: (identifier) @method.name) @method
			(constructor_declaration name: (identifier) @constructor.name) @constructor
			(class_declaration name: (identifier) @class.name) @class
			(interface_declaration name: (identifier) @interface.name) @interface
			(struct_declaration name: (identifier) @struct.name) @struct
			(enum_declaration name: (identifier) @enum.name) @enum
			(using_directive) @import
		`,
	},
	{
		lang: LangPHP, exts: []string{".php", ".phtml"},
		grammar: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()) },
		query: `
			(class_declaration name: (name) @class.name) @class
			(interface_declaration name: (name) @interface.name) @interface
			(trait_declaration name: (name) @trait.name) @trait
			(enum_declaration name: (name) @enum.name) @enum
			(function_definition name: (name) @function.name) @function
			(method_declaration name: (name) @method.name) @method
			(namespace_use_declaration) @import
		`,
	},
	{
		lang: LangCpp, exts: []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"},
		grammar: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
		query: `
			(function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
			(class_specifier name: (type_identifier) @class.name) @class
			(struct_specifier name: (type_identifier) @struct.name) @struct
			(enum_specifier name: (type_identifier) @enum.name) @enum
			(preproc_include) @import
			(using_declaration) @import
		`,
	},
	{
		lang: LangZig, exts: []string{".zig"},
		grammar: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_zig.Language()) },
		query: `
			(function_declaration (identifier) @function.name) @function
			(variable_declaration (identifier) @struct.name (struct_declaration) @struct)
			(variable_declaration (identifier) @struct.name (union_declaration) @struct)
		`,
	},
}

func init() {
	for _, s := range specs {
		for _, ext := range s.exts {
			extToLang[ext] = s.lang
		}
	}
}

// tsFrontend implements Frontend for one tree-sitter grammar. Parser and
// Query are built once and reused across files; tree-sitter parsers are
// not safe for concurrent Parse calls, so the Registry hands out one
// tsFrontend per worker rather than sharing a single instance across the
// CGO binding.
type tsFrontend struct {
	spec   langSpec
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
}

func newTSFrontend(spec langSpec) (*tsFrontend, error) {
	language := spec.grammar()
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("astx: set language %s: %w", spec.lang, err)
	}
	query, _ := tree_sitter.NewQuery(language, spec.query)
	// tree-sitter's Go binding occasionally returns a typed-nil error on a
	// successfully constructed query; a nil Query is the reliable signal.
	if query == nil {
		return nil, fmt.Errorf("astx: failed to compile query for %s", spec.lang)
	}
	return &tsFrontend{spec: spec, parser: parser, query: query}, nil
}

func (f *tsFrontend) Language() Language { return f.spec.lang }

func (f *tsFrontend) Parse(path string, content []byte) (*File, error) {
	tree := f.parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("astx: parse failed for %s", path)
	}

	file := &File{
		Path:     path,
		Language: f.spec.lang,
		Content:  content,
		Tree:     tree,
		Calls:    make(map[int][]CallSite),
	}

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(f.query, tree.RootNode(), content)
	captureNames := f.query.CaptureNames()

	names := make(map[string]string, 4)
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for k := range names {
			delete(names, k)
		}
		for _, c := range match.Captures {
			cn := captureNames[c.Index]
			// Dotted captures (function.name, method.receiver, import.path)
			// carry text operands; undotted ones mark the node itself.
			if strings.Contains(cn, ".") {
				names[cn] = string(content[c.Node.StartByte():c.Node.EndByte()])
			}
		}
		for _, c := range match.Captures {
			node := c.Node
			switch captureNames[c.Index] {
			case "function":
				file.Functions = append(file.Functions, f.functionSite(&node, names, "function.name", FuncKindFunction, ""))
			case "method", "traitmethod":
				recv := names["method.receiver"]
				isTrait := captureNames[c.Index] == "traitmethod"
				site := f.functionSite(&node, names, "method.name", FuncKindMethod, recv)
				site.IsTraitMethod = isTrait
				file.Functions = append(file.Functions, site)
			case "constructor":
				file.Functions = append(file.Functions, f.functionSite(&node, names, "constructor.name", FuncKindConstructor, ""))
			case "import":
				file.Imports = append(file.Imports, f.rawImport(&node, names, content))
			case "struct":
				file.TypeDefs = append(file.TypeDefs, f.typeDef(&node, names, "struct.name", TypeDefStruct))
			case "class":
				file.TypeDefs = append(file.TypeDefs, f.typeDef(&node, names, "class.name", TypeDefClass))
			case "interface":
				file.TypeDefs = append(file.TypeDefs, f.typeDef(&node, names, "interface.name", TypeDefInterface))
			case "enum":
				file.TypeDefs = append(file.TypeDefs, f.typeDef(&node, names, "enum.name", TypeDefEnum))
			case "type":
				file.TypeDefs = append(file.TypeDefs, f.typeDef(&node, names, "type.name", TypeDefAlias))
			}
		}
	}

	for i := range file.Functions {
		file.Calls[i] = extractCallSites(file.Functions[i].Node, content)
	}

	return file, nil
}

func (f *tsFrontend) functionSite(node *tree_sitter.Node, names map[string]string, nameKey string, kind FunctionKind, receiver string) FunctionSite {
	name := names[nameKey]
	if name == "" {
		name = "<anonymous>"
	}
	vis := VisibilityPrivate
	if len(name) > 0 && strings.ToUpper(name[:1]) == name[:1] {
		vis = VisibilityPublic
	}
	return FunctionSite{
		Name:         name,
		Kind:         kind,
		ReceiverType: receiver,
		StartLine:    int(node.StartPosition().Row),
		EndLine:      int(node.EndPosition().Row),
		StartByte:    uint(node.StartByte()),
		EndByte:      uint(node.EndByte()),
		Visibility:   vis,
		Node:         node,
		ReturnsSelf:  returnsSelfLike(name, receiver),
	}
}

func returnsSelfLike(name, receiver string) bool {
	lower := strings.ToLower(name)
	return receiver != "" && (strings.HasPrefix(lower, "new") || lower == "create" || lower == "make")
}

func (f *tsFrontend) rawImport(node *tree_sitter.Node, names map[string]string, content []byte) RawImport {
	path := strings.Trim(names["import.path"], "\"'")
	var alias string
	var isGlob bool
	if path == "" {
		// Grammars whose import node has no single path field (Python
		// import_statement, Rust use_declaration, Java/C#/PHP directives)
		// are parsed from the statement's raw text instead.
		path, alias, isGlob = parseImportText(string(content[node.StartByte():node.EndByte()]))
	}
	return RawImport{
		Path:       path,
		Alias:      alias,
		IsGlob:     isGlob,
		IsRelative: strings.HasPrefix(path, ".") || strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../"),
		Line:       int(node.StartPosition().Row),
	}
}

// parseImportText extracts (path, alias, glob) from an import statement's
// source text: "import b", "from a import x", "use crate::foo::*;",
// "using Foo.Bar;", "#include <foo.h>".
func parseImportText(text string) (path, alias string, glob bool) {
	text = strings.TrimSuffix(strings.TrimSpace(text), ";")
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", "", false
	}
	switch fields[0] {
	case "import", "from", "use", "using", "include", "#include", "require":
		path = strings.Trim(fields[1], "\"'<>,")
	default:
		return "", "", false
	}
	for i := 2; i+1 < len(fields); i++ {
		if fields[i] == "as" {
			alias = strings.Trim(fields[i+1], "\"'")
			break
		}
	}
	if strings.HasSuffix(path, "::*") || strings.HasSuffix(path, ".*") {
		glob = true
		path = strings.TrimSuffix(strings.TrimSuffix(path, "::*"), ".*")
	}
	return path, alias, glob
}

func (f *tsFrontend) typeDef(node *tree_sitter.Node, names map[string]string, nameKey string, kind TypeDefKind) RawTypeDef {
	return RawTypeDef{
		Name: names[nameKey],
		Kind: kind,
		Line: int(node.StartPosition().Row),
	}
}

// extractCallSites walks a function body collecting call/method-call
// expressions, tagging each with the qualifier path so the call-graph
// builder can apply its resolution order.
func extractCallSites(node *tree_sitter.Node, content []byte) []CallSite {
	if node == nil {
		return nil
	}
	var sites []CallSite
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "call_expression", "method_call_expression", "call", "invocation_expression",
			"object_creation_expression", "function_call_expression":
			if site, ok := parseCallExpression(n, content); ok {
				sites = append(sites, site)
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return sites
}

func parseCallExpression(n *tree_sitter.Node, content []byte) (CallSite, bool) {
	// The callee is conventionally the first named child that is not the
	// argument list; tree-sitter grammars differ in field names across
	// languages, so we fall back to a structural heuristic: the last child
	// that is not an argument_list/arguments node.
	var calleeNode *tree_sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case "argument_list", "arguments":
			continue
		default:
			calleeNode = c
		}
	}
	if calleeNode == nil {
		return CallSite{}, false
	}
	text := string(content[calleeNode.StartByte():calleeNode.EndByte()])
	parts := splitQualifier(text)
	if len(parts) == 0 {
		return CallSite{}, false
	}
	last := parts[len(parts)-1]
	return CallSite{
		CalleeName:   last,
		Qualifier:    parts[:len(parts)-1],
		ReceiverExpr: strings.Join(parts[:max(0, len(parts)-1)], "."),
		Line:         int(n.StartPosition().Row),
		IsMethodCall: len(parts) > 1,
	}, true
}

func splitQualifier(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	sep := "."
	switch {
	case strings.Contains(text, "::"):
		sep = "::"
	case strings.Contains(text, "->"):
		sep = "->"
	}
	parts := strings.Split(text, sep)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Registry builds per-language Frontends on demand and keeps a template
// spec warm; Acquire returns a fresh *tsFrontend safe for exclusive use by
// one worker goroutine (tree-sitter parsers are not concurrency-safe).
type Registry struct {
	mu    sync.Mutex
	specs map[Language]langSpec
}

// NewRegistry builds a Registry covering every language with a wired
// tree-sitter grammar.
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[Language]langSpec, len(specs))}
	for _, s := range specs {
		r.specs[s.lang] = s
	}
	return r
}

// Acquire returns a new Frontend for lang, or an error if the grammar
// failed to initialize (never returns a nil Frontend and a nil error).
func (r *Registry) Acquire(lang Language) (Frontend, error) {
	r.mu.Lock()
	spec, ok := r.specs[lang]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("astx: no frontend wired for %s", lang)
	}
	return newTSFrontend(spec)
}

// SupportedLanguages lists every Language with a wired frontend, in a
// stable order, used by CLI help output and config validation.
func (r *Registry) SupportedLanguages() []Language {
	langs := make([]Language, 0, len(r.specs))
	for _, s := range specs {
		if _, ok := r.specs[s.lang]; ok {
			langs = append(langs, s.lang)
		}
	}
	return langs
}
