// Package complexity implements complexity analysis: cyclomatic,
// cognitive, nesting, and length metrics generalized across languages via
// a per-language node-kind table, plus entropy-adjusted complexity with an
// LRU cache for the repeated token-stream hashing. A single decision-point
// walker drives every language; the node-kind tables cover every grammar
// the tree-sitter frontend registry wires in.
package complexity

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci/internal/astx"
)

// Metrics is the full set of structural measurements for one function,
// matching the FunctionMetrics entry in the data model.
type Metrics struct {
	Cyclomatic         int
	Cognitive          int
	MaxNestingDepth    int
	LengthLines        int
	EntropyScore       float64 // 0 (highly repetitive) .. 1 (highly varied)
	AdjustedComplexity float64 // cyclomatic scaled down for low-entropy repetition
}

// decisionKinds lists the tree-sitter node kinds that count as a single
// decision point (branch) for cyclomatic complexity, per language. Shared
// across the C-family and script-family grammars where kind names align;
// each grammar's outliers get their own entries appended at init.
var decisionKinds = map[astx.Language]map[string]bool{}

// nestingKinds lists node kinds that increase nesting depth when entered,
// used by both the cognitive-complexity nesting multiplier and the
// max-nesting-depth metric directly.
var nestingKinds = map[astx.Language]map[string]bool{}

func init() {
	common := []string{
		"if_statement", "else_clause", "elif_clause",
		"for_statement", "for_in_statement", "while_statement", "do_statement",
		"switch_statement", "case_clause", "case_statement", "match_expression", "match_arm",
		"catch_clause", "catch_block", "except_clause",
		"conditional_expression", "ternary_expression",
	}
	commonNesting := []string{
		"if_statement", "for_statement", "for_in_statement", "while_statement", "do_statement",
		"switch_statement", "match_expression", "try_statement", "catch_clause",
	}
	for _, lang := range []astx.Language{
		astx.LangGo, astx.LangPython, astx.LangJavaScript, astx.LangTypeScript,
		astx.LangRust, astx.LangJava, astx.LangCSharp, astx.LangPHP, astx.LangCpp, astx.LangZig,
	} {
		decisionKinds[lang] = toSet(common)
		nestingKinds[lang] = toSet(commonNesting)
	}
	// Per-language additions for grammar-specific kind names not covered
	// by the common table.
	addKinds(decisionKinds[astx.LangRust], "if_let_expression", "while_let_expression", "match_arm")
	addKinds(nestingKinds[astx.LangRust], "if_let_expression", "while_let_expression", "loop_expression")
	addKinds(decisionKinds[astx.LangPython], "with_statement", "list_comprehension", "conditional_expression")
	addKinds(decisionKinds[astx.LangJavaScript], "switch_case", "ternary_expression")
	addKinds(decisionKinds[astx.LangTypeScript], "switch_case", "ternary_expression")
	addKinds(decisionKinds[astx.LangCpp], "case_statement")
	addKinds(decisionKinds[astx.LangCSharp], "switch_section", "when_clause")
	addKinds(decisionKinds[astx.LangZig], "switch_case", "catch_clause")
}

func toSet(kinds []string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

func addKinds(set map[string]bool, kinds ...string) {
	for _, k := range kinds {
		set[k] = true
	}
}

// booleanOperators count as extra decision points within an
// expression (&&, ||, and, or); each short-circuit operator in a
// condition is its own branch for cyclomatic purposes, matching standard
// McCabe counting for compound boolean conditions.
var booleanOperators = toSet([]string{"&&", "||", "and", "or"})

// Analyze walks a function's subtree and produces its structural metrics.
// lengthLines is passed in directly (end - start + 1) since that's already
// computed by the AST frontend and duplicating the arithmetic here would
// just be another place for it to drift.
func Analyze(lang astx.Language, node *tree_sitter.Node, content []byte, lengthLines int) Metrics {
	m := Metrics{Cyclomatic: 1, LengthLines: lengthLines}
	if node == nil {
		m.Cognitive = 1
		return m
	}
	dkinds := decisionKinds[lang]
	nkinds := nestingKinds[lang]

	var walk func(n *tree_sitter.Node, depth int)
	maxDepth := 0
	cognitive := 0
	cyclomatic := 1

	walk = func(n *tree_sitter.Node, depth int) {
		kind := n.Kind()
		isDecision := dkinds[kind]
		isNesting := nkinds[kind]

		if isDecision {
			cyclomatic++
			// Cognitive complexity penalizes nesting: each decision point
			// costs 1 plus the current nesting depth, so a branch buried
			// three levels deep costs more than a top-level one.
			cognitive += 1 + depth
		}
		if kind == "binary_expression" {
			opText := string(n.Utf8Text(content))
			for op := range booleanOperators {
				if containsOperator(opText, op) {
					cyclomatic++
					cognitive++
					break
				}
			}
		}

		childDepth := depth
		if isNesting {
			childDepth = depth + 1
			if childDepth > maxDepth {
				maxDepth = childDepth
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i), childDepth)
		}
	}
	walk(node, 0)

	m.Cyclomatic = cyclomatic
	m.Cognitive = cognitive
	if cognitive == 0 {
		m.Cognitive = 1
	}
	m.MaxNestingDepth = maxDepth

	tokens := tokenize(node, content)
	m.EntropyScore = shannonEntropy(tokens)
	m.AdjustedComplexity = adjustedComplexity(float64(cyclomatic), m.EntropyScore, len(tokens))
	return m
}

func containsOperator(text, op string) bool {
	if len(op) == 0 || len(text) < len(op) {
		return false
	}
	for i := 0; i+len(op) <= len(text); i++ {
		if text[i:i+len(op)] == op {
			return true
		}
	}
	return false
}
