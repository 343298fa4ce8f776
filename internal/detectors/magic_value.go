package detectors

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci/internal/ids"
)

// allowedLiterals are numeric literals common enough in ordinary control
// flow (loop bounds, sentinel returns) that flagging them as "magic"
// would just be noise.
var allowedLiterals = map[string]bool{
	"0": true, "1": true, "-1": true, "2": true, "100": true, "\"\"": true,
}

var literalKinds = map[string]bool{
	"int_literal": true, "integer_literal": true, "number_literal": true,
	"float_literal": true, "decimal_literal": true,
}

// magicValueThreshold is how many times a distinct unexplained literal
// must repeat across one function before it's worth flagging; one
// isolated constant is usually self-explanatory in context, three copies
// of the same unnamed number is the smell.
const magicValueThreshold = 3

// DetectMagicValues walks a function body and flags numeric literals that
// appear at least magicValueThreshold times without ever being bound to a named
// constant, the repetition being the actual signal (a single literal
// appearing once is rarely worth a named constant).
func DetectMagicValues(node *tree_sitter.Node, content []byte, file, funcName string, startLine int) []Finding {
	if node == nil {
		return nil
	}
	counts := make(map[string]int)
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if literalKinds[n.Kind()] {
			text := string(n.Utf8Text(content))
			if !allowedLiterals[text] {
				counts[text]++
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)

	var findings []Finding
	for literal, count := range counts {
		if count < magicValueThreshold {
			continue
		}
		findings = append(findings, Finding{
			Category: CategoryMagicValue,
			Severity: SeverityLow,
			Function: ids.New(file, funcName, startLine),
			File:     file,
			Line:     startLine,
			Message:  fmt.Sprintf("literal %s repeats %d times in %s without a named constant", literal, count, funcName),
			Evidence: map[string]any{"literal": literal, "count": count},
		})
	}
	return findings
}
