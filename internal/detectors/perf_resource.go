package detectors

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci/internal/astx"
	"github.com/standardbeagle/lci/internal/ids"
)

// allocatingCallNames are calls that allocate (or re-allocate) memory,
// flagged only when they occur textually inside a loop body, the
// per-iteration-allocation pattern that dominates profiler output in
// every supported language.
var allocatingCallNames = map[string]bool{
	"append": true, "make": true, "new": true, "malloc": true, "calloc": true,
	"push_back": true, "emplace_back": true, "concat": true,
}

var loopKinds = map[string]bool{
	"for_statement": true, "for_in_statement": true, "while_statement": true, "do_statement": true,
}

// DetectPerformanceIssues flags allocation calls nested inside loop
// bodies, a conservative, language-agnostic proxy for the "quadratic
// accidental complexity from repeated allocation" class of performance
// debt.
func DetectPerformanceIssues(lang astx.Language, node *tree_sitter.Node, content []byte, file, funcName string, startLine int) []Finding {
	if node == nil {
		return nil
	}
	var findings []Finding
	var walk func(n *tree_sitter.Node, loopDepth int)
	walk = func(n *tree_sitter.Node, loopDepth int) {
		depth := loopDepth
		if loopKinds[n.Kind()] {
			depth++
		}
		if depth > 0 && n.Kind() == "call_expression" {
			if name := calleeNameOf(n, content); allocatingCallNames[name] {
				findings = append(findings, Finding{
					Category: CategoryPerformance,
					Severity: SeverityMedium,
					Function: ids.New(file, funcName, startLine),
					File:     file,
					Line:     int(n.StartPosition().Row),
					Message:  fmt.Sprintf("%s allocates inside a loop via %s", funcName, name),
					Evidence: map[string]any{"call": name, "loop_depth": depth},
				})
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i), depth)
		}
	}
	walk(node, 0)
	return findings
}

func calleeNameOf(n *tree_sitter.Node, content []byte) string {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	text := string(fn.Utf8Text(content))
	// Strip a receiver-qualified prefix (`buf.append` -> `append`) so the
	// allocatingCallNames lookup matches regardless of qualification.
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '.' {
			return text[i+1:]
		}
	}
	return text
}

// resourceAcquireNames are calls that acquire a resource needing an
// explicit release (file handles, DB connections, locks, sockets).
var resourceAcquireNames = map[string]bool{
	"Open": true, "open": true, "Dial": true, "connect": true, "Lock": true,
	"BeginTx": true, "NewFile": true, "fopen": true,
}

// resourceReleaseNames are the corresponding release calls; their
// presence anywhere in the same function body is treated as evidence the
// resource is released somewhere, which is intentionally permissive (this
// detector flags definite absence, not definite leak).
var resourceReleaseNames = map[string]bool{
	"Close": true, "close": true, "Unlock": true, "Commit": true, "Rollback": true, "fclose": true,
	"Disconnect": true,
}

// DetectResourceManagementIssues flags a function that acquires a
// resource but calls no matching release function and contains no
// `defer`/`with`/`using` statement, the structural pattern a resource leak
// takes across every language in the pack regardless of its specific
// cleanup keyword.
func DetectResourceManagementIssues(file *astx.File) []Finding {
	var findings []Finding
	for idx, fn := range file.Functions {
		acquired := ""
		released := false
		hasCleanupConstruct := false
		for _, c := range file.Calls[idx] {
			if resourceAcquireNames[c.CalleeName] {
				acquired = c.CalleeName
			}
			if resourceReleaseNames[c.CalleeName] {
				released = true
			}
			if c.CalleeName == "defer" || c.CalleeName == "with" || c.CalleeName == "using" {
				hasCleanupConstruct = true
			}
		}
		if acquired != "" && !released && !hasCleanupConstruct {
			findings = append(findings, Finding{
				Category: CategoryResourceManagement,
				Severity: SeverityHigh,
				Function: ids.New(file.Path, fn.Name, fn.StartLine),
				File:     file.Path,
				Line:     fn.StartLine,
				Message:  fmt.Sprintf("%s acquires a resource via %s with no visible release", fn.Name, acquired),
				Evidence: map[string]any{"acquire": acquired},
			})
		}
	}
	return findings
}
