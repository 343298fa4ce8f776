// Package purity implements purity and role classification: an
// intrinsic-purity visitor over each function's AST, followed by
// inter-procedural fixed-point propagation through the call graph so a
// function that calls an impure function is itself marked impure even
// when its own body shows no direct side effects.
//
package purity

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci/internal/astx"
	"github.com/standardbeagle/lci/internal/callgraph"
)

// Role classifies a function's structural purpose, matching the eight
// roles the unified scorer's role-multiplier table is keyed on.
type Role int

const (
	RoleUnknown Role = iota
	RoleEntryPoint
	RoleCoreLogic
	RoleUtility
	RoleTest
	RolePureLogic
	RoleOrchestrator
	RoleConstructor
	RoleAccessor
)

func (r Role) String() string {
	switch r {
	case RoleEntryPoint:
		return "entry_point"
	case RoleCoreLogic:
		return "core_logic"
	case RoleUtility:
		return "utility"
	case RoleTest:
		return "test"
	case RolePureLogic:
		return "pure_logic"
	case RoleOrchestrator:
		return "orchestrator"
	case RoleConstructor:
		return "constructor"
	case RoleAccessor:
		return "accessor"
	default:
		return "unknown"
	}
}

// Level is the three-state purity classification a FunctionId resolves to:
// a function is never just "pure" or "not pure" since unresolved callees
// leave genuine uncertainty that a boolean can't represent.
type Level int

const (
	LevelImpure Level = iota
	LevelStrictlyPure
	LevelUnknown
)

func (l Level) String() string {
	switch l {
	case LevelStrictlyPure:
		return "strictly_pure"
	case LevelUnknown:
		return "unknown"
	default:
		return "impure"
	}
}

// Info is one function's purity/role classification, including the
// propagated confidence the data model requires so the scorer can discount
// low-confidence inferences rather than trust them as fact.
type Info struct {
	Level          Level
	IsPure         bool // convenience alias for Level == LevelStrictlyPure
	Confidence     float64 // intrinsic: 0.95 minus decay (floor 0.5); decays further per propagation hop
	HasIO          bool
	HasGlobalWrite bool
	HasPanic       bool
	Role           Role
}

// ioCallNames are callee names whose presence marks a function as
// performing I/O: a "known sink" approach rather than trying to model
// every standard library surface per language.
var ioCallNames = map[string]bool{
	"Open": true, "Read": true, "Write": true, "Close": true, "Println": true, "Printf": true,
	"Fprintln": true, "Fprintf": true, "ReadFile": true, "WriteFile": true, "Dial": true,
	"Get": true, "Post": true, "Query": true, "Exec": true, "print": true, "open": true,
	"fetch": true, "readFile": true, "writeFile": true, "connect": true, "execute": true,
}

// panicCallNames mark non-local control flow that breaks referential
// transparency (a pure function never throws past its caller's handling).
var panicCallNames = map[string]bool{
	"panic": true, "throw": true, "raise": true, "exit": true, "Exit": true, "abort": true,
}

// intrinsicConfidenceBaseline and intrinsicConfidenceFloor/Decay implement
// the "0.95 baseline, decaying 0.05 per unclassifiable statement, floor
// 0.5" intrinsic-confidence rule: a function whose body the visitor walks
// cleanly is trusted at 0.95, and every statement the walk can't classify
// (a parse-error or missing node tree-sitter's error recovery inserted)
// erodes that trust.
const (
	intrinsicConfidenceBaseline = 0.95
	intrinsicConfidenceDecay    = 0.05
	intrinsicConfidenceFloor    = 0.5
)

// intrinsicConfidence applies the baseline/decay/floor rule given a count
// of statements the visitor couldn't classify.
func intrinsicConfidence(unclassifiable int) float64 {
	c := intrinsicConfidenceBaseline - intrinsicConfidenceDecay*float64(unclassifiable)
	if c < intrinsicConfidenceFloor {
		return intrinsicConfidenceFloor
	}
	return c
}

// Classify performs the intrinsic (single-function, non-propagated) purity
// analysis: a direct AST walk looking for I/O calls, global writes, and
// panics. The returned Info starts at LevelStrictlyPure or LevelImpure
// depending on what the walk found; callers that also know about
// unresolved call targets (the call graph's side list) should promote a
// StrictlyPure result to LevelUnknown, since an unresolved callee could be
// hiding an effect this visitor never sees. Confidence starts at the
// intrinsic baseline and decays per unclassifiable statement; propagation
// later decays it further for functions whose purity is inherited rather
// than observed directly.
func Classify(lang astx.Language, node *tree_sitter.Node, content []byte, calls []astx.CallSite) Info {
	info := Info{Level: LevelStrictlyPure, IsPure: true, Confidence: intrinsicConfidenceBaseline}
	if node == nil {
		return info
	}

	for _, call := range calls {
		if ioCallNames[call.CalleeName] {
			info.HasIO = true
		}
		if panicCallNames[call.CalleeName] {
			info.HasPanic = true
		}
	}

	unclassifiable := 0
	var walk func(n *tree_sitter.Node, funcDepth int)
	walk = func(n *tree_sitter.Node, funcDepth int) {
		switch n.Kind() {
		case "assignment", "assignment_expression":
			if isGlobalAssignmentTarget(n, content) {
				info.HasGlobalWrite = true
			}
		}
		if n.IsError() || n.IsMissing() {
			unclassifiable++
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i), funcDepth)
		}
	}
	walk(node, 0)

	info.Confidence = intrinsicConfidence(unclassifiable)
	info.IsPure = !info.HasIO && !info.HasGlobalWrite && !info.HasPanic
	if info.IsPure {
		info.Level = LevelStrictlyPure
	} else {
		info.Level = LevelImpure
	}
	return info
}

// PromoteUnknown downgrades a StrictlyPure classification to LevelUnknown
// when the function has at least one call the call graph never resolved;
// a function calling unresolved/unknown-external code can't be trusted
// pure just because the statements this visitor could see were clean. An
// already-Impure result is left alone: impurity dominates, so a concretely
// observed side effect outweighs uncertainty about an unrelated unresolved
// call.
func (i Info) PromoteUnknown() Info {
	if i.Level == LevelStrictlyPure {
		i.Level = LevelUnknown
		i.IsPure = false
	}
	return i
}

// isGlobalAssignmentTarget is a conservative heuristic: an assignment
// whose target is a bare identifier starting with an uppercase letter
// (`Counter = x`) looks like a write to package- or module-scoped state.
// Qualified targets (`pkg.Var = x`, `self.field = x`) are not flagged,
// and only "assignment"/"assignment_expression" nodes are checked. False negatives
// are preferred over false positives here since an over-eager purity
// detector would make the role classifier noisy.
func isGlobalAssignmentTarget(n *tree_sitter.Node, content []byte) bool {
	if n.ChildCount() == 0 {
		return false
	}
	target := n.Child(0)
	if target == nil {
		return false
	}
	text := string(target.Utf8Text(content))
	return target.Kind() == "identifier" && len(text) > 0 && isUpperFirst(text)
}

func isUpperFirst(s string) bool {
	c := s[0]
	return c >= 'A' && c <= 'Z'
}

// RoleThresholds configures the configurable knobs in the role
// decision rules (orchestrator delegation ratio and cyclomatic ceiling,
// constructor/accessor size limits), mirroring the
// detection.orchestrator.*/detection.constructor.*/detection.accessor.*
// configuration keys.
type RoleThresholds struct {
	OrchestratorMaxCyclomatic         int
	OrchestratorMinDelegationRatio    float64
	OrchestratorMinMeaningfulCallees  int
	ConstructorNamePatterns           []string
	ConstructorMaxCyclomatic          int
	AccessorNamePrefixes              []string
	AccessorMaxCyclomatic             int
	AccessorMaxLengthLines            int
}

// DefaultRoleThresholds: delegation ratio 0.2, cyclomatic cap 5, and at
// least 2 meaningful callees for Orchestrator; a short name-pattern list
// for Constructor; single-statement, low-complexity bodies for Accessor.
func DefaultRoleThresholds() RoleThresholds {
	return RoleThresholds{
		OrchestratorMaxCyclomatic:        5,
		OrchestratorMinDelegationRatio:   0.2,
		OrchestratorMinMeaningfulCallees: 2,
		ConstructorNamePatterns:          []string{"new", "create", "make", "build", "init", "__init__", "from"},
		ConstructorMaxCyclomatic:         3,
		AccessorNamePrefixes:             []string{"get", "is", "has", "can"},
		AccessorMaxCyclomatic:            2,
		AccessorMaxLengthLines:           3,
	}
}

// RoleInput is the structural signal InferRole needs beyond Info: the
// function's name and call-graph position, plus the shape facts the
// decision rules test in order (constructor/accessor patterns, delegation
// ratio, meaningful callee count). Built by the orchestrator from the
// FunctionSite, the complexity.Metrics, and the call-graph Node.
type RoleInput struct {
	Name                  string
	IsTestContext         bool // test name/attribute, or lives in a test module
	IsFrameworkEntryPoint bool // name == "main", or a synthetic-root edge targets it
	ReturnsSelfOrLiteral  bool // returns Self/struct literal (constructor shape)
	Cyclomatic            int
	LengthLines           int
	StatementCount        int // for the accessor rule; the orchestrator fills it with the body's call-site count, not a count of statements
	DelegationRatio       float64
	MeaningfulCalleeCount int
}

// InferRole assigns exactly one Role by evaluating the decision
// rules in order and returning on first match, from the call-graph Node
// plus the function's Info. The orchestrator calls it after
// purity.Propagate, so Info carries the propagated level.
func InferRole(node callgraph.Node, info Info, in RoleInput, thresholds RoleThresholds) Role {
	switch {
	case in.IsTestContext || node.IsTest:
		return RoleTest
	case in.Name == "main" || in.IsFrameworkEntryPoint || node.IsEntryPoint:
		return RoleEntryPoint
	case isConstructorPattern(in, thresholds):
		return RoleConstructor
	case isAccessorPattern(in, thresholds):
		return RoleAccessor
	case info.Level == LevelStrictlyPure:
		return RolePureLogic
	case in.DelegationRatio >= thresholds.OrchestratorMinDelegationRatio &&
		in.Cyclomatic <= thresholds.OrchestratorMaxCyclomatic &&
		in.MeaningfulCalleeCount >= thresholds.OrchestratorMinMeaningfulCallees:
		return RoleOrchestrator
	case in.Cyclomatic > 1:
		return RoleCoreLogic
	default:
		return RoleUtility
	}
}

// isConstructorPattern matches rule 3: a configured name (new/create/...)
// or a low-complexity function that returns Self/a struct literal.
func isConstructorPattern(in RoleInput, t RoleThresholds) bool {
	lower := lowerASCII(in.Name)
	for _, pat := range t.ConstructorNamePatterns {
		if lower == pat || hasPrefixFold(lower, pat) {
			return true
		}
	}
	return in.ReturnsSelfOrLiteral && in.Cyclomatic <= t.ConstructorMaxCyclomatic
}

// isAccessorPattern matches rule 4: short, single-statement, low
// complexity, with a name that reads as a field or predicate getter.
func isAccessorPattern(in RoleInput, t RoleThresholds) bool {
	if in.StatementCount > 1 || in.Cyclomatic > t.AccessorMaxCyclomatic || in.LengthLines > t.AccessorMaxLengthLines {
		return false
	}
	lower := lowerASCII(in.Name)
	for _, prefix := range t.AccessorNamePrefixes {
		if hasPrefixFold(lower, prefix) {
			return true
		}
	}
	// A bare single short word with no verbish prefix still reads as a
	// field accessor once the shape checks above already passed.
	return len(lower) > 0 && !containsUnderscoreVerb(lower)
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func hasPrefixFold(lower, prefix string) bool {
	return len(lower) >= len(prefix) && lower[:len(prefix)] == prefix
}

// containsUnderscoreVerb is a last-resort filter so multi-word snake_case
// names that clearly describe an action (do_x, process_y) don't fall
// through to the bare-word accessor guess.
func containsUnderscoreVerb(lower string) bool {
	verbs := []string{"do_", "process_", "run_", "execute_", "handle_", "compute_", "calculate_", "update_", "write_", "save_", "delete_", "remove_"}
	for _, v := range verbs {
		if hasPrefixFold(lower, v) {
			return true
		}
	}
	return false
}
