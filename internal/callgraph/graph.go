// Package callgraph implements the call-graph builder: a directed
// multigraph over FunctionId with edge-kind tags, built from parsed ASTs,
// the type registry, and import maps. Nodes live in a flat, dense arena
// keyed by index so the graph can be walked without further map lookups
// once built.
package callgraph

import (
	"sort"

	"github.com/standardbeagle/lci/internal/ids"
)

// EdgeKind tags how a call edge was resolved, ordered by confidence for
// the tie-break rule (Direct > Method > TraitDispatch >
// FrameworkInvoked > FunctionPointer).
type EdgeKind int

const (
	EdgeDirect EdgeKind = iota
	EdgeMethod
	EdgeTraitDispatch
	EdgeFrameworkInvoked
	EdgeFunctionPointer
)

// confidenceRank orders kinds from most to least confident; lower ranks
// win tie-breaks.
var confidenceRank = map[EdgeKind]int{
	EdgeDirect:           0,
	EdgeMethod:           1,
	EdgeTraitDispatch:    2,
	EdgeFrameworkInvoked: 3,
	EdgeFunctionPointer:  4,
}

func (k EdgeKind) String() string {
	switch k {
	case EdgeDirect:
		return "direct"
	case EdgeMethod:
		return "method"
	case EdgeTraitDispatch:
		return "trait_dispatch"
	case EdgeFrameworkInvoked:
		return "framework_invoked"
	case EdgeFunctionPointer:
		return "function_pointer"
	default:
		return "unknown"
	}
}

// UnresolvedReason classifies why a call site could not be statically
// resolved, recorded on the side list rather than failing the build.
type UnresolvedReason int

const (
	ReasonUnknownReceiverType UnresolvedReason = iota
	ReasonUnresolvedImport
	ReasonDynamicDispatchTooWide
)

func (r UnresolvedReason) String() string {
	switch r {
	case ReasonUnknownReceiverType:
		return "unknown-receiver-type"
	case ReasonUnresolvedImport:
		return "unresolved-import"
	case ReasonDynamicDispatchTooWide:
		return "dynamic-dispatch-too-wide"
	default:
		return "unknown"
	}
}

// Node carries the per-function attributes the data model requires:
// is-entry-point, is-test, cyclomatic, length. Complexity fields are
// filled in by the complexity analyzer and merged in during Phase 1.
type Node struct {
	ID           ids.FunctionID
	IsEntryPoint bool
	IsTest       bool
	Cyclomatic   int
	Length       int
}

// Edge is one (caller, callee, kind) triple. HadAlternative records that
// alternative kinds were possible for this (caller, callee) pair before
// the tie-break rule picked Kind.
type Edge struct {
	Caller         ids.FunctionID
	Callee         ids.FunctionID
	Kind           EdgeKind
	HadAlternative bool
}

// UnresolvedCall is one call site that could not be statically resolved.
type UnresolvedCall struct {
	Caller ids.FunctionID
	Name   string
	Reason UnresolvedReason
}

// SyntheticRoot is the caller identity used for FrameworkInvoked edges:
// a function with no file, reachable from nothing, that exists purely so
// framework-reachable methods are never reported dead.
var SyntheticRoot = ids.FunctionID{File: "<framework>", Name: "<root>", StartLine: -1}

// Graph is the sealed, read-only call graph. Nodes are stored in a dense
// arena; adjacency is index-based so traversal never touches the
// FunctionID map after Build.
type Graph struct {
	nodes       []Node
	index       map[ids.FunctionID]int
	outEdges    [][]int // node index -> edge indices (callgraph-local)
	inEdges     [][]int
	edges       []Edge
	unresolved  []UnresolvedCall
}

// NodeCount returns the number of distinct functions in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Node returns the Node for a FunctionID, if present. The synthetic
// framework root has an index entry for adjacency lookups but no Node
// value of its own.
func (g *Graph) Node(id ids.FunctionID) (Node, bool) {
	idx, ok := g.index[id]
	if !ok || idx >= len(g.nodes) {
		return Node{}, false
	}
	return g.nodes[idx], true
}

// Nodes returns every node, in a deterministic order (by index, i.e.
// first-seen order during Build, stable given a deterministic input
// file ordering).
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns every edge in the graph, deduplicated per (caller,
// callee, kind) per the data-model invariant.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Unresolved returns the side list of calls that failed static
// resolution.
func (g *Graph) Unresolved() []UnresolvedCall {
	out := make([]UnresolvedCall, len(g.unresolved))
	copy(out, g.unresolved)
	return out
}

// Callees returns every FunctionID called directly by caller, deduplicated.
func (g *Graph) Callees(caller ids.FunctionID) []ids.FunctionID {
	idx, ok := g.index[caller]
	if !ok {
		return nil
	}
	seen := make(map[ids.FunctionID]bool)
	var out []ids.FunctionID
	for _, eIdx := range g.outEdges[idx] {
		callee := g.edges[eIdx].Callee
		if !seen[callee] {
			seen[callee] = true
			out = append(out, callee)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// CalleeEdge is one deduplicated (callee, kind) pair returned by
// CalleesWithKind, kind being the tie-break winner recorded for that
// (caller, callee) pair.
type CalleeEdge struct {
	Callee ids.FunctionID
	Kind   EdgeKind
}

// CalleesWithKind returns every distinct callee of caller alongside the
// edge kind that won the tie-break for that (caller, callee) pair, so
// callers like purity propagation can weight inherited confidence by how
// the edge was resolved (e.g. FunctionPointer edges being less certain
// than a Direct call).
func (g *Graph) CalleesWithKind(caller ids.FunctionID) []CalleeEdge {
	idx, ok := g.index[caller]
	if !ok {
		return nil
	}
	best := make(map[ids.FunctionID]EdgeKind)
	var order []ids.FunctionID
	for _, eIdx := range g.outEdges[idx] {
		e := g.edges[eIdx]
		if existing, seen := best[e.Callee]; !seen {
			best[e.Callee] = e.Kind
			order = append(order, e.Callee)
		} else if confidenceRank[e.Kind] < confidenceRank[existing] {
			best[e.Callee] = e.Kind
		}
	}
	out := make([]CalleeEdge, len(order))
	for i, callee := range order {
		out[i] = CalleeEdge{Callee: callee, Kind: best[callee]}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Callee.String() < out[j].Callee.String() })
	return out
}

// Callers returns every FunctionID that calls callee, deduplicated.
func (g *Graph) Callers(callee ids.FunctionID) []ids.FunctionID {
	idx, ok := g.index[callee]
	if !ok {
		return nil
	}
	seen := make(map[ids.FunctionID]bool)
	var out []ids.FunctionID
	for _, eIdx := range g.inEdges[idx] {
		caller := g.edges[eIdx].Caller
		if !seen[caller] {
			seen[caller] = true
			out = append(out, caller)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// InDegree is the number of distinct callers of id, used by the
// dependency factor in the unified scorer.
func (g *Graph) InDegree(id ids.FunctionID) int { return len(g.Callers(id)) }

// OutDegree is the number of distinct callees of id, used by the role
// classifier's meaningful-callee count and by the delegation-ratio
// calculation.
func (g *Graph) OutDegree(id ids.FunctionID) int { return len(g.Callees(id)) }

// SetMetrics merges the complexity analyzer's per-function cyclomatic and
// length measurements into the node, once Phase 1 has computed them. The
// call graph is built before complexity analysis runs, so nodes start with
// placeholder values and are updated here rather than threading the
// complexity analyzer as a dependency of graph construction itself.
func (g *Graph) SetMetrics(id ids.FunctionID, cyclomatic, length int) {
	idx, ok := g.index[id]
	if !ok || idx >= len(g.nodes) {
		return
	}
	g.nodes[idx].Cyclomatic = cyclomatic
	g.nodes[idx].Length = length
}

// IsReachableFromFramework reports whether id has an incoming
// FrameworkInvoked edge, i.e. an edge directly from the synthetic root.
// Functions reached only through ordinary calls from a framework-invoked
// function are not reported.
func (g *Graph) IsReachableFromFramework(id ids.FunctionID) bool {
	idx, ok := g.index[id]
	if !ok {
		return false
	}
	for _, eIdx := range g.inEdges[idx] {
		if g.edges[eIdx].Kind == EdgeFrameworkInvoked {
			return true
		}
	}
	return false
}

// IsDeadCode reports whether id has zero resolvable incoming edges and no
// framework pattern match.
func (g *Graph) IsDeadCode(id ids.FunctionID) bool {
	return g.InDegree(id) == 0 && !g.IsReachableFromFramework(id)
}
