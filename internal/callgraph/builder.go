package callgraph

import (
	"sort"
	"strings"

	"github.com/standardbeagle/lci/internal/astx"
	"github.com/standardbeagle/lci/internal/ids"
	"github.com/standardbeagle/lci/internal/registry"
	"github.com/standardbeagle/lci/internal/resolver"
)

// Builder assembles a Graph from parsed files plus the registry and
// import map built earlier in the same pass. It implements the five-step
// resolution order: local type inference, import-map lookup,
// trait/interface dispatch, function-pointer union, then
// framework-invoked synthetic roots for anything still unresolved that
// matches a FrameworkRule.
type Builder struct {
	registry *registry.Registry
	imports  *resolver.ImportMap
	rules    []FrameworkRule

	nodes []Node
	index map[ids.FunctionID]int

	byName        map[string][]ids.FunctionID
	byTypeMethod  map[string]map[string]ids.FunctionID
	byFile        map[string][]ids.FunctionID
	funcOf        map[ids.FunctionID]astx.FunctionSite
	fileOf        map[ids.FunctionID]string
	langOf        map[ids.FunctionID]astx.Language

	edgeSeen map[edgeKey]bool
	edges    []Edge
	unresolved []UnresolvedCall
}

type edgeKey struct {
	caller ids.FunctionID
	callee ids.FunctionID
	kind   EdgeKind
}

// NewBuilder creates a Builder over a sealed Registry and ImportMap, with
// the given framework rules (pass DefaultFrameworkRules() for the
// built-in table, or a config-extended variant).
func NewBuilder(reg *registry.Registry, imports *resolver.ImportMap, rules []FrameworkRule) *Builder {
	return &Builder{
		registry:     reg,
		imports:      imports,
		rules:        rules,
		index:        make(map[ids.FunctionID]int),
		byName:       make(map[string][]ids.FunctionID),
		byTypeMethod: make(map[string]map[string]ids.FunctionID),
		byFile:       make(map[string][]ids.FunctionID),
		funcOf:       make(map[ids.FunctionID]astx.FunctionSite),
		fileOf:       make(map[ids.FunctionID]string),
		langOf:       make(map[ids.FunctionID]astx.Language),
		edgeSeen:     make(map[edgeKey]bool),
	}
}

// AddFile registers every function in file as a node, in file order, so
// node indices (and therefore Nodes()'s iteration order) are deterministic
// given a deterministic file-processing order.
func (b *Builder) AddFile(file *astx.File) {
	for _, fn := range file.Functions {
		id := ids.New(file.Path, fn.Name, fn.StartLine)
		if _, exists := b.index[id]; exists {
			continue // duplicate definition at identical identity: keep first
		}
		idx := len(b.nodes)
		b.index[id] = idx
		b.nodes = append(b.nodes, Node{
			ID:         id,
			IsTest:     ids.IsTestName(fn.Name),
			Cyclomatic: 1,
			Length:     fn.EndLine - fn.StartLine + 1,
		})
		b.funcOf[id] = fn
		b.fileOf[id] = file.Path
		b.langOf[id] = file.Language
		b.byName[fn.Name] = append(b.byName[fn.Name], id)
		b.byFile[file.Path] = append(b.byFile[file.Path], id)
		if fn.Kind == astx.FuncKindMethod && fn.ReceiverType != "" {
			m, ok := b.byTypeMethod[fn.ReceiverType]
			if !ok {
				m = make(map[string]ids.FunctionID)
				b.byTypeMethod[fn.ReceiverType] = m
			}
			m[fn.Name] = id
		}
	}
}

// Resolve runs the five-step resolution order over every call site of
// every file added so far, and marks entry points via the framework-rule
// table. Call once after every file has been added via AddFile.
func (b *Builder) Resolve(files []*astx.File) {
	for _, file := range files {
		for fnIdx, calls := range file.Calls {
			if fnIdx >= len(file.Functions) {
				continue
			}
			caller := ids.New(file.Path, file.Functions[fnIdx].Name, file.Functions[fnIdx].StartLine)
			callerSite := file.Functions[fnIdx]
			for _, call := range calls {
				b.resolveCall(file, callerSite, caller, call)
			}
		}
	}
	b.markEntryPoints(files)
}

// resolveCall implements the step order: local type inference,
// import-map lookup, trait dispatch, function-pointer union.
func (b *Builder) resolveCall(file *astx.File, callerSite astx.FunctionSite, caller ids.FunctionID, call astx.CallSite) {
	// Step 1: local type inference. The call has a receiver expression
	// naming a parameter whose declared type is known, so the method
	// resolves against that type's method table directly.
	if call.IsMethodCall && call.ReceiverExpr != "" {
		if recvType, ok := paramType(callerSite, call.ReceiverExpr); ok {
			if callee, ok := b.byTypeMethod[recvType][call.CalleeName]; ok {
				b.addEdge(caller, callee, EdgeMethod)
				return
			}
			if b.registry != nil && b.registry.HasMethod(recvType, call.CalleeName) {
				// Registry knows the method exists on the type but the
				// concrete FunctionID wasn't captured in this pass (e.g.
				// declared in a file not yet added); record unresolved
				// rather than guess.
				b.unresolved = append(b.unresolved, UnresolvedCall{Caller: caller, Name: call.CalleeName, Reason: ReasonUnknownReceiverType})
				return
			}
		}
	}

	// Step 2: import-map lookup for qualified calls (`pkg.Func`,
	// `mod::func`), using the qualifier's first segment as the local name
	// to resolve.
	if len(call.Qualifier) > 0 {
		res := b.imports.Resolve(file.Path, call.Qualifier[0])
		if res.Confidence > resolver.ConfidenceNone {
			if callee, ok := b.findByQualifiedPath(res.QualifiedPath, call.CalleeName); ok {
				b.addEdge(caller, callee, EdgeDirect)
				return
			}
			if res.IsExternal {
				b.unresolved = append(b.unresolved, UnresolvedCall{Caller: caller, Name: call.CalleeName, Reason: ReasonUnresolvedImport})
				return
			}
		}
	}

	// Step 3: trait/interface dispatch. A method call whose receiver type
	// could not be narrowed to a single concrete type resolves to every
	// known implementor of the interface/trait named by the receiver
	// expression, if any.
	if call.IsMethodCall && call.ReceiverExpr != "" {
		if impls := b.registry.Implementors(call.ReceiverExpr); len(impls) > 0 {
			had := len(impls) > 1
			for _, implType := range impls {
				if callee, ok := b.byTypeMethod[implType][call.CalleeName]; ok {
					e := Edge{Caller: caller, Callee: callee, Kind: EdgeTraitDispatch, HadAlternative: had}
					b.addEdgeValue(e)
				}
			}
			return
		}
	}

	// Step 4: function-pointer union. An unqualified call whose name
	// matches more than one function anywhere in the project (so the
	// concrete target depends on runtime binding we can't see statically)
	// resolves to the flow-insensitive union of all same-named candidates.
	if len(call.Qualifier) == 0 && !call.IsMethodCall {
		candidates := b.byName[call.CalleeName]
		switch len(candidates) {
		case 0:
			b.unresolved = append(b.unresolved, UnresolvedCall{Caller: caller, Name: call.CalleeName, Reason: ReasonUnknownReceiverType})
		case 1:
			b.addEdge(caller, candidates[0], EdgeDirect)
		default:
			for _, callee := range candidates {
				e := Edge{Caller: caller, Callee: callee, Kind: EdgeFunctionPointer, HadAlternative: true}
				b.addEdgeValue(e)
			}
		}
		return
	}

	b.unresolved = append(b.unresolved, UnresolvedCall{Caller: caller, Name: call.CalleeName, Reason: ReasonDynamicDispatchTooWide})
}

// findByQualifiedPath looks for a function named name whose declaring
// file matches qualifiedPath (by suffix, since qualified paths use
// language-specific separators while file paths use slashes), falling
// back to a plain by-name match scoped to the path's last segment.
func (b *Builder) findByQualifiedPath(qualifiedPath, name string) (ids.FunctionID, bool) {
	normalized := strings.ReplaceAll(qualifiedPath, "::", "/")
	for file, fnIDs := range b.byFile {
		if strings.HasSuffix(file, normalized) || strings.Contains(file, normalized) {
			for _, id := range fnIDs {
				if b.funcOf[id].Name == name {
					return id, true
				}
			}
		}
	}
	if candidates, ok := b.byName[name]; ok && len(candidates) == 1 {
		return candidates[0], true
	}
	return ids.FunctionID{}, false
}

// paramType finds the declared type of a parameter named exprName on the
// enclosing function, the simplest form of the "local type inference"
// step: it does not track reassignment or flow, only declared parameter
// types, a deliberately conservative approach to type inference for
// dynamically-parsed ASTs.
func paramType(site astx.FunctionSite, exprName string) (string, bool) {
	for _, p := range site.Params {
		if p.Name == exprName && p.Type != "" {
			return p.Type, true
		}
	}
	if exprName == "self" || exprName == "this" {
		return site.ReceiverType, site.ReceiverType != ""
	}
	return "", false
}

func (b *Builder) addEdge(caller, callee ids.FunctionID, kind EdgeKind) {
	b.addEdgeValue(Edge{Caller: caller, Callee: callee, Kind: kind})
}

func (b *Builder) addEdgeValue(e Edge) {
	key := edgeKey{caller: e.Caller, callee: e.Callee, kind: e.Kind}
	if b.edgeSeen[key] {
		return
	}
	b.edgeSeen[key] = true
	b.edges = append(b.edges, e)
}

// markEntryPoints adds a FrameworkInvoked edge from SyntheticRoot to every
// function matching a FrameworkRule, and marks it IsEntryPoint
// (resolution step 5). Framework edges rank below every kind except
// FunctionPointer in the tie-break, and they exempt a function with no
// other callers from being flagged dead code.
func (b *Builder) markEntryPoints(files []*astx.File) {
	for _, file := range files {
		for _, fn := range file.Functions {
			for _, rule := range b.rules {
				if !rule.matches(file.Language, fn) {
					continue
				}
				id := ids.New(file.Path, fn.Name, fn.StartLine)
				idx, ok := b.index[id]
				if !ok {
					continue
				}
				b.nodes[idx].IsEntryPoint = true
				b.addEdge(SyntheticRoot, id, EdgeFrameworkInvoked)
				break
			}
		}
	}
}

// Build finalizes the accumulated nodes and edges into a sealed Graph,
// applying the confidence-rank tie-break whenever more than one
// kind of edge exists for the same (caller, callee) pair: the
// higher-confidence kind wins and HadAlternative is set to record that a
// tie-break occurred.
func (b *Builder) Build() *Graph {
	best := make(map[[2]ids.FunctionID]Edge)
	for _, e := range b.edges {
		k := [2]ids.FunctionID{e.Caller, e.Callee}
		cur, ok := best[k]
		if !ok {
			best[k] = e
			continue
		}
		if confidenceRank[e.Kind] < confidenceRank[cur.Kind] {
			e.HadAlternative = true
			best[k] = e
		} else if e.Kind != cur.Kind {
			cur.HadAlternative = true
			best[k] = cur
		}
	}

	finalEdges := make([]Edge, 0, len(best))
	for _, e := range best {
		finalEdges = append(finalEdges, e)
	}
	sort.Slice(finalEdges, func(i, j int) bool {
		if finalEdges[i].Caller != finalEdges[j].Caller {
			return finalEdges[i].Caller.String() < finalEdges[j].Caller.String()
		}
		return finalEdges[i].Callee.String() < finalEdges[j].Callee.String()
	})

	g := &Graph{
		nodes:      b.nodes,
		index:      b.index,
		edges:      finalEdges,
		unresolved: b.unresolved,
		outEdges:   make([][]int, len(b.nodes)+1),
		inEdges:    make([][]int, len(b.nodes)+1),
	}
	// SyntheticRoot is not in b.index (it has no source location); give it
	// the trailing slot so outEdges/inEdges indexing stays a simple slice
	// lookup rather than falling back to a map on every traversal.
	rootIdx := len(b.nodes)
	g.index[SyntheticRoot] = rootIdx

	for i, e := range finalEdges {
		callerIdx, ok := g.index[e.Caller]
		if !ok {
			continue
		}
		calleeIdx, ok := g.index[e.Callee]
		if !ok {
			continue
		}
		g.outEdges[callerIdx] = append(g.outEdges[callerIdx], i)
		g.inEdges[calleeIdx] = append(g.inEdges[calleeIdx], i)
	}
	return g
}
