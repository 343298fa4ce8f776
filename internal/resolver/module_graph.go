package resolver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/standardbeagle/lci/internal/astx"
)

// ModuleGraph is the module-level import dependency graph, built from
// every file's raw imports once the per-file scopes are known. Modules
// are identified by their normalized file path. Self-edges are never
// stored: a file whose import resolves back to itself (a glob over its
// own package, a re-export of a sibling symbol) is resolution noise, not
// a dependency.
type ModuleGraph struct {
	edges map[string][]string // module -> sorted list of imported modules
}

// ModuleGraphBuilder accumulates import edges before Seal.
type ModuleGraphBuilder struct {
	resolver *ModuleResolver
	edges    map[string]map[string]bool
}

// NewModuleGraphBuilder creates a builder that resolves import paths
// against the given project resolver. A nil resolver yields a graph
// whose modules have no edges, since nothing can be resolved internally.
func NewModuleGraphBuilder(r *ModuleResolver) *ModuleGraphBuilder {
	return &ModuleGraphBuilder{
		resolver: r,
		edges:    make(map[string]map[string]bool),
	}
}

// AddFile registers every resolvable import of a parsed file as an edge
// from the file's module to the imported module. Imports that resolve to
// external packages, or back to the importing file itself, add no edge.
func (b *ModuleGraphBuilder) AddFile(file *astx.File) {
	from := filepath.ToSlash(filepath.Clean(file.Path))
	if _, ok := b.edges[from]; !ok {
		b.edges[from] = make(map[string]bool)
	}
	for _, imp := range file.Imports {
		target, ok := b.resolveImport(imp, file)
		if !ok || target == from {
			continue
		}
		b.edges[from][target] = true
	}
}

// resolveImport maps one raw import to a project file, trying the
// project resolver first and then sibling-file candidates derived from
// the import path's separator convention (Rust `::`, Python `.`).
func (b *ModuleGraphBuilder) resolveImport(imp astx.RawImport, from *astx.File) (string, bool) {
	if b.resolver == nil {
		return "", false
	}
	if resolved, internal := b.resolver.ResolveModulePath(imp.Path, from.Path); internal {
		return resolved, true
	}

	slashed := strings.ReplaceAll(imp.Path, "::", "/")
	if from.Language == astx.LangPython {
		slashed = strings.ReplaceAll(slashed, ".", "/")
	}
	ext := filepath.Ext(from.Path)
	dir := filepath.ToSlash(filepath.Dir(from.Path))
	candidates := []string{
		filepath.ToSlash(filepath.Clean(filepath.Join(dir, slashed))) + ext,
		filepath.ToSlash(filepath.Clean(filepath.Join(dir, slashed))),
		slashed + ext,
		slashed,
	}
	for _, cand := range candidates {
		if resolved, ok := b.resolver.matchFile(cand); ok {
			return resolved, true
		}
	}
	return "", false
}

// Seal freezes the builder into an immutable ModuleGraph with
// deterministically sorted adjacency lists.
func (b *ModuleGraphBuilder) Seal() *ModuleGraph {
	g := &ModuleGraph{edges: make(map[string][]string, len(b.edges))}
	for from, targets := range b.edges {
		out := make([]string, 0, len(targets))
		for t := range targets {
			out = append(out, t)
		}
		sort.Strings(out)
		g.edges[from] = out
	}
	return g
}

// Imports returns the modules imported by module, sorted.
func (g *ModuleGraph) Imports(module string) []string {
	out := make([]string, len(g.edges[module]))
	copy(out, g.edges[module])
	return out
}

// Modules returns every module in the graph, sorted.
func (g *ModuleGraph) Modules() []string {
	out := make([]string, 0, len(g.edges))
	for m := range g.edges {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Cycles returns every circular-import group as one sorted module list,
// with the groups themselves ordered by their first member. Each
// strongly connected component of two or more modules reports exactly
// once, so an A<->B cycle yields [A B] regardless of which file was seen
// first. Traversal is an explicit-stack DFS with visited sets, never
// recursion, since import graphs are cyclic by nature.
func (g *ModuleGraph) Cycles() [][]string {
	modules := g.Modules()

	// Kosaraju: forward-order finish stack, then DFS over the reversed
	// graph; each reverse-DFS tree is one strongly connected component.
	reversed := make(map[string][]string, len(g.edges))
	for from, targets := range g.edges {
		for _, to := range targets {
			reversed[to] = append(reversed[to], from)
		}
	}
	for _, callers := range reversed {
		sort.Strings(callers)
	}

	visited := make(map[string]bool, len(modules))
	finish := make([]string, 0, len(modules))
	for _, start := range modules {
		if visited[start] {
			continue
		}
		type frame struct {
			module string
			next   int
		}
		stack := []frame{{module: start}}
		visited[start] = true
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			targets := g.edges[top.module]
			if top.next < len(targets) {
				next := targets[top.next]
				top.next++
				if !visited[next] {
					visited[next] = true
					stack = append(stack, frame{module: next})
				}
				continue
			}
			finish = append(finish, top.module)
			stack = stack[:len(stack)-1]
		}
	}

	assigned := make(map[string]bool, len(modules))
	var cycles [][]string
	for i := len(finish) - 1; i >= 0; i-- {
		root := finish[i]
		if assigned[root] {
			continue
		}
		component := []string{}
		stack := []string{root}
		assigned[root] = true
		for len(stack) > 0 {
			m := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, m)
			for _, caller := range reversed[m] {
				if !assigned[caller] {
					assigned[caller] = true
					stack = append(stack, caller)
				}
			}
		}
		if len(component) > 1 {
			sort.Strings(component)
			cycles = append(cycles, component)
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}
