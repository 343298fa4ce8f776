package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lci/internal/astx"
	"github.com/standardbeagle/lci/internal/ids"
	"github.com/standardbeagle/lci/internal/registry"
	"github.com/standardbeagle/lci/internal/resolver"
)

func buildSimpleGraph(t *testing.T) *Graph {
	t.Helper()
	file := &astx.File{
		Path:     "main.go",
		Language: astx.LangGo,
		Functions: []astx.FunctionSite{
			{Name: "main", Kind: astx.FuncKindFunction, StartLine: 1, EndLine: 5},
			{Name: "helper", Kind: astx.FuncKindFunction, StartLine: 7, EndLine: 9},
			{Name: "unused", Kind: astx.FuncKindFunction, StartLine: 11, EndLine: 13},
		},
		Calls: map[int][]astx.CallSite{
			0: {{CalleeName: "helper", Line: 2}},
		},
	}

	regBuilder := registry.NewBuilder()
	regBuilder.AddFile(file)
	reg := regBuilder.Seal()

	impBuilder := resolver.NewBuilder()
	impBuilder.AddFile(file)
	imports := impBuilder.Seal()

	b := NewBuilder(reg, imports, DefaultFrameworkRules())
	b.AddFile(file)
	b.Resolve([]*astx.File{file})
	return b.Build()
}

func TestBuild_ResolvesDirectCall(t *testing.T) {
	g := buildSimpleGraph(t)
	mainID := ids.New("main.go", "main", 1)
	helperID := ids.New("main.go", "helper", 7)

	callees := g.Callees(mainID)
	require.Len(t, callees, 1)
	assert.Equal(t, helperID, callees[0])
}

func TestBuild_EntryPointGetsFrameworkEdgeAndIsNotDead(t *testing.T) {
	g := buildSimpleGraph(t)
	mainID := ids.New("main.go", "main", 1)

	assert.True(t, g.IsReachableFromFramework(mainID))
	assert.False(t, g.IsDeadCode(mainID))
}

func TestBuild_TrulyUnreferencedFunctionIsDeadCode(t *testing.T) {
	g := buildSimpleGraph(t)
	unusedID := ids.New("main.go", "unused", 11)

	assert.True(t, g.IsDeadCode(unusedID))
}

// Determinism: building the same inputs twice must produce byte-identical
// edge and node orderings.
func TestBuild_Deterministic(t *testing.T) {
	g1 := buildSimpleGraph(t)
	g2 := buildSimpleGraph(t)

	require.Equal(t, len(g1.Edges()), len(g2.Edges()))
	for i, e := range g1.Edges() {
		assert.Equal(t, e, g2.Edges()[i])
	}
	require.Equal(t, len(g1.Nodes()), len(g2.Nodes()))
	for i, n := range g1.Nodes() {
		assert.Equal(t, n.ID, g2.Nodes()[i].ID)
	}
}

// No edge ever has Caller == Callee equal to itself as a self-loop formed
// purely from resolution noise: a function calling itself recursively is
// legitimate and must still resolve to exactly one self edge, never be
// silently dropped or duplicated.
func TestBuild_RecursiveCallIsSingleSelfEdge(t *testing.T) {
	file := &astx.File{
		Path:     "rec.go",
		Language: astx.LangGo,
		Functions: []astx.FunctionSite{
			{Name: "factorial", Kind: astx.FuncKindFunction, StartLine: 1, EndLine: 5},
		},
		Calls: map[int][]astx.CallSite{
			0: {{CalleeName: "factorial", Line: 3}, {CalleeName: "factorial", Line: 3}},
		},
	}
	regBuilder := registry.NewBuilder()
	regBuilder.AddFile(file)
	reg := regBuilder.Seal()
	impBuilder := resolver.NewBuilder()
	impBuilder.AddFile(file)
	imports := impBuilder.Seal()

	b := NewBuilder(reg, imports, nil)
	b.AddFile(file)
	b.Resolve([]*astx.File{file})
	g := b.Build()

	id := ids.New("rec.go", "factorial", 1)
	selfEdges := 0
	for _, e := range g.Edges() {
		if e.Caller == id && e.Callee == id {
			selfEdges++
		}
	}
	assert.Equal(t, 1, selfEdges)
}
