package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lci/internal/astx"
)

func buildModuleGraph(t *testing.T, files []*astx.File) *ModuleGraph {
	t.Helper()
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	b := NewModuleGraphBuilder(NewModuleResolver(".", "", paths))
	for _, f := range files {
		b.AddFile(f)
	}
	return b.Seal()
}

func pyFile(path string, imports ...string) *astx.File {
	f := &astx.File{Path: path, Language: astx.LangPython}
	for _, imp := range imports {
		f.Imports = append(f.Imports, astx.RawImport{Path: imp})
	}
	return f
}

func TestModuleGraph_ResolvesSiblingImport(t *testing.T) {
	g := buildModuleGraph(t, []*astx.File{
		pyFile("pkg/a.py", "b"),
		pyFile("pkg/b.py"),
	})

	assert.Equal(t, []string{"pkg/b.py"}, g.Imports("pkg/a.py"))
	assert.Empty(t, g.Imports("pkg/b.py"))
}

func TestModuleGraph_NeverStoresSelfEdge(t *testing.T) {
	// An import that resolves back to the importing file (here a plain
	// import of the file's own module name) must not become an edge.
	g := buildModuleGraph(t, []*astx.File{
		pyFile("pkg/a.py", "a"),
	})

	assert.Empty(t, g.Imports("pkg/a.py"))
	for _, m := range g.Modules() {
		for _, imp := range g.Imports(m) {
			assert.NotEqual(t, m, imp)
		}
	}
}

func TestModuleGraph_CircularImportReportsOneCycleWithBothModules(t *testing.T) {
	g := buildModuleGraph(t, []*astx.File{
		pyFile("pkg/a.py", "b"),
		pyFile("pkg/b.py", "a"),
	})

	cycles := g.Cycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"pkg/a.py", "pkg/b.py"}, cycles[0])
}

func TestModuleGraph_CyclesAreOrderIndependent(t *testing.T) {
	forward := buildModuleGraph(t, []*astx.File{
		pyFile("pkg/a.py", "b"),
		pyFile("pkg/b.py", "a"),
	})
	reversed := buildModuleGraph(t, []*astx.File{
		pyFile("pkg/b.py", "a"),
		pyFile("pkg/a.py", "b"),
	})

	assert.Equal(t, forward.Cycles(), reversed.Cycles())
}

func TestModuleGraph_AcyclicChainHasNoCycles(t *testing.T) {
	g := buildModuleGraph(t, []*astx.File{
		pyFile("pkg/a.py", "b"),
		pyFile("pkg/b.py", "c"),
		pyFile("pkg/c.py"),
	})

	assert.Empty(t, g.Cycles())
}

func TestModuleGraph_ThreeModuleCycleReportsAllMembers(t *testing.T) {
	g := buildModuleGraph(t, []*astx.File{
		pyFile("pkg/a.py", "b"),
		pyFile("pkg/b.py", "c"),
		pyFile("pkg/c.py", "a"),
	})

	cycles := g.Cycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"pkg/a.py", "pkg/b.py", "pkg/c.py"}, cycles[0])
}

func TestModuleGraph_ExternalImportAddsNoEdge(t *testing.T) {
	g := buildModuleGraph(t, []*astx.File{
		pyFile("pkg/a.py", "os", "json"),
	})

	assert.Empty(t, g.Imports("pkg/a.py"))
}
