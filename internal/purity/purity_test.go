package purity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lci/internal/astx"
	"github.com/standardbeagle/lci/internal/callgraph"
)

// parseGoFunction parses src with the real Go tree-sitter frontend and
// returns the named function's site and its call sites, so Classify is
// exercised against an actual parsed AST rather than a hand-built stub.
func parseGoFunction(t *testing.T, src, name string) (astx.FunctionSite, []astx.CallSite) {
	t.Helper()
	reg := astx.NewRegistry()
	frontend, err := reg.Acquire(astx.LangGo)
	require.NoError(t, err)

	file, err := frontend.Parse("sample.go", []byte(src))
	require.NoError(t, err)

	for i, fn := range file.Functions {
		if fn.Name == name {
			return fn, file.Calls[i]
		}
	}
	t.Fatalf("function %q not found in parsed source", name)
	return astx.FunctionSite{}, nil
}

func TestClassify_CleanFunctionIsStrictlyPureAtBaselineConfidence(t *testing.T) {
	src := `package sample

func add(a, b int) int {
	return a + b
}
`
	site, calls := parseGoFunction(t, src, "add")
	info := Classify(astx.LangGo, site.Node, []byte(src), calls)

	assert.Equal(t, LevelStrictlyPure, info.Level)
	assert.True(t, info.IsPure)
	assert.Equal(t, intrinsicConfidenceBaseline, info.Confidence)
}

func TestClassify_IOCallMarksImpure(t *testing.T) {
	src := `package sample

import "fmt"

func greet(name string) {
	fmt.Println("hello", name)
}
`
	site, calls := parseGoFunction(t, src, "greet")
	info := Classify(astx.LangGo, site.Node, []byte(src), calls)

	assert.Equal(t, LevelImpure, info.Level)
	assert.False(t, info.IsPure)
	assert.True(t, info.HasIO)
}

func TestClassify_PanicMarksImpure(t *testing.T) {
	src := `package sample

func mustPositive(n int) int {
	if n < 0 {
		panic("negative")
	}
	return n
}
`
	site, calls := parseGoFunction(t, src, "mustPositive")
	info := Classify(astx.LangGo, site.Node, []byte(src), calls)

	assert.Equal(t, LevelImpure, info.Level)
	assert.True(t, info.HasPanic)
}

func TestClassify_NilNodeReturnsIntrinsicDefault(t *testing.T) {
	info := Classify(astx.LangGo, nil, nil, nil)
	assert.Equal(t, LevelStrictlyPure, info.Level)
	assert.True(t, info.IsPure)
	assert.Equal(t, intrinsicConfidenceBaseline, info.Confidence)
}

func TestIntrinsicConfidence_DecaysPerUnclassifiableStatementWithFloor(t *testing.T) {
	tests := []struct {
		name           string
		unclassifiable int
		want           float64
	}{
		{"none", 0, 0.95},
		{"one", 1, 0.90},
		{"two", 2, 0.85},
		{"many statements floor at 0.5", 20, 0.5},
		{"exactly at the floor boundary", 9, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, intrinsicConfidence(tt.unclassifiable), 0.0001)
		})
	}
}

func TestInfo_PromoteUnknown(t *testing.T) {
	t.Run("strictly pure is downgraded to unknown", func(t *testing.T) {
		info := Info{Level: LevelStrictlyPure, IsPure: true, Confidence: 0.95}
		promoted := info.PromoteUnknown()
		assert.Equal(t, LevelUnknown, promoted.Level)
		assert.False(t, promoted.IsPure)
	})

	t.Run("impure is left alone since impurity dominates", func(t *testing.T) {
		info := Info{Level: LevelImpure, IsPure: false, Confidence: 0.95, HasIO: true}
		promoted := info.PromoteUnknown()
		assert.Equal(t, LevelImpure, promoted.Level)
	})

	t.Run("already unknown stays unknown", func(t *testing.T) {
		info := Info{Level: LevelUnknown, Confidence: 0.95}
		promoted := info.PromoteUnknown()
		assert.Equal(t, LevelUnknown, promoted.Level)
	})
}

func TestInferRole_PureLogicRequiresStrictlyPureLevel(t *testing.T) {
	node := callgraph.Node{}
	in := RoleInput{Name: "transform", Cyclomatic: 3}
	thresholds := DefaultRoleThresholds()

	t.Run("strictly pure promotes to pure logic", func(t *testing.T) {
		info := Info{Level: LevelStrictlyPure, IsPure: true}
		assert.Equal(t, RolePureLogic, InferRole(node, info, in, thresholds))
	})

	t.Run("unknown purity never reaches pure logic via rule 5", func(t *testing.T) {
		info := Info{Level: LevelUnknown}
		assert.Equal(t, RoleCoreLogic, InferRole(node, info, in, thresholds))
	})

	t.Run("impure falls through to core logic", func(t *testing.T) {
		info := Info{Level: LevelImpure, HasIO: true}
		assert.Equal(t, RoleCoreLogic, InferRole(node, info, in, thresholds))
	})
}
