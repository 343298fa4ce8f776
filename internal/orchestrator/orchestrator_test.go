package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lci/internal/config"
	"github.com/standardbeagle/lci/internal/prioritizer"
	"github.com/standardbeagle/lci/internal/progress"
	"github.com/standardbeagle/lci/internal/purity"
)

const mainSrc = `package main

import "fmt"

func main() {
	fmt.Println(helper(3))
}

func helper(n int) int {
	if n > 0 {
		return n * 2
	}
	return -n
}

func orphan() int {
	return 42
}
`

func runPipeline(t *testing.T, files []SourceFile) *Result {
	t.Helper()
	result, err := Run(context.Background(), Input{
		Files:    files,
		Config:   config.Default(),
		Reporter: progress.New(),
	})
	require.NoError(t, err)
	return result
}

func TestRun_ProducesRankedItems(t *testing.T) {
	result := runPipeline(t, []SourceFile{{Path: "main.go", Content: []byte(mainSrc)}})

	require.NotEmpty(t, result.Items)
	for i := 1; i < len(result.Items); i++ {
		assert.GreaterOrEqual(t, result.Items[i-1].Score.FinalScore, result.Items[i].Score.FinalScore,
			"items must be sorted by final score descending")
	}
}

// Determinism: identical inputs must produce an identical ordered
// item list, run to run, regardless of goroutine scheduling.
func TestRun_Deterministic(t *testing.T) {
	files := []SourceFile{{Path: "main.go", Content: []byte(mainSrc)}}

	first := runPipeline(t, files)
	for i := 0; i < 3; i++ {
		again := runPipeline(t, files)
		require.Equal(t, len(first.Items), len(again.Items))
		for j := range first.Items {
			assert.Equal(t, first.Items[j].Function, again.Items[j].Function)
			assert.Equal(t, first.Items[j].Kind, again.Items[j].Kind)
			assert.Equal(t, first.Items[j].Score.FinalScore, again.Items[j].Score.FinalScore)
		}
	}
}

func TestRun_UnreferencedFunctionReportedAsDeadCode(t *testing.T) {
	result := runPipeline(t, []SourceFile{{Path: "main.go", Content: []byte(mainSrc)}})

	found := false
	for _, it := range result.Items {
		if it.Kind == prioritizer.DebtDeadCode && it.Function.Name == "orphan" {
			found = true
		}
	}
	assert.True(t, found, "orphan has no callers and no framework match, expected a DeadCode item")
}

// main has zero static callers but matches the entry-point framework
// rule: it must never be reported dead, and its role is EntryPoint.
func TestRun_EntryPointIsNeverDeadCode(t *testing.T) {
	result := runPipeline(t, []SourceFile{{Path: "main.go", Content: []byte(mainSrc)}})

	for _, it := range result.Items {
		if it.Function.Name == "main" {
			assert.NotEqual(t, prioritizer.DebtDeadCode, it.Kind)
			assert.Equal(t, purity.RoleEntryPoint, it.Role)
		}
	}
}

func TestRun_CircularImportReportedOnce(t *testing.T) {
	result := runPipeline(t, []SourceFile{
		{Path: "a.py", Content: []byte("import b\n\n\ndef run_a():\n    return b.run_b()\n")},
		{Path: "b.py", Content: []byte("import a\n\n\ndef run_b():\n    return a.run_a()\n")},
	})

	cycles := 0
	for _, it := range result.Items {
		if it.Kind == prioritizer.DebtOrganizationAntiPattern {
			cycles++
			assert.Contains(t, it.Recommendation.Rationale, "a.py")
			assert.Contains(t, it.Recommendation.Rationale, "b.py")
		}
	}
	assert.Equal(t, 1, cycles, "an A<->B circular import reports exactly one cycle item")
}

func TestRun_CircularImportItemIsOrderIndependent(t *testing.T) {
	a := SourceFile{Path: "a.py", Content: []byte("import b\n")}
	b := SourceFile{Path: "b.py", Content: []byte("import a\n")}

	forward := runPipeline(t, []SourceFile{a, b})
	reversed := runPipeline(t, []SourceFile{b, a})

	pick := func(r *Result) (prioritizer.DebtItem, bool) {
		for _, it := range r.Items {
			if it.Kind == prioritizer.DebtOrganizationAntiPattern {
				return it, true
			}
		}
		return prioritizer.DebtItem{}, false
	}
	f, okF := pick(forward)
	r, okR := pick(reversed)
	require.True(t, okF)
	require.True(t, okR)
	assert.Equal(t, f.File, r.File)
	assert.Equal(t, f.Recommendation.Rationale, r.Recommendation.Rationale)
}

func TestRun_NoCoverageDataEmitsSingleWarningAndScoresProceed(t *testing.T) {
	result := runPipeline(t, []SourceFile{{Path: "main.go", Content: []byte(mainSrc)}})

	require.Len(t, result.Warnings, 1)
	require.NotEmpty(t, result.Items)
}

func TestRun_EmptyInputFails(t *testing.T) {
	_, err := Run(context.Background(), Input{Config: config.Default()})
	assert.Error(t, err)
}

func TestRun_RecommendationsAreInternallyConsistent(t *testing.T) {
	result := runPipeline(t, []SourceFile{{Path: "main.go", Content: []byte(mainSrc)}})

	for _, it := range result.Items {
		assert.NoError(t, prioritizer.ValidateConsistency(it.Recommendation))
	}
}

func TestWorkerLimit(t *testing.T) {
	assert.Equal(t, 4, workerLimit(4, 100, false), "explicit worker count always wins")
	assert.Equal(t, 1, workerLimit(0, 2, false), "small inputs run serially")
	assert.Equal(t, 8, workerLimit(0, 2, true), "DEBTMAP_PARALLEL forces the parallel path")
	assert.Equal(t, 8, workerLimit(0, 100, false))
}

func TestFromEnv(t *testing.T) {
	assert.False(t, FromEnv(func(string) string { return "" }))
	assert.True(t, FromEnv(func(k string) string {
		if k == "DEBTMAP_PARALLEL" {
			return "1"
		}
		return ""
	}))
}
