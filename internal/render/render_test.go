package render

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lci/internal/callgraph"
	"github.com/standardbeagle/lci/internal/ids"
	"github.com/standardbeagle/lci/internal/orchestrator"
	"github.com/standardbeagle/lci/internal/prioritizer"
	"github.com/standardbeagle/lci/internal/purity"
	"github.com/standardbeagle/lci/internal/scorer"
)

func sampleResult() *orchestrator.Result {
	return &orchestrator.Result{
		Items: []prioritizer.DebtItem{
			{
				Function: ids.New("pkg/foo.go", "DoThing", 12),
				File:     "pkg/foo.go",
				Kind:     prioritizer.DebtComplexityHotspot,
				Role:     purity.RoleCoreLogic,
				Score:    scorer.UnifiedScore{FinalScore: 87.5},
				Recommendation: prioritizer.Recommendation{
					Action:      "Extract and cover",
					Rationale:   "High complexity, low coverage",
					Steps:       []string{"split branches", "add table-driven test"},
					TestsNeeded: 3,
				},
				Impact: prioritizer.ImpactEstimate{CoverageGained: 0.4, ComplexityReduced: 5},
			},
		},
		Graph:    &callgraph.Graph{},
		Warnings: []error{errors.New("coverage file truncated")},
	}
}

func TestFormat_JSONRoundTrips(t *testing.T) {
	res := sampleResult()
	out := Format(res, Options{Format: "json"})

	var report jsonReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Items, 1)
	assert.Equal(t, "pkg/foo.go", report.Items[0].File)
	assert.Equal(t, "DoThing", report.Items[0].Function)
	assert.Equal(t, 3, report.Items[0].TestsNeeded)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "coverage file truncated", report.Warnings[0])
}

func TestFormat_TextIncludesActionAndWarnings(t *testing.T) {
	res := sampleResult()
	out := Format(res, Options{Format: "text"})

	assert.True(t, strings.Contains(out, "DoThing"))
	assert.True(t, strings.Contains(out, "ACTION: Extract and cover"))
	assert.True(t, strings.Contains(out, "coverage file truncated"))
	assert.False(t, strings.Contains(out, "IMPACT"))
}

func TestFormat_TextShowsImpactWhenRequested(t *testing.T) {
	res := sampleResult()
	out := Format(res, Options{Format: "text", ShowImpact: true})
	assert.True(t, strings.Contains(out, "IMPACT"))
}

func TestFormat_DefaultsUnknownFormatToText(t *testing.T) {
	res := sampleResult()
	out := Format(res, Options{Format: "yaml"})
	assert.True(t, strings.Contains(out, "Found 1 debt item(s)"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 0))
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "he...", truncate("hello", 2))
}

func TestSummarize(t *testing.T) {
	res := sampleResult()
	s := Summarize(res)
	assert.Equal(t, 1, s.TotalItems)
	assert.InDelta(t, 87.5, s.AverageScore, 0.001)
	assert.InDelta(t, 87.5, s.MaxScore, 0.001)
	assert.Equal(t, 1, s.DebtKindCounts[prioritizer.DebtComplexityHotspot.String()])
}

func TestSummarize_EmptyResult(t *testing.T) {
	s := Summarize(&orchestrator.Result{})
	assert.Equal(t, 0, s.TotalItems)
	assert.Equal(t, float64(0), s.AverageScore)
}
