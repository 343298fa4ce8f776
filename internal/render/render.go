// Package render is the thin, out-of-scope-per-spec presentation layer:
// it turns an orchestrator.Result into text or JSON. It never computes
// a score or a recommendation; it only
// formats values the engine already produced.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/standardbeagle/lci/internal/orchestrator"
)

// Options controls report rendering: a Format string selector plus a
// handful of independent toggles rather than one boolean per combination.
type Options struct {
	Format      string // "text" or "json"
	ShowImpact  bool
	MaxComments int // truncate rationale to this many bytes; 0 = no limit
}

// Format renders res per opts.Format, defaulting to text for any
// unrecognized value.
func Format(res *orchestrator.Result, opts Options) string {
	if opts.Format == "json" {
		return formatJSON(res)
	}
	return formatText(res, opts)
}

type jsonReport struct {
	Items    []jsonItem `json:"items"`
	Warnings []string   `json:"warnings,omitempty"`
}

type jsonItem struct {
	File        string  `json:"file"`
	Function    string  `json:"function,omitempty"`
	Line        int     `json:"line,omitempty"`
	Kind        string  `json:"kind"`
	Role        string  `json:"role,omitempty"`
	Score       float64 `json:"score"`
	Action      string  `json:"action"`
	Rationale   string  `json:"rationale"`
	Steps       []string `json:"steps,omitempty"`
	TestsNeeded int     `json:"tests_needed"`
}

func formatJSON(res *orchestrator.Result) string {
	report := jsonReport{}
	for _, it := range res.Items {
		report.Items = append(report.Items, jsonItem{
			File:        it.File,
			Function:    it.Function.Name,
			Line:        it.Function.StartLine,
			Kind:        it.Kind.String(),
			Role:        it.Role.String(),
			Score:       it.Score.FinalScore,
			Action:      it.Recommendation.Action,
			Rationale:   it.Recommendation.Rationale,
			Steps:       it.Recommendation.Steps,
			TestsNeeded: it.Recommendation.TestsNeeded,
		})
	}
	for _, w := range res.Warnings {
		report.Warnings = append(report.Warnings, w.Error())
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

func formatText(res *orchestrator.Result, opts Options) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d debt item(s)\n", len(res.Items))
	for i, it := range res.Items {
		loc := it.File
		if it.Function.Name != "" {
			loc = fmt.Sprintf("%s:%d (%s)", it.File, it.Function.StartLine, it.Function.Name)
		}
		fmt.Fprintf(&sb, "\n%d. [%s] %s - score %.1f\n", i+1, it.Kind, loc, it.Score.FinalScore)
		fmt.Fprintf(&sb, "   ACTION: %s\n", it.Recommendation.Action)
		if it.Recommendation.Rationale != "" {
			sb.WriteString("   RATIONALE: " + truncate(it.Recommendation.Rationale, opts.MaxComments) + "\n")
		}
		for _, step := range it.Recommendation.Steps {
			sb.WriteString("   STEP: " + step + "\n")
		}
		if opts.ShowImpact {
			fmt.Fprintf(&sb, "   IMPACT: coverage +%.0f%%, complexity -%.1f\n",
				it.Impact.CoverageGained*100, it.Impact.ComplexityReduced)
		}
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintf(&sb, "\n%d warning(s):\n", len(res.Warnings))
		for _, w := range res.Warnings {
			sb.WriteString("  - " + w.Error() + "\n")
		}
	}
	return sb.String()
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Summary is a small aggregate useful for CI gating against
// thresholds.validation; it's computed here rather than in the scorer
// because it's purely a rendering/reporting concern, not part of the
// scoring pipeline itself.
type Summary struct {
	TotalItems       int
	AverageScore     float64
	MaxScore         float64
	DebtKindCounts   map[string]int
}

// Summarize folds res.Items into a Summary for a one-line CI report.
func Summarize(res *orchestrator.Result) Summary {
	s := Summary{DebtKindCounts: make(map[string]int)}
	var total float64
	for _, it := range res.Items {
		s.TotalItems++
		total += it.Score.FinalScore
		if it.Score.FinalScore > s.MaxScore {
			s.MaxScore = it.Score.FinalScore
		}
		s.DebtKindCounts[it.Kind.String()]++
	}
	if s.TotalItems > 0 {
		s.AverageScore = total / float64(s.TotalItems)
	}
	return s
}
