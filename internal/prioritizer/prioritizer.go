// Package prioritizer implements debt prioritization: sorting,
// deduplication, top-K truncation, and recommendation-text generation
// with the canonical test-count rule, plus the ACTION/STEPS consistency
// check, via deterministic field-driven text rendering and a
// dedup-by-superset idiom over DebtKind.
package prioritizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/standardbeagle/lci/internal/detectors"
	"github.com/standardbeagle/lci/internal/ids"
	"github.com/standardbeagle/lci/internal/purity"
	"github.com/standardbeagle/lci/internal/scorer"
)

// DebtKind is the debt item's category, extending detectors.Category
// with the score-driven kinds the detectors never emit directly
// (complexity hotspots and testing gaps fall out of the unified score,
// not a standalone pass).
type DebtKind int

const (
	DebtComplexityHotspot DebtKind = iota
	DebtTestingGap
	DebtDuplication
	DebtRisk
	DebtDeadCode
	DebtSecurityVuln
	DebtResourceLeak
	DebtOrganizationAntiPattern
	DebtGodObject
	DebtLongParameterList
	DebtMagicValue
	DebtFeatureEnvy
	DebtTestingAntipattern
	DebtPerformance
)

func (k DebtKind) String() string {
	names := map[DebtKind]string{
		DebtComplexityHotspot:       "complexity_hotspot",
		DebtTestingGap:              "testing_gap",
		DebtDuplication:             "duplication",
		DebtRisk:                    "risk",
		DebtDeadCode:                "dead_code",
		DebtSecurityVuln:            "security_vuln",
		DebtResourceLeak:            "resource_leak",
		DebtOrganizationAntiPattern: "organization_anti_pattern",
		DebtGodObject:               "god_object",
		DebtLongParameterList:       "long_parameter_list",
		DebtMagicValue:              "magic_value",
		DebtFeatureEnvy:             "feature_envy",
		DebtTestingAntipattern:      "testing_antipattern",
		DebtPerformance:             "performance",
	}
	if n, ok := names[k]; ok {
		return n
	}
	return "unknown"
}

// fromDetectorCategory maps a detector Finding's Category onto the wider
// DebtKind set the prioritizer ranks over.
func fromDetectorCategory(c detectors.Category) DebtKind {
	switch c {
	case detectors.CategoryGodObject:
		return DebtGodObject
	case detectors.CategoryLongParameterList:
		return DebtLongParameterList
	case detectors.CategoryMagicValue:
		return DebtMagicValue
	case detectors.CategoryFeatureEnvy:
		return DebtFeatureEnvy
	case detectors.CategoryTestingAntipattern:
		return DebtTestingAntipattern
	case detectors.CategorySecurity:
		return DebtSecurityVuln
	case detectors.CategoryPerformance:
		return DebtPerformance
	case detectors.CategoryResourceManagement:
		return DebtResourceLeak
	case detectors.CategoryDuplication:
		return DebtDuplication
	default:
		return DebtOrganizationAntiPattern
	}
}

// KindForCategory exposes fromDetectorCategory to other packages (the
// orchestrator builds DebtItems directly from detector Findings and
// needs the same Category->DebtKind mapping Deduplicate's severity table
// ranks over).
func KindForCategory(c detectors.Category) DebtKind { return fromDetectorCategory(c) }

// ImpactEstimate is the expected-impact vector the data model attaches to
// every DebtItem.
type ImpactEstimate struct {
	CoverageGained     float64
	LinesReduced       int
	ComplexityReduced  float64
	RiskReduced        float64
}

// Recommendation holds the generated action/rationale/steps text plus the
// test count the consistency check verifies appears identically
// everywhere it's referenced.
type Recommendation struct {
	Action      string
	Rationale   string
	Steps       []string
	TestsNeeded int
}

// DebtItem is one ranked entry in the final report, matching the data
// model's DebtItem.
type DebtItem struct {
	Function              ids.FunctionID // zero value for file-level items
	File                  string
	Kind                  DebtKind
	Score                 scorer.UnifiedScore
	Role                  purity.Role
	UpstreamDependencies   int
	DownstreamDependencies int
	Cyclomatic            int
	CoveredFraction       float64
	Recommendation        Recommendation
	Impact                ImpactEstimate
}

// TestsNeeded implements the canonical test-count rule:
// ceil(C * (1 - f)), except f==1 which is always exactly 0 regardless of
// rounding. This is the single source of truth for the number; every
// caller that renders ACTION or STEPS text must go through it rather
// than recomputing, which is precisely how the count once drifted
// between ACTION and STEPS.
func TestsNeeded(cyclomatic int, coveredFraction float64) int {
	if coveredFraction >= 1 {
		return 0
	}
	if cyclomatic < 0 {
		cyclomatic = 0
	}
	gap := 1 - coveredFraction
	return int(math.Ceil(float64(cyclomatic) * gap))
}

// propertyTestThreshold is the cyclomatic count past which
// GenerateRecommendation adds a property-test suggestion to STEPS.
const propertyTestThreshold = 50

// GenerateRecommendation builds the ACTION/RATIONALE/STEPS text for a
// testing-gap item, computing the test count exactly once and
// interpolating the same integer into every line that needs it so the
// consistency check can never find a mismatch.
func GenerateRecommendation(cyclomatic int, coveredFraction float64, dominantFactor string) Recommendation {
	count := TestsNeeded(cyclomatic, coveredFraction)
	action := fmt.Sprintf("Add %d tests covering the uncovered branches", count)
	rationale := fmt.Sprintf("Dominant factor: %s (cyclomatic=%d, coverage=%.1f%%)", dominantFactor, cyclomatic, coveredFraction*100)

	var steps []string
	if count > 0 {
		steps = append(steps, fmt.Sprintf("Write %d unit tests, one per uncovered branch", count))
		steps = append(steps, fmt.Sprintf("Run coverage again to confirm all %d tests land on previously-uncovered lines", count))
	} else {
		steps = append(steps, "No additional tests needed; coverage is already complete")
	}
	if cyclomatic > propertyTestThreshold {
		steps = append(steps, "Add a property-based test suite to cover the combinatorial branch space a fixed count of example tests can't reach")
	}

	return Recommendation{Action: action, Rationale: rationale, Steps: steps, TestsNeeded: count}
}

// ValidateConsistency is the debug-mode validator: it
// re-parses the integer after "Add " in Action and every integer after
// "Write " in Steps and fails if they disagree with TestsNeeded. Returns
// a nil error when consistent. The orchestrator aborts on it only when
// debug mode is enabled and otherwise records it as a warning.
func ValidateConsistency(r Recommendation) error {
	actionCount, ok := parseAfter(r.Action, "Add ")
	if ok && actionCount != r.TestsNeeded {
		return fmt.Errorf("ACTION test count %d disagrees with canonical %d", actionCount, r.TestsNeeded)
	}
	for _, step := range r.Steps {
		stepCount, ok := parseAfter(step, "Write ")
		if ok && stepCount != r.TestsNeeded {
			return fmt.Errorf("STEP test count %d disagrees with canonical %d: %q", stepCount, r.TestsNeeded, step)
		}
	}
	return nil
}

func parseAfter(s, prefix string) (int, bool) {
	idx := indexOf(s, prefix)
	if idx < 0 {
		return 0, false
	}
	start := idx + len(prefix)
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n := 0
	for _, c := range s[start:end] {
		n = n*10 + int(c-'0')
	}
	return n, true
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// DefaultTopK is the top-K truncation default.
const DefaultTopK = 100

// tieBreak implements the deterministic tie-break order:
// dependency_factor desc, cyclomatic desc, file path asc, line asc.
func tieBreak(a, b DebtItem) bool {
	if a.Score.FinalScore != b.Score.FinalScore {
		return a.Score.FinalScore > b.Score.FinalScore
	}
	if a.Score.Factors.DependencyFactor != b.Score.Factors.DependencyFactor {
		return a.Score.Factors.DependencyFactor > b.Score.Factors.DependencyFactor
	}
	if a.Cyclomatic != b.Cyclomatic {
		return a.Cyclomatic > b.Cyclomatic
	}
	if a.Function.File != b.Function.File {
		return a.Function.File < b.Function.File
	}
	return a.Function.StartLine < b.Function.StartLine
}

// isSuperset reports whether item a's DebtKind set covers b's, used by
// Deduplicate to drop an item that another, broader finding on the same
// FunctionId already covers. Currently every item carries exactly one
// Kind, so "superset" degenerates to "more severe category for the same
// function"; the severity order below is the one place that ranking is
// encoded.
var kindSeverityRank = map[DebtKind]int{
	DebtSecurityVuln:            0,
	DebtResourceLeak:            1,
	DebtGodObject:               2,
	DebtOrganizationAntiPattern: 3,
	DebtComplexityHotspot:       4,
	DebtDeadCode:                5,
	DebtFeatureEnvy:             6,
	DebtLongParameterList:       7,
	DebtTestingAntipattern:      8,
	DebtMagicValue:              9,
	DebtPerformance:             10,
	DebtDuplication:             11,
	DebtRisk:                    12,
	DebtTestingGap:              13,
}

func isSuperset(a, b DebtKind) bool {
	ra, aok := kindSeverityRank[a]
	rb, bok := kindSeverityRank[b]
	if !aok || !bok {
		return false
	}
	return ra < rb
}

// Deduplicate drops items that share a FunctionId with another item whose
// DebtKind the severity table ranks as a superset. File-level
// items (zero FunctionId) are never deduplicated against each other since
// each names a distinct file.
func Deduplicate(items []DebtItem) []DebtItem {
	byFunc := make(map[ids.FunctionID][]int)
	for i, it := range items {
		if it.Function == (ids.FunctionID{}) {
			continue
		}
		byFunc[it.Function] = append(byFunc[it.Function], i)
	}
	dropped := make([]bool, len(items))
	for _, idxs := range byFunc {
		for _, i := range idxs {
			for _, j := range idxs {
				if i == j || dropped[i] {
					continue
				}
				if isSuperset(items[j].Kind, items[i].Kind) {
					dropped[i] = true
					break
				}
			}
		}
	}
	out := make([]DebtItem, 0, len(items))
	for i, it := range items {
		if !dropped[i] {
			out = append(out, it)
		}
	}
	return out
}

// Prioritize deduplicates, sorts by the tie-break order, and truncates
// to topK. A topK of 0 or less means "no truncation" (all
// deduplicated items are returned).
func Prioritize(items []DebtItem, topK int) []DebtItem {
	deduped := Deduplicate(items)
	sort.SliceStable(deduped, func(i, j int) bool { return tieBreak(deduped[i], deduped[j]) })
	if topK > 0 && len(deduped) > topK {
		return deduped[:topK]
	}
	return deduped
}
