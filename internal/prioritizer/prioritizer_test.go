package prioritizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/lci/internal/detectors"
	"github.com/standardbeagle/lci/internal/ids"
	"github.com/standardbeagle/lci/internal/scorer"
)

func TestTestsNeeded_FullCoverageIsAlwaysZeroRegardlessOfRounding(t *testing.T) {
	for _, cyclomatic := range []int{1, 33, 200} {
		assert.Equal(t, 0, TestsNeeded(cyclomatic, 1.0))
	}
}

func TestTestsNeeded_CeilsTheFractionalGapUpward(t *testing.T) {
	tests := []struct {
		name       string
		cyclomatic int
		fraction   float64
		want       int
	}{
		{"cyclo-33 at 66.1% needs 12 tests", 33, 0.661, 12},
		{"exact integer gap needs no rounding", 10, 0.5, 5},
		{"tiny fractional gap still rounds up to one test", 4, 0.99, 1},
		{"zero coverage needs exactly cyclomatic tests", 7, 0.0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TestsNeeded(tt.cyclomatic, tt.fraction))
		})
	}
}

func TestTestsNeeded_NegativeCyclomaticClampsToZero(t *testing.T) {
	assert.Equal(t, 0, TestsNeeded(-5, 0.2))
}

func TestGenerateRecommendation_ActionAndStepsAgreeOnTestCount(t *testing.T) {
	rec := GenerateRecommendation(33, 0.661, "coverage")
	assert.Equal(t, 12, rec.TestsNeeded)
	assert.NoError(t, ValidateConsistency(rec))
}

func TestGenerateRecommendation_FullCoverageSkipsStepsButStaysConsistent(t *testing.T) {
	rec := GenerateRecommendation(10, 1.0, "coverage")
	assert.Equal(t, 0, rec.TestsNeeded)
	assert.NoError(t, ValidateConsistency(rec))
	assert.Contains(t, rec.Steps[0], "No additional tests needed")
}

func TestGenerateRecommendation_HighCyclomaticAddsPropertyTestStep(t *testing.T) {
	rec := GenerateRecommendation(60, 0.5, "complexity")
	found := false
	for _, step := range rec.Steps {
		if step == "Add a property-based test suite to cover the combinatorial branch space a fixed count of example tests can't reach" {
			found = true
		}
	}
	assert.True(t, found, "cyclomatic above the property-test threshold must add the suite suggestion")
}

func TestValidateConsistency_DetectsActionMismatch(t *testing.T) {
	rec := Recommendation{Action: "Add 5 tests covering the uncovered branches", TestsNeeded: 7}
	err := ValidateConsistency(rec)
	assert.Error(t, err)
}

func TestValidateConsistency_DetectsStepMismatch(t *testing.T) {
	rec := Recommendation{
		Action:      "Add 7 tests covering the uncovered branches",
		TestsNeeded: 7,
		Steps:       []string{"Write 5 unit tests, one per uncovered branch"},
	}
	err := ValidateConsistency(rec)
	assert.Error(t, err)
}

func TestValidateConsistency_AcceptsConsistentRecommendation(t *testing.T) {
	rec := GenerateRecommendation(15, 0.4, "coverage")
	assert.NoError(t, ValidateConsistency(rec))
}

func debtItem(file string, line int, score float64, kind DebtKind) DebtItem {
	return DebtItem{
		Function: ids.FunctionID{File: file, Name: "f", StartLine: line},
		File:     file,
		Kind:     kind,
		Score:    scorer.UnifiedScore{FinalScore: score},
	}
}

func TestPrioritize_SortsByScoreDescending(t *testing.T) {
	items := []DebtItem{
		debtItem("a.go", 1, 10, DebtComplexityHotspot),
		debtItem("b.go", 1, 90, DebtComplexityHotspot),
		debtItem("c.go", 1, 50, DebtComplexityHotspot),
	}
	out := Prioritize(items, 0)
	assert.Equal(t, "b.go", out[0].File)
	assert.Equal(t, "c.go", out[1].File)
	assert.Equal(t, "a.go", out[2].File)
}

func TestPrioritize_TruncatesToTopK(t *testing.T) {
	items := []DebtItem{
		debtItem("a.go", 1, 10, DebtComplexityHotspot),
		debtItem("b.go", 1, 90, DebtComplexityHotspot),
		debtItem("c.go", 1, 50, DebtComplexityHotspot),
	}
	out := Prioritize(items, 2)
	assert.Len(t, out, 2)
	assert.Equal(t, "b.go", out[0].File)
	assert.Equal(t, "c.go", out[1].File)
}

func TestPrioritize_TieBreaksByDependencyThenCyclomaticThenFileThenLine(t *testing.T) {
	a := debtItem("a.go", 10, 50, DebtComplexityHotspot)
	a.Cyclomatic = 5
	a.Score.Factors.DependencyFactor = 0.2

	b := debtItem("b.go", 5, 50, DebtComplexityHotspot)
	b.Cyclomatic = 5
	b.Score.Factors.DependencyFactor = 0.2

	out := Prioritize([]DebtItem{b, a}, 0)
	assert.Equal(t, "a.go", out[0].File, "equal score/dependency/cyclomatic breaks ties by file path ascending")
	assert.Equal(t, "b.go", out[1].File)
}

func TestDeduplicate_DropsLowerSeverityFindingOnSameFunction(t *testing.T) {
	fn := ids.FunctionID{File: "a.go", Name: "f", StartLine: 1}
	items := []DebtItem{
		{Function: fn, Kind: DebtMagicValue, Score: scorer.UnifiedScore{FinalScore: 10}},
		{Function: fn, Kind: DebtSecurityVuln, Score: scorer.UnifiedScore{FinalScore: 10}},
	}
	out := Deduplicate(items)
	assert.Len(t, out, 1)
	assert.Equal(t, DebtSecurityVuln, out[0].Kind)
}

func TestDeduplicate_FileLevelItemsAreNeverMergedTogether(t *testing.T) {
	items := []DebtItem{
		{File: "a.go", Kind: DebtDuplication, Score: scorer.UnifiedScore{FinalScore: 10}},
		{File: "a.go", Kind: DebtDuplication, Score: scorer.UnifiedScore{FinalScore: 5}},
	}
	out := Deduplicate(items)
	assert.Len(t, out, 2)
}

func TestKindForCategory_MapsThroughFromDetectorCategory(t *testing.T) {
	assert.Equal(t, DebtSecurityVuln, KindForCategory(detectors.CategorySecurity))
	assert.Equal(t, DebtGodObject, KindForCategory(detectors.CategoryGodObject))
}
