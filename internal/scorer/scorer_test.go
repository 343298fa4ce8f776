package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/lci/internal/ids"
	"github.com/standardbeagle/lci/internal/purity"
)

func TestCoverageUrgency_FullCoverageIsAlwaysZero(t *testing.T) {
	for _, cyclomatic := range []int{1, 10, 31, 51, 200} {
		assert.Equal(t, 0.0, CoverageUrgency(cyclomatic, 1.0), "cyclomatic=%d", cyclomatic)
	}
}

func TestCoverageUrgency_ZeroCoverageIsAlwaysTen(t *testing.T) {
	for _, cyclomatic := range []int{1, 10, 31, 51, 200} {
		assert.Equal(t, 10.0, CoverageUrgency(cyclomatic, 0.0), "cyclomatic=%d", cyclomatic)
	}
}

func TestCoverageUrgency_StaysWithinBounds(t *testing.T) {
	for _, cyclomatic := range []int{1, 5, 15, 33, 45, 80} {
		for _, fraction := range []float64{0.0, 0.1, 0.339, 0.5, 0.9, 1.0} {
			u := CoverageUrgency(cyclomatic, fraction)
			assert.GreaterOrEqual(t, u, 0.0)
			assert.LessOrEqual(t, u, 10.0)
		}
	}
}

// TestCoverageUrgency_HighTierPartialCoverage pins the canonical High-tier
// example verbatim: Cyclo-33 at 66.1% coverage.
func TestCoverageUrgency_HighTierPartialCoverage(t *testing.T) {
	u := CoverageUrgency(33, 0.661)
	assert.InDelta(t, 4.0, u, 0.0001)
}

func TestCoverageUrgency_HighTierUsesCeilNotRound(t *testing.T) {
	// cyclomatic=31 (High), gap=0.683 -> 31*0.683=21.173. round() would
	// give 21; ceil() must give 22, the rule this tier is required to use.
	u := CoverageUrgency(31, 0.317)
	assert.InDelta(t, 22.0/coverageUrgencyNormalizer, u, 0.0001)
}

func TestCoverageUrgency_ExtremeTierAddsPropertyTestBonusOnTopOfCeil(t *testing.T) {
	// cyclomatic=60 (Extreme), gap=0.2 -> 60*0.2=12, ceil=12, urgency=12/3+0.5.
	u := CoverageUrgency(60, 0.8)
	want := clamp(12.0/coverageUrgencyNormalizer+propertyTestBonus, 0, 10)
	assert.InDelta(t, want, u, 0.0001)
}

func TestCoverageUrgency_MonotonicInGapWithinATier(t *testing.T) {
	// Holding cyclomatic fixed within the Simple tier, urgency must never
	// decrease as coverage drops (gap rises).
	prev := CoverageUrgency(8, 0.9)
	for _, fraction := range []float64{0.7, 0.5, 0.3, 0.1, 0.0} {
		u := CoverageUrgency(8, fraction)
		assert.GreaterOrEqual(t, u, prev, "urgency must not decrease as coverage drops")
		prev = u
	}
}

func TestComplexityFactor_MonotonicAndBounded(t *testing.T) {
	prev := -1.0
	for _, c := range []float64{0, 1, 5, 10, 50, 1000} {
		f := ComplexityFactor(c)
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
		assert.GreaterOrEqual(t, f, prev)
		prev = f
	}
}

func TestDependencyFactor_LeavesGetNonZeroFloor(t *testing.T) {
	assert.Equal(t, dependencyLeafFloor, DependencyFactor(0))
	assert.Equal(t, dependencyLeafFloor, DependencyFactor(-3))
}

func TestDependencyFactor_MonotonicInDependentCount(t *testing.T) {
	prev := DependencyFactor(0)
	for _, n := range []int{1, 2, 8, 50, 500} {
		f := DependencyFactor(n)
		assert.Greater(t, f, prev)
		prev = f
	}
}

func TestRoleMultiplier_TestRoleZerosOutScore(t *testing.T) {
	assert.Equal(t, 0.0, RoleMultiplier(purity.RoleTest))
}

func TestRoleMultiplier_UnknownRoleDefaultsToNeutral(t *testing.T) {
	assert.Equal(t, 1.0, RoleMultiplier(purity.RoleUnknown))
}

func TestCompute_ScoreIsMonotonicInEachFactor(t *testing.T) {
	weights := DefaultWeights()
	base := Factors{ComplexityFactor: 0.3, CoverageFactor: 0.3, DependencyFactor: 0.3, RoleMultiplier: 1.0, RiskBoost: 1.0}

	baseline := Compute(idOf("f"), base, weights).FinalScore

	higherComplexity := base
	higherComplexity.ComplexityFactor = 0.9
	assert.Greater(t, Compute(idOf("f"), higherComplexity, weights).FinalScore, baseline)

	higherCoverage := base
	higherCoverage.CoverageFactor = 0.9
	assert.Greater(t, Compute(idOf("f"), higherCoverage, weights).FinalScore, baseline)

	higherDependency := base
	higherDependency.DependencyFactor = 0.9
	assert.Greater(t, Compute(idOf("f"), higherDependency, weights).FinalScore, baseline)

	higherRisk := base
	higherRisk.RiskBoost = 1.5
	assert.Greater(t, Compute(idOf("f"), higherRisk, weights).FinalScore, baseline)
}

func TestCompute_TestRoleCollapsesScoreToZero(t *testing.T) {
	f := Factors{ComplexityFactor: 0.9, CoverageFactor: 0.9, DependencyFactor: 0.9, RoleMultiplier: RoleMultiplier(purity.RoleTest), RiskBoost: 1.0}
	score := Compute(idOf("f"), f, DefaultWeights())
	assert.Equal(t, 0.0, score.FinalScore)
}

func TestCompute_FinalScoreSoftCapCompressesRatherThanClips(t *testing.T) {
	f := Factors{ComplexityFactor: 1.0, CoverageFactor: 1.0, DependencyFactor: 1.0, RoleMultiplier: 1.3, RiskBoost: 1.5}
	score := Compute(idOf("f"), f, DefaultWeights())
	assert.Greater(t, score.FinalScore, 100.0, "an extreme function should exceed the raw 100 line")
	assert.Less(t, score.FinalScore, 200.0, "the soft cap must compress growth logarithmically, not let it run linearly")
}

func idOf(name string) (id ids.FunctionID) {
	return ids.FunctionID{File: "f.go", Name: name, StartLine: 1}
}
