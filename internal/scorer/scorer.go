// Package scorer implements the unified scorer: it combines the
// complexity, coverage, and dependency factors into a single monotone
// score per function, applies the role multiplier and risk boost, and
// runs the exponential tail adjustment for extreme outliers: band lookups
// and a weighted combination feed into a single four-factor model instead
// of one flat "quality score".
package scorer

import (
	"math"

	"github.com/standardbeagle/lci/internal/ids"
	"github.com/standardbeagle/lci/internal/purity"
)

// Weights are the base-score combination weights
// (scoring.coverage/complexity/dependency), required to sum to 1.0 within
// tolerance; validated by config, not by the scorer itself.
type Weights struct {
	Complexity float64
	Coverage   float64
	Dependency float64
}

// DefaultWeights matches the canonical split worked
// examples: coverage urgency carries the most weight, complexity next,
// dependency criticality last.
func DefaultWeights() Weights {
	return Weights{Complexity: 0.35, Coverage: 0.45, Dependency: 0.20}
}

// roleMultipliers is the role-multiplier table verbatim.
var roleMultipliers = map[purity.Role]float64{
	purity.RoleEntryPoint:  1.3,
	purity.RolePureLogic:   1.0,
	purity.RoleCoreLogic:   1.1,
	purity.RoleOrchestrator: 0.9,
	purity.RoleUtility:     0.7,
	purity.RoleTest:        0.0,
	purity.RoleConstructor: 0.6,
	purity.RoleAccessor:    0.5,
}

// RoleMultiplier returns the table value for role, defaulting to 1.0
// for RoleUnknown so an unclassified function neither inflates nor
// suppresses its score.
func RoleMultiplier(role purity.Role) float64 {
	if m, ok := roleMultipliers[role]; ok {
		return m
	}
	return 1.0
}

// complexityAsymptoteK is the smoothing constant in the `x / (x + k)`
// normalization, tuned to 10.
const complexityAsymptoteK = 10.0

// ComplexityFactor normalizes adjusted cyclomatic complexity to [0, 1)
// via a smooth asymptote so a handful of extremely complex functions
// don't make every other function's factor look negligible by
// comparison.
func ComplexityFactor(adjustedCyclomatic float64) float64 {
	if adjustedCyclomatic < 0 {
		adjustedCyclomatic = 0
	}
	return adjustedCyclomatic / (adjustedCyclomatic + complexityAsymptoteK)
}

// ComplexityTier buckets cyclomatic complexity into the four urgency
// tiers.
type ComplexityTier int

const (
	TierSimple ComplexityTier = iota
	TierModerate
	TierHigh
	TierExtreme
)

// ClassifyTier buckets a raw cyclomatic count per the boundaries:
// Simple <=10, Moderate 11-30, High 31-50, Extreme >50.
func ClassifyTier(cyclomatic int) ComplexityTier {
	switch {
	case cyclomatic <= 10:
		return TierSimple
	case cyclomatic <= 30:
		return TierModerate
	case cyclomatic <= 50:
		return TierHigh
	default:
		return TierExtreme
	}
}

// coverageUrgencyNormalizer scales the raw C*gap product into [0, 10].
// Chosen so a Simple/Moderate function at maximum plausible complexity
// (30) and zero coverage lands at the urgency ceiling, keeping
// urgency(C, 0) at 10 for every C >= 1 once the High/Extreme tiers' own
// rounding rules are applied on top.
const coverageUrgencyNormalizer = 3.0

// CoverageUrgency implements the canonical coverage-urgency table. The
// High tier must use the same ceil rounding as every other tier rather
// than round, or ACTION/STEPS text built from the two can disagree.
//
// An uncovered function (coveredFraction == 0) always returns 10; a
// fully covered function (coveredFraction == 1) always returns 0,
// regardless of tier, computed directly rather than as a side effect of
// the tier arithmetic.
func CoverageUrgency(cyclomatic int, coveredFraction float64) float64 {
	if coveredFraction >= 1 {
		return 0
	}
	if cyclomatic < 1 {
		cyclomatic = 1
	}
	gap := 1 - coveredFraction
	if coveredFraction <= 0 {
		return 10
	}

	switch ClassifyTier(cyclomatic) {
	case TierSimple, TierModerate:
		urgency := (float64(cyclomatic) * gap) / coverageUrgencyNormalizer
		return clamp(urgency, 0, 10)
	case TierHigh:
		raw := math.Ceil(float64(cyclomatic) * gap)
		urgency := raw / coverageUrgencyNormalizer
		return clamp(urgency, 0, 10)
	default: // TierExtreme
		raw := math.Ceil(float64(cyclomatic) * gap)
		urgency := raw/coverageUrgencyNormalizer + propertyTestBonus
		return clamp(urgency, 0, 10)
	}
}

// propertyTestBonus is the flat addition the Extreme tier applies on top
// of the High-tier rule: functions this complex warrant property-based
// tests, so their urgency is nudged above the High tier's at equal gap.
const propertyTestBonus = 0.5

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CoverageFactor normalizes CoverageUrgency's [0,10] range to [0,1] for
// the weighted base-score combination.
func CoverageFactor(cyclomatic int, coveredFraction float64) float64 {
	return CoverageUrgency(cyclomatic, coveredFraction) / 10.0
}

// dependencyDamp and dependencyHubBoost shape the monotone-in-dependents
// curve calls for: leaves (zero dependents) contribute a small
// floor rather than zero (a function can still be risky in isolation),
// and hubs (many dependents) get amplified past what a linear count
// would give them since a bug there blast-radiuses further.
const (
	dependencyLeafFloor = 0.05
	dependencyHubK      = 8.0
)

// DependencyFactor normalizes downstream dependent count to [0,1],
// dampened for leaves and amplified for hubs, via the same asymptote
// shape as ComplexityFactor but with a non-zero floor.
func DependencyFactor(downstreamDependents int) float64 {
	if downstreamDependents <= 0 {
		return dependencyLeafFloor
	}
	x := float64(downstreamDependents)
	return dependencyLeafFloor + (1-dependencyLeafFloor)*(x/(x+dependencyHubK))
}

// Factors holds every input to the final-score computation, matching the
// UnifiedScore factor components in the data model.
type Factors struct {
	ComplexityFactor float64
	CoverageFactor   float64
	DependencyFactor float64
	RoleMultiplier   float64
	RiskBoost        float64 // 1.0 (no boost) .. 1.5, from security/resource detectors
}

// exponentialGamma and linearThreshold implement the extreme-outlier
// adjustment: final = base * role * exp(gamma * max(0, base - threshold)).
const (
	exponentialGamma = 0.05
	linearThreshold  = 50.0
)

// UnifiedScore is the full per-function score breakdown from the data
// model, retaining every intermediate value so the recommendation
// generator can cite "the dominant factor" and so debug builds can
// re-derive FinalScore from its components for the consistency check.
type UnifiedScore struct {
	Function           ids.FunctionID
	Factors            Factors
	BaseScore          float64
	ExponentialFactor  float64
	PreAdjustmentScore float64
	FinalScore         float64
}

// Compute combines factors into the final score: a weighted base,
// scaled by the role multiplier, with an exponential boost past the
// linear threshold and a multiplicative risk boost from detector
// findings. Above 100 the final score is compressed logarithmically
// (100 + ln(1 + excess)) rather than clipped; the compression is strictly
// increasing, so ranking and the monotonicity property are preserved.
func Compute(fn ids.FunctionID, f Factors, w Weights) UnifiedScore {
	base := w.Complexity*f.ComplexityFactor + w.Coverage*f.CoverageFactor + w.Dependency*f.DependencyFactor
	base *= 100 // factors are [0,1]; base score is reported on a 0-100-ish scale

	// RoleMultiplier is always explicitly set by RoleMultiplier(role); a
	// Test function's 0.0 is a legitimate multiplier (its score collapses
	// to 0), not an unset field, so it is never defaulted away here.
	preAdjustment := base * f.RoleMultiplier

	excess := preAdjustment - linearThreshold
	if excess < 0 {
		excess = 0
	}
	expFactor := math.Exp(exponentialGamma * excess)

	risk := f.RiskBoost
	if risk <= 0 {
		risk = 1.0
	}
	if risk > 1.5 {
		risk = 1.5
	}

	final := preAdjustment * expFactor * risk
	if final > 100 {
		final = 100 + math.Log1p(final-100) // soft cap: compress, never hard-clip to a flat 100
	}

	return UnifiedScore{
		Function:           fn,
		Factors:            f,
		BaseScore:          base,
		ExponentialFactor:  expFactor,
		PreAdjustmentScore: preAdjustment,
		FinalScore:         final,
	}
}
