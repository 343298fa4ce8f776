// Package config implements the engine's discovered-file configuration:
// scoring weights, thresholds, ignore patterns, and the per-detector
// tuning knobs, loaded from a TOML config file via
// github.com/pelletier/go-toml/v2. Validation accumulates every error
// rather than stopping at the first: a single run reports every invalid
// option with a field path.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full discovered-file configuration: scoring weights,
// thresholds, ignore patterns, and per-detector tuning.
type Config struct {
	Scoring    Scoring    `toml:"scoring"`
	Thresholds Thresholds `toml:"thresholds"`
	Ignore     Ignore     `toml:"ignore"`
	Detection  Detection  `toml:"detection"`
}

// Scoring holds the weight tables. Coverage/Complexity/Dependency
// must sum to 1.0 within 0.001; Semantic/Security/Organization are
// independently validated (each in [0,1]) rather than participating in
// that sum.
type Scoring struct {
	Coverage     float64 `toml:"coverage"`
	Complexity   float64 `toml:"complexity"`
	Dependency   float64 `toml:"dependency"`
	Semantic     float64 `toml:"semantic"`
	Security     float64 `toml:"security"`
	Organization float64 `toml:"organization"`
}

// Thresholds holds the size/complexity thresholds and the nested
// validation-run ceilings.
type Thresholds struct {
	Complexity    int              `toml:"complexity"`
	MaxFileLength int              `toml:"max_file_length"`
	Validation    ValidationLimits `toml:"validation"`
}

// ValidationLimits are the codebase-wide ceilings a run can be configured
// to enforce.
type ValidationLimits struct {
	MaxAverageComplexity  float64 `toml:"max_average_complexity"`
	MaxDebtDensity        float64 `toml:"max_debt_density"`
	MaxCodebaseRiskScore  float64 `toml:"max_codebase_risk_score"`
	MinCoveragePercentage float64 `toml:"min_coverage_percentage"`
}

// Ignore holds the glob exclusion patterns, matched with
// github.com/bmatcuk/doublestar/v4 for recursive double-star glob support.
type Ignore struct {
	Patterns []string `toml:"patterns"`
}

// Detection holds every per-detector tuning section.
type Detection struct {
	Orchestrator  OrchestratorDetection  `toml:"orchestrator"`
	Constructor   ConstructorDetection   `toml:"constructor"`
	Accessor      AccessorDetection      `toml:"accessor"`
	DataFlow      DataFlowDetection      `toml:"data_flow"`
	ErrorHandling ErrorHandlingDetection `toml:"error_handling"`
}

type OrchestratorDetection struct {
	MaxCyclomatic        int     `toml:"max_cyclomatic"`
	MinDelegationRatio   float64 `toml:"min_delegation_ratio"`
	MinMeaningfulCallees int     `toml:"min_meaningful_callees"`
	CognitiveWeight      float64 `toml:"cognitive_weight"`
}

type ConstructorDetection struct {
	Patterns      []string `toml:"patterns"`
	MaxCyclomatic int      `toml:"max_cyclomatic"`
	MaxCognitive  int      `toml:"max_cognitive"`
	MaxLength     int      `toml:"max_length"`
	MaxNesting    int      `toml:"max_nesting"`
	ASTDetection  bool     `toml:"ast_detection"`
}

type AccessorDetection struct {
	Enabled            bool     `toml:"enabled"`
	SingleWordPatterns []string `toml:"single_word_patterns"`
	PrefixPatterns     []string `toml:"prefix_patterns"`
	MaxCyclomatic      int      `toml:"max_cyclomatic"`
	MaxCognitive       int      `toml:"max_cognitive"`
	MaxLength          int      `toml:"max_length"`
	MaxNesting         int      `toml:"max_nesting"`
}

type DataFlowDetection struct {
	Enabled                bool    `toml:"enabled"`
	MinConfidence          float64 `toml:"min_confidence"`
	MinTransformationRatio float64 `toml:"min_transformation_ratio"`
	MaxBusinessLogicRatio  float64 `toml:"max_business_logic_ratio"`
}

type ErrorHandlingDetection struct {
	DetectAsyncErrors   bool              `toml:"detect_async_errors"`
	DetectContextLoss   bool              `toml:"detect_context_loss"`
	DetectPropagation   bool              `toml:"detect_propagation"`
	DetectPanicPatterns bool              `toml:"detect_panic_patterns"`
	DetectSwallowing    bool              `toml:"detect_swallowing"`
	CustomPatterns      []string          `toml:"custom_patterns"`
	SeverityOverrides   map[string]string `toml:"severity_overrides"`
}

// Default returns the configuration the engine runs with when no config
// file is discovered.
func Default() Config {
	return Config{
		Scoring: Scoring{Coverage: 0.45, Complexity: 0.35, Dependency: 0.20},
		Thresholds: Thresholds{
			Complexity:    10,
			MaxFileLength: 500,
			Validation: ValidationLimits{
				MaxAverageComplexity:  20,
				MaxDebtDensity:        0.5,
				MaxCodebaseRiskScore:  100,
				MinCoveragePercentage: 0,
			},
		},
		Detection: Detection{
			Orchestrator: OrchestratorDetection{MaxCyclomatic: 5, MinDelegationRatio: 0.2, MinMeaningfulCallees: 2, CognitiveWeight: 1.0},
			Constructor:  ConstructorDetection{Patterns: []string{"new", "create", "make", "build", "init"}, MaxCyclomatic: 3, MaxCognitive: 5, MaxLength: 20, MaxNesting: 2, ASTDetection: true},
			Accessor:     AccessorDetection{Enabled: true, SingleWordPatterns: []string{"get", "is", "has", "can"}, PrefixPatterns: []string{"get_", "is_", "has_"}, MaxCyclomatic: 2, MaxCognitive: 2, MaxLength: 3, MaxNesting: 1},
			DataFlow:     DataFlowDetection{Enabled: true, MinConfidence: 0.6, MinTransformationRatio: 0.5, MaxBusinessLogicRatio: 0.3},
			ErrorHandling: ErrorHandlingDetection{
				DetectAsyncErrors: true, DetectContextLoss: true, DetectPropagation: true,
				DetectPanicPatterns: true, DetectSwallowing: true,
			},
		},
	}
}

// Load parses a TOML document's bytes into a Config seeded from Default,
// so a partial file only overrides the keys it mentions.
func Load(data []byte) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// FieldError is one invalid configuration value, carrying the dotted
// field path every caller should report.
type FieldError struct {
	Field string
	Msg   string
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// weightSumTolerance is the +/-0.001 band the three primary weights are
// allowed to deviate from 1.0 before the run is refused.
const weightSumTolerance = 0.001

// Validate accumulates every invalid field rather than stopping at the
// first. All returned errors are fatal: callers must refuse to start the
// run when len(errors) > 0.
func Validate(c Config) []error {
	var errs []error

	sum := c.Scoring.Coverage + c.Scoring.Complexity + c.Scoring.Dependency
	if sum < 1.0-weightSumTolerance || sum > 1.0+weightSumTolerance {
		errs = append(errs, FieldError{"scoring.coverage+complexity+dependency", fmt.Sprintf("must sum to 1.0 +/-0.001, got %.4f", sum)})
	}
	errs = append(errs, rangeCheck("scoring.coverage", c.Scoring.Coverage)...)
	errs = append(errs, rangeCheck("scoring.complexity", c.Scoring.Complexity)...)
	errs = append(errs, rangeCheck("scoring.dependency", c.Scoring.Dependency)...)
	errs = append(errs, rangeCheck("scoring.semantic", c.Scoring.Semantic)...)
	errs = append(errs, rangeCheck("scoring.security", c.Scoring.Security)...)
	errs = append(errs, rangeCheck("scoring.organization", c.Scoring.Organization)...)

	if c.Thresholds.Complexity <= 0 {
		errs = append(errs, FieldError{"thresholds.complexity", "must be a positive integer"})
	}
	if c.Thresholds.MaxFileLength <= 0 {
		errs = append(errs, FieldError{"thresholds.max_file_length", "must be a positive integer"})
	}
	errs = append(errs, nonNegativeCheck("thresholds.validation.max_average_complexity", c.Thresholds.Validation.MaxAverageComplexity)...)
	errs = append(errs, nonNegativeCheck("thresholds.validation.max_debt_density", c.Thresholds.Validation.MaxDebtDensity)...)
	errs = append(errs, nonNegativeCheck("thresholds.validation.max_codebase_risk_score", c.Thresholds.Validation.MaxCodebaseRiskScore)...)
	if c.Thresholds.Validation.MinCoveragePercentage < 0 || c.Thresholds.Validation.MinCoveragePercentage > 100 {
		errs = append(errs, FieldError{"thresholds.validation.min_coverage_percentage", "must be in [0, 100]"})
	}

	for i, pattern := range c.Ignore.Patterns {
		if _, err := doublestar.Match(pattern, "probe"); err != nil {
			errs = append(errs, FieldError{fmt.Sprintf("ignore.patterns[%d]", i), fmt.Sprintf("invalid glob %q: %v", pattern, err)})
		}
	}

	return errs
}

func rangeCheck(field string, v float64) []error {
	if v < 0 || v > 1 {
		return []error{FieldError{field, "must be in [0, 1]"}}
	}
	return nil
}

func nonNegativeCheck(field string, v float64) []error {
	if v < 0 {
		return []error{FieldError{field, "must be non-negative"}}
	}
	return nil
}

// MatchesIgnore reports whether path matches any configured ignore glob.
func MatchesIgnore(c Config, path string) bool {
	for _, pattern := range c.Ignore.Patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// homeConfigName is the per-user base-layer file merged under the
// project config (project overrides base, exclusion lists are unioned
// rather than replaced).
const homeConfigName = ".debtmap.toml"

// Discover loads the project config at projectPath (default
// ".debtmap.toml") layered over $HOME/.debtmap.toml when present. Either
// file missing is not an error; Default() fills the gap. Project-level
// scalar fields win; Ignore.Patterns from both layers are unioned.
func Discover(projectPath string) (Config, error) {
	base := Default()

	if home, err := os.UserHomeDir(); err == nil {
		if data, rerr := os.ReadFile(filepath.Join(home, homeConfigName)); rerr == nil {
			loaded, lerr := Load(data)
			if lerr != nil {
				return Config{}, fmt.Errorf("home config: %w", lerr)
			}
			base = loaded
		}
	}

	projectData, err := os.ReadFile(projectPath)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", projectPath, err)
	}

	merged := base
	if err := toml.Unmarshal(projectData, &merged); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", projectPath, err)
	}
	merged.Ignore.Patterns = unionPatterns(base.Ignore.Patterns, merged.Ignore.Patterns)
	return merged, nil
}

// unionPatterns combines two glob-pattern lists without duplicates,
// preserving base's order followed by any new project-only patterns.
func unionPatterns(base, overlay []string) []string {
	seen := make(map[string]bool, len(base))
	out := make([]string, 0, len(base)+len(overlay))
	for _, p := range base {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range overlay {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
