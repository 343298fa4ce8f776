// Package orchestrator implements the parallel analysis pipeline: the
// top-level pipeline that turns a set of source files into a ranked debt
// report by driving every other package in sequence. It follows the
// three phases the progress reporter already names (Seed, Score,
// Aggregate): Seed parses every file and builds the shared read-only
// structures (registry, import map, call graph, purity state); Score
// runs the independent detectors and computes each function's unified
// score; Aggregate turns scores and findings into ranked, deduplicated
// DebtItems.
//
// Every phase's batches run concurrently under a bounded worker limit
// via errgroup.WithContext/SetLimit, with results folded back by input
// index rather than completion order, so the final report never depends
// on goroutine scheduling.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/lci/internal/astx"
	"github.com/standardbeagle/lci/internal/callgraph"
	"github.com/standardbeagle/lci/internal/complexity"
	"github.com/standardbeagle/lci/internal/config"
	"github.com/standardbeagle/lci/internal/coverage"
	"github.com/standardbeagle/lci/internal/debug"
	"github.com/standardbeagle/lci/internal/detectors"
	"github.com/standardbeagle/lci/internal/ids"
	"github.com/standardbeagle/lci/internal/prioritizer"
	"github.com/standardbeagle/lci/internal/progress"
	"github.com/standardbeagle/lci/internal/purity"
	"github.com/standardbeagle/lci/internal/registry"
	"github.com/standardbeagle/lci/internal/resolver"
	"github.com/standardbeagle/lci/internal/scorer"
	"github.com/standardbeagle/lci/internal/xerrors"
)

// SourceFile is one file handed to Run: a path and its raw bytes. The
// orchestrator never touches a filesystem itself; a caller (cmd/debtmap)
// reads files and hands over their bytes, keeping this package testable
// without disk I/O, the same separation astx.Frontend keeps from its own
// callers.
type SourceFile struct {
	Path    string
	Content []byte
}

// Input bundles everything one Run needs: the files to analyze, an
// optional parsed LCOV coverage report, the resolved configuration, and
// the collaborators Run reports progress and persists results through.
type Input struct {
	Files          []SourceFile
	Coverage       *coverage.Data // nil if no coverage report was supplied
	Config         config.Config
	FrameworkRules []callgraph.FrameworkRule // nil uses callgraph.DefaultFrameworkRules()
	Workers        int                       // <=0: 1 below smallInputThreshold files unless ForceParallel, else 8
	ForceParallel  bool                      // run the parallel path even for small inputs (DEBTMAP_PARALLEL)
	Reporter       *progress.Reporter        // nil uses progress.Global()
}

// FromEnv reads the orchestrator's environment overrides: currently just
// DEBTMAP_PARALLEL, which forces the parallel path even when the input
// is small enough that the serial fast path would normally win.
func FromEnv(getenv func(string) string) bool {
	return getenv("DEBTMAP_PARALLEL") != ""
}

// smallInputThreshold is the file count below which a run uses a single
// worker: goroutine and batch overhead outweighs any win on a handful of
// files, unless ForceParallel overrides.
const smallInputThreshold = 8

// Result is everything Run produces: the ranked debt items plus the
// warnings accumulated along the way (parse failures, coverage misses),
// none of which abort a run.
type Result struct {
	Items    []prioritizer.DebtItem
	Graph    *callgraph.Graph
	Warnings []error
}

func workerLimit(n, fileCount int, forceParallel bool) int {
	if n > 0 {
		return n
	}
	if fileCount < smallInputThreshold && !forceParallel {
		return 1
	}
	return 8
}

// Run drives the full pipeline over Input and returns a ranked Result.
// It fails outright when the file set is empty, when every file fails to
// parse, or, with debug mode enabled, when a recommendation fails
// prioritizer.ValidateConsistency; every other per-file or per-function
// problem downgrades to a warning and the run continues, matching the
// degrade-don't-abort posture.
func Run(ctx context.Context, in Input) (*Result, error) {
	if len(in.Files) == 0 {
		return nil, fmt.Errorf("orchestrator: no files to analyze")
	}
	reporter := in.Reporter
	if reporter == nil {
		reporter = progress.Global()
	}
	rules := in.FrameworkRules
	if rules == nil {
		rules = callgraph.DefaultFrameworkRules()
	}
	limit := workerLimit(in.Workers, len(in.Files), in.ForceParallel)

	var warnings []error

	// --- Phase 1: Seed ---
	reporter.SetPhase(progress.PhaseSeed, len(in.Files))
	files, parseWarnings := parseFiles(ctx, in.Files, limit, reporter)
	warnings = append(warnings, parseWarnings...)
	if len(files) == 0 {
		return nil, fmt.Errorf("orchestrator: every file failed to parse")
	}

	regBuilder := registry.NewBuilder()
	impBuilder := resolver.NewBuilder()
	for _, f := range files {
		regBuilder.AddFile(f)
		impBuilder.AddFile(f)
	}
	reg := regBuilder.Seal()
	imports := impBuilder.Seal()

	cgBuilder := callgraph.NewBuilder(reg, imports, rules)
	for _, f := range files {
		cgBuilder.AddFile(f)
	}
	cgBuilder.Resolve(files)
	graph := cgBuilder.Build()

	metricsCache := complexity.NewCache(4096)
	funcs := flattenFunctions(files)
	functionMetrics := computeMetrics(ctx, funcs, metricsCache, limit)
	for _, fm := range funcs {
		m := functionMetrics[fm.id]
		graph.SetMetrics(fm.id, m.Cyclomatic, m.LengthLines)
	}

	intrinsic := classifyPurity(ctx, funcs, limit, graph)
	state := purity.NewState(intrinsic)
	purity.Propagate(graph, state, purity.DefaultPropagationConfig())

	thresholds := roleThresholdsFromConfig(in.Config)
	roles := make(map[ids.FunctionID]purity.Role, len(funcs))
	for _, fm := range funcs {
		info, _ := state.Get(fm.id)
		node, _ := graph.Node(fm.id)
		roleIn := buildRoleInput(fm, node, graph, functionMetrics[fm.id])
		roles[fm.id] = purity.InferRole(node, info, roleIn, thresholds)
	}

	// --- Phase 2: Score ---
	reporter.SetPhase(progress.PhaseScore, len(funcs))
	findings := runDetectors(ctx, files, reg, limit)

	var covIndex *coverage.Index
	if in.Coverage != nil {
		covIndex = coverage.BuildIndex(in.Coverage, 0)
	} else {
		warnings = append(warnings, xerrors.NewCoverageError("", fmt.Errorf("no coverage data supplied, treating every function as uncovered")))
	}

	weights := scorer.Weights{
		Complexity: in.Config.Scoring.Complexity,
		Coverage:   in.Config.Scoring.Coverage,
		Dependency: in.Config.Scoring.Dependency,
	}
	riskBoost := computeRiskBoost(findings)

	scores := make(map[ids.FunctionID]scorer.UnifiedScore, len(funcs))
	coveredFractions := make(map[ids.FunctionID]float64, len(funcs))
	for _, fm := range funcs {
		m := functionMetrics[fm.id]
		fraction := coveredFraction(covIndex, fm.id, fm.site.EndLine)
		coveredFractions[fm.id] = fraction
		f := scorer.Factors{
			ComplexityFactor: scorer.ComplexityFactor(m.AdjustedComplexity),
			CoverageFactor:   scorer.CoverageFactor(m.Cyclomatic, fraction),
			DependencyFactor: scorer.DependencyFactor(graph.InDegree(fm.id)),
			RoleMultiplier:   scorer.RoleMultiplier(roles[fm.id]),
			RiskBoost:        riskBoost[fm.id],
		}
		scores[fm.id] = scorer.Compute(fm.id, f, weights)
	}

	// --- Phase 3: Aggregate ---
	reporter.SetPhase(progress.PhaseAggregate, len(findings)+len(funcs))
	items := buildDebtItems(funcs, graph, scores, roles, coveredFractions, findings)
	items = append(items, duplicationItems(detectors.DetectDuplication(files))...)
	items = append(items, deadCodeItems(funcs, graph, roles)...)
	items = append(items, moduleCycleItems(files)...)

	items = prioritizer.Prioritize(items, prioritizer.DefaultTopK)

	for _, it := range items {
		if err := prioritizer.ValidateConsistency(it.Recommendation); err != nil {
			// Fatal when debugging, a warning in release builds: a count
			// mismatch is a bug in recommendation generation, not in the
			// analyzed code, so a production run still produces output.
			if debug.IsEnabled() {
				return nil, xerrors.NewConsistencyError(it.Function.String(), it.Recommendation.Action, err.Error())
			}
			warnings = append(warnings, err)
		}
	}

	return &Result{Items: items, Graph: graph, Warnings: warnings}, nil
}

type parseBatch struct {
	file *astx.File
	err  error
}

// parseFiles parses every file concurrently with a bounded worker limit,
// folding results back into a slice indexed by the file's original
// position so the returned order never depends on which goroutine
// happened to finish first.
func parseFiles(ctx context.Context, inputs []SourceFile, limit int, reporter *progress.Reporter) ([]*astx.File, []error) {
	frontends := astx.NewRegistry()
	results := make([]parseBatch, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			lang := astx.LanguageForExt(extOf(in.Path))
			if lang == astx.LangUnknown {
				reporter.Advance(1)
				return nil
			}
			frontend, err := frontends.Acquire(lang)
			if err != nil {
				results[i] = parseBatch{err: xerrors.NewParseError(in.Path, 0, 0, err)}
				reporter.Advance(1)
				return nil
			}
			f, err := frontend.Parse(in.Path, in.Content)
			if err != nil {
				results[i] = parseBatch{err: xerrors.NewParseError(in.Path, 0, 0, err)}
				reporter.Advance(1)
				return nil
			}
			results[i] = parseBatch{file: f}
			reporter.Advance(1)
			return nil
		})
	}
	_ = g.Wait() // per-file errors are captured in results, never returned here

	files := make([]*astx.File, 0, len(results))
	var warnings []error
	for _, r := range results {
		if r.err != nil {
			warnings = append(warnings, r.err)
			continue
		}
		if r.file != nil {
			files = append(files, r.file)
		}
	}
	return files, warnings
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}

// funcMeta carries one function's identity plus its parsed shape,
// threaded through the metrics/purity/role stages that need both.
type funcMeta struct {
	id   ids.FunctionID
	file *astx.File
	site astx.FunctionSite
	idx  int // index into file.Functions, for file.Calls lookup
}

func flattenFunctions(files []*astx.File) []funcMeta {
	var out []funcMeta
	for _, f := range files {
		for i, fn := range f.Functions {
			out = append(out, funcMeta{
				id:   ids.New(f.Path, fn.Name, fn.StartLine),
				file: f,
				site: fn,
				idx:  i,
			})
		}
	}
	return out
}

// computeMetrics runs complexity.AnalyzeCached over every function
// concurrently, folding into a slice indexed by the function's position
// in funcs before building the result map, so the map's content is
// independent of goroutine completion order (the map itself has no
// inherent order, but the values it holds must not vary run to run).
func computeMetrics(ctx context.Context, funcs []funcMeta, cache *complexity.Cache, limit int) map[ids.FunctionID]complexity.Metrics {
	results := make([]complexity.Metrics, len(funcs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, fm := range funcs {
		i, fm := i, fm
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			length := fm.site.EndLine - fm.site.StartLine + 1
			results[i] = complexity.AnalyzeCached(cache, fm.file.Language, fm.site.Node, fm.file.Content, length)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[ids.FunctionID]complexity.Metrics, len(funcs))
	for i, fm := range funcs {
		out[fm.id] = results[i]
	}
	return out
}

// classifyPurity runs the intrinsic visitor over every function, then
// promotes any StrictlyPure result to LevelUnknown for functions whose call
// graph side list recorded at least one unresolved call site: a function
// that looks clean locally but dispatches to unresolved/unknown-external
// code can't be trusted pure just because this visitor found nothing.
func classifyPurity(ctx context.Context, funcs []funcMeta, limit int, graph *callgraph.Graph) map[ids.FunctionID]purity.Info {
	results := make([]purity.Info, len(funcs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, fm := range funcs {
		i, fm := i, fm
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			calls := fm.file.Calls[fm.idx]
			results[i] = purity.Classify(fm.file.Language, fm.site.Node, fm.file.Content, calls)
			return nil
		})
	}
	_ = g.Wait()

	hasUnresolvedCall := make(map[ids.FunctionID]bool)
	for _, u := range graph.Unresolved() {
		hasUnresolvedCall[u.Caller] = true
	}

	out := make(map[ids.FunctionID]purity.Info, len(funcs))
	for i, fm := range funcs {
		info := results[i]
		if hasUnresolvedCall[fm.id] {
			info = info.PromoteUnknown()
		}
		out[fm.id] = info
	}
	return out
}

// meaningfulCalleeThreshold is the minimum call-graph out-degree a
// function needs before its callees are counted at all; at or above it,
// RoleInput.MeaningfulCalleeCount is the full out-degree.
const meaningfulCalleeThreshold = 1

func buildRoleInput(fm funcMeta, node callgraph.Node, graph *callgraph.Graph, m complexity.Metrics) purity.RoleInput {
	calls := fm.file.Calls[fm.idx]
	outDegree := graph.OutDegree(fm.id)
	delegation := 0.0
	if total := m.Cyclomatic + outDegree; total > 0 {
		delegation = float64(outDegree) / float64(total)
	}
	meaningful := 0
	if outDegree >= meaningfulCalleeThreshold {
		meaningful = outDegree
	}
	return purity.RoleInput{
		Name:                  fm.site.Name,
		IsTestContext:         ids.IsTestName(fm.site.Name),
		IsFrameworkEntryPoint: node.IsEntryPoint,
		ReturnsSelfOrLiteral:  fm.site.ReturnsSelf,
		Cyclomatic:            m.Cyclomatic,
		LengthLines:           m.LengthLines,
		StatementCount:        len(calls),
		DelegationRatio:       delegation,
		MeaningfulCalleeCount: meaningful,
	}
}

func roleThresholdsFromConfig(c config.Config) purity.RoleThresholds {
	d := purity.DefaultRoleThresholds()
	o := c.Detection.Orchestrator
	if o.MaxCyclomatic > 0 {
		d.OrchestratorMaxCyclomatic = o.MaxCyclomatic
	}
	if o.MinDelegationRatio > 0 {
		d.OrchestratorMinDelegationRatio = o.MinDelegationRatio
	}
	if o.MinMeaningfulCallees > 0 {
		d.OrchestratorMinMeaningfulCallees = o.MinMeaningfulCallees
	}
	if len(c.Detection.Constructor.Patterns) > 0 {
		d.ConstructorNamePatterns = c.Detection.Constructor.Patterns
	}
	if c.Detection.Constructor.MaxCyclomatic > 0 {
		d.ConstructorMaxCyclomatic = c.Detection.Constructor.MaxCyclomatic
	}
	if len(c.Detection.Accessor.PrefixPatterns) > 0 {
		d.AccessorNamePrefixes = c.Detection.Accessor.PrefixPatterns
	}
	if c.Detection.Accessor.MaxCyclomatic > 0 {
		d.AccessorMaxCyclomatic = c.Detection.Accessor.MaxCyclomatic
	}
	if c.Detection.Accessor.MaxLength > 0 {
		d.AccessorMaxLengthLines = c.Detection.Accessor.MaxLength
	}
	return d
}

// runDetectors runs every detector pass concurrently across files (the
// god-object pass runs once over the whole registry rather than per
// file), folding findings into a slice indexed by detector/file position
// before flattening, so the final order never depends on scheduling.
func runDetectors(ctx context.Context, files []*astx.File, reg *registry.Registry, limit int) []detectors.Finding {
	type perFile struct {
		longParam  []detectors.Finding
		featureEnvy []detectors.Finding
		testing    []detectors.Finding
		security   []detectors.Finding
		resource   []detectors.Finding
		magic      []detectors.Finding
		perf       []detectors.Finding
	}
	results := make([]perFile, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			var pf perFile
			pf.longParam = detectors.DetectLongParameterLists(f)
			pf.featureEnvy = detectors.DetectFeatureEnvy(f)
			pf.testing = detectors.DetectTestingAntipatterns(f)
			pf.security = detectors.DetectSecurityIssues(f)
			pf.resource = detectors.DetectResourceManagementIssues(f)
			for _, fn := range f.Functions {
				pf.magic = append(pf.magic, detectors.DetectMagicValues(fn.Node, f.Content, f.Path, fn.Name, fn.StartLine)...)
				pf.perf = append(pf.perf, detectors.DetectPerformanceIssues(f.Language, fn.Node, f.Content, f.Path, fn.Name, fn.StartLine)...)
			}
			results[i] = pf
			return nil
		})
	}
	_ = g.Wait()

	var findings []detectors.Finding
	for _, pf := range results {
		findings = append(findings, pf.longParam...)
		findings = append(findings, pf.featureEnvy...)
		findings = append(findings, pf.testing...)
		findings = append(findings, pf.security...)
		findings = append(findings, pf.resource...)
		findings = append(findings, pf.magic...)
		findings = append(findings, pf.perf...)
	}
	findings = append(findings, detectors.DetectGodObjects(reg, detectors.DefaultGodObjectThresholds())...)
	return findings
}

// computeRiskBoost folds every security/resource finding for a function
// into the scorer's [1.0, 1.5] risk-boost input: each finding below high
// severity adds 0.2, a high finding adds 0.35, capped by Compute itself
// at 1.5.
func computeRiskBoost(findings []detectors.Finding) map[ids.FunctionID]float64 {
	boost := make(map[ids.FunctionID]float64)
	for _, f := range findings {
		if f.Category != detectors.CategorySecurity && f.Category != detectors.CategoryResourceManagement {
			continue
		}
		delta := 0.2
		if f.Severity == detectors.SeverityHigh {
			delta = 0.35
		}
		cur := boost[f.Function]
		if cur == 0 {
			cur = 1.0
		}
		boost[f.Function] = cur + delta
	}
	return boost
}

// coveredFraction resolves id's lines_hit/lines_total fraction over
// [id.StartLine, endLine] from the coverage index's per-line DA records,
// falling back to the binary FNDA hit signal (via
// FunctionCoverageResult.Fraction) when no per-line data resolved for
// this span.
func coveredFraction(idx *coverage.Index, id ids.FunctionID, endLine int) float64 {
	if idx == nil {
		return 0
	}
	result, ok := idx.Lookup(id, endLine)
	if !ok {
		return 0
	}
	return result.Fraction()
}

func buildDebtItems(
	funcs []funcMeta,
	graph *callgraph.Graph,
	scores map[ids.FunctionID]scorer.UnifiedScore,
	roles map[ids.FunctionID]purity.Role,
	coveredFractions map[ids.FunctionID]float64,
	findings []detectors.Finding,
) []prioritizer.DebtItem {
	findingsByFunc := make(map[ids.FunctionID][]detectors.Finding)
	for _, f := range findings {
		findingsByFunc[f.Function] = append(findingsByFunc[f.Function], f)
	}

	items := make([]prioritizer.DebtItem, 0, len(funcs))
	for _, fm := range funcs {
		score := scores[fm.id]
		m := score.Factors
		cyclomatic := 0
		if node, ok := graph.Node(fm.id); ok {
			cyclomatic = node.Cyclomatic
		}
		fraction := coveredFractions[fm.id]
		kind := prioritizer.DebtComplexityHotspot
		dominant := "complexity"
		if m.CoverageFactor >= m.ComplexityFactor && m.CoverageFactor >= m.DependencyFactor {
			kind = prioritizer.DebtTestingGap
			dominant = "coverage"
		} else if m.DependencyFactor > m.ComplexityFactor {
			dominant = "dependency"
		}
		if fnFindings := findingsByFunc[fm.id]; len(fnFindings) > 0 {
			kind = prioritizer.KindForCategory(fnFindings[0].Category)
		}

		rec := prioritizer.GenerateRecommendation(cyclomatic, fraction, dominant)
		items = append(items, prioritizer.DebtItem{
			Function:               fm.id,
			File:                   fm.file.Path,
			Kind:                   kind,
			Score:                  score,
			Role:                   roles[fm.id],
			UpstreamDependencies:   graph.InDegree(fm.id),
			DownstreamDependencies: graph.OutDegree(fm.id),
			Cyclomatic:             cyclomatic,
			CoveredFraction:        fraction,
			Recommendation:         rec,
			Impact: prioritizer.ImpactEstimate{
				CoverageGained:    1 - fraction,
				ComplexityReduced: m.ComplexityFactor * 100,
			},
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Function.String() < items[j].Function.String() })
	return items
}

// deadCodeItems emits one DeadCode item per function with zero
// resolvable incoming edges and no framework pattern match. Tests and
// entry points are exempt: a test's callers are the test runner, and an
// entry point is reachable by definition (a framework-matched function
// already fails IsDeadCode through its synthetic-root edge, so the role
// check here only guards `main`-style names the rules missed).
func deadCodeItems(funcs []funcMeta, graph *callgraph.Graph, roles map[ids.FunctionID]purity.Role) []prioritizer.DebtItem {
	var items []prioritizer.DebtItem
	for _, fm := range funcs {
		if !graph.IsDeadCode(fm.id) {
			continue
		}
		role := roles[fm.id]
		if role == purity.RoleTest || role == purity.RoleEntryPoint {
			continue
		}
		if fm.site.Kind == astx.FuncKindClosure {
			// A closure's caller is the enclosing function's body, not a
			// graph edge; zero in-degree says nothing about reachability.
			continue
		}
		node, _ := graph.Node(fm.id)
		length := node.Length
		if length <= 0 {
			length = fm.site.EndLine - fm.site.StartLine + 1
		}
		items = append(items, prioritizer.DebtItem{
			Function:   fm.id,
			File:       fm.file.Path,
			Kind:       prioritizer.DebtDeadCode,
			Role:       role,
			Cyclomatic: node.Cyclomatic,
			Score: scorer.UnifiedScore{
				FinalScore: 15 + float64(length),
			},
			Recommendation: prioritizer.Recommendation{
				Action:    "Remove the unreferenced function, or add the framework rule that reaches it",
				Rationale: fmt.Sprintf("%s has no resolvable callers and matches no framework pattern", fm.site.Name),
			},
			Impact: prioritizer.ImpactEstimate{
				LinesReduced: length,
			},
		})
	}
	return items
}

// moduleCycleItems builds the module-level import graph and emits one
// file-scoped OrganizationAntiPattern item per circular-import group.
// The cycle list is order-independent (each strongly connected component
// reports once, members sorted), so the emitted items are deterministic
// regardless of file input order.
func moduleCycleItems(files []*astx.File) []prioritizer.DebtItem {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	mgBuilder := resolver.NewModuleGraphBuilder(resolver.NewModuleResolver(".", "", paths))
	for _, f := range files {
		mgBuilder.AddFile(f)
	}
	moduleGraph := mgBuilder.Seal()

	var items []prioritizer.DebtItem
	for _, cycle := range moduleGraph.Cycles() {
		items = append(items, prioritizer.DebtItem{
			File: cycle[0],
			Kind: prioritizer.DebtOrganizationAntiPattern,
			Score: scorer.UnifiedScore{
				FinalScore: float64(30 + 5*len(cycle)),
			},
			Recommendation: prioritizer.Recommendation{
				Action:    "Break the circular import by extracting the shared definitions into a module both sides can depend on",
				Rationale: fmt.Sprintf("circular import between %s", strings.Join(cycle, " <-> ")),
			},
		})
	}
	return items
}

// duplicationItems turns duplication Findings into file-scoped DebtItems
// (duplication is never anchored to a single function, since a block can
// span a function boundary or repeat across two different functions
// entirely).
func duplicationItems(findings []detectors.Finding) []prioritizer.DebtItem {
	items := make([]prioritizer.DebtItem, 0, len(findings))
	for _, f := range findings {
		items = append(items, prioritizer.DebtItem{
			File: f.File,
			Kind: prioritizer.KindForCategory(f.Category),
			Score: scorer.UnifiedScore{
				FinalScore: float64(40 + 10*len(f.Evidence)),
			},
			Recommendation: prioritizer.Recommendation{
				Action:    "Extract the repeated block into a shared function",
				Rationale: f.Message,
			},
		})
	}
	return items
}
