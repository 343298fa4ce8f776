package coverage

import (
	"runtime"
	"sort"

	"github.com/hbollon/go-edlib"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/lci/internal/ids"
)

// entry is one indexed function, carried in both of the Index's two
// lookup structures.
type entry struct {
	file      string
	name      string
	startLine int
	hitCount  int
}

// Index is the sealed, read-only coverage lookup built from parsed LCOV
// Data. It holds two views of the same entries per the data model: a
// (file, name) map for exact lookups, and a per-file line-sorted vector
// for the "nearest function whose start line is within tolerance" lookup
// used when a FunctionID's start line drifted slightly from the line the
// coverage tool recorded (formatting changes, multi-line signatures). A
// third map carries each file's raw per-line DA hit counts, so a resolved
// function can report the actual lines_hit/lines_total fraction over its
// own span rather than the coarse FNDA hit-count-only signal.
type Index struct {
	byNameKey  map[string]entry   // "file\x00name" -> entry
	byFile     map[string][]entry // file -> entries sorted by startLine
	byFileLine map[string]map[int]int
	fuzzy      *FuzzyMatcher
}

// FunctionCoverageResult is what Lookup resolves a FunctionID to: the raw
// FNDA hit count (kept for callers that only need "was this ever
// executed") plus the per-line fraction computed from DA records across
// the function's span.
type FunctionCoverageResult struct {
	HitCount   int
	LinesHit   int
	LinesTotal int
}

// Fraction returns lines_hit/lines_total, falling back to the binary
// FNDA signal (any execution counts as fully covered) when the LCOV
// report carried no per-line DA records for this function's span at all
// (some producers emit FN/FNDA without DA, or the span falls entirely
// outside the reported lines).
func (r FunctionCoverageResult) Fraction() float64 {
	if r.LinesTotal > 0 {
		return float64(r.LinesHit) / float64(r.LinesTotal)
	}
	if r.HitCount > 0 {
		return 1.0
	}
	return 0.0
}

// FuzzyMatcher wraps go-edlib's Jaro-Winkler similarity so a function
// renamed between the coverage run and the current source
// (`handle_request` vs `handleRequest`) can still resolve to its coverage
// data instead of reporting a false "no coverage" gap.
type FuzzyMatcher struct {
	threshold float64
}

// NewFuzzyMatcher builds a matcher at the given similarity threshold
// (0..1). Values outside that range fall back to a default of 0.80.
func NewFuzzyMatcher(threshold float64) *FuzzyMatcher {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.80
	}
	return &FuzzyMatcher{threshold: threshold}
}

// Best returns the closest name in candidates to target, if any clears
// the configured threshold.
func (fm *FuzzyMatcher) Best(target string, candidates []string) (string, bool) {
	bestScore := 0.0
	bestName := ""
	for _, c := range candidates {
		score, err := edlib.StringsSimilarity(target, c, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if float64(score) > bestScore {
			bestScore = float64(score)
			bestName = c
		}
	}
	if bestScore >= fm.threshold {
		return bestName, true
	}
	return "", false
}

// lineTolerance is how many lines a FunctionID's start line may drift
// from the LCOV-recorded FN line and still count as the same function,
// absorbing reformatting noise between the coverage run and analysis run.
const lineTolerance = 1

// BuildIndex builds a sealed Index from parsed LCOV Data. fuzzyThreshold
// configures the name-similarity fallback; pass 0 to use the default.
func BuildIndex(data *Data, fuzzyThreshold float64) *Index {
	idx := &Index{
		byNameKey:  make(map[string]entry),
		byFile:     make(map[string][]entry),
		byFileLine: make(map[string]map[int]int),
		fuzzy:      NewFuzzyMatcher(fuzzyThreshold),
	}
	for path, fc := range data.Files {
		normalized := ids.NormalizePath(path)
		for _, fn := range fc.Functions {
			e := entry{file: normalized, name: fn.Name, startLine: fn.StartLine, hitCount: fn.HitCount}
			idx.byNameKey[normalized+"\x00"+fn.Name] = e
			idx.byFile[normalized] = append(idx.byFile[normalized], e)
		}
		if len(fc.LineHits) > 0 {
			lines := make(map[int]int, len(fc.LineHits))
			for line, count := range fc.LineHits {
				lines[line] = count
			}
			idx.byFileLine[normalized] = lines
		}
	}
	for _, entries := range idx.byFile {
		sort.Slice(entries, func(i, j int) bool { return entries[i].startLine < entries[j].startLine })
	}
	return idx
}

// Lookup resolves a FunctionID to its coverage, in the data model's
// defined priority order: exact (file, name) match; then the nearest
// same-file entry within lineTolerance lines; then, if the matcher is
// enabled, the best fuzzy name match in the same file. Returns ok=false
// only when none of the three clears its bar, which the scorer treats as
// "no coverage data available" rather than "zero coverage".
//
// endLine is the function's last line (inclusive, same basis as
// id.StartLine); the DA records falling within [id.StartLine, endLine]
// in the matched file are summed into the result's per-line fraction.
func (idx *Index) Lookup(id ids.FunctionID, endLine int) (result FunctionCoverageResult, ok bool) {
	file := ids.NormalizePath(id.File)

	resolve := func() (int, bool) {
		if e, found := idx.byNameKey[file+"\x00"+id.Name]; found {
			return e.hitCount, true
		}

		entries := idx.byFile[file]
		if len(entries) > 0 {
			pos := sort.Search(len(entries), func(i int) bool { return entries[i].startLine >= id.StartLine })
			for _, cand := range []int{pos, pos - 1} {
				if cand >= 0 && cand < len(entries) {
					if abs(entries[cand].startLine-id.StartLine) <= lineTolerance {
						return entries[cand].hitCount, true
					}
				}
			}
		}

		if len(entries) > 0 {
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.name
			}
			if best, found := idx.fuzzy.Best(id.Name, names); found {
				for _, e := range entries {
					if e.name == best {
						return e.hitCount, true
					}
				}
			}
		}
		return 0, false
	}

	hitCount, found := resolve()
	if !found {
		return FunctionCoverageResult{}, false
	}

	result = FunctionCoverageResult{HitCount: hitCount}
	if lines := idx.byFileLine[file]; lines != nil {
		start, end := id.StartLine, endLine
		if end < start {
			start, end = end, start
		}
		for line := start; line <= end; line++ {
			if count, ok := lines[line]; ok {
				result.LinesTotal++
				if count > 0 {
					result.LinesHit++
				}
			}
		}
	}
	return result, true
}

// BatchQuery is one (function, endLine) span handed to BatchLookup.
type BatchQuery struct {
	ID      ids.FunctionID
	EndLine int
}

// BatchResult is one BatchQuery's outcome; OK is false when none of the
// three lookup strategies resolved the query.
type BatchResult struct {
	Coverage FunctionCoverageResult
	OK       bool
}

// BatchLookup resolves every query concurrently (the Index is read-only
// after BuildIndex, so parallel Lookup calls are safe) and returns one
// result per query, indexed by query position, so the output order is
// the caller's order regardless of which goroutine finished first.
func (idx *Index) BatchLookup(queries []BatchQuery) []BatchResult {
	results := make([]BatchResult, len(queries))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			r, ok := idx.Lookup(q.ID, q.EndLine)
			results[i] = BatchResult{Coverage: r, OK: ok}
			return nil
		})
	}
	_ = g.Wait() // lookups never return errors; Wait only synchronizes
	return results
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
