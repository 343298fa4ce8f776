package detectors

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/lci/internal/astx"
)

// duplicateWindowLines is the sliding-window size exact-hash comparison
// runs over: a language-agnostic line window rather than a per-function
// AST block, since this pass runs across every frontend's output rather
// than one AST shape.
const duplicateWindowLines = 3

// duplicateMinTokens filters out windows too sparse to be meaningful
// duplication (blank lines, lone braces).
const duplicateMinTokens = 6

type duplicateLocation struct {
	File      string
	StartLine int
	EndLine   int
}

func normalizeWindow(lines []string) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = strings.TrimSpace(l)
	}
	return strings.Join(parts, "\n")
}

// DetectDuplication hashes every duplicateWindowLines-line window across
// every file and groups windows sharing an identical normalized hash into
// one Finding per cluster, keyed on a raw line window instead of a
// function-scoped AST block, so it catches duplication both inside and
// across function boundaries.
func DetectDuplication(files []*astx.File) []Finding {
	clusters := make(map[string][]duplicateLocation)
	for _, file := range files {
		lines := strings.Split(string(file.Content), "\n")
		seenInFile := make(map[string]bool)
		for start := 0; start+duplicateWindowLines <= len(lines); start++ {
			window := lines[start : start+duplicateWindowLines]
			normalized := normalizeWindow(window)
			if len(strings.Fields(normalized)) < duplicateMinTokens {
				continue
			}
			hash := strconv.FormatUint(xxhash.Sum64String(normalized), 16)
			if seenInFile[hash] {
				continue // repeat window position within the same file already recorded
			}
			seenInFile[hash] = true
			clusters[hash] = append(clusters[hash], duplicateLocation{
				File:      file.Path,
				StartLine: start,
				EndLine:   start + duplicateWindowLines - 1,
			})
		}
	}

	var findings []Finding
	for hash, locs := range clusters {
		if len(locs) < 2 {
			continue
		}
		sort.Slice(locs, func(i, j int) bool {
			if locs[i].File != locs[j].File {
				return locs[i].File < locs[j].File
			}
			return locs[i].StartLine < locs[j].StartLine
		})
		severity := SeverityLow
		if len(locs) >= 4 {
			severity = SeverityMedium
		}
		first := locs[0]
		locationEvidence := make([]map[string]any, len(locs))
		for i, l := range locs {
			locationEvidence[i] = map[string]any{
				"file":       l.File,
				"start_line": l.StartLine + 1,
				"end_line":   l.EndLine + 1,
			}
		}
		findings = append(findings, Finding{
			Category: CategoryDuplication,
			Severity: severity,
			File:     first.File,
			Line:     first.StartLine + 1,
			Message:  fmt.Sprintf("%d-line block repeated across %d locations", duplicateWindowLines, len(locs)),
			Evidence: map[string]any{
				"hash":      hash,
				"lines":     duplicateWindowLines,
				"locations": locationEvidence,
			},
		})
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Line < findings[j].Line
	})
	return findings
}
