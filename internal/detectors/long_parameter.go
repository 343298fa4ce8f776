package detectors

import (
	"fmt"
	"sort"

	"github.com/standardbeagle/lci/internal/astx"
	"github.com/standardbeagle/lci/internal/ids"
)

// LongParameterThreshold is the parameter count past which a function
// signature is flagged: six or more parameters get hard to call
// correctly.
const LongParameterThreshold = 5

// DetectLongParameterLists scans every function in file and flags ones
// whose parameter count exceeds LongParameterThreshold, excluding the
// implicit receiver (already modeled separately as ReceiverType, not a
// Param).
func DetectLongParameterLists(file *astx.File) []Finding {
	var findings []Finding
	for _, fn := range file.Functions {
		if len(fn.Params) <= LongParameterThreshold {
			continue
		}
		severity := SeverityMedium
		if len(fn.Params) >= LongParameterThreshold*2 {
			severity = SeverityHigh
		}
		findings = append(findings, Finding{
			Category: CategoryLongParameterList,
			Severity: severity,
			Function: ids.New(file.Path, fn.Name, fn.StartLine),
			File:     file.Path,
			Line:     fn.StartLine,
			Message:  fmt.Sprintf("%s takes %d parameters", fn.Name, len(fn.Params)),
			Evidence: map[string]any{"parameter_count": len(fn.Params)},
		})
	}
	sort.Slice(findings, func(i, j int) bool { return findings[i].Line < findings[j].Line })
	return findings
}
