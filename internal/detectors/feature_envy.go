package detectors

import (
	"fmt"

	"github.com/standardbeagle/lci/internal/astx"
	"github.com/standardbeagle/lci/internal/ids"
)

// featureEnvyRatio is how much more a method must call out to a single
// other receiver than to its own before it's flagged: calls to `other`
// must reach featureEnvyRatio times (self calls + 1), so three calls with
// no self calls flag, and six with one self call. Such a method is
// arguably living in the wrong type.
const featureEnvyRatio = 3

// DetectFeatureEnvy flags methods whose call sites reference one other
// receiver expression far more often than their own receiver: a
// single-function smell rather than a whole-graph dependency metric.
func DetectFeatureEnvy(file *astx.File) []Finding {
	var findings []Finding
	for idx, fn := range file.Functions {
		if fn.Kind != astx.FuncKindMethod || fn.ReceiverType == "" {
			continue
		}
		calls := file.Calls[idx]
		if len(calls) == 0 {
			continue
		}
		selfCalls := 0
		otherCounts := make(map[string]int)
		for _, c := range calls {
			if !c.IsMethodCall {
				continue
			}
			if c.ReceiverExpr == "self" || c.ReceiverExpr == "this" || c.ReceiverExpr == "" {
				selfCalls++
				continue
			}
			otherCounts[c.ReceiverExpr]++
		}
		for other, count := range otherCounts {
			if count >= featureEnvyRatio*(selfCalls+1) && count >= featureEnvyRatio {
				findings = append(findings, Finding{
					Category: CategoryFeatureEnvy,
					Severity: SeverityMedium,
					Function: ids.New(file.Path, fn.Name, fn.StartLine),
					File:     file.Path,
					Line:     fn.StartLine,
					Message:  fmt.Sprintf("%s calls %s more than its own receiver", fn.Name, other),
					Evidence: map[string]any{"envied_receiver": other, "call_count": count, "self_call_count": selfCalls},
				})
			}
		}
	}
	return findings
}
