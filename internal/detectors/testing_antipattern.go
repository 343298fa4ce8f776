package detectors

import (
	"fmt"

	"github.com/surgebase/porter2"

	"github.com/standardbeagle/lci/internal/astx"
	"github.com/standardbeagle/lci/internal/ids"
)

// assertionStems are the Porter2-stemmed roots of assertion/expectation
// call names across common test frameworks (Go's testify, Python's
// pytest/unittest, JS/TS's jest/chai). Stemming lets "assert",
// "asserting", "asserts" all collapse to one lookup instead of an
// ever-growing literal list.
var assertionStems = buildStemSet("assert", "expect", "should", "verify", "check")

func buildStemSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[porter2.Stem(w)] = true
	}
	return set
}

// DetectTestingAntipatterns flags two common test smells: a test function
// with zero assertion-shaped calls (it "tests" nothing, it just runs code
// and hopes nothing panics), and a test function with no calls at all,
// an empty placeholder left behind.
func DetectTestingAntipatterns(file *astx.File) []Finding {
	var findings []Finding
	for idx, fn := range file.Functions {
		if !ids.IsTestName(fn.Name) {
			continue
		}
		calls := file.Calls[idx]
		assertionCount := 0
		for _, c := range calls {
			// Also stem the leading word of a camelCase or snake_case
			// name, so assertEqual and assert_called match "assert".
			word := c.CalleeName
			for i := 1; i < len(word); i++ {
				if word[i] == '_' || (word[i] >= 'A' && word[i] <= 'Z') {
					word = word[:i]
					break
				}
			}
			if assertionStems[porter2.Stem(c.CalleeName)] || assertionStems[porter2.Stem(word)] {
				assertionCount++
			}
		}
		if assertionCount == 0 && len(calls) > 0 {
			findings = append(findings, Finding{
				Category: CategoryTestingAntipattern,
				Severity: SeverityMedium,
				Function: ids.New(file.Path, fn.Name, fn.StartLine),
				File:     file.Path,
				Line:     fn.StartLine,
				Message:  fmt.Sprintf("%s exercises code but asserts nothing", fn.Name),
				Evidence: map[string]any{"call_count": len(calls)},
			})
		}
		if len(calls) == 0 {
			findings = append(findings, Finding{
				Category: CategoryTestingAntipattern,
				Severity: SeverityLow,
				Function: ids.New(file.Path, fn.Name, fn.StartLine),
				File:     file.Path,
				Line:     fn.StartLine,
				Message:  fmt.Sprintf("%s has an empty body", fn.Name),
			})
		}
	}
	return findings
}
