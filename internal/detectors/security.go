package detectors

import (
	"fmt"
	"regexp"

	"github.com/standardbeagle/lci/internal/astx"
	"github.com/standardbeagle/lci/internal/ids"
)

// dangerousSinks are call names that take untrusted input straight to a
// sensitive sink: shell execution, raw SQL, deserialization.
var dangerousSinks = map[string]string{
	"Exec": "shell command execution",
	"exec": "shell command execution",
	"system": "shell command execution",
	"eval": "dynamic code evaluation",
	"Eval": "dynamic code evaluation",
	"Unmarshal": "untrusted deserialization",
	"pickle.loads": "untrusted deserialization",
	"unserialize": "untrusted deserialization",
}

// secretVarPattern matches conspicuously credential-like names. It is
// checked against parameter names only; string literal values are not
// inspected. Kept narrow (a name heuristic, not entropy analysis) since a
// static analyzer that cries wolf on every long string stops getting read.
var secretVarPattern = regexp.MustCompile(`(?i)(password|secret|api[_-]?key|token|credential)`)

// DetectSecurityIssues flags calls into dangerous sinks and
// suspicious-looking inline credentials within one function.
func DetectSecurityIssues(file *astx.File) []Finding {
	var findings []Finding
	for idx, fn := range file.Functions {
		for _, c := range file.Calls[idx] {
			if reason, ok := dangerousSinks[c.CalleeName]; ok {
				findings = append(findings, Finding{
					Category: CategorySecurity,
					Severity: SeverityHigh,
					Function: ids.New(file.Path, fn.Name, fn.StartLine),
					File:     file.Path,
					Line:     c.Line,
					Message:  fmt.Sprintf("%s calls %s (%s)", fn.Name, c.CalleeName, reason),
					Evidence: map[string]any{"sink": c.CalleeName},
				})
			}
		}
		for _, p := range fn.Params {
			if secretVarPattern.MatchString(p.Name) {
				findings = append(findings, Finding{
					Category: CategorySecurity,
					Severity: SeverityMedium,
					Function: ids.New(file.Path, fn.Name, fn.StartLine),
					File:     file.Path,
					Line:     fn.StartLine,
					Message:  fmt.Sprintf("%s accepts a credential-shaped parameter %q in plain form", fn.Name, p.Name),
					Evidence: map[string]any{"parameter": p.Name},
				})
			}
		}
	}
	return findings
}
