package detectors

import (
	"sort"

	"github.com/standardbeagle/lci/internal/registry"
)

// GodObjectThresholds configures when a type is flagged as a god object:
// too many methods, too many fields, or both, measured against these
// absolute limits.
type GodObjectThresholds struct {
	MaxMethods int
	MaxFields  int
}

// DefaultGodObjectThresholds: a type past 20 methods or 15 fields reads
// the same way a function past 100 lines does, too large to reason about
// as one unit.
func DefaultGodObjectThresholds() GodObjectThresholds {
	return GodObjectThresholds{MaxMethods: 20, MaxFields: 15}
}

// DetectGodObjects scans every type definition in the registry and flags
// ones whose method or field count exceeds the configured thresholds.
func DetectGodObjects(reg *registry.Registry, thresholds GodObjectThresholds) []Finding {
	var findings []Finding
	for _, t := range reg.AllTypes() {
		methodCount := len(t.Methods)
		fieldCount := len(t.Fields.Named) + len(t.Fields.Positional)
		if methodCount <= thresholds.MaxMethods && fieldCount <= thresholds.MaxFields {
			continue
		}
		severity := SeverityMedium
		if methodCount > thresholds.MaxMethods*2 || fieldCount > thresholds.MaxFields*2 {
			severity = SeverityHigh
		}
		findings = append(findings, Finding{
			Category: CategoryGodObject,
			Severity: severity,
			File:     t.File,
			Message:  "type " + t.Name + " concentrates too much responsibility",
			Evidence: map[string]any{
				"type":         t.Name,
				"method_count": methodCount,
				"field_count":  fieldCount,
			},
		})
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Message < findings[j].Message
	})
	return findings
}
