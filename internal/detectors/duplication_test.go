package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lci/internal/astx"
)

func TestDetectDuplication_FlagsIdenticalBlockAcrossFiles(t *testing.T) {
	block := "fmt.Println(\"start processing request\")\nvalidateInput(request)\nfmt.Println(\"done processing request\")\n"
	a := &astx.File{Path: "a.go", Content: []byte(block)}
	b := &astx.File{Path: "b.go", Content: []byte(block)}

	findings := DetectDuplication([]*astx.File{a, b})
	require.Len(t, findings, 1)
	assert.Equal(t, CategoryDuplication, findings[0].Category)
	locs, ok := findings[0].Evidence["locations"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, locs, 2)
	assert.Equal(t, duplicateWindowLines, findings[0].Evidence["lines"])
}

func TestDetectDuplication_IgnoresUniqueContent(t *testing.T) {
	a := &astx.File{Path: "a.go", Content: []byte("func one() {\n  return 1\n}\n")}
	b := &astx.File{Path: "b.go", Content: []byte("func two() {\n  return 2\n}\n")}

	findings := DetectDuplication([]*astx.File{a, b})
	assert.Empty(t, findings)
}
