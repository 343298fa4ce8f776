// Package mcpserver exposes the analytical engine as a single MCP tool
// ("analyze_debt") over stdio, so AI assistant clients can request a
// ranked debt analysis without shelling out to the CLI.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lci/internal/config"
	"github.com/standardbeagle/lci/internal/coverage"
	"github.com/standardbeagle/lci/internal/orchestrator"
	"github.com/standardbeagle/lci/internal/progress"
	"github.com/standardbeagle/lci/internal/render"
	"github.com/standardbeagle/lci/internal/walk"
)

// Server wraps the SDK server with the one tool this engine exposes.
type Server struct {
	inner *mcp.Server
}

// New builds a Server advertising the analyze_debt tool.
func New(version string) *Server {
	inner := mcp.NewServer(&mcp.Implementation{
		Name:    "debtmap-mcp-server",
		Version: version,
	}, nil)

	s := &Server{inner: inner}
	s.registerTools()
	return s
}

// analyzeParams is the JSON shape an MCP client sends to invoke
// analyze_debt: a project root, an optional LCOV path, and an optional
// result cap.
type analyzeParams struct {
	Root string `json:"root"`
	LCOV string `json:"lcov,omitempty"`
	Top  int    `json:"top,omitempty"`
}

func (s *Server) registerTools() {
	s.inner.AddTool(&mcp.Tool{
		Name:        "analyze_debt",
		Description: "Rank technical debt (complexity hotspots, coverage gaps, god objects, security/resource risks, duplication) across a source tree and return actionable, test-count-calibrated recommendations.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": {Type: "string", Description: "Project root directory to analyze"},
				"lcov": {Type: "string", Description: "Optional path to an LCOV coverage report"},
				"top":  {Type: "integer", Description: "Maximum number of items to return (0 = engine default)"},
			},
			Required: []string{"root"},
		},
	}, s.handleAnalyze)
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params analyzeParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult(fmt.Errorf("invalid parameters: %w", err)), nil
	}
	if params.Root == "" {
		return errorResult(fmt.Errorf("root is required")), nil
	}

	cfg, err := config.Discover(".debtmap.toml")
	if err != nil {
		return errorResult(fmt.Errorf("load config: %w", err)), nil
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return errorResult(fmt.Errorf("invalid configuration: %v", errs)), nil
	}

	files, err := walk.Collect(params.Root, func(p string) bool { return config.MatchesIgnore(cfg, p) })
	if err != nil {
		return errorResult(fmt.Errorf("walk %s: %w", params.Root, err)), nil
	}
	if len(files) == 0 {
		return errorResult(fmt.Errorf("no analyzable source files under %s", params.Root)), nil
	}

	var covData *coverage.Data
	if params.LCOV != "" {
		if f, openErr := os.Open(params.LCOV); openErr == nil {
			defer f.Close()
			covData, _ = coverage.Parse(f)
		}
	}

	result, err := orchestrator.Run(ctx, orchestrator.Input{
		Files:    files,
		Coverage: covData,
		Config:   cfg,
		Reporter: progress.New(),
	})
	if err != nil {
		return errorResult(fmt.Errorf("analysis failed: %w", err)), nil
	}
	if params.Top > 0 && params.Top < len(result.Items) {
		result.Items = result.Items[:params.Top]
	}

	text := render.Format(result, render.Options{Format: "json"})
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	payload, _ := json.Marshal(map[string]interface{}{"success": false, "error": err.Error()})
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		IsError: true,
	}
}

// Run serves the tool over stdio until the client disconnects or ctx is
// canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.inner.Run(ctx, &mcp.StdioTransport{})
}
