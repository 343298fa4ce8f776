package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lci/internal/cache"
	"github.com/standardbeagle/lci/internal/config"
	"github.com/standardbeagle/lci/internal/coverage"
	"github.com/standardbeagle/lci/internal/debug"
	"github.com/standardbeagle/lci/internal/mcpserver"
	"github.com/standardbeagle/lci/internal/orchestrator"
	"github.com/standardbeagle/lci/internal/progress"
	"github.com/standardbeagle/lci/internal/render"
	"github.com/standardbeagle/lci/internal/walk"
	"github.com/standardbeagle/lci/internal/watchmode"
)

// Version is the tool version stamped into cache index entries,
// overridable at build time via ldflags.
var Version = "0.1.0-dev"

func main() {
	app := &cli.App{
		Name:    "debtmap",
		Usage:   "Rank technical debt across a multi-language source tree",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root to analyze",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   ".debtmap.toml",
			},
			&cli.StringFlag{
				Name:  "lcov",
				Usage: "Path to an LCOV coverage report",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text or json",
				Value:   "text",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Number of debt items to emit (0 = engine default)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Worker concurrency limit (0 = default)",
			},
			&cli.BoolFlag{
				Name:  "impact",
				Usage: "Show the expected-impact line for each item",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging to stderr",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the on-disk cache for this run",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Re-run the analysis whenever a source file under root changes",
			},
		},
		Action: runAnalyze,
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Print the effective configuration in Go struct notation",
				Action: runShowConfig,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the analyzer as an MCP tool over stdio, for AI-assistant clients",
				Action: runMCP,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "debtmap:", err)
		os.Exit(1)
	}
}

func runShowConfig(c *cli.Context) error {
	cfg, err := config.Discover(c.String("config"))
	if err != nil {
		return err
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return fmt.Errorf("%d invalid configuration field(s): %v", len(errs), errs)
	}
	fmt.Printf("%+v\n", cfg)
	return nil
}

func runMCP(c *cli.Context) error {
	srv := mcpserver.New(Version)
	return srv.Run(c.Context)
}

func runAnalyze(c *cli.Context) error {
	if c.Bool("verbose") {
		debug.EnableDebug = "true"
		debug.SetOutput(os.Stderr)
	}
	root := c.String("root")

	if !c.Bool("watch") {
		return analyzeOnce(c, root)
	}

	if err := analyzeOnce(c, root); err != nil {
		fmt.Fprintln(os.Stderr, "debtmap:", err)
	}
	w, err := watchmode.New(root, 300*time.Millisecond, func() {
		fmt.Fprintln(os.Stderr, "\ndebtmap: change detected, re-analyzing...")
		if err := analyzeOnce(c, root); err != nil {
			fmt.Fprintln(os.Stderr, "debtmap:", err)
		}
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	stop := make(chan struct{})
	w.Run(stop)
	return nil
}

// analyzeOnce runs one full analysis pass over root and renders the
// result, returning any error that should be surfaced to the caller
// without aborting a --watch loop.
func analyzeOnce(c *cli.Context, root string) error {
	cfg, err := config.Discover(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, "debtmap: invalid config:", e)
		}
		return fmt.Errorf("refusing to run with %d invalid configuration field(s)", len(errs))
	}

	files, err := walk.Collect(root, func(p string) bool { return config.MatchesIgnore(cfg, p) })
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no analyzable source files found under %s", root)
	}

	var covData *coverage.Data
	if lcovPath := c.String("lcov"); lcovPath != "" {
		f, err := os.Open(lcovPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "debtmap: warning: cannot open coverage file, scoring with coverage=0:", err)
		} else {
			defer f.Close()
			covData, err = coverage.Parse(f)
			if err != nil {
				fmt.Fprintln(os.Stderr, "debtmap: warning: coverage parse error, scoring with coverage=0:", err)
				covData = nil
			} else {
				debug.Log("coverage", "overall line coverage %.1f%%", covData.OverallPercent())
			}
		}
	}

	reporter := progress.New()
	reporter.OnPhaseChange(func(p progress.Phase) {
		if p != progress.PhaseIdle {
			fmt.Fprintf(os.Stderr, "debtmap: phase %s\n", p)
		}
	})

	facade := openCache(c, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	result, err := orchestrator.Run(ctx, orchestrator.Input{
		Files:         files,
		Coverage:      covData,
		Config:        cfg,
		Workers:       c.Int("workers"),
		ForceParallel: orchestrator.FromEnv(os.Getenv),
		Reporter:      reporter,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	debug.Log("cli", "analyzed %d files in %s, %d items", len(files), time.Since(start), len(result.Items))

	if top := c.Int("top"); top > 0 && top < len(result.Items) {
		result.Items = result.Items[:top]
	}

	fmt.Print(render.Format(result, render.Options{
		Format:     c.String("format"),
		ShowImpact: c.Bool("impact"),
	}))

	if err := facade.WriteEntry("analysis", "last-run.json", []byte(render.Format(result, render.Options{Format: "json"}))); err != nil {
		debug.Warn("cache", "could not persist last run: %v", err)
	}

	summary := render.Summarize(result)
	if cfg.Thresholds.Validation.MaxCodebaseRiskScore > 0 && summary.MaxScore > cfg.Thresholds.Validation.MaxCodebaseRiskScore {
		return cli.Exit(fmt.Sprintf("codebase risk score %.1f exceeds threshold %.1f",
			summary.MaxScore, cfg.Thresholds.Validation.MaxCodebaseRiskScore), 2)
	}
	return nil
}

// openCache builds the on-disk cache facade for root, resolving the
// project id from the git remote when available and falling back to the
// canonical root path otherwise.
func openCache(c *cli.Context, root string) *cache.Facade {
	cacheRoot := cache.ResolveRoot(os.Getenv)
	if c.Bool("no-cache") {
		cacheRoot = ""
	}
	opts := cache.DefaultOptions(cacheRoot)
	opts.ToolVersion = Version
	opts = cache.LoadEnvOverrides(opts, os.Getenv)

	projectID := cache.ProjectID(canonicalProjectKey(root))
	if scope := os.Getenv("DEBTMAP_CACHE_SCOPE"); scope != "" {
		projectID = cache.ProjectID(canonicalProjectKey(root) + "#" + scope)
	}
	return cache.New(opts, projectID)
}

// canonicalProjectKey returns the project's git remote URL when root is
// inside a git repository, or the absolute root path otherwise, the
// same fallback order ProjectID's doc comment specifies.
func canonicalProjectKey(root string) string {
	cmd := exec.Command("git", "-C", root, "remote", "get-url", "origin")
	if out, err := cmd.Output(); err == nil {
		return strings.TrimSpace(string(out))
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return abs
}
