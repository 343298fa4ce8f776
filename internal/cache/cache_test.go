package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	f := New(DefaultOptions(root), ProjectID("github.com/example/repo"))

	if err := f.WriteEntry("analysis", "scores.json", []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("WriteEntry: %v", err)
	}
	data, ok := f.ReadEntry("analysis", "scores.json")
	if !ok {
		t.Fatal("expected entry to be found")
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestAtomicWriteLeavesNoTempFile(t *testing.T) {
	root := t.TempDir()
	f := New(DefaultOptions(root), ProjectID("p"))
	if err := f.WriteEntry(subdirAnalysis, "x.json", []byte("1")); err != nil {
		t.Fatalf("WriteEntry: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(root, ProjectID("p"), subdirAnalysis))
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("tempfile left behind: %s", e.Name())
		}
	}
}

func TestDisabledFacadeNoops(t *testing.T) {
	f := New(DefaultOptions(""), ProjectID("p"))
	if err := f.WriteEntry("analysis", "k", []byte("v")); err != nil {
		t.Fatalf("disabled facade should no-op, got error: %v", err)
	}
	if _, ok := f.ReadEntry("analysis", "k"); ok {
		t.Error("disabled facade should never report a hit")
	}
}

func TestResolveRootPrecedence(t *testing.T) {
	env := map[string]string{"DEBTMAP_CACHE_DIR": "/custom/dir"}
	getenv := func(k string) string { return env[k] }
	if got := ResolveRoot(getenv); got != "/custom/dir" {
		t.Errorf("DEBTMAP_CACHE_DIR should win, got %s", got)
	}

	env = map[string]string{"DEBTMAP_NO_CACHE": "1", "DEBTMAP_CACHE_DIR": "/custom/dir"}
	if got := ResolveRoot(getenv); got != "" {
		t.Errorf("DEBTMAP_NO_CACHE should override everything, got %s", got)
	}
}

func TestPruneEvictsUnderPressure(t *testing.T) {
	root := t.TempDir()
	opts := DefaultOptions(root)
	opts.MaxEntries = 2
	opts.PruneFraction = 0.5
	f := New(opts, ProjectID("p"))

	for i := 0; i < 5; i++ {
		key := filepath.Join("f" + string(rune('a'+i)) + ".json")
		if err := f.WriteEntry("analysis", key, []byte("x")); err != nil {
			t.Fatalf("WriteEntry: %v", err)
		}
	}
	idx, err := f.readIndexLocked()
	if err != nil {
		t.Fatalf("readIndexLocked: %v", err)
	}
	if len(idx) >= 5 {
		t.Errorf("expected pruning to reduce entry count, still have %d", len(idx))
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	env := map[string]string{
		"DEBTMAP_CACHE_STRATEGY":    "fifo",
		"DEBTMAP_CACHE_MAX_SIZE":    "1048576",
		"DEBTMAP_CACHE_MAX_ENTRIES": "64",
		"DEBTMAP_CACHE_AUTO_PRUNE":  "false",
		"DEBTMAP_CACHE_SYNC_PRUNE":  "true",
	}
	getenv := func(k string) string { return env[k] }

	opts := LoadEnvOverrides(DefaultOptions("/tmp/cache"), getenv)
	if opts.Strategy != StrategyFIFO {
		t.Errorf("expected FIFO strategy, got %v", opts.Strategy)
	}
	if opts.MaxSizeBytes != 1048576 {
		t.Errorf("expected max size override, got %d", opts.MaxSizeBytes)
	}
	if opts.MaxEntries != 64 {
		t.Errorf("expected max entries override, got %d", opts.MaxEntries)
	}
	if opts.AutoPrune {
		t.Error("expected auto-prune disabled")
	}
	if !opts.SyncPrune {
		t.Error("expected sync-prune enabled")
	}
}

func TestLoadEnvOverrides_MalformedValuesKeepDefaults(t *testing.T) {
	env := map[string]string{
		"DEBTMAP_CACHE_MAX_SIZE":   "not-a-number",
		"DEBTMAP_CACHE_AUTO_PRUNE": "sometimes",
	}
	getenv := func(k string) string { return env[k] }

	base := DefaultOptions("/tmp/cache")
	opts := LoadEnvOverrides(base, getenv)
	if opts.MaxSizeBytes != base.MaxSizeBytes {
		t.Errorf("malformed max size should keep default, got %d", opts.MaxSizeBytes)
	}
	if opts.AutoPrune != base.AutoPrune {
		t.Error("malformed bool should keep default")
	}
}
