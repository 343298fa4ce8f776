// Package progress implements the progress reporter, with a
// package-level default Reporter (see Global). It tracks the three-phase
// orchestrator's phase/batch progress via atomic counters and a
// phase-change callback.
package progress

import (
	"sync"
	"sync/atomic"
)

// Phase names the orchestrator's three phases plus an idle state,
// reported by Reporter.Snapshot and passed to the OnPhaseChange callback
// to tell a listener which stage is running.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSeed
	PhaseScore
	PhaseAggregate
)

func (p Phase) String() string {
	switch p {
	case PhaseSeed:
		return "seed"
	case PhaseScore:
		return "score"
	case PhaseAggregate:
		return "aggregate"
	default:
		return "idle"
	}
}

// Reporter tracks total/processed counts for the current phase with
// lock-free counters, plus an optional callback invoked on every phase
// transition. Callers may pass their own Reporter or fall back to the
// package-level one from Global; it is never read during scoring, only
// written to and observed by an external listener (CLI progress bar,
// log line).
type Reporter struct {
	phase     atomic.Int32
	total     atomic.Int64
	processed atomic.Int64

	mu       sync.RWMutex
	onPhase  func(Phase)
}

// New creates an idle Reporter.
func New() *Reporter {
	return &Reporter{}
}

// OnPhaseChange registers a callback invoked every time SetPhase is
// called. Pass nil to clear it.
func (r *Reporter) OnPhaseChange(fn func(Phase)) {
	r.mu.Lock()
	r.onPhase = fn
	r.mu.Unlock()
}

// SetPhase transitions to a new phase, resetting the processed counter
// and notifying the registered callback, if any.
func (r *Reporter) SetPhase(p Phase, total int) {
	r.phase.Store(int32(p))
	r.total.Store(int64(total))
	r.processed.Store(0)
	r.mu.RLock()
	cb := r.onPhase
	r.mu.RUnlock()
	if cb != nil {
		cb(p)
	}
}

// Advance increments the processed counter by n, safe for concurrent use
// by every worker in the current phase's batch.
func (r *Reporter) Advance(n int) {
	r.processed.Add(int64(n))
}

// Snapshot returns the current phase, total, and processed counts.
func (r *Reporter) Snapshot() (phase Phase, total, processed int) {
	return Phase(r.phase.Load()), int(r.total.Load()), int(r.processed.Load())
}

var (
	globalMu sync.RWMutex
	global   = New()
)

// Global returns the process-global Reporter, creating none: one always
// exists from package init, so there is no implicit lazy state to race
// on.
func Global() *Reporter {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// SetGlobal replaces the package-level Reporter that Global returns.
func SetGlobal(r *Reporter) {
	globalMu.Lock()
	global = r
	globalMu.Unlock()
}
