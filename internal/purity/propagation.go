package purity

import (
	"github.com/standardbeagle/lci/internal/callgraph"
	"github.com/standardbeagle/lci/internal/ids"
)

// PropagationConfig configures a bounded-iteration fixed point with
// per-hop confidence decay, so transitive impurity a dozen calls deep
// doesn't carry full confidence by the time it reaches an unrelated
// top-level caller.
type PropagationConfig struct {
	MaxIterations   int
	ConfidenceDecay float64
	MinConfidence   float64
	ConvergenceEps  float64
}

// DefaultPropagationConfig: 10 iterations cap, 5% decay per same-file
// hop, stop propagating once confidence drops below 30%.
func DefaultPropagationConfig() PropagationConfig {
	return PropagationConfig{
		MaxIterations:   10,
		ConfidenceDecay: 0.95,
		MinConfidence:   0.3,
		ConvergenceEps:  0.01,
	}
}

// functionPointerWeight is the confidence weighting FunctionPointer edges
// propagate impurity with: lower than a same-file direct hop, since a
// flow-insensitive function-pointer target union is imprecise.
const functionPointerWeight = 0.7

// selfRecursionPenalty is subtracted, once per function, from a
// recursive function's confidence for each self-call cycle its call
// graph exposes (in practice one: Callees/CalleesWithKind already
// dedupe a (caller, callee) pair down to one edge).
const selfRecursionPenalty = 0.1

// PurityState is the sole mutable structure in the analysis pipeline: the
// per-function Info map, written only during Propagate and read-only
// afterward. Kept isolated in its own type (rather than folded into
// callgraph.Graph) so the reader/writer discipline around it is explicit
// at every phase boundary: everything upstream of Propagate treats it as
// write-only, everything downstream treats it as read-only.
type PurityState struct {
	info map[ids.FunctionID]Info
}

// NewState seeds a PurityState from the intrinsic Classify results,
// keyed by FunctionID.
func NewState(intrinsic map[ids.FunctionID]Info) *PurityState {
	cp := make(map[ids.FunctionID]Info, len(intrinsic))
	for k, v := range intrinsic {
		cp[k] = v
	}
	return &PurityState{info: cp}
}

// Get returns a function's current purity Info.
func (s *PurityState) Get(id ids.FunctionID) (Info, bool) {
	info, ok := s.info[id]
	return info, ok
}

// Snapshot returns a copy of the full state, used once propagation has
// converged to hand a read-only map to downstream phases.
func (s *PurityState) Snapshot() map[ids.FunctionID]Info {
	out := make(map[ids.FunctionID]Info, len(s.info))
	for k, v := range s.info {
		out[k] = v
	}
	return out
}

// Propagate runs the bounded fixed-point iteration: a function inherits
// HasIO/HasGlobalWrite/HasPanic from every statically resolvable callee,
// at the callee's confidence weighted by how the call edge was resolved,
// and its Level is recomputed from the union of intrinsic and inherited
// signal: any impurity signal forces LevelImpure, otherwise a LevelUnknown
// callee drags the caller down to LevelUnknown, otherwise the caller stays
// LevelStrictlyPure. IsPure remains a convenience alias for Level ==
// LevelStrictlyPure. Iteration stops when no function's Info changes by
// more than ConvergenceEps, or after MaxIterations, whichever comes
// first: a `changed` flag plus an iteration cap for cycle safety.
//
// Before propagation begins, every function with a direct self-call edge
// has its confidence reduced once by selfRecursionPenalty per recursion
// cycle its call graph exposes, so a recursive function is never treated
// as more certain than its non-recursive siblings.
// Propagate returns the number of iterations the fixed-point loop ran,
// always at most cfg.MaxIterations.
func Propagate(g *callgraph.Graph, state *PurityState, cfg PropagationConfig) int {
	applySelfRecursionPenalty(g, state)

	iterations := 0
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		iterations = iter + 1
		changed := false
		for _, node := range g.Nodes() {
			cur, ok := state.info[node.ID]
			if !ok {
				continue
			}
			next := cur
			sawUnknownCallee := cur.Level == LevelUnknown
			for _, edge := range g.CalleesWithKind(node.ID) {
				if edge.Callee == node.ID {
					continue // self-recursion is penalized once, before iteration begins
				}
				calleeInfo, ok := state.info[edge.Callee]
				if !ok || calleeInfo.Confidence < cfg.MinConfidence {
					continue
				}
				weight := edgeWeight(edge.Kind, node.ID, edge.Callee, cfg)
				decayed := calleeInfo.Confidence * weight
				if calleeInfo.HasIO && !next.HasIO {
					next.HasIO = true
					next.Confidence = minConfidence(next.Confidence, decayed)
				}
				if calleeInfo.HasGlobalWrite && !next.HasGlobalWrite {
					next.HasGlobalWrite = true
					next.Confidence = minConfidence(next.Confidence, decayed)
				}
				if calleeInfo.HasPanic && !next.HasPanic {
					next.HasPanic = true
					next.Confidence = minConfidence(next.Confidence, decayed)
				}
				if calleeInfo.Level == LevelUnknown {
					sawUnknownCallee = true
				}
			}
			switch {
			case next.HasIO || next.HasGlobalWrite || next.HasPanic:
				next.Level = LevelImpure
			case sawUnknownCallee:
				next.Level = LevelUnknown
			default:
				next.Level = LevelStrictlyPure
			}
			next.IsPure = next.Level == LevelStrictlyPure
			if infoDelta(cur, next) > cfg.ConvergenceEps {
				changed = true
			}
			state.info[node.ID] = next
		}
		if !changed {
			break
		}
	}
	return iterations
}

// applySelfRecursionPenalty reduces, once, the confidence of every
// function whose call graph exposes a direct self-call edge, the
// "recursive self-calls reduce confidence by 0.1 per recursion cycle
// observed" rule. Applied before the fixed-point loop starts so the
// penalty isn't reapplied (and compounded) on every iteration.
func applySelfRecursionPenalty(g *callgraph.Graph, state *PurityState) {
	for _, node := range g.Nodes() {
		info, ok := state.info[node.ID]
		if !ok {
			continue
		}
		for _, edge := range g.CalleesWithKind(node.ID) {
			if edge.Callee == node.ID {
				info.Confidence -= selfRecursionPenalty
				if info.Confidence < 0 {
					info.Confidence = 0
				}
				state.info[node.ID] = info
				break
			}
		}
	}
}

// edgeWeight is the confidence multiplier a callee's signal propagates
// to caller with: FunctionPointer edges propagate at functionPointerWeight
// (an imprecise, flow-insensitive target union); cross-file edges
// propagate at full strength (1.0); every other same-file edge decays by
// cfg.ConfidenceDecay per hop.
func edgeWeight(kind callgraph.EdgeKind, caller, callee ids.FunctionID, cfg PropagationConfig) float64 {
	if kind == callgraph.EdgeFunctionPointer {
		return functionPointerWeight
	}
	if caller.File != callee.File {
		return 1.0
	}
	return cfg.ConfidenceDecay
}

func minConfidence(a, b float64) float64 {
	if b < a {
		return b
	}
	return a
}

// infoDelta measures how much two Info values differ, used only to decide
// convergence; any boolean flip is treated as a full-magnitude change so
// the loop never stops mid-propagation of a flag.
func infoDelta(a, b Info) float64 {
	if a.HasIO != b.HasIO || a.HasGlobalWrite != b.HasGlobalWrite || a.HasPanic != b.HasPanic || a.Level != b.Level {
		return 1.0
	}
	d := a.Confidence - b.Confidence
	if d < 0 {
		d = -d
	}
	return d
}
