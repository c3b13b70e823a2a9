// Package engine implements the reactive evaluation engine of spec.md
// §4.5–§4.7: the set pipeline, the get pipeline, and the propagation wave
// that recomputes every cell transitively downstream of a write.
package engine

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sheetcore/reactive-sheets/internal/domain/cellstore"
	"github.com/sheetcore/reactive-sheets/internal/domain/graph"
	"github.com/sheetcore/reactive-sheets/internal/domain/lockpool"
	"github.com/sheetcore/reactive-sheets/internal/domain/value"
	"github.com/sheetcore/reactive-sheets/internal/evaluator"
)

// Engine wires the cell store, dependency graph, lock pool, and evaluator
// together. It is the component spec.md §2 calls the set/get pipelines.
type Engine struct {
	store *cellstore.Store
	graph *graph.Graph
	pool  *lockpool.Pool
	eval  *evaluator.Evaluator
	log   *slog.Logger

	seq atomic.Uint64
}

// New constructs an Engine over the given store, graph, pool, and
// evaluator. log may be nil, in which case a discard logger is used.
func New(store *cellstore.Store, g *graph.Graph, pool *lockpool.Pool, eval *evaluator.Evaluator, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	return &Engine{store: store, graph: g, pool: pool, eval: eval, log: log}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// stamp issues the next monotonic logical timestamp: wall time broken by a
// process-wide sequence counter, so two sets from one worker never tie
// (spec.md §9's Design Notes).
func (e *Engine) stamp() cellstore.Stamp {
	return cellstore.Stamp{Wall: time.Now().UnixNano(), Seq: e.seq.Add(1)}
}

// lookup fetches a cell's current value under its read permit; passed to
// evaluator.Bind, which calls it while building an environment.
func (e *Engine) lookup(id string) value.Value {
	h := e.pool.AcquireRead(id)
	defer h.Release()
	return e.store.GetOrInsert(id).Value
}

// Get is the get pipeline of spec.md §4.6: return the cell's current
// stored value.
func (e *Engine) Get(id string) value.Value {
	h := e.pool.AcquireRead(id)
	defer h.Release()
	return e.store.GetOrInsert(id).Value
}

// Set is the set pipeline of spec.md §4.5. It evaluates the formula,
// rewrites dependency edges, writes the new value under last-writer-wins
// ordering, then schedules propagation to id's dependents without waiting
// for it to complete (spec §9 Open Question i).
func (e *Engine) Set(id, formula string) {
	t := e.stamp()

	binding := evaluator.Bind(formula, e.lookup)
	val := e.resolveCandidate(id, formula, binding)

	h := e.pool.AcquireWrite(id)
	rec := e.store.GetOrInsert(id)

	if !rec.Timestamp.Before(t) {
		// A later set already won; this one is dropped (spec §3, §8
		// invariant 1).
		h.Release()
		e.log.Debug("dropped stale set", "cell", id)
		return
	}

	if !rec.CastExempt {
		e.graph.RetractIncoming(id)
	}

	rec.Timestamp = t
	rec.Formula = formula

	_, selfRef := binding.Record[id]
	if !selfRef {
		for u := range binding.Record {
			e.graph.AddEdge(u, id)
		}
	}

	if e.graph.HasCycleThrough(id) {
		val = value.SelfReferential(id)
	}

	rec.CastExempt = val.IsCastError()
	rec.Value = val
	h.Release()

	e.log.Debug("set cell", "cell", id, "formula", formula)
	go e.propagate(id)
}

// resolveCandidate determines the candidate value per spec §4.5 step 3.
func (e *Engine) resolveCandidate(id, formula string, binding evaluator.Binding) value.Value {
	if _, self := binding.Record[id]; self {
		return value.SelfReferential(id)
	}
	switch binding.ErrorFlag {
	case 0:
		return e.eval.Run(formula, binding.Env)
	case 1:
		return value.SelfReferential(id)
	default:
		return value.ReferenceError()
	}
}
