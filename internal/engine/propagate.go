package engine

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sheetcore/reactive-sheets/internal/domain/value"
	"github.com/sheetcore/reactive-sheets/internal/evaluator"
)

// propagate is the propagation wave of spec.md §4.7: a breadth-first walk
// over outgoing (dependent) edges from id, recomputing each reachable
// dependent. Recomputations within one BFS level run concurrently, bounded
// to GOMAXPROCS workers (spec §9's Design Notes flag unbounded per-neighbor
// spawning as a scaling risk); the wave waits for a level to finish before
// reading the graph for the next one, so every recompute sees its inputs'
// freshest propagated values. A node already queued in this wave is never
// queued twice (spec §4.7's revisit prevention).
func (e *Engine) propagate(root string) {
	visited := map[string]bool{root: true}
	frontier := []string{root}

	for len(frontier) > 0 {
		var next []string
		for _, n := range frontier {
			for _, d := range e.graph.NeighborsOut(n) {
				if visited[d] {
					continue
				}
				visited[d] = true
				next = append(next, d)
			}
		}
		if len(next) == 0 {
			return
		}

		var g errgroup.Group
		g.SetLimit(max(1, runtime.GOMAXPROCS(0)))
		for _, d := range next {
			d := d
			g.Go(func() error {
				e.recompute(d)
				return nil
			})
		}
		_ = g.Wait()

		frontier = next
	}
}

// recompute re-evaluates one dependent cell's formula against the current
// environment and writes the fresh value, per spec §4.7 steps 1–4.
// Propagation writes never touch the cell's timestamp: it is not a user
// write and must not compete with a pending set for last-writer-wins
// ordering (spec §4.7 step 3).
func (e *Engine) recompute(id string) {
	rh := e.pool.AcquireRead(id)
	rec := e.store.GetOrInsert(id)
	formula := rec.Formula
	rh.Release()

	if formula == "" {
		return
	}

	binding := evaluator.Bind(formula, e.lookup)
	_, selfRef := binding.Record[id]

	var newVal value.Value
	switch {
	case selfRef:
		newVal = value.SelfReferential(id)
	case binding.ErrorFlag == 0:
		newVal = e.eval.Run(formula, binding.Env)
	case binding.ErrorFlag == 1:
		newVal = value.SelfReferential(id)
	default:
		newVal = value.ReferenceError()
	}

	// A cycle may have formed or dissolved since this wave began; every
	// reachable node rechecks its own membership rather than trusting its
	// upstream's error state (spec §9 Open Question ii: the taint applies
	// to every reachable node, not just the immediate cycle members).
	if e.graph.HasCycleThrough(id) {
		newVal = value.SelfReferential(id)
	}

	wh := e.pool.AcquireWrite(id)
	rec.Value = newVal
	rec.CastExempt = newVal.IsCastError()
	wh.Release()
}
