package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetcore/reactive-sheets/internal/domain/cellstore"
	"github.com/sheetcore/reactive-sheets/internal/domain/graph"
	"github.com/sheetcore/reactive-sheets/internal/domain/lockpool"
	"github.com/sheetcore/reactive-sheets/internal/domain/value"
	"github.com/sheetcore/reactive-sheets/internal/evaluator"
)

func newTestEngine() *Engine {
	pool := lockpool.New(lockpool.Config{Min: 16, Max: 256})
	return New(cellstore.New(), graph.New(), pool, evaluator.New(), nil)
}

// eventuallyEquals gives propagation its grace period before asserting a
// downstream value has converged (spec §9 Open Question i: sets do not
// wait for their own propagation).
func eventuallyEquals(t *testing.T, e *Engine, id string, want value.Value) {
	t.Helper()
	require.Eventually(t, func() bool {
		return e.Get(id) == want
	}, time.Second, 5*time.Millisecond)
}

func TestScenarioDirectDependency(t *testing.T) {
	e := newTestEngine()
	e.Set("A1", "5")
	e.Set("B1", "=A1+1.0")

	assert.Equal(t, value.Number(6), e.Get("B1"))
}

func TestScenarioPropagationOnUpstreamChange(t *testing.T) {
	e := newTestEngine()
	e.Set("A1", "5")
	e.Set("B1", "=A1+1.0")
	require.Equal(t, value.Number(6), e.Get("B1"))

	e.Set("A1", "10")
	eventuallyEquals(t, e, "B1", value.Number(11))
}

func TestScenarioMutualCycle(t *testing.T) {
	e := newTestEngine()
	e.Set("A1", "=B1")
	e.Set("B1", "=A1")

	// B1's set is the one that closes the cycle, so it observes the cycle
	// synchronously; A1 only learns of it once B1's propagation wave
	// reaches it (spec §9 Open Question i).
	assert.True(t, e.Get("B1").IsSelfReferential())
	assert.Equal(t, "Cell B1 is self-referential", e.Get("B1").Message)

	require.Eventually(t, func() bool {
		return e.Get("A1").IsSelfReferential()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Cell A1 is self-referential", e.Get("A1").Message)
}

func TestScenarioDirectSelfReference(t *testing.T) {
	e := newTestEngine()
	e.Set("A1", "=A1")

	got := e.Get("A1")
	assert.True(t, got.IsSelfReferential())
	assert.Equal(t, "Cell A1 is self-referential", got.Message)
}

func TestScenarioVectorBinding(t *testing.T) {
	e := newTestEngine()
	e.Set("A1", "=sum(C1_C3)")
	e.Set("C1", "1.0")
	e.Set("C2", "2.0")
	e.Set("C3", "3.0")

	eventuallyEquals(t, e, "A1", value.Number(6))
}

func TestScenarioReferenceOfError(t *testing.T) {
	e := newTestEngine()
	e.Set("A1", "=B1")
	e.Set("B1", `"not a number"`)
	e.Set("C1", "=A1+1.0")

	eventuallyEquals(t, e, "C1", value.ReferenceError())
}

func TestSetIsIdempotentForSameLiteral(t *testing.T) {
	e := newTestEngine()
	e.Set("A1", "5")
	first := e.Get("A1")
	e.Set("A1", "5")
	second := e.Get("A1")

	assert.Equal(t, first, second)
}

func TestStaleSetIsDropped(t *testing.T) {
	e := newTestEngine()
	e.Set("A1", "5")

	rec := e.store.GetOrInsert("A1")
	rec.Timestamp = cellstore.Stamp{Wall: time.Now().Add(time.Hour).UnixNano()}

	e.Set("A1", "10")
	assert.Equal(t, value.Number(5), e.Get("A1"))
}

func TestGetOfUnsetCellIsAbsent(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, value.Absent, e.Get("Z99"))
}
