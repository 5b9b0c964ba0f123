package reorder

import (
	"sync"
	"testing"
	"time"

	"github.com/aristath/basket/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventRecorder struct {
	mu      sync.Mutex
	pending [][]string
	settled [][]string
}

func newRecorder(bus *events.Bus) *eventRecorder {
	rec := &eventRecorder{}
	bus.Subscribe(events.ReorderPending, func(e *events.Event) {
		data := e.Data.(*events.ReorderPendingData)
		rec.mu.Lock()
		rec.pending = append(rec.pending, data.DirtyRows)
		rec.mu.Unlock()
	})
	bus.Subscribe(events.ReorderSettled, func(e *events.Event) {
		data := e.Data.(*events.ReorderSettledData)
		rec.mu.Lock()
		rec.settled = append(rec.settled, data.DisplayOrder)
		rec.mu.Unlock()
	})
	return rec
}

func (r *eventRecorder) settledCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.settled)
}

func (r *eventRecorder) lastSettled() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.settled) == 0 {
		return nil
	}
	return r.settled[len(r.settled)-1]
}

func newTestPlanner(t *testing.T, delay time.Duration) (*Planner, *eventRecorder) {
	t.Helper()
	bus := events.NewBus(zerolog.Nop())
	rec := newRecorder(bus)
	p := NewPlanner(delay, bus, zerolog.Nop())
	t.Cleanup(p.Close)
	return p, rec
}

func TestPlanner_InitialUpdateSettlesImmediately(t *testing.T) {
	p, rec := newTestPlanner(t, 50*time.Millisecond)

	p.Update([]string{"g1", "g2", "unassigned"}, nil)

	snap := p.Snapshot()
	assert.Equal(t, StateSettled, snap.State)
	assert.Equal(t, []string{"g1", "g2", "unassigned"}, snap.DisplayOrder)
	assert.Empty(t, snap.DirtyRows)
	assert.Zero(t, rec.settledCount())
}

func TestPlanner_MutationHoldsDisplayUntilSettle(t *testing.T) {
	p, rec := newTestPlanner(t, 40*time.Millisecond)

	p.Update([]string{"a", "b", "unassigned"}, nil)

	// The mutation swaps a and b in canonical order.
	p.Update([]string{"b", "a", "unassigned"}, []string{"a", "b"})

	snap := p.Snapshot()
	assert.Equal(t, StateReconciling, snap.State)
	assert.Equal(t, []string{"a", "b", "unassigned"}, snap.DisplayOrder, "display holds pre-mutation order")
	assert.Equal(t, []string{"a", "b"}, snap.DirtyRows)

	require.Eventually(t, func() bool {
		return p.Snapshot().State == StateSettled
	}, time.Second, 5*time.Millisecond)

	snap = p.Snapshot()
	assert.Equal(t, []string{"b", "a", "unassigned"}, snap.DisplayOrder)
	assert.Empty(t, snap.DirtyRows)
	assert.Equal(t, []string{"b", "a", "unassigned"}, rec.lastSettled())
}

func TestPlanner_CanonicalShiftWithoutExplicitDirty(t *testing.T) {
	p, _ := newTestPlanner(t, 40*time.Millisecond)

	p.Update([]string{"a", "b", "unassigned"}, nil)

	// An import re-ranked the rows; the planner derives the moved rows.
	p.Update([]string{"b", "a", "unassigned"}, nil)

	snap := p.Snapshot()
	assert.Equal(t, StateReconciling, snap.State)
	assert.Equal(t, []string{"a", "b"}, snap.DirtyRows)

	require.Eventually(t, func() bool {
		return p.Snapshot().State == StateSettled
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"b", "a", "unassigned"}, p.Snapshot().DisplayOrder)
}

func TestPlanner_NewMutationRestartsTimerAndUnionsDirty(t *testing.T) {
	p, _ := newTestPlanner(t, 400*time.Millisecond)

	p.Update([]string{"a", "b", "c", "unassigned"}, nil)
	p.Update([]string{"b", "a", "c", "unassigned"}, []string{"a", "b"})

	time.Sleep(150 * time.Millisecond)
	p.Update([]string{"b", "c", "a", "unassigned"}, []string{"c"})

	snap := p.Snapshot()
	assert.Equal(t, []string{"a", "b", "c"}, snap.DirtyRows, "dirty sets union")

	// Past the first timer's deadline: had it not been restarted, the
	// planner would have settled and cleared the dirty set by now.
	time.Sleep(350 * time.Millisecond)
	snap = p.Snapshot()
	assert.Equal(t, StateReconciling, snap.State)
	assert.Equal(t, []string{"a", "b", "c"}, snap.DirtyRows)

	require.Eventually(t, func() bool {
		return p.Snapshot().State == StateSettled
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"b", "c", "a", "unassigned"}, p.Snapshot().DisplayOrder)
}

func TestPlanner_NoOpUpdateDoesNotRestartTimer(t *testing.T) {
	p, _ := newTestPlanner(t, 150*time.Millisecond)

	canonical := []string{"b", "a", "unassigned"}
	p.Update([]string{"a", "b", "unassigned"}, nil)
	p.Update(canonical, []string{"a", "b"})

	// Idempotent mutations re-feed the same canonical order with no
	// dirty rows; the running timer must keep its original deadline.
	time.Sleep(75 * time.Millisecond)
	p.Update(canonical, nil)

	time.Sleep(115 * time.Millisecond) // past original deadline, before a restarted one
	assert.Equal(t, StateSettled, p.Snapshot().State)
}

func TestPlanner_DeletedRowsDropImmediately(t *testing.T) {
	p, _ := newTestPlanner(t, 40*time.Millisecond)

	p.Update([]string{"a", "b", "unassigned"}, nil)
	p.Update([]string{"b", "unassigned"}, []string{"unassigned"})

	snap := p.Snapshot()
	assert.Equal(t, []string{"b", "unassigned"}, snap.DisplayOrder, "deleted id leaves display at once")

	require.Eventually(t, func() bool {
		return p.Snapshot().State == StateSettled
	}, time.Second, 5*time.Millisecond)
}

func TestPlanner_NewRowsAppendToHeldOrder(t *testing.T) {
	p, _ := newTestPlanner(t, 400*time.Millisecond)

	p.Update([]string{"a", "b", "unassigned"}, nil)
	p.Update([]string{"b", "a", "unassigned"}, []string{"a", "b"})

	// Mid-reconcile a new group appears in the middle of canonical; the
	// held display gains it at the end.
	p.Update([]string{"b", "c", "a", "unassigned"}, []string{"c"})

	snap := p.Snapshot()
	assert.Equal(t, []string{"a", "b", "unassigned", "c"}, snap.DisplayOrder)

	require.Eventually(t, func() bool {
		return p.Snapshot().State == StateSettled
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"b", "c", "a", "unassigned"}, p.Snapshot().DisplayOrder)
}

func TestPlanner_DirtyRowsForDeletedIDsAreFiltered(t *testing.T) {
	p, _ := newTestPlanner(t, 40*time.Millisecond)

	p.Update([]string{"a", "unassigned"}, nil)

	// The mutation deleted group a; its id cannot stay dirty.
	p.Update([]string{"unassigned"}, []string{"a", "unassigned"})

	snap := p.Snapshot()
	assert.Equal(t, []string{"unassigned"}, snap.DirtyRows)
}

func TestPlanner_CloseCancelsPendingTimer(t *testing.T) {
	p, rec := newTestPlanner(t, 30*time.Millisecond)

	p.Update([]string{"a", "b", "unassigned"}, nil)
	p.Update([]string{"b", "a", "unassigned"}, []string{"a", "b"})
	p.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, rec.settledCount(), "no settle after teardown")

	// Updates after close are ignored.
	p.Update([]string{"x", "unassigned"}, []string{"x"})
	assert.NotEqual(t, []string{"x", "unassigned"}, p.Snapshot().DisplayOrder)
}

func TestPlanner_PendingEventCarriesDirtyUnion(t *testing.T) {
	p, rec := newTestPlanner(t, 400*time.Millisecond)

	p.Update([]string{"a", "b", "unassigned"}, nil)
	p.Update([]string{"b", "a", "unassigned"}, []string{"a"})
	p.Update([]string{"b", "a", "unassigned"}, []string{"b"})

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.pending, 2)
	assert.Equal(t, []string{"a"}, rec.pending[0])
	assert.Equal(t, []string{"a", "b"}, rec.pending[1])
}
