// Package reorder keeps the displayed row order stable while the canonical
// ranking shifts underneath it. Rows never jump mid-interaction: a mutation
// marks the affected rows dirty and holds the old display order until a
// settle timer fires, at which point display snaps to canonical.
package reorder

import (
	"sort"
	"sync"
	"time"

	"github.com/aristath/basket/internal/events"
	"github.com/rs/zerolog"
)

// State is the reconciliation phase of the display order.
type State string

const (
	// StateSettled means display order equals canonical order.
	StateSettled State = "settled"
	// StatePending is the intra-mutation phase: canonical has changed
	// but the timer is not armed yet. Callers never observe it; the arm
	// happens inside the same update.
	StatePending State = "pending"
	// StateReconciling means a settle timer is running and display order
	// is intentionally held at its pre-mutation positions.
	StateReconciling State = "reconciling"
)

// DefaultSettleDelay matches the reorder_settle_ms setting default.
const DefaultSettleDelay = 1500 * time.Millisecond

// Snapshot is the externally visible planner state.
type Snapshot struct {
	State        State    `json:"state"`
	DisplayOrder []string `json:"display_order"`
	DirtyRows    []string `json:"dirty_rows"`
}

// Planner owns the display order, the dirty row set, and the settle timer.
// It has its own lock because the timer callback runs off the mutating
// goroutine.
type Planner struct {
	mu        sync.Mutex
	state     State
	canonical []string
	display   []string
	dirty     map[string]struct{}
	timer     *time.Timer
	delay     time.Duration
	closed    bool

	bus *events.Bus
	log zerolog.Logger
}

// NewPlanner creates a settled planner with empty display order.
func NewPlanner(delay time.Duration, bus *events.Bus, log zerolog.Logger) *Planner {
	if delay <= 0 {
		delay = DefaultSettleDelay
	}
	return &Planner{
		state: StateSettled,
		dirty: make(map[string]struct{}),
		delay: delay,
		bus:   bus,
		log:   log.With().Str("component", "reorder").Logger(),
	}
}

// SetDelay changes the settle delay for subsequent reorders. A timer
// already running keeps its original deadline.
func (p *Planner) SetDelay(delay time.Duration) {
	if delay <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = delay
}

// Update feeds the planner the new canonical row order plus the rows the
// mutation explicitly touched. Deleted ids leave the display immediately,
// new ids append at the end of the held order. When the mutation carried
// no explicit dirty rows (an import shifting values, say) any row whose
// position changed counts as dirty. If nothing moved, nothing happens.
func (p *Planner) Update(canonical []string, dirtyRows []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	canonicalChanged := !equalOrder(p.canonical, canonical)
	p.canonical = append([]string(nil), canonical...)
	p.syncDisplayMembership()

	inCanonical := make(map[string]int, len(p.canonical))
	for i, id := range p.canonical {
		inCanonical[id] = i
	}

	newDirty := make([]string, 0, len(dirtyRows))
	for _, id := range dirtyRows {
		if _, ok := inCanonical[id]; ok {
			newDirty = append(newDirty, id)
		}
	}

	// No rows explicitly touched: only a canonical shift (values moved
	// rows around) counts, and the rows that changed position are the
	// dirty ones. An update that changed nothing must not disturb an
	// in-flight timer.
	if len(newDirty) == 0 && canonicalChanged {
		for i, id := range p.display {
			if inCanonical[id] != i {
				newDirty = append(newDirty, id)
			}
		}
	}

	if len(newDirty) == 0 {
		// Order already matches and nothing was touched; stay put. An
		// in-flight timer (from an earlier mutation) keeps running.
		return
	}

	p.state = StatePending
	for _, id := range newDirty {
		p.dirty[id] = struct{}{}
	}

	p.bus.Publish("reorder", &events.ReorderPendingData{DirtyRows: p.dirtyList()})

	// Arm (or restart) the settle timer within the same mutation, so
	// callers observing state afterwards always see Reconciling.
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, p.settle)
	p.state = StateReconciling
}

// settle is the timer callback: display snaps to canonical and the dirty
// set clears.
func (p *Planner) settle() {
	p.mu.Lock()
	if p.closed || p.state != StateReconciling {
		p.mu.Unlock()
		return
	}

	p.display = append([]string(nil), p.canonical...)
	p.dirty = make(map[string]struct{})
	p.state = StateSettled
	p.timer = nil
	order := append([]string(nil), p.display...)
	p.mu.Unlock()

	p.log.Debug().Int("rows", len(order)).Msg("Display order settled")
	p.bus.Publish("reorder", &events.ReorderSettledData{DisplayOrder: order})
}

// Snapshot returns the current state, held display order, and dirty rows.
func (p *Planner) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Snapshot{
		State:        p.state,
		DisplayOrder: append([]string(nil), p.display...),
		DirtyRows:    p.dirtyList(),
	}
}

// Close cancels any pending timer so it never fires on a torn-down
// session.
func (p *Planner) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// syncDisplayMembership drops deleted ids and appends new ones without
// disturbing the held positions of surviving rows.
func (p *Planner) syncDisplayMembership() {
	keep := make(map[string]struct{}, len(p.canonical))
	for _, id := range p.canonical {
		keep[id] = struct{}{}
	}

	display := p.display[:0]
	seen := make(map[string]struct{}, len(p.canonical))
	for _, id := range p.display {
		if _, ok := keep[id]; ok {
			display = append(display, id)
			seen[id] = struct{}{}
		} else {
			delete(p.dirty, id)
		}
	}
	for _, id := range p.canonical {
		if _, ok := seen[id]; !ok {
			display = append(display, id)
		}
	}
	p.display = display
}

func (p *Planner) dirtyList() []string {
	out := make([]string, 0, len(p.dirty))
	for id := range p.dirty {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func equalOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
