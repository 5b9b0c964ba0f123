package groups

import (
	"sort"
	"strings"
	"time"

	"github.com/aristath/basket/internal/modules/symbols"
	"github.com/google/uuid"
)

// Store holds the group list, the ticker-to-group ownership index, and the
// manually-tracked ticker set. It is a plain in-memory structure: the
// owning service serializes access, and every mutation keeps the
// one-group-per-ticker invariant by construction (assign removes before it
// adds). Invalid input is a silent no-op throughout.
type Store struct {
	groups []*Group
	byID   map[string]*Group
	owner  map[string]string // ticker -> owning group id
	manual map[string]time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byID:   make(map[string]*Group),
		owner:  make(map[string]string),
		manual: make(map[string]time.Time),
	}
}

// Create adds a new empty group with a generated id. Returns nil if the
// name trims to empty.
func (s *Store) Create(name string) *Group {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	now := time.Now()
	g := &Group{
		ID:        uuid.New().String(),
		Name:      name,
		Tickers:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.groups = append(s.groups, g)
	s.byID[g.ID] = g

	out := g.clone()
	return &out
}

// Rename updates a group's name. No-op (false) when the group is gone or
// the new name trims to empty.
func (s *Store) Rename(id, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	g, ok := s.byID[id]
	if !ok {
		return false
	}

	g.Name = name
	g.UpdatedAt = time.Now()
	return true
}

// Delete removes a group; its tickers implicitly return to unassigned.
// Returns the orphaned tickers. No-op when the group is already absent.
func (s *Store) Delete(id string) ([]string, bool) {
	g, ok := s.byID[id]
	if !ok {
		return nil, false
	}

	for _, ticker := range g.Tickers {
		delete(s.owner, ticker)
	}

	delete(s.byID, id)
	for i, cur := range s.groups {
		if cur.ID == id {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			break
		}
	}

	orphans := make([]string, len(g.Tickers))
	copy(orphans, g.Tickers)
	return orphans, true
}

// Assign moves a ticker to the target group, or to unassigned when
// targetID is empty. The ticker leaves whatever group held it first, so no
// ticker ever appears in two groups. hasLiveValue tells the store whether
// the ticker currently carries position value; a ticker assigned while
// outside the known universe becomes manually tracked so it persists at
// zero value.
//
// Silent no-ops: blank ticker, unknown non-empty target (referential
// drift), and re-assigning a ticker to the group that already holds it.
func (s *Store) Assign(ticker, targetID string, hasLiveValue bool) AssignResult {
	t := symbols.Normalize(ticker)
	if t == "" {
		return AssignResult{}
	}

	res := AssignResult{Ticker: t}

	cur, hasOwner := s.owner[t]
	if targetID != "" {
		target, ok := s.byID[targetID]
		if !ok {
			return res
		}
		if hasOwner && cur == targetID {
			res.FromGroupID = cur
			res.ToGroupID = cur
			return res
		}

		known := hasLiveValue || hasOwner || s.isManual(t)

		if hasOwner {
			s.removeFromGroup(cur, t)
			res.FromGroupID = cur
		}

		target.Tickers = append(target.Tickers, t)
		target.UpdatedAt = time.Now()
		s.owner[t] = targetID
		res.ToGroupID = targetID
		res.Changed = true

		if !known {
			s.manual[t] = time.Now()
			res.BecameManual = true
		}
		return res
	}

	// Target is unassigned.
	known := hasLiveValue || hasOwner || s.isManual(t)

	if hasOwner {
		s.removeFromGroup(cur, t)
		delete(s.owner, t)
		res.FromGroupID = cur
		res.Changed = true
	}

	if !known {
		s.manual[t] = time.Now()
		res.BecameManual = true
	}

	return res
}

// AddManual ensures a ticker is tracked even without position value.
// No-op when the ticker is already in the known universe.
func (s *Store) AddManual(ticker string, hasLiveValue bool) bool {
	t := symbols.Normalize(ticker)
	if t == "" {
		return false
	}
	if hasLiveValue || s.isManual(t) {
		return false
	}
	if _, owned := s.owner[t]; owned {
		return false
	}

	s.manual[t] = time.Now()
	return true
}

// RemoveFromWorkspace strips a ticker from every group and from the
// manually-tracked set. The ticker disappears from the universe unless a
// live position still reports it; positions are ground truth.
func (s *Store) RemoveFromWorkspace(ticker string) RemoveResult {
	t := symbols.Normalize(ticker)
	if t == "" {
		return RemoveResult{}
	}

	res := RemoveResult{Ticker: t}

	if cur, ok := s.owner[t]; ok {
		s.removeFromGroup(cur, t)
		delete(s.owner, t)
		res.FromGroupID = cur
		res.Changed = true
	}

	if _, ok := s.manual[t]; ok {
		delete(s.manual, t)
		res.WasManual = true
		res.Changed = true
	}

	return res
}

// ResortAll re-ranks every group's ticker list. Called after any mutation
// or import so membership order always reflects current values.
func (s *Store) ResortAll(rank func([]string) []string) {
	for _, g := range s.groups {
		g.Tickers = rank(g.Tickers)
	}
}

// Replace swaps in persisted state, sanitizing as it loads: blank names or
// ids are dropped, tickers are normalized, duplicates within a group
// collapse, and cross-group duplicates resolve first-seen-wins.
func (s *Store) Replace(groups []Group, manual map[string]time.Time) {
	s.groups = nil
	s.byID = make(map[string]*Group)
	s.owner = make(map[string]string)
	s.manual = make(map[string]time.Time)

	for _, raw := range groups {
		id := strings.TrimSpace(raw.ID)
		name := strings.TrimSpace(raw.Name)
		if id == "" || name == "" {
			continue
		}
		if _, dup := s.byID[id]; dup {
			continue
		}

		g := &Group{
			ID:        id,
			Name:      name,
			Tickers:   []string{},
			CreatedAt: raw.CreatedAt,
			UpdatedAt: raw.UpdatedAt,
		}

		for _, ticker := range raw.Tickers {
			t := symbols.Normalize(ticker)
			if t == "" {
				continue
			}
			if _, claimed := s.owner[t]; claimed {
				continue
			}
			g.Tickers = append(g.Tickers, t)
			s.owner[t] = id
		}

		s.groups = append(s.groups, g)
		s.byID[id] = g
	}

	for ticker, addedAt := range manual {
		t := symbols.Normalize(ticker)
		if t == "" {
			continue
		}
		s.manual[t] = addedAt
	}
}

// All returns the groups in creation order. Copies; mutations do not leak.
func (s *Store) All() []Group {
	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.clone()
	}
	return out
}

// Get returns a group by id.
func (s *Store) Get(id string) (Group, bool) {
	g, ok := s.byID[id]
	if !ok {
		return Group{}, false
	}
	return g.clone(), true
}

// OwnerOf returns the id of the group holding a ticker.
func (s *Store) OwnerOf(ticker string) (string, bool) {
	id, ok := s.owner[symbols.Normalize(ticker)]
	return id, ok
}

// Manual returns the manually-tracked tickers, sorted for determinism.
func (s *Store) Manual() []string {
	out := make([]string, 0, len(s.manual))
	for ticker := range s.manual {
		out = append(out, ticker)
	}
	sort.Strings(out)
	return out
}

// ManualSnapshot returns a copy of the manual set with added-at times,
// for persistence.
func (s *Store) ManualSnapshot() map[string]time.Time {
	out := make(map[string]time.Time, len(s.manual))
	for ticker, addedAt := range s.manual {
		out[ticker] = addedAt
	}
	return out
}

// GroupedTickers returns every ticker claimed by any group.
func (s *Store) GroupedTickers() []string {
	var out []string
	for _, g := range s.groups {
		out = append(out, g.Tickers...)
	}
	return out
}

func (s *Store) isManual(ticker string) bool {
	_, ok := s.manual[ticker]
	return ok
}

func (s *Store) removeFromGroup(groupID, ticker string) {
	g, ok := s.byID[groupID]
	if !ok {
		return
	}
	for i, cur := range g.Tickers {
		if cur == ticker {
			g.Tickers = append(g.Tickers[:i], g.Tickers[i+1:]...)
			g.UpdatedAt = time.Now()
			return
		}
	}
}
